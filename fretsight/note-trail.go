package main

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultFadeDuration  = 500 * time.Millisecond
	defaultSweepInterval = 100 * time.Millisecond
)

type trailPhase int

const (
	trailActive trailPhase = iota
	trailFading
)

type trailEntry struct {
	activeNote
	phase         trailPhase
	fadeStartedAt time.Time // wall clock, zero unless fading
}

func (e trailEntry) isFading() bool {
	return e.phase == trailFading
}

func (e trailEntry) expired(now time.Time, fadeDuration time.Duration) bool {
	return e.isFading() && now.Sub(e.fadeStartedAt) > fadeDuration
}

// opacity is 1 while active and falls linearly to 0 over the fade.
func (e trailEntry) opacity(now time.Time, fadeDuration time.Duration) float64 {
	if !e.isFading() || fadeDuration <= 0 {
		return 1
	}
	progress := float64(now.Sub(e.fadeStartedAt)) / float64(fadeDuration)
	return clampFloat(1-progress, 0, 1)
}

// noteTrail holds one entry per string/fret that is sounding or fading out.
// Keys that are neither are simply absent. A noteTrail is never mutated in
// place: reconcileTrail and sweepTrail build the next map and callers swap
// it in whole.
type noteTrail map[fretPosition]trailEntry

// reconcileTrail diffs the trail against the notes sounding now.
//
//	absent  -> active   key shows up
//	active  -> active   attributes refreshed, no timer touched
//	active  -> fading   key gone, fade starts at now
//	fading  -> active   key back before removal, fade cancelled
//	fading  -> removed  fade older than fadeDuration
//
// The direction playback time moved in does not matter; only the set of
// sounding keys and the wall clock do.
func reconcileTrail(prev noteTrail, active []activeNote, now time.Time, fadeDuration time.Duration) (noteTrail, []fretPosition) {
	next := make(noteTrail, len(prev)+len(active))
	for _, an := range active {
		next[an.fretPosition] = trailEntry{activeNote: an, phase: trailActive}
	}

	removed := []fretPosition{}
	for pos, entry := range prev {
		if _, stillActive := next[pos]; stillActive {
			continue
		}

		if !entry.isFading() {
			entry.phase = trailFading
			entry.fadeStartedAt = now
			entry.bend = entry.BendValue // freeze on the note's own bend
		}

		if entry.expired(now, fadeDuration) {
			removed = append(removed, pos)
			continue
		}
		next[pos] = entry
	}

	logRemoved(removed)
	return next, removed
}

// sweepTrail drops expired fades without looking at the sounding notes, so
// fades still finish while playback is paused.
func sweepTrail(prev noteTrail, now time.Time, fadeDuration time.Duration) (noteTrail, []fretPosition) {
	removed := []fretPosition{}
	for pos, entry := range prev {
		if entry.expired(now, fadeDuration) {
			removed = append(removed, pos)
		}
	}
	if len(removed) == 0 {
		return prev, removed
	}

	next := make(noteTrail, len(prev)-len(removed))
	for pos, entry := range prev {
		if !entry.expired(now, fadeDuration) {
			next[pos] = entry
		}
	}

	logRemoved(removed)
	return next, removed
}

func logRemoved(removed []fretPosition) {
	if len(removed) > 0 {
		log.Debug("trail entries removed", "count", len(removed), "keys", removed)
	}
}

func (t noteTrail) hasFading() bool {
	for _, entry := range t {
		if entry.isFading() {
			return true
		}
	}
	return false
}

// entries in string then fret order
func (t noteTrail) entries() []trailEntry {
	result := make([]trailEntry, 0, len(t))
	for _, entry := range t {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].fretPosition, result[j].fretPosition
		if a.str != b.str {
			return a.str < b.str
		}
		return a.fret < b.fret
	})
	return result
}

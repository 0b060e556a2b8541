package main

import (
	"math"
	"sort"

	"github.com/charmbracelet/log"
)

const (
	handPlanStep        = 0.1 // seconds per planning window
	maxPlannedCenter    = 15
	unreachableHandCost = 9999
)

// handCost scores how well a hand centered at center covers the notes of
// one window. Lower is better.
func handCost(notes []Note, center int, tn tuning) float64 {
	if len(notes) == 0 {
		return 0
	}

	minReach := center
	maxReach := center + handReach

	cost := 0.0
	for _, note := range notes {
		positions := tn.possiblePositions(note.Pitch)
		if len(positions) == 0 {
			return unreachableHandCost
		}

		best := math.Inf(1)
		for _, p := range positions {
			noteCost := 0.0
			if p.fret < minReach {
				// reaching down the neck is harder than up
				noteCost += float64(minReach-p.fret) * 10
			} else if p.fret > maxReach {
				noteCost += float64(p.fret-maxReach) * 5
			}
			best = math.Min(best, noteCost)
		}
		cost += best
	}

	// prefer the low frets
	cost += float64(center) * 0.5
	return cost
}

// planHandPositions estimates a center fret for every step-long window of
// the song, penalising hand movement between windows.
func planHandPositions(notes []Note, duration float64, step float64, tn tuning) []handPosition {
	if step <= 0 {
		step = handPlanStep
	}

	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sortNotes(sorted)

	timeline := []handPosition{}
	current := 0
	for i := 0; ; i++ {
		windowStart := float64(i) * step
		if windowStart >= duration {
			break
		}
		windowEnd := windowStart + step
		inWindow := notesOverlapping(sorted, windowStart, windowEnd)

		best := current
		minCost := math.Inf(1)
		for center := 0; center <= maxPlannedCenter; center++ {
			cost := handCost(inWindow, center, tn)
			cost += float64(absInt(center-current)) * 2
			if cost < minCost {
				minCost = cost
				best = center
			}
		}

		timeline = append(timeline, handPosition{
			Time:       math.Round(windowStart*100) / 100,
			CenterFret: best,
		})
		current = best
	}
	return timeline
}

// notesOverlapping returns notes with start < to and end > from. notes must
// be sorted by start.
func notesOverlapping(notes []Note, from float64, to float64) []Note {
	end := sort.Search(len(notes), func(i int) bool {
		return notes[i].Start >= to
	})
	result := []Note{}
	for _, n := range notes[:end] {
		if n.End > from {
			result = append(result, n)
		}
	}
	return result
}

// planTranscription fills in fingerings and a hand timeline locally, for
// transcriptions that arrive without them (MIDI imports, older payloads).
// The input is left untouched.
func planTranscription(tr *transcription, tn tuning) *transcription {
	planned := *tr
	planned.Notes = optimizeFingering(tr.Notes, tn)
	planned.HandPositions = planHandPositions(planned.Notes, tr.Duration, handPlanStep, tn)
	log.Info("planned transcription", "notes", len(planned.Notes),
		"positioned", planned.positionedCount(), "hand_positions", len(planned.HandPositions))
	return &planned
}

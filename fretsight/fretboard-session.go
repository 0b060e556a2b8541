package main

import (
	"time"
)

// fretboardSession is everything one viewer needs per tick. Only the trail
// carries state from one tick to the next; the rest is a lookup by time.
type fretboardSession struct {
	transcription *transcription
	tuning        tuning
	hands         handTracker
	overlay       bendOverlay
	trail         noteTrail

	fadeDuration  time.Duration
	sweepInterval time.Duration
	lastTime      float64
}

type noteMarker struct {
	String       int     `json:"string"`
	Fret         int     `json:"fret"`
	Pitch        int     `json:"pitch"`
	Label        string  `json:"label"`
	Bend         float64 `json:"bend"`
	Vibrato      bool    `json:"vibrato"`
	VibratoDepth float64 `json:"vibrato_depth"`
	Fading       bool    `json:"fading"`
	Opacity      float64 `json:"opacity"`
}

// fretboardFrame is what a renderer draws for one tick.
type fretboardFrame struct {
	Time       float64      `json:"time"`
	HandMode   string       `json:"hand_mode"`
	CenterFret int          `json:"center_fret"`
	WindowLow  int          `json:"window_low"`
	WindowHigh int          `json:"window_high"`
	Markers    []noteMarker `json:"markers"`
}

func newFretboardSession(tr *transcription, stngs settings) fretboardSession {
	return fretboardSession{
		transcription: tr,
		tuning:        stngs.tuning,
		hands:         newHandTracker(tr.HandPositions, stngs.manualFret),
		overlay:       bendOverlay{tr.PitchBends},
		trail:         noteTrail{},
		fadeDuration:  stngs.fadeDuration,
		sweepInterval: stngs.sweepInterval,
	}
}

func (s fretboardSession) activeNotesAt(t float64) []activeNote {
	active := resolveActiveNotes(s.transcription.Notes, t, s.hands, s.tuning)
	return applyBendOverlay(active, s.overlay, t)
}

// tick reconciles the trail against playback time t at wall-clock now.
func (s fretboardSession) tick(t float64, now time.Time) (fretboardSession, []fretPosition) {
	var removed []fretPosition
	s.trail, removed = reconcileTrail(s.trail, s.activeNotesAt(t), now, s.fadeDuration)
	s.lastTime = t
	return s, removed
}

func (s fretboardSession) sweep(now time.Time) (fretboardSession, []fretPosition) {
	var removed []fretPosition
	s.trail, removed = sweepTrail(s.trail, now, s.fadeDuration)
	return s, removed
}

func (s fretboardSession) needsSweep() bool {
	return s.trail.hasFading()
}

func (s fretboardSession) withHands(hands handTracker) fretboardSession {
	s.hands = hands
	return s
}

func (s fretboardSession) frame(now time.Time) fretboardFrame {
	entries := s.trail.entries()
	markers := make([]noteMarker, len(entries))
	for i, entry := range entries {
		markers[i] = newNoteMarker(entry.activeNote, entry.isFading(), entry.opacity(now, s.fadeDuration))
	}
	return s.frameShell(s.lastTime, markers)
}

// snapshotFrame resolves t without touching the trail.
func (s fretboardSession) snapshotFrame(t float64) fretboardFrame {
	active := s.activeNotesAt(t)
	markers := make([]noteMarker, len(active))
	for i, an := range active {
		markers[i] = newNoteMarker(an, false, 1)
	}
	return s.frameShell(t, markers)
}

func (s fretboardSession) frameShell(t float64, markers []noteMarker) fretboardFrame {
	window := s.hands.window(t)
	return fretboardFrame{
		Time:       t,
		HandMode:   s.hands.mode.String(),
		CenterFret: s.hands.centerFret(t),
		WindowLow:  window.low,
		WindowHigh: window.high,
		Markers:    markers,
	}
}

func newNoteMarker(an activeNote, fading bool, opacity float64) noteMarker {
	return noteMarker{
		String:       an.str,
		Fret:         an.fret,
		Pitch:        an.Pitch,
		Label:        pitchName(an.Pitch),
		Bend:         an.bend,
		Vibrato:      an.IsVibrato,
		VibratoDepth: an.VibratoDepth,
		Fading:       fading,
		Opacity:      opacity,
	}
}

func (f fretboardFrame) markerAt(str int, fret int) (noteMarker, bool) {
	for _, m := range f.Markers {
		if m.String == str && m.Fret == fret {
			return m, true
		}
	}
	return noteMarker{}, false
}

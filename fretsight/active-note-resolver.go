package main

import (
	"sort"

	"github.com/charmbracelet/log"
)

// activeNote is a sounding note with its final string/fret.
type activeNote struct {
	fretPosition
	Note
	bend float64 // displayed bend in semitones
}

// resolveActiveNotes returns the notes sounding at t with a position each.
// A fingering from the analysis is kept only under automatic hand tracking;
// manual mode always recomputes around the operator's fret. Notes without
// any playable position are dropped.
func resolveActiveNotes(notes []Note, t float64, hands handTracker, tn tuning) []activeNote {
	// notes are sorted by start, so nothing from here on has started yet
	end := sort.Search(len(notes), func(i int) bool {
		return notes[i].Start > t
	})

	center := hands.centerFret(t)
	result := []activeNote{}
	for _, note := range notes[:end] {
		if !note.soundingAt(t) {
			continue
		}

		pos, ok := resolveFingering(note, hands.mode, center, tn)
		if !ok {
			log.Debug("dropping unplayable note", "pitch", pitchName(note.Pitch), "start", note.Start)
			continue
		}
		result = append(result, activeNote{pos, note, note.BendValue})
	}
	return result
}

func resolveFingering(note Note, mode handMode, center int, tn tuning) (fretPosition, bool) {
	switch f := note.Fingering.(type) {
	case positioned:
		if mode == handModeAutomatic {
			return f.fretPosition, true
		}
		return tn.bestPosition(note.Pitch, center)
	case unpositioned:
		return tn.bestPosition(note.Pitch, center)
	default:
		return tn.bestPosition(note.Pitch, center)
	}
}

// applyBendOverlay sets the displayed bend of sounding notes from the live
// overlay. Without overlay samples each note keeps its own bend value.
func applyBendOverlay(notes []activeNote, overlay bendOverlay, t float64) []activeNote {
	if overlay.empty() {
		return notes
	}
	bend := overlay.bendAt(t)
	for i := range notes {
		notes[i].bend = bend
	}
	return notes
}

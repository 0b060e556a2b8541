package main

import "testing"

func note(start, end float64, pitch int) Note {
	return Note{Start: start, End: end, Pitch: pitch, Velocity: 100, Fingering: unpositioned{}}
}

func positionedNote(start, end float64, pitch int, str int, fret int) Note {
	n := note(start, end, pitch)
	n.Fingering = positioned{fretPosition{str, fret}}
	return n
}

func TestResolveActiveNotes_HalfOpenInterval(t *testing.T) {
	notes := []Note{note(1.0, 2.0, 57)}
	hands := newHandTracker(nil, defaultManualFret)

	cases := map[float64]int{0.99: 0, 1.0: 1, 1.5: 1, 2.0: 0}
	for at, expected := range cases {
		active := resolveActiveNotes(notes, at, hands, standardTuning)
		if len(active) != expected {
			t.Errorf("At %v expected %d active notes, got %d", at, expected, len(active))
		}
	}
}

func TestResolveActiveNotes_ZeroLengthNeverSounds(t *testing.T) {
	notes := []Note{note(1.0, 1.0, 57)}
	active := resolveActiveNotes(notes, 1.0, newHandTracker(nil, 0), standardTuning)
	if len(active) != 0 {
		t.Error("Expected a zero length note to never be active, got", len(active))
	}
}

func TestResolveActiveNotes_KeepsAnalysisFingeringInAutomaticMode(t *testing.T) {
	notes := []Note{positionedNote(0, 1, 57, 0, 17)}
	hands := newHandTracker([]handPosition{{0, 2}}, defaultManualFret)

	active := resolveActiveNotes(notes, 0.5, hands, standardTuning)
	if len(active) != 1 || active[0].fretPosition != (fretPosition{0, 17}) {
		t.Errorf("Expected the analysis position s0/f17, got %v", active)
	}
}

func TestResolveActiveNotes_ManualModeOverridesFingering(t *testing.T) {
	notes := []Note{positionedNote(0, 1, 57, 0, 17)}
	hands := newHandTracker(nil, defaultManualFret).withManual(3)

	active := resolveActiveNotes(notes, 0.5, hands, standardTuning)
	if len(active) != 1 || active[0].fretPosition != (fretPosition{3, 2}) {
		t.Errorf("Expected s3/f2 around the manual fret, got %v", active)
	}
}

func TestResolveActiveNotes_UnpositionedUsesHandCenter(t *testing.T) {
	notes := []Note{note(0, 4, 57)}
	hands := newHandTracker([]handPosition{{0, 3}, {2, 12}}, defaultManualFret)

	early := resolveActiveNotes(notes, 1, hands, standardTuning)
	if early[0].fretPosition != (fretPosition{3, 2}) {
		t.Errorf("Expected s3/f2 near fret 3, got %v", early[0].fretPosition)
	}

	late := resolveActiveNotes(notes, 3, hands, standardTuning)
	if late[0].fretPosition != (fretPosition{1, 12}) {
		t.Errorf("Expected s1/f12 near fret 12, got %v", late[0].fretPosition)
	}
}

func TestResolveActiveNotes_DropsUnplayableNotes(t *testing.T) {
	notes := []Note{note(0, 1, 30), note(0, 1, 45)}
	active := resolveActiveNotes(notes, 0.5, newHandTracker(nil, 0), standardTuning)
	if len(active) != 1 || active[0].Pitch != 45 {
		t.Errorf("Expected only the playable note, got %v", active)
	}
}

func TestApplyBendOverlay(t *testing.T) {
	n := note(0, 2, 60)
	n.BendValue = 0.25
	active := []activeNote{{fretPosition{2, 10}, n, n.BendValue}}

	kept := applyBendOverlay(append([]activeNote{}, active...), bendOverlay{}, 1)
	if kept[0].bend != 0.25 {
		t.Error("Expected the note's own bend without overlay samples, got", kept[0].bend)
	}

	overlaid := applyBendOverlay(append([]activeNote{}, active...), bendOverlay{[]bendSample{{0.5, 1}}}, 1)
	if overlaid[0].bend != 1 {
		t.Error("Expected the overlay bend, got", overlaid[0].bend)
	}
}

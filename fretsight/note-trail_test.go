package main

import (
	"testing"
	"time"
)

var trailEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func tickTime(tick int) time.Time {
	return trailEpoch.Add(time.Duration(tick) * 100 * time.Millisecond)
}

func sounding(str int, fret int) activeNote {
	pitch := standardTuning.pitchAt(fretPosition{str, fret})
	return activeNote{fretPosition{str, fret}, note(0, 10, pitch), 0}
}

func TestReconcileTrail_RemovedBetweenTick16And17(t *testing.T) {
	key := fretPosition{3, 2}
	trail := noteTrail{}

	removedAt := -1
	for tick := 1; tick <= 25; tick++ {
		active := []activeNote{}
		if tick <= 10 {
			active = append(active, sounding(3, 2))
		}

		var removed []fretPosition
		trail, removed = reconcileTrail(trail, active, tickTime(tick), defaultFadeDuration)
		for _, r := range removed {
			if r == key {
				removedAt = tick
			}
		}

		if tick == 11 {
			entry, ok := trail[key]
			if !ok || !entry.isFading() || !entry.fadeStartedAt.Equal(tickTime(11)) {
				t.Fatalf("Expected the key to start fading at tick 11, got %+v", entry)
			}
		}
	}

	if removedAt < 16 || removedAt > 17 {
		t.Errorf("Expected removal at tick 16 or 17, got %d", removedAt)
	}
	if _, ok := trail[key]; ok {
		t.Error("Expected the key to be gone")
	}
}

func TestReconcileTrail_ActiveRefreshKeepsNoTimer(t *testing.T) {
	first := sounding(2, 5)
	trail, _ := reconcileTrail(noteTrail{}, []activeNote{first}, tickTime(0), defaultFadeDuration)

	bent := first
	bent.bend = 0.5
	trail, _ = reconcileTrail(trail, []activeNote{bent}, tickTime(3), defaultFadeDuration)

	entry := trail[first.fretPosition]
	if entry.isFading() || !entry.fadeStartedAt.IsZero() {
		t.Error("Expected an active entry to have no fade timer")
	}
	if entry.bend != 0.5 {
		t.Error("Expected the bend to be refreshed, got", entry.bend)
	}
}

func TestReconcileTrail_Resurrection(t *testing.T) {
	a := sounding(1, 7)
	trail, _ := reconcileTrail(noteTrail{}, []activeNote{a}, tickTime(0), defaultFadeDuration)
	trail, _ = reconcileTrail(trail, nil, tickTime(1), defaultFadeDuration)
	if !trail[a.fretPosition].isFading() {
		t.Fatal("Expected the key to be fading")
	}

	trail, _ = reconcileTrail(trail, []activeNote{a}, tickTime(3), defaultFadeDuration)
	entry := trail[a.fretPosition]
	if entry.isFading() || !entry.fadeStartedAt.IsZero() {
		t.Errorf("Expected the fade to be cancelled, got %+v", entry)
	}

	// disappearing again starts a new fade at the new instant
	trail, _ = reconcileTrail(trail, nil, tickTime(4), defaultFadeDuration)
	if !trail[a.fretPosition].fadeStartedAt.Equal(tickTime(4)) {
		t.Error("Expected a fresh fade at tick 4, got", trail[a.fretPosition].fadeStartedAt)
	}
}

func TestReconcileTrail_FadeFreezesBendToNoteValue(t *testing.T) {
	a := sounding(4, 8)
	a.BendValue = 1
	a.bend = 0.3
	trail, _ := reconcileTrail(noteTrail{}, []activeNote{a}, tickTime(0), defaultFadeDuration)
	trail, _ = reconcileTrail(trail, nil, tickTime(1), defaultFadeDuration)

	if trail[a.fretPosition].bend != 1 {
		t.Error("Expected a fading entry to show the note's own bend, got", trail[a.fretPosition].bend)
	}
}

func TestReconcileTrail_Idempotent(t *testing.T) {
	active := []activeNote{sounding(0, 3), sounding(5, 0)}
	once, _ := reconcileTrail(noteTrail{}, active, tickTime(0), defaultFadeDuration)
	twice, _ := reconcileTrail(once, active, tickTime(0), defaultFadeDuration)

	if len(once) != len(twice) {
		t.Fatalf("Expected %d entries, got %d", len(once), len(twice))
	}
	for key, entry := range once {
		if twice[key].phase != entry.phase {
			t.Errorf("Expected %v to keep its phase", key)
		}
	}
}

func TestReconcileTrail_DoesNotMutatePrevious(t *testing.T) {
	a := sounding(2, 2)
	prev, _ := reconcileTrail(noteTrail{}, []activeNote{a}, tickTime(0), defaultFadeDuration)
	next, _ := reconcileTrail(prev, nil, tickTime(1), defaultFadeDuration)

	if prev[a.fretPosition].isFading() {
		t.Error("Expected the previous trail to be untouched")
	}
	if !next[a.fretPosition].isFading() {
		t.Error("Expected the next trail to be fading")
	}
}

func TestReconcileTrail_SeekBackwards(t *testing.T) {
	notes := []Note{note(0, 1, 45), note(5, 6, 57)}
	hands := newHandTracker(nil, 0)

	trail, _ := reconcileTrail(noteTrail{}, resolveActiveNotes(notes, 5.5, hands, standardTuning), tickTime(0), defaultFadeDuration)
	trail, _ = reconcileTrail(trail, resolveActiveNotes(notes, 0.5, hands, standardTuning), tickTime(1), defaultFadeDuration)

	if len(trail) != 2 {
		t.Fatal("Expected one active and one fading entry, got", len(trail))
	}
	fading := 0
	for _, entry := range trail {
		if entry.isFading() {
			fading++
		}
	}
	if fading != 1 {
		t.Error("Expected exactly one fading entry, got", fading)
	}
}

func TestSweepTrail_RemovesWhilePaused(t *testing.T) {
	a := sounding(1, 5)
	trail, _ := reconcileTrail(noteTrail{}, []activeNote{a}, tickTime(0), defaultFadeDuration)
	trail, _ = reconcileTrail(trail, nil, tickTime(1), defaultFadeDuration)

	// no more reconciles, only sweeps
	swept, removed := sweepTrail(trail, tickTime(5), defaultFadeDuration)
	if len(removed) != 0 || len(swept) != 1 {
		t.Error("Expected nothing removed before the fade is over")
	}
	swept, removed = sweepTrail(swept, tickTime(7), defaultFadeDuration)
	if len(removed) != 1 || len(swept) != 0 {
		t.Errorf("Expected the entry removed by the sweep, got %v", swept)
	}
	if swept.hasFading() {
		t.Error("Expected nothing left fading")
	}
}

func TestSweepTrail_KeepsActiveEntries(t *testing.T) {
	trail, _ := reconcileTrail(noteTrail{}, []activeNote{sounding(0, 0)}, tickTime(0), defaultFadeDuration)
	swept, removed := sweepTrail(trail, tickTime(100), defaultFadeDuration)
	if len(removed) != 0 || len(swept) != 1 {
		t.Error("Expected active entries to survive any sweep")
	}
}

func TestOpacity(t *testing.T) {
	entry := trailEntry{phase: trailFading, fadeStartedAt: tickTime(0)}
	cases := map[int]float64{0: 1, 1: 0.8, 5: 0, 9: 0}
	for tick, expected := range cases {
		actual := entry.opacity(tickTime(tick), defaultFadeDuration)
		if actual < expected-1e-9 || actual > expected+1e-9 {
			t.Errorf("At tick %d expected opacity %v, got %v", tick, expected, actual)
		}
	}

	active := trailEntry{phase: trailActive}
	if active.opacity(tickTime(3), defaultFadeDuration) != 1 {
		t.Error("Expected active entries to be fully opaque")
	}
}

func TestEntries_SortedByStringThenFret(t *testing.T) {
	trail, _ := reconcileTrail(noteTrail{}, []activeNote{sounding(3, 5), sounding(0, 7), sounding(3, 1)}, tickTime(0), defaultFadeDuration)
	entries := trail.entries()
	expected := []fretPosition{{0, 7}, {3, 1}, {3, 5}}
	for i, e := range entries {
		if e.fretPosition != expected[i] {
			t.Errorf("Expected %v at %d, got %v", expected[i], i, e.fretPosition)
		}
	}
}

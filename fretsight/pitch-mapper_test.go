package main

import (
	"reflect"
	"testing"
)

func TestBestPosition_PicksClosestFretToCenter(t *testing.T) {
	pos, ok := standardTuning.bestPosition(57, 3)
	if !ok {
		t.Fatal("Expected a position for pitch 57")
	}
	expected := fretPosition{str: 3, fret: 2}
	if pos != expected {
		t.Errorf("Expected %v, got %v", expected, pos)
	}
}

func TestPossiblePositions_SkipsUnreachableStrings(t *testing.T) {
	expected := []fretPosition{{0, 17}, {1, 12}, {2, 7}, {3, 2}}
	actual := standardTuning.possiblePositions(57)
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

func TestBestPosition_TieKeepsLowestString(t *testing.T) {
	// pitch 64 is s1/f19 s2/f14 s3/f9 s4/f5 s5/f0, so center 7 ties s3/f9
	// and s4/f5 at distance 2
	pos, _ := standardTuning.bestPosition(64, 7)
	if pos != (fretPosition{3, 9}) {
		t.Errorf("Expected the lower string s3/f9 on a tie, got %v", pos)
	}

	pos, _ = standardTuning.bestPosition(59, 6)
	if pos != (fretPosition{3, 4}) {
		t.Errorf("Expected s3/f4, got %v", pos)
	}
}

func TestBestPosition_OutOfRange(t *testing.T) {
	for _, pitch := range []int{39, 64 + maxFret + 1, -1} {
		if pos, ok := standardTuning.bestPosition(pitch, 0); ok {
			t.Errorf("Expected no position for pitch %d, got %v", pitch, pos)
		}
	}
}

func TestBestPosition_RangeLimits(t *testing.T) {
	if pos, ok := standardTuning.bestPosition(40, 0); !ok || pos != (fretPosition{0, 0}) {
		t.Errorf("Expected low E open, got %v %v", pos, ok)
	}
	if pos, ok := standardTuning.bestPosition(64+maxFret, 0); !ok || pos != (fretPosition{5, maxFret}) {
		t.Errorf("Expected top fret of high e, got %v %v", pos, ok)
	}
}

func TestPitchAt(t *testing.T) {
	for _, pitch := range []int{40, 52, 57, 69, 86} {
		for _, pos := range standardTuning.possiblePositions(pitch) {
			if standardTuning.pitchAt(pos) != pitch {
				t.Errorf("Expected %v to sound %d, got %d", pos, pitch, standardTuning.pitchAt(pos))
			}
		}
	}
}

func TestPitchName(t *testing.T) {
	cases := map[int]string{40: "E2", 45: "A2", 60: "C4", 61: "C#4", 69: "A4"}
	for pitch, expected := range cases {
		if actual := pitchName(pitch); actual != expected {
			t.Errorf("Expected %s for %d, got %s", expected, pitch, actual)
		}
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	numStrings = 6
	maxFret    = 22
)

// tuning holds the MIDI pitch of each open string. String index i is the
// string tuned to tuning[i], so with standard tuning index 0 is the low E.
type tuning [numStrings]int

// E2(40) A2(45) D3(50) G3(55) B3(59) E4(64)
var standardTuning = tuning{40, 45, 50, 55, 59, 64}

type fretPosition struct {
	str  int
	fret int
}

func (p fretPosition) String() string {
	return fmt.Sprintf("s%d/f%d", p.str, p.fret)
}

func (p fretPosition) valid() bool {
	return p.str >= 0 && p.str < numStrings && p.fret >= 0 && p.fret <= maxFret
}

// possiblePositions lists every string/fret that sounds pitch, in string
// order. Empty when the pitch is out of the instrument's range.
func (tn tuning) possiblePositions(pitch int) []fretPosition {
	out := []fretPosition{}
	for s := 0; s < numStrings; s++ {
		f := pitch - tn[s]
		if f >= 0 && f <= maxFret {
			out = append(out, fretPosition{s, f})
		}
	}
	return out
}

// bestPosition picks the position closest to centerFret. On equal distance
// the first one found (lowest string index) is kept.
func (tn tuning) bestPosition(pitch int, centerFret int) (fretPosition, bool) {
	positions := tn.possiblePositions(pitch)
	if len(positions) == 0 {
		log.Debug("no playable position", "pitch", pitchName(pitch))
		return fretPosition{}, false
	}

	best := positions[0]
	bestDistance := absInt(best.fret - centerFret)
	for _, p := range positions[1:] {
		d := absInt(p.fret - centerFret)
		if d < bestDistance {
			best = p
			bestDistance = d
		}
	}
	return best, true
}

// pitchAt is the pitch that sounds at a position.
func (tn tuning) pitchAt(p fretPosition) int {
	return tn[p.str] + p.fret
}

func (tn tuning) String() string {
	names := make([]string, numStrings)
	for i, p := range tn {
		names[i] = pitchName(p)
	}
	return strings.Join(names, " ")
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func pitchName(pitch int) string {
	if pitch < 0 {
		return fmt.Sprintf("?%d", pitch)
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], (pitch/12)-1)
}

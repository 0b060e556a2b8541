package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

var errMalformedPayload = errors.New("malformed analysis payload")

// fingering is either positioned (the analysis picked a string/fret) or
// unpositioned. The set of implementations is closed to this file.
type fingering interface {
	isFingering()
}

type positioned struct {
	fretPosition
}

type unpositioned struct{}

func (positioned) isFingering()   {}
func (unpositioned) isFingering() {}

type Note struct {
	Start    float64 // seconds
	End      float64 // seconds, exclusive
	Pitch    int     // MIDI
	Velocity int

	BendValue    float64 // semitones, 0 when the analysis found no bend
	IsVibrato    bool
	VibratoDepth float64

	Fingering fingering
}

func (n Note) soundingAt(t float64) bool {
	return n.Start <= t && t < n.End
}

// transcription is everything the analysis collaborator sends for one song.
type transcription struct {
	Duration      float64
	Notes         []Note // sorted by Start
	HandPositions []handPosition
	PitchBends    []bendSample
}

type rawNote struct {
	Start        *float64 `json:"start"`
	End          *float64 `json:"end"`
	Pitch        *int     `json:"pitch"`
	Velocity     *int     `json:"velocity"`
	BendValue    *float64 `json:"bend_value,omitempty"`
	String       *int     `json:"string,omitempty"`
	Fret         *int     `json:"fret,omitempty"`
	IsVibrato    *bool    `json:"is_vibrato,omitempty"`
	VibratoDepth *float64 `json:"vibrato_depth,omitempty"`
}

type rawHandPosition struct {
	Time       *float64 `json:"time"`
	CenterFret *int     `json:"center_fret"`
}

type rawBendSample struct {
	Time  *float64 `json:"time"`
	Pitch *float64 `json:"pitch"`
}

type rawPayload struct {
	Duration      *float64          `json:"duration"`
	Notes         *[]rawNote        `json:"notes"`
	HandPositions []rawHandPosition `json:"hand_positions"`
	PitchBends    []rawBendSample   `json:"pitch_bends"`
}

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(errMalformedPayload, format, args...)
}

func ParsePayload(reader io.Reader) (*transcription, error) {
	var raw rawPayload
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrap(errMalformedPayload, err.Error())
	}
	return raw.validate()
}

func (raw rawPayload) validate() (*transcription, error) {
	if raw.Duration == nil {
		return nil, malformed("missing duration")
	}
	if *raw.Duration < 0 {
		return nil, malformed("negative duration %v", *raw.Duration)
	}
	if raw.Notes == nil {
		return nil, malformed("missing notes")
	}

	tr := &transcription{
		Duration:      *raw.Duration,
		Notes:         make([]Note, 0, len(*raw.Notes)),
		HandPositions: make([]handPosition, 0, len(raw.HandPositions)),
		PitchBends:    make([]bendSample, 0, len(raw.PitchBends)),
	}

	for i, rh := range raw.HandPositions {
		switch {
		case rh.Time == nil:
			return nil, malformed("hand position %d: missing time", i)
		case rh.CenterFret == nil:
			return nil, malformed("hand position %d: missing center_fret", i)
		}
		tr.HandPositions = append(tr.HandPositions, handPosition{*rh.Time, *rh.CenterFret})
	}
	for i, rb := range raw.PitchBends {
		switch {
		case rb.Time == nil:
			return nil, malformed("pitch bend %d: missing time", i)
		case rb.Pitch == nil:
			return nil, malformed("pitch bend %d: missing pitch", i)
		}
		tr.PitchBends = append(tr.PitchBends, bendSample{*rb.Time, *rb.Pitch})
	}

	for i, rn := range *raw.Notes {
		note, err := rn.toNote()
		if err != nil {
			return nil, errors.Wrapf(err, "note %d", i)
		}
		tr.Notes = append(tr.Notes, note)
	}

	if !isNonDecreasing(tr.HandPositions, func(p handPosition) float64 { return p.Time }) {
		return nil, malformed("hand_positions are not ascending by time")
	}
	if !isNonDecreasing(tr.PitchBends, func(b bendSample) float64 { return b.Time }) {
		return nil, malformed("pitch_bends are not ascending by time")
	}

	sortNotes(tr.Notes)
	return tr, nil
}

func (rn rawNote) toNote() (Note, error) {
	switch {
	case rn.Start == nil:
		return Note{}, malformed("missing start")
	case rn.End == nil:
		return Note{}, malformed("missing end")
	case rn.Pitch == nil:
		return Note{}, malformed("missing pitch")
	case rn.Velocity == nil:
		return Note{}, malformed("missing velocity")
	}
	if *rn.End < *rn.Start {
		return Note{}, malformed("end %v before start %v", *rn.End, *rn.Start)
	}

	note := Note{
		Start:     *rn.Start,
		End:       *rn.End,
		Pitch:     *rn.Pitch,
		Velocity:  *rn.Velocity,
		Fingering: unpositioned{},
	}
	if rn.BendValue != nil {
		note.BendValue = *rn.BendValue
	}
	if rn.IsVibrato != nil {
		note.IsVibrato = *rn.IsVibrato
	}
	if rn.VibratoDepth != nil {
		note.VibratoDepth = *rn.VibratoDepth
	}

	if (rn.String == nil) != (rn.Fret == nil) {
		return Note{}, malformed("string and fret must be given together")
	}
	if rn.String != nil {
		pos := fretPosition{*rn.String, *rn.Fret}
		if !pos.valid() {
			return Note{}, malformed("position %v out of range", pos)
		}
		note.Fingering = positioned{pos}
	}
	return note, nil
}

func sortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Start < notes[j].Start
	})
}

func (tr *transcription) toRawPayload() rawPayload {
	notes := make([]rawNote, len(tr.Notes))
	for i := range tr.Notes {
		n := tr.Notes[i]
		rn := rawNote{
			Start:        &n.Start,
			End:          &n.End,
			Pitch:        &n.Pitch,
			Velocity:     &n.Velocity,
			BendValue:    &n.BendValue,
			IsVibrato:    &n.IsVibrato,
			VibratoDepth: &n.VibratoDepth,
		}
		if p, ok := n.Fingering.(positioned); ok {
			str, fret := p.str, p.fret
			rn.String = &str
			rn.Fret = &fret
		}
		notes[i] = rn
	}

	handPositions := make([]rawHandPosition, len(tr.HandPositions))
	for i := range tr.HandPositions {
		hp := tr.HandPositions[i]
		handPositions[i] = rawHandPosition{&hp.Time, &hp.CenterFret}
	}
	pitchBends := make([]rawBendSample, len(tr.PitchBends))
	for i := range tr.PitchBends {
		b := tr.PitchBends[i]
		pitchBends[i] = rawBendSample{&b.Time, &b.Pitch}
	}
	return rawPayload{
		Duration:      &tr.Duration,
		Notes:         &notes,
		HandPositions: handPositions,
		PitchBends:    pitchBends,
	}
}

func WritePayload(writer io.Writer, tr *transcription) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tr.toRawPayload())
}

func writePayloadFile(filePath string, tr *transcription) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WritePayload(file, tr)
}

func isMidiFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return ext == ".mid" || ext == ".midi"
}

// loadTranscriptionFile reads an analysis payload, or imports a MIDI file.
func loadTranscriptionFile(filePath string) (*transcription, error) {
	if isMidiFile(filePath) {
		return importMidiFile(filePath, -1)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tr, err := ParsePayload(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filePath)
	}
	log.Info("loaded transcription", "path", filePath,
		"notes", len(tr.Notes), "hand_positions", len(tr.HandPositions), "pitch_bends", len(tr.PitchBends))
	return tr, nil
}

func (tr *transcription) positionedCount() int {
	count := 0
	for _, n := range tr.Notes {
		if _, ok := n.Fingering.(positioned); ok {
			count++
		}
	}
	return count
}

func describeTranscription(tr *transcription) string {
	return fmt.Sprintf("%s, %d %s (%d positioned), %d hand %s, %d %s",
		formatPlaybackTime(tr.Duration),
		len(tr.Notes), pluralizeWithS(len(tr.Notes), "note"), tr.positionedCount(),
		len(tr.HandPositions), pluralizeWithS(len(tr.HandPositions), "position"),
		len(tr.PitchBends), pluralizeWithS(len(tr.PitchBends), "bend sample"))
}

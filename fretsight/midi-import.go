package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	bendWindow          = 0.05   // seconds either side of a note
	pitchBendSemitone   = 4096.0 // bend units per semitone
	minBendRange        = 0.2    // semitones the pitch must move within a note
	minVibratoSamples   = 5
	minVibratoStdDev    = 0.02
	minVibratoCrossings = 2
)

type midiChannelKey struct {
	track   int
	channel uint8
}

type heldMidiKey struct {
	midiChannelKey
	key uint8
}

type midiBend struct {
	seconds   float64
	semitones float64
}

type heldMidiNote struct {
	startMicros int64
	velocity    uint8
}

// importMidiFile turns the note on/off pairs of a standard MIDI file into a
// transcription without fingerings or bends. track < 0 reads every track.
func importMidiFile(filePath string, track int) (tr *transcription, err error) {
	// smf can panic on broken files
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("failed to read midi file %s: %v", filePath, r)
		}
	}()

	var tracks []int
	if track >= 0 {
		tracks = []int{track}
	}

	collector := newMidiNoteCollector()
	reader := smf.ReadTracks(filePath, tracks...)
	reader.Do(func(te smf.TrackEvent) {
		collector.handle(te.TrackNo, te.AbsMicroSeconds, midi.Message(te.Message))
	})
	if reader.Error() != nil {
		return nil, errors.Wrapf(reader.Error(), "failed to read midi file %s", filePath)
	}

	tr = collector.transcription()
	log.Info("imported midi", "path", filePath, "notes", len(tr.Notes), "unterminated", collector.unterminated())
	return tr, nil
}

type midiNoteCollector struct {
	held  map[heldMidiKey][]heldMidiNote
	bends map[midiChannelKey][]midiBend // in time order per channel
	notes []Note
	// the channel each entry of notes was played on
	noteChannels []midiChannelKey
}

func newMidiNoteCollector() *midiNoteCollector {
	return &midiNoteCollector{
		held:  map[heldMidiKey][]heldMidiNote{},
		bends: map[midiChannelKey][]midiBend{},
	}
}

func (c *midiNoteCollector) handle(trackNo int, absMicros int64, msg midi.Message) {
	var ch, key, vel uint8
	var relative int16
	var absolute uint16
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		k := heldMidiKey{midiChannelKey{trackNo, ch}, key}
		c.held[k] = append(c.held[k], heldMidiNote{absMicros, vel})
	case msg.GetPitchBend(&ch, &relative, &absolute):
		k := midiChannelKey{trackNo, ch}
		c.bends[k] = append(c.bends[k], midiBend{float64(absMicros) / 1e6, float64(relative) / pitchBendSemitone})
	case msg.GetNoteEnd(&ch, &key):
		k := heldMidiKey{midiChannelKey{trackNo, ch}, key}
		stack := c.held[k]
		if len(stack) == 0 {
			log.Debug("note off without note on", "track", trackNo, "key", key)
			return
		}
		// first in, first out for overlapping repeats of one key
		started := stack[0]
		c.held[k] = stack[1:]
		c.notes = append(c.notes, Note{
			Start:     float64(started.startMicros) / 1e6,
			End:       float64(absMicros) / 1e6,
			Pitch:     int(key),
			Velocity:  int(started.velocity),
			Fingering: unpositioned{},
		})
		c.noteChannels = append(c.noteChannels, k.midiChannelKey)
	}
}

func (c *midiNoteCollector) unterminated() int {
	count := 0
	for _, stack := range c.held {
		count += len(stack)
	}
	return count
}

// bendsAround returns the semitone offsets on a note's channel from
// bendWindow before it starts to bendWindow after it ends.
func (c *midiNoteCollector) bendsAround(n Note, k midiChannelKey) []float64 {
	from := math.Max(0, n.Start-bendWindow)
	to := n.End + bendWindow
	semitones := []float64{}
	for _, b := range c.bends[k] {
		if b.seconds >= from && b.seconds <= to {
			semitones = append(semitones, b.semitones)
		}
	}
	return semitones
}

// bendShape reads a bend and vibrato out of the pitch bend samples around
// one note. A steady offset is not a bend; the pitch has to move.
func bendShape(semitones []float64) (bend float64, vibrato bool, depth float64) {
	if len(semitones) > 0 {
		hi, lo := floats.Max(semitones), floats.Min(semitones)
		if hi-lo > minBendRange {
			bend = hi
			if math.Abs(lo) > math.Abs(hi) {
				bend = lo
			}
		}
	}

	if len(semitones) >= minVibratoSamples {
		mean, std := stat.PopMeanStdDev(semitones, nil)
		if std > minVibratoStdDev && signChanges(semitones, mean) >= minVibratoCrossings {
			vibrato = true
			depth = math.Min(1, std*5)
		}
	}
	return roundTo(bend, 3), vibrato, roundTo(depth, 3)
}

// signChanges counts how often the sign of v-mean changes between
// neighbours, passing through zero included.
func signChanges(values []float64, mean float64) int {
	changes := 0
	for i := 1; i < len(values); i++ {
		if sign(values[i]-mean) != sign(values[i-1]-mean) {
			changes++
		}
	}
	return changes
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func (c *midiNoteCollector) transcription() *transcription {
	notes := make([]Note, len(c.notes))
	for i, n := range c.notes {
		n.BendValue, n.IsVibrato, n.VibratoDepth = bendShape(c.bendsAround(n, c.noteChannels[i]))
		notes[i] = n
	}
	sortNotes(notes)

	pitchBends := []bendSample{}
	for _, bends := range c.bends {
		for _, b := range bends {
			pitchBends = append(pitchBends, bendSample{b.seconds, b.semitones})
		}
	}
	sort.SliceStable(pitchBends, func(i, j int) bool {
		return pitchBends[i].Time < pitchBends[j].Time
	})

	duration := 0.0
	for _, n := range notes {
		if n.End > duration {
			duration = n.End
		}
	}
	return &transcription{
		Duration:      duration,
		Notes:         notes,
		HandPositions: []handPosition{},
		PitchBends:    pitchBends,
	}
}

type midiTrackSummary struct {
	index int
	name  string
	notes int
}

func (s midiTrackSummary) Title() string {
	if s.name == "" {
		return fmt.Sprintf("Track %d", s.index)
	}
	return fmt.Sprintf("Track %d: %s", s.index, s.name)
}

func (s midiTrackSummary) Description() string {
	return fmt.Sprintf("%d %s", s.notes, pluralizeWithS(s.notes, "note"))
}

func (s midiTrackSummary) FilterValue() string { return s.name }

var _ list.Item = midiTrackSummary{}

// midiTrackSummaries lists the tracks of a MIDI file that contain notes.
func midiTrackSummaries(filePath string) (summaries []midiTrackSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("failed to read midi file %s: %v", filePath, r)
		}
	}()

	file, err := smf.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read midi file %s", filePath)
	}

	summaries = []midiTrackSummary{}
	for i, events := range file.Tracks {
		summary := midiTrackSummary{index: i}
		for _, event := range events {
			var ch, key, vel uint8
			var name string
			switch {
			case event.Message.GetNoteOn(&ch, &key, &vel):
				if vel > 0 {
					summary.notes++
				}
			case event.Message.GetMetaTrackName(&name):
				summary.name = name
			}
		}
		if summary.notes > 0 {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

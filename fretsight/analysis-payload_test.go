package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "duration": 3.5,
  "notes": [
    {"start": 1.0, "end": 2.0, "pitch": 57, "velocity": 90, "bend_value": 0.5, "is_vibrato": true, "vibrato_depth": 0.2, "string": 3, "fret": 2},
    {"start": 0.0, "end": 1.0, "pitch": 40, "velocity": 80}
  ],
  "hand_positions": [{"time": 0, "center_fret": 0}, {"time": 1, "center_fret": 2}],
  "pitch_bends": [{"time": 1.2, "pitch": 0.5}]
}`

func TestParsePayload(t *testing.T) {
	tr, err := ParsePayload(strings.NewReader(samplePayload))
	require.NoError(t, err)

	assert.Equal(t, 3.5, tr.Duration)
	require.Len(t, tr.Notes, 2)
	assert.Equal(t, 40, tr.Notes[0].Pitch, "notes are sorted by start")
	assert.Equal(t, unpositioned{}, tr.Notes[0].Fingering)

	second := tr.Notes[1]
	assert.Equal(t, positioned{fretPosition{3, 2}}, second.Fingering)
	assert.Equal(t, 0.5, second.BendValue)
	assert.True(t, second.IsVibrato)
	assert.Equal(t, 0.2, second.VibratoDepth)

	assert.Equal(t, []handPosition{{0, 0}, {1, 2}}, tr.HandPositions)
	assert.Equal(t, []bendSample{{1.2, 0.5}}, tr.PitchBends)
	assert.Equal(t, 1, tr.positionedCount())
}

func TestParsePayload_OptionalSeries(t *testing.T) {
	tr, err := ParsePayload(strings.NewReader(`{"duration": 1, "notes": []}`))
	require.NoError(t, err)
	assert.Empty(t, tr.Notes)
	assert.Empty(t, tr.HandPositions)
	assert.Empty(t, tr.PitchBends)
}

func TestParsePayload_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":             `{"duration": `,
		"missing duration":     `{"notes": []}`,
		"missing notes":        `{"duration": 1}`,
		"missing pitch":        `{"duration": 1, "notes": [{"start": 0, "end": 1, "velocity": 1}]}`,
		"end before start":     `{"duration": 1, "notes": [{"start": 1, "end": 0.5, "pitch": 40, "velocity": 1}]}`,
		"string without fret":  `{"duration": 1, "notes": [{"start": 0, "end": 1, "pitch": 40, "velocity": 1, "string": 0}]}`,
		"fret out of range":    `{"duration": 1, "notes": [{"start": 0, "end": 1, "pitch": 40, "velocity": 1, "string": 0, "fret": 23}]}`,
		"string out of range":  `{"duration": 1, "notes": [{"start": 0, "end": 1, "pitch": 40, "velocity": 1, "string": 6, "fret": 0}]}`,
		"hands out of order":   `{"duration": 1, "notes": [], "hand_positions": [{"time": 1, "center_fret": 0}, {"time": 0, "center_fret": 2}]}`,
		"bends out of order":   `{"duration": 1, "notes": [], "pitch_bends": [{"time": 1, "pitch": 0}, {"time": 0.5, "pitch": 1}]}`,
		"wrong type for pitch": `{"duration": 1, "notes": [{"start": 0, "end": 1, "pitch": "E", "velocity": 1}]}`,
		"hand without fret":    `{"duration": 1, "notes": [], "hand_positions": [{"time": 0.5}]}`,
		"hand without time":    `{"duration": 1, "notes": [], "hand_positions": [{"center_fret": 7}]}`,
		"bend without pitch":   `{"duration": 1, "notes": [], "pitch_bends": [{"time": 0.5}]}`,
		"empty bend":           `{"duration": 1, "notes": [], "pitch_bends": [{}]}`,
	}
	for name, payload := range cases {
		_, err := ParsePayload(strings.NewReader(payload))
		if assert.Error(t, err, name) {
			assert.True(t, errors.Is(err, errMalformedPayload), "%s: %v", name, err)
		}
	}
}

func TestWritePayload_RoundTripsFingerings(t *testing.T) {
	tr, err := ParsePayload(strings.NewReader(samplePayload))
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WritePayload(buf, tr))

	again, err := ParsePayload(buf)
	require.NoError(t, err)
	assert.Equal(t, tr, again)
}

func TestDescribeTranscription(t *testing.T) {
	tr, err := ParsePayload(strings.NewReader(samplePayload))
	require.NoError(t, err)
	assert.Equal(t, "0:03.5, 2 notes (1 positioned), 2 hand positions, 1 bend sample", describeTranscription(tr))
}

func TestEmbeddedDemosParse(t *testing.T) {
	names, err := listDemos()
	require.NoError(t, err)
	require.Contains(t, names, defaultDemo)

	for _, name := range names {
		tr, err := loadDemoTranscription(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, tr.Notes, name)
	}

	_, err = loadDemoTranscription("nope")
	assert.Error(t, err)
}

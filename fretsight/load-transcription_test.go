package main

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func updateLoad(t *testing.T, m loadTranscriptionModel, msg tea.Msg) (loadTranscriptionModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	lm, ok := next.(loadTranscriptionModel)
	require.True(t, ok)
	return lm, cmd
}

func TestLoadModel_WaitsForAudio(t *testing.T) {
	m := initialLoadModel("test", playOptions{payloadPath: "x.json", audioPath: "x.ogg", track: -1}, defaultSettings(), nil)

	m, _ = updateLoad(t, m, loadedPayloadMsg{sampleTranscription(), nil})
	assert.False(t, m.finishedSuccessfully())

	m, _ = updateLoad(t, m, loadedAudioMsg{nil, os.ErrNotExist})
	assert.True(t, m.failed())
	assert.False(t, m.finishedSuccessfully())
	assert.Contains(t, m.View(), "Failed to load backing track")
}

func TestLoadModel_WithoutAudio(t *testing.T) {
	m := initialLoadModel("test", playOptions{payloadPath: "x.json", track: -1}, defaultSettings(), nil)
	m, _ = updateLoad(t, m, loadedPayloadMsg{sampleTranscription(), nil})
	require.True(t, m.finishedSuccessfully())

	pm := createPlayModelFromLoadModel(m)
	_, silent := pm.transport.(*wallClockTransport)
	assert.True(t, silent)
	assert.Equal(t, 4.0, pm.transport.duration())
}

func TestLoadModel_ManualFretOption(t *testing.T) {
	fret := 9
	m := initialLoadModel("test", playOptions{payloadPath: "x.json", track: -1, manualFret: &fret}, defaultSettings(), nil)
	m, _ = updateLoad(t, m, loadedPayloadMsg{sampleTranscription(), nil})

	pm := createPlayModelFromLoadModel(m)
	assert.Equal(t, handModeManual, pm.session.hands.mode)
	assert.Equal(t, 9, pm.session.hands.manualFret)
}

func TestLoadModel_ChoosesMidiTrack(t *testing.T) {
	path := writeTestMidiFile(t)
	m := initialLoadModel("song", playOptions{payloadPath: path, track: -1}, defaultSettings(), nil)

	tracks, err := midiTrackSummaries(path)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	m, _ = updateLoad(t, m, loadedTracksMsg{tracks, nil})
	require.True(t, m.choosingTrack())

	m, cmd := updateLoad(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.choosingTrack())
	assert.Equal(t, 1, m.options.track)

	msg := cmd()
	loaded, ok := msg.(loadedPayloadMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)
	assert.Len(t, loaded.transcription.Notes, 2)
}

func TestPrepareTranscription_Plans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scale.json")
	data, err := readEmbeddedResourceFile("demos/scale.json")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	tr, err := prepareTranscription(playOptions{payloadPath: path, track: -1, plan: true}, standardTuning)
	require.NoError(t, err)
	assert.Equal(t, len(tr.Notes), tr.positionedCount())
	assert.NotEmpty(t, tr.HandPositions)
}

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestFrameServer(t *testing.T) (*httptest.Server, *manualClock) {
	stngs := defaultSettings()
	stngs.sweepInterval = 10 * time.Millisecond

	clock := &manualClock{now: tickTime(0)}
	fs := newFrameServer(sampleTranscription(), stngs)
	fs.clock = clock.Now

	server := httptest.NewServer(fs.router())
	t.Cleanup(server.Close)
	return server, clock
}

func getJSON(t *testing.T, url string, v interface{}) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestFrameServer_Transcription(t *testing.T) {
	server, _ := newTestFrameServer(t)

	var summary transcriptionSummary
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/transcription", &summary))
	assert.Equal(t, 4.0, summary.Duration)
	assert.Equal(t, 4, summary.NoteCount)
	assert.Equal(t, 3, summary.PositionedCount)
	assert.Equal(t, []int{40, 45, 50, 55, 59, 64}, summary.Tuning)
}

func TestFrameServer_Frame(t *testing.T) {
	server, _ := newTestFrameServer(t)

	var frame fretboardFrame
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/frame?t=1.5", &frame))
	require.Len(t, frame.Markers, 1)
	assert.Equal(t, 3, frame.Markers[0].String)
	assert.Equal(t, 2, frame.Markers[0].Fret)
	assert.Equal(t, "auto", frame.HandMode)

	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/frame?t=1.5&fret=12", &frame))
	assert.Equal(t, "manual", frame.HandMode)
	assert.Equal(t, 12, frame.Markers[0].Fret)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, server.URL+"/api/frame?t=soon", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, server.URL+"/api/frame", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, server.URL+"/api/frame?t=1&fret=x", nil))
}

func TestFrameServer_CORS(t *testing.T) {
	server, _ := newTestFrameServer(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/transcription", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestFrameServer_TrailSession(t *testing.T) {
	server, clock := newTestFrameServer(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/trail"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	require.NoError(t, conn.WriteJSON(trailControl{CurrentTime: 0.5, Playing: true}))
	var frame fretboardFrame
	require.NoError(t, conn.ReadJSON(&frame))
	require.Len(t, frame.Markers, 1)
	assert.False(t, frame.Markers[0].Fading)

	clock.Set(tickTime(1))
	require.NoError(t, conn.WriteJSON(trailControl{CurrentTime: 1.5, Playing: true}))
	require.NoError(t, conn.ReadJSON(&frame))
	require.Len(t, frame.Markers, 2)
	fading, ok := frame.markerAt(0, 0)
	require.True(t, ok)
	assert.True(t, fading.Fading)

	// no more controls: the server side sweep has to clear the fade
	clock.Set(tickTime(7))
	require.NoError(t, conn.ReadJSON(&frame))
	require.Len(t, frame.Markers, 1)
	_, ok = frame.markerAt(0, 0)
	assert.False(t, ok)

	manual := 12
	require.NoError(t, conn.WriteJSON(trailControl{CurrentTime: 1.5, ManualFret: &manual}))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "manual", frame.HandMode)
	assert.Equal(t, 12, frame.CenterFret)
}

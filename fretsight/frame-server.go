package main

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

// frameServer hands fretboard frames to browser renderers. Every websocket
// connection gets its own session, owned by the handler goroutine.
type frameServer struct {
	transcription *transcription
	settings      settings
	upgrader      websocket.Upgrader
	clock         func() time.Time
}

type transcriptionSummary struct {
	Duration          float64 `json:"duration"`
	NoteCount         int     `json:"note_count"`
	PositionedCount   int     `json:"positioned_count"`
	HandPositionCount int     `json:"hand_position_count"`
	PitchBendCount    int     `json:"pitch_bend_count"`
	Tuning            []int   `json:"tuning"`
}

// trailControl is what a client sends once per rendered frame. A missing
// manual_fret means automatic hand tracking.
type trailControl struct {
	CurrentTime float64 `json:"current_time"`
	Playing     bool    `json:"playing"`
	ManualFret  *int    `json:"manual_fret"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newFrameServer(tr *transcription, stngs settings) *frameServer {
	return &frameServer{
		transcription: tr,
		settings:      stngs,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clock: time.Now,
	}
}

func (s *frameServer) router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transcription", s.handleTranscription).Methods(http.MethodGet)
	api.HandleFunc("/frame", s.handleFrame).Methods(http.MethodGet)
	api.HandleFunc("/trail", s.handleTrail).Methods(http.MethodGet)
	return cors.AllowAll().Handler(router)
}

func (s *frameServer) listenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.settings.listenAddr,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("serving frames", "addr", s.settings.listenAddr, "summary", describeTranscription(s.transcription))
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{msg})
}

func (s *frameServer) handleTranscription(w http.ResponseWriter, r *http.Request) {
	tr := s.transcription
	writeJSON(w, http.StatusOK, transcriptionSummary{
		Duration:          tr.Duration,
		NoteCount:         len(tr.Notes),
		PositionedCount:   tr.positionedCount(),
		HandPositionCount: len(tr.HandPositions),
		PitchBendCount:    len(tr.PitchBends),
		Tuning:            s.settings.tuning[:],
	})
}

// handleFrame resolves one instant without any trail.
func (s *frameServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	t, err := strconv.ParseFloat(query.Get("t"), 64)
	if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
		writeError(w, http.StatusBadRequest, "t must be a number of seconds")
		return
	}

	session := newFretboardSession(s.transcription, s.settings)
	if fretParam := query.Get("fret"); fretParam != "" {
		fret, err := strconv.Atoi(fretParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "fret must be an integer")
			return
		}
		session = session.withHands(session.hands.withManual(fret))
	}

	writeJSON(w, http.StatusOK, session.snapshotFrame(t))
}

func (s *frameServer) handleTrail(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	logger := log.With("conn", uuid.NewString())
	logger.Info("trail session opened", "remote", r.RemoteAddr)
	s.runTrailSession(conn, logger)
}

func (s *frameServer) runTrailSession(conn *websocket.Conn, logger *log.Logger) {
	defer conn.Close()

	controls := make(chan trailControl)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			var c trailControl
			if err := conn.ReadJSON(&c); err != nil {
				readErr <- err
				return
			}
			select {
			case controls <- c:
			case <-done:
				return
			}
		}
	}()

	session := newFretboardSession(s.transcription, s.settings)
	playing := false

	// the sweep ticker only exists while something is fading
	var sweepTicker *time.Ticker
	var sweepC <-chan time.Time
	stopSweep := func() {
		if sweepTicker != nil {
			sweepTicker.Stop()
			sweepTicker = nil
			sweepC = nil
		}
	}
	defer stopSweep()
	updateSweep := func() {
		if !session.needsSweep() {
			stopSweep()
		} else if sweepTicker == nil {
			sweepTicker = time.NewTicker(s.settings.sweepInterval)
			sweepC = sweepTicker.C
		}
	}

	for {
		select {
		case c := <-controls:
			if c.Playing != playing {
				logger.Debug("client playback changed", "playing", c.Playing, "time", c.CurrentTime)
				playing = c.Playing
			}

			if c.ManualFret != nil {
				session = session.withHands(session.hands.withManual(*c.ManualFret))
			} else {
				session = session.withHands(session.hands.withAutomatic())
			}

			now := s.clock()
			session, _ = session.tick(c.CurrentTime, now)
			if err := conn.WriteJSON(session.frame(now)); err != nil {
				logger.Warn("failed to send frame", "err", err)
				return
			}
			updateSweep()

		case <-sweepC:
			now := s.clock()
			var removed []fretPosition
			session, removed = session.sweep(now)
			if len(removed) > 0 {
				if err := conn.WriteJSON(session.frame(now)); err != nil {
					logger.Warn("failed to send frame", "err", err)
					return
				}
			}
			updateSweep()

		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("trail session ended", "err", err)
			} else {
				logger.Info("trail session closed")
			}
			return
		}
	}
}

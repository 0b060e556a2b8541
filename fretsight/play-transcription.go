package main

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

const seekStep = 5.0 // seconds

type tickMsg time.Time

type sweepMsg time.Time

type playTranscriptionModel struct {
	title     string
	session   fretboardSession
	transport transport
	settings  settings

	frame          fretboardFrame
	sweepScheduled bool
	closed         bool
	simpleMode     bool
	width          int

	// "jump to" prompt, nil when closed
	jumpTi *textinput.Model
}

func newPlayTranscriptionModel(title string, tr *transcription, tp transport, stngs settings) playTranscriptionModel {
	session := newFretboardSession(tr, stngs)
	return playTranscriptionModel{
		title:     title,
		session:   session,
		transport: tp,
		settings:  stngs,
		frame:     session.frame(time.Now()),
		width:     80,
	}
}

func createPlayModelFromLoadModel(lm loadTranscriptionModel) playTranscriptionModel {
	var tp transport
	if lm.audio != nil && lm.audio.track != nil {
		tp = newAudioTransport(lm.speaker, *lm.audio.track)
	} else {
		tp = newWallClockTransport(lm.payload.transcription.Duration, time.Now)
	}

	m := newPlayTranscriptionModel(lm.title, lm.payload.transcription, tp, lm.settings)
	if lm.options.manualFret != nil {
		m.session = m.session.withHands(m.session.hands.withManual(*lm.options.manualFret))
	}
	return m
}

func (m playTranscriptionModel) Init() tea.Cmd {
	m.transport.setPlaying(true)
	return timerCmd(m.settings.frameInterval)
}

func timerCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func sweepCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return sweepMsg(t)
	})
}

// advance runs one session tick at the transport's current time.
func (m playTranscriptionModel) advance(now time.Time) playTranscriptionModel {
	m.session, _ = m.session.tick(m.transport.currentTime(), now)
	m.frame = m.session.frame(now)
	return m
}

// scheduleSweep starts the sweep loop if something is fading and no sweep
// is already pending.
func (m playTranscriptionModel) scheduleSweep() (playTranscriptionModel, tea.Cmd) {
	if m.closed || m.sweepScheduled || !m.session.needsSweep() {
		return m, nil
	}
	m.sweepScheduled = true
	return m, sweepCmd(m.settings.sweepInterval)
}

func (m playTranscriptionModel) teardown() playTranscriptionModel {
	if m.closed {
		return m
	}
	log.Info("stopping playback", "time", formatPlaybackTime(m.transport.currentTime()))
	m.transport.setPlaying(false)
	m.transport.close()
	m.closed = true
	return m
}

func (m playTranscriptionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.closed {
		return m, nil
	}

	switch msg := msg.(type) {
	case tickMsg:
		// paused playback keeps ticking without moving the trail
		if m.transport.playing() {
			m = m.advance(time.Time(msg))
		} else {
			m.frame = m.session.frame(time.Time(msg))
		}
		var sweep tea.Cmd
		m, sweep = m.scheduleSweep()
		return m, tea.Batch(timerCmd(m.settings.frameInterval), sweep)

	case sweepMsg:
		m.sweepScheduled = false
		now := time.Time(msg)
		m.session, _ = m.session.sweep(now)
		m.frame = m.session.frame(now)
		return m.scheduleSweep()

	case tea.KeyMsg:
		if m.jumpTi != nil {
			return m.handleJumpKey(msg)
		}
		return m.handleKey(msg.String())

	case tea.WindowSizeMsg:
		m.width = msg.Width

	default:
		if m.jumpTi != nil {
			ti, tiCmd := m.jumpTi.Update(msg)
			m.jumpTi = &ti
			return m, tiCmd
		}
	}
	return m, nil
}

func (m playTranscriptionModel) openJumpPrompt() (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.Prompt = "jump to: "
	ti.Placeholder = "m:ss or seconds"
	ti.CharLimit = 12
	ti.Width = 16
	ti.Focus()
	m.jumpTi = &ti
	return m, textinput.Blink
}

func (m playTranscriptionModel) handleJumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m = m.teardown()
		return m, tea.Quit
	case "esc":
		m.jumpTi = nil
		return m, nil
	case "enter":
		text := m.jumpTi.Value()
		m.jumpTi = nil
		target, err := parsePlaybackTime(text)
		if err != nil {
			log.Warn("ignoring jump", "input", text, "err", err)
			return m, nil
		}
		log.Info("jumping", "to", formatPlaybackTime(target))
		m.transport.seek(target)
		m = m.advance(time.Now())
		return m.scheduleSweep()
	}

	ti, tiCmd := m.jumpTi.Update(msg)
	m.jumpTi = &ti
	return m, tiCmd
}

func (m playTranscriptionModel) handleKey(keyName string) (tea.Model, tea.Cmd) {
	switch keyName {
	case "q", "ctrl+c":
		m = m.teardown()
		return m, tea.Quit
	case " ", "space":
		m.transport.setPlaying(!m.transport.playing())
		log.Info("playback toggled", "playing", m.transport.playing())
	case "left":
		m.transport.seek(m.transport.currentTime() - seekStep)
	case "right":
		m.transport.seek(m.transport.currentTime() + seekStep)
	case "m":
		m.session = m.session.withHands(m.session.hands.toggled())
	case "up":
		m.session = m.session.withHands(m.session.hands.nudged(1))
	case "down":
		m.session = m.session.withHands(m.session.hands.nudged(-1))
	case "0":
		m.simpleMode = !m.simpleMode
		return m, nil
	case "g":
		return m.openJumpPrompt()
	case "+", "=", "-", "x":
		m.handleVolumeKey(keyName)
		return m, nil
	default:
		return m, nil
	}

	// seeks and hand changes show up at once, even while paused
	m = m.advance(time.Now())
	return m.scheduleSweep()
}

func (m playTranscriptionModel) handleVolumeKey(keyName string) {
	vc, ok := m.transport.(volumeControl)
	if !ok {
		return
	}
	switch keyName {
	case "+", "=":
		log.Info("volume", "level", vc.adjustVolume(volumeStep))
	case "-":
		log.Info("volume", "level", vc.adjustVolume(-volumeStep))
	case "x":
		log.Info("volume", "muted", vc.toggleMute())
	}
}

func (m playTranscriptionModel) songIsFinished() bool {
	return !m.transport.playing() && m.transport.currentTime() >= m.transport.duration()
}

package main

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

// transport is the playback clock the fretboard follows. Time is in seconds
// from the start of the recording.
type transport interface {
	currentTime() float64
	playing() bool
	setPlaying(playing bool)
	seek(seconds float64)
	duration() float64
	close()
}

// wallClockTransport plays silently, advancing with the wall clock.
type wallClockTransport struct {
	clock     func() time.Time
	length    float64
	offset    float64 // position when last started or paused
	startedAt time.Time
	running   bool
}

func newWallClockTransport(length float64, clock func() time.Time) *wallClockTransport {
	if clock == nil {
		clock = time.Now
	}
	return &wallClockTransport{clock: clock, length: length}
}

func (w *wallClockTransport) currentTime() float64 {
	if !w.running {
		return w.offset
	}
	t := w.offset + w.clock().Sub(w.startedAt).Seconds()
	if t >= w.length {
		return w.length
	}
	return t
}

func (w *wallClockTransport) playing() bool {
	return w.running && w.currentTime() < w.length
}

func (w *wallClockTransport) setPlaying(playing bool) {
	if playing == w.running {
		return
	}
	if playing {
		if w.offset >= w.length {
			w.offset = 0
		}
		w.startedAt = w.clock()
	} else {
		w.offset = w.currentTime()
	}
	w.running = playing
}

func (w *wallClockTransport) seek(seconds float64) {
	w.offset = clampFloat(seconds, 0, w.length)
	w.startedAt = w.clock()
}

func (w *wallClockTransport) duration() float64 {
	return w.length
}

func (w *wallClockTransport) close() {
	w.running = false
}

// audioTransport plays the backing track through the speaker and reports
// the position of the sample stream.
// volumeControl is implemented by transports that make sound.
type volumeControl interface {
	adjustVolume(delta float64) float64
	toggleMute() bool
}

const (
	minVolume  = -5.0
	maxVolume  = 2.0
	volumeStep = 0.5
)

type audioTransport struct {
	spkr    soundPlayer
	stream  beep.StreamSeeker
	ctrl    *beep.Ctrl
	volume  *effects.Volume
	format  beep.Format
	started bool
}

func newAudioTransport(spkr soundPlayer, track playableSound[beep.StreamSeeker]) *audioTransport {
	ctrl := &beep.Ctrl{Streamer: track.soundStream, Paused: true}
	return &audioTransport{
		spkr:   spkr,
		stream: track.soundStream,
		ctrl:   ctrl,
		volume: &effects.Volume{
			Streamer: ctrl,
			Base:     2,
			Volume:   0,
			Silent:   false,
		},
		format: track.format,
	}
}

func (a *audioTransport) currentTime() float64 {
	speaker.Lock()
	pos := a.stream.Position()
	speaker.Unlock()
	return a.format.SampleRate.D(pos).Seconds()
}

func (a *audioTransport) playing() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return a.started && !a.ctrl.Paused && a.stream.Position() < a.stream.Len()
}

func (a *audioTransport) setPlaying(playing bool) {
	if !a.started {
		if !playing {
			return
		}
		a.ctrl.Paused = false
		a.started = true
		a.spkr.play(a.volume, a.format)
		return
	}

	speaker.Lock()
	if playing && a.stream.Position() >= a.stream.Len() {
		a.stream.Seek(0)
	}
	a.ctrl.Paused = !playing
	speaker.Unlock()
}

func (a *audioTransport) seek(seconds float64) {
	speaker.Lock()
	defer speaker.Unlock()
	pos := a.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	a.stream.Seek(clampInt(pos, 0, a.stream.Len()))
}

func (a *audioTransport) duration() float64 {
	return a.format.SampleRate.D(a.stream.Len()).Seconds()
}

// adjustVolume changes the gain in powers of two and returns the new level.
func (a *audioTransport) adjustVolume(delta float64) float64 {
	speaker.Lock()
	defer speaker.Unlock()
	a.volume.Volume = clampFloat(a.volume.Volume+delta, minVolume, maxVolume)
	return a.volume.Volume
}

func (a *audioTransport) toggleMute() bool {
	speaker.Lock()
	defer speaker.Unlock()
	a.volume.Silent = !a.volume.Silent
	return a.volume.Silent
}

func (a *audioTransport) close() {
	a.spkr.clear()
}

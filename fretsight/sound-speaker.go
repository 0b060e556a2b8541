package main

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

type audioSpeaker struct {
	initialized bool
	format      beep.Format
	mu          sync.Mutex
}

type soundPlayer interface {
	play(stream beep.Streamer, format beep.Format)
	clear()
}

func (spkr *audioSpeaker) init(format beep.Format) error {
	bufSize := format.SampleRate.N(time.Second / 10)
	log.Info("initializing speaker", "sample_rate", format.SampleRate, "buffer", bufSize)
	if err := speaker.Init(format.SampleRate, bufSize); err != nil {
		return err
	}
	spkr.initialized = true
	spkr.format = format
	return nil
}

func (spkr *audioSpeaker) play(stream beep.Streamer, format beep.Format) {
	spkr.mu.Lock()
	defer spkr.mu.Unlock()

	if !spkr.initialized {
		if err := spkr.init(format); err != nil {
			log.Error("speaker init failed", "err", err)
			return
		}
	} else if format.SampleRate != spkr.format.SampleRate {
		log.Info("resampling for playback", "from", format.SampleRate, "to", spkr.format.SampleRate)
		stream = beep.Resample(4, format.SampleRate, spkr.format.SampleRate, stream)
	}

	speaker.Play(stream)
}

// resampleIfNeeded adopts the first format it sees as the speaker format.
func (spkr *audioSpeaker) resampleIfNeeded(stream beep.Streamer, oldFormat beep.Format) playableSound[beep.Streamer] {
	spkr.mu.Lock()
	defer spkr.mu.Unlock()

	result := stream
	if spkr.format.SampleRate == 0 {
		spkr.format = oldFormat
	} else if oldFormat.SampleRate != spkr.format.SampleRate {
		log.Info("resampling", "from", oldFormat.SampleRate, "to", spkr.format.SampleRate)
		result = beep.Resample(4, oldFormat.SampleRate, spkr.format.SampleRate, stream)
	}

	return playableSound[beep.Streamer]{
		soundStream: result,
		format:      spkr.format,
	}
}

func (spkr *audioSpeaker) resampleIntoBuffer(stream beep.Streamer, oldFormat beep.Format) playableSound[beep.StreamSeeker] {
	result := spkr.resampleIfNeeded(stream, oldFormat)
	buffered := bufferStreamer(result.soundStream, result.format)

	closeStreamSeeker(stream)

	return playableSound[beep.StreamSeeker]{
		soundStream: buffered,
		format:      result.format,
	}
}

func (spkr *audioSpeaker) clear() {
	spkr.mu.Lock()
	defer spkr.mu.Unlock()
	if spkr.initialized {
		speaker.Clear()
	}
}

package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
)

type playableSound[T beep.Streamer] struct {
	soundStream T
	format      beep.Format
}

type decoderFunc func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

func audioDecoderForFile(filePath string) decoderFunc {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ogg":
		return decodeVorbis
	case ".wav":
		return wavDecoder
	}
	return nil
}

func isSupportedAudioFile(filePath string) bool {
	return audioDecoderForFile(filePath) != nil
}

// wav.Decode takes a Reader, the rest of the decoders a ReadCloser
func wavDecoder(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	return wav.Decode(rc)
}

func openAudioFile(filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	decoder := audioDecoderForFile(filePath)
	if decoder == nil {
		return nil, beep.Format{}, errors.Errorf("unsupported audio file %s (want .ogg or .wav)", filePath)
	}

	// closed together with the returned StreamSeekCloser
	file, err := os.Open(filePath)
	if err != nil {
		return nil, beep.Format{}, err
	}

	streamer, format, err := decoder(file)
	if err != nil {
		file.Close()
		return nil, beep.Format{}, errors.Wrapf(err, "failed to decode %s", filePath)
	}
	return streamer, format, nil
}

func bufferStreamer(streamer beep.Streamer, format beep.Format) beep.StreamSeeker {
	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer.Streamer(0, buffer.Len())
}

func closeStreamSeeker(streamer beep.Streamer) {
	closer, ok := streamer.(beep.StreamSeekCloser)
	if ok && closer != nil {
		closer.Close()
	}
}

// loadBackingTrack decodes a whole audio file into memory at the speaker's
// sample rate so it can be seeked freely.
func loadBackingTrack(spkr *audioSpeaker, filePath string) (playableSound[beep.StreamSeeker], error) {
	streamer, format, err := openAudioFile(filePath)
	if err != nil {
		return playableSound[beep.StreamSeeker]{}, err
	}
	return spkr.resampleIntoBuffer(streamer, format), nil
}

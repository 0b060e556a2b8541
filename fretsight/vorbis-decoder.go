package main

import (
	"io"

	"github.com/faiface/beep"
	"github.com/jfreymuth/oggvorbis"
	"github.com/pkg/errors"
)

const vorbisPrecision = 2

// decodeVorbis streams an ogg/vorbis backing track. Mono recordings are
// played on both speaker channels, which beep's own vorbis package does not
// do. Seeking requires rc to be an io.Seeker.
func decodeVorbis(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	r, err := oggvorbis.NewReader(rc)
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "ogg/vorbis")
	}
	if r.Channels() < 1 || r.Channels() > 2 {
		return nil, beep.Format{}, errors.Errorf("ogg/vorbis: %d channels not supported", r.Channels())
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(r.SampleRate()),
		NumChannels: r.Channels(),
		Precision:   vorbisPrecision,
	}
	return &vorbisStreamer{closer: rc, reader: r, frame: make([]float32, r.Channels())}, format, nil
}

type vorbisStreamer struct {
	closer io.Closer
	reader *oggvorbis.Reader
	frame  []float32 // one sample per channel
	err    error
}

func (v *vorbisStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if v.err != nil {
		return 0, false
	}
	for i := range samples {
		read, err := v.reader.Read(v.frame)
		if read == len(v.frame) {
			left := float64(v.frame[0])
			right := left
			if len(v.frame) > 1 {
				right = float64(v.frame[1])
			}
			samples[i][0], samples[i][1] = left, right
			n++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			v.err = errors.Wrap(err, "ogg/vorbis")
			break
		}
	}
	return n, n > 0
}

func (v *vorbisStreamer) Err() error {
	return v.err
}

func (v *vorbisStreamer) Len() int {
	return int(v.reader.Length())
}

func (v *vorbisStreamer) Position() int {
	return int(v.reader.Position())
}

func (v *vorbisStreamer) Seek(p int) error {
	return errors.Wrap(v.reader.SetPosition(int64(p)), "ogg/vorbis")
}

func (v *vorbisStreamer) Close() error {
	return errors.Wrap(v.closer.Close(), "ogg/vorbis")
}

package main

type bendSample struct {
	Time  float64 `json:"time"`
	Pitch float64 `json:"pitch"` // signed offset in semitones
}

type bendOverlay struct {
	samples []bendSample // ascending by Time
}

func (b bendOverlay) bendAt(t float64) float64 {
	s, ok := lastAtOrBefore(b.samples, t, func(s bendSample) float64 { return s.Time })
	if !ok {
		return 0
	}
	return s.Pitch
}

func (b bendOverlay) empty() bool {
	return len(b.samples) == 0
}

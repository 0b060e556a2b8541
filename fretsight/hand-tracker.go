package main

import "github.com/charmbracelet/log"

const (
	defaultManualFret = 2
	maxManualFret     = 17

	// width of the "easy reach" box above the center fret
	handReach = 4
)

type handPosition struct {
	Time       float64 `json:"time"`
	CenterFret int     `json:"center_fret"`
}

type handMode int

const (
	handModeAutomatic handMode = iota
	handModeManual
)

func (m handMode) String() string {
	switch m {
	case handModeAutomatic:
		return "auto"
	case handModeManual:
		return "manual"
	}
	return "unknown"
}

// handTracker resolves the reference fret fingerings are biased towards.
// The mode only changes through withManual/withAutomatic; nothing in the
// data ever switches it.
type handTracker struct {
	positions  []handPosition // ascending by Time
	mode       handMode
	manualFret int
}

func newHandTracker(positions []handPosition, manualFret int) handTracker {
	return handTracker{
		positions:  positions,
		mode:       handModeAutomatic,
		manualFret: clampInt(manualFret, 0, maxManualFret),
	}
}

func (h handTracker) centerFret(t float64) int {
	if h.mode == handModeManual {
		return h.manualFret
	}
	return h.automaticCenterFret(t)
}

func (h handTracker) automaticCenterFret(t float64) int {
	p, ok := lastAtOrBefore(h.positions, t, func(p handPosition) float64 { return p.Time })
	if !ok {
		return 0
	}
	return p.CenterFret
}

func (h handTracker) withManual(fret int) handTracker {
	fret = clampInt(fret, 0, maxManualFret)
	if h.mode != handModeManual {
		log.Info("hand tracking switched", "mode", handModeManual, "fret", fret)
	}
	h.mode = handModeManual
	h.manualFret = fret
	return h
}

func (h handTracker) withAutomatic() handTracker {
	if h.mode != handModeAutomatic {
		log.Info("hand tracking switched", "mode", handModeAutomatic)
	}
	h.mode = handModeAutomatic
	return h
}

func (h handTracker) toggled() handTracker {
	if h.mode == handModeManual {
		return h.withAutomatic()
	}
	return h.withManual(h.manualFret)
}

// nudged moves the manual fret; automatic mode is left alone.
func (h handTracker) nudged(delta int) handTracker {
	if h.mode != handModeManual {
		return h
	}
	return h.withManual(h.manualFret + delta)
}

type handWindow struct {
	low  int
	high int
}

func (h handTracker) window(t float64) handWindow {
	center := h.centerFret(t)
	return handWindow{
		low:  clampInt(center, 0, maxFret),
		high: clampInt(center+handReach, 0, maxFret),
	}
}

func (w handWindow) contains(fret int) bool {
	return fret >= w.low && fret <= w.high
}

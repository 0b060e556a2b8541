package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v int, lo int, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v float64, lo float64, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lastAtOrBefore returns the last element of a time-ascending series whose
// time is <= t.
func lastAtOrBefore[T any](series []T, t float64, timeOf func(T) float64) (T, bool) {
	i := sort.Search(len(series), func(i int) bool {
		return timeOf(series[i]) > t
	})
	if i == 0 {
		var zero T
		return zero, false
	}
	return series[i-1], true
}

func isNonDecreasing[T any](series []T, timeOf func(T) float64) bool {
	for i := 1; i < len(series); i++ {
		if timeOf(series[i]) < timeOf(series[i-1]) {
			return false
		}
	}
	return true
}

// formatPlaybackTime renders seconds as m:ss.t
func formatPlaybackTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds * float64(time.Second))
	minutes := int(d / time.Minute)
	rest := d - time.Duration(minutes)*time.Minute
	return fmt.Sprintf("%d:%04.1f", minutes, rest.Seconds())
}

// parsePlaybackTime accepts plain seconds ("83.5") or m:ss ("1:23.5").
func parsePlaybackTime(text string) (float64, error) {
	text = strings.TrimSpace(text)
	minutes := 0
	if i := strings.Index(text, ":"); i >= 0 {
		m, err := strconv.Atoi(text[:i])
		if err != nil || m < 0 {
			return 0, errors.Errorf("invalid minutes in %q", text)
		}
		minutes = m
		text = text[i+1:]
	}
	seconds, err := strconv.ParseFloat(text, 64)
	if err != nil || seconds < 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return 0, errors.Errorf("invalid time %q", text)
	}
	return float64(minutes)*60 + seconds, nil
}

func pluralizeWithS(count int, singular string) string {
	return pluralize(count, singular, singular+"s")
}

func pluralize(count int, singular string, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

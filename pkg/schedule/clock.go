// Package schedule derives the rift state for a given instant.
package schedule

import (
	"fmt"
	"time"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// Evaluate returns the rift state at now. It is a pure function of its
// arguments; def is expected to be validated.
func Evaluate(now time.Time, def models.ScheduleDefinition) models.ClockState {
	next, open := nextTransition(now, def)

	remaining := next.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	remaining = remaining.Truncate(time.Second)

	return models.ClockState{
		Now:            now,
		IsOpen:         open,
		NextTransition: next,
		Remaining:      remaining,
		Countdown:      FormatCountdown(remaining),
	}
}

func nextTransition(now time.Time, def models.ScheduleDefinition) (time.Time, bool) {
	nowSeconds := now.Hour()*3600 + now.Minute()*60 + now.Second()
	year, month, day := now.Date()
	loc := now.Location()
	windowSeconds := def.DurationMinutes * 60

	// Window is [start, start+duration)
	for _, h := range def.Hours {
		start := h * 3600
		if nowSeconds >= start && nowSeconds < start+windowSeconds {
			// time.Date normalises 23:60 into tomorrow 00:00
			return time.Date(year, month, day, h, def.DurationMinutes, 0, 0, loc), true
		}
	}

	for _, h := range def.Hours {
		if h*3600 > nowSeconds {
			return time.Date(year, month, day, h, 0, 0, 0, loc), false
		}
	}

	return time.Date(year, month, day+1, def.Hours[0], 0, 0, 0, loc), false
}

// FormatCountdown renders d as HH:MM:SS. The hour field is not wrapped at 24.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Occurrences returns the opening instants of def on the day of t, in order
func Occurrences(t time.Time, def models.ScheduleDefinition) []time.Time {
	year, month, day := t.Date()
	result := make([]time.Time, 0, len(def.Hours))
	for _, h := range def.Hours {
		result = append(result, time.Date(year, month, day, h, 0, 0, 0, t.Location()))
	}
	return result
}

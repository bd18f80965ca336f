package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSchedule is returned for malformed schedule definitions
var ErrInvalidSchedule = errors.New("invalid schedule")

// Default rift schedule
var (
	DefaultRiftHours       = []int{2, 5, 8, 11, 14, 17, 20, 23}
	DefaultDurationMinutes = 60
)

// ScheduleDefinition describes the daily occurrences of the rift
type ScheduleDefinition struct {
	Hours           []int `yaml:"hours"`            // start hours, strictly increasing, 0-23
	DurationMinutes int   `yaml:"duration_minutes"` // how long every occurrence stays open
}

// DefaultSchedule returns the standard rift schedule
func DefaultSchedule() ScheduleDefinition {
	hours := make([]int, len(DefaultRiftHours))
	copy(hours, DefaultRiftHours)
	return ScheduleDefinition{Hours: hours, DurationMinutes: DefaultDurationMinutes}
}

// NewScheduleDefinition builds a validated schedule
func NewScheduleDefinition(hours []int, durationMinutes int) (ScheduleDefinition, error) {
	def := ScheduleDefinition{
		Hours:           append([]int(nil), hours...),
		DurationMinutes: durationMinutes,
	}
	if err := def.Validate(); err != nil {
		return ScheduleDefinition{}, err
	}
	return def, nil
}

// Duration is how long each occurrence stays open
func (s ScheduleDefinition) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Validate checks hours are strictly increasing within a day and that the
// duration keeps occurrences from overlapping.
func (s ScheduleDefinition) Validate() error {
	if len(s.Hours) == 0 {
		return fmt.Errorf("%w: no start hours", ErrInvalidSchedule)
	}
	if s.DurationMinutes <= 0 || s.DurationMinutes > 60 {
		return fmt.Errorf("%w: duration %d minutes not in (0,60]", ErrInvalidSchedule, s.DurationMinutes)
	}

	for i, h := range s.Hours {
		if h < 0 || h > 23 {
			return fmt.Errorf("%w: hour %d out of range", ErrInvalidSchedule, h)
		}
		if i > 0 && h <= s.Hours[i-1] {
			return fmt.Errorf("%w: hours must be strictly increasing (%d after %d)", ErrInvalidSchedule, h, s.Hours[i-1])
		}
	}

	return nil
}

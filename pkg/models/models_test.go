package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleValidate(t *testing.T) {
	tests := []struct {
		name     string
		hours    []int
		duration int
		wantErr  bool
	}{
		{"default", DefaultRiftHours, 60, false},
		{"single hour", []int{0}, 30, false},
		{"empty", nil, 60, true},
		{"zero duration", []int{2}, 0, true},
		{"duration over an hour", []int{2, 5}, 61, true},
		{"hour too large", []int{2, 24}, 60, true},
		{"negative hour", []int{-1, 2}, 60, true},
		{"not increasing", []int{5, 2}, 60, true},
		{"duplicate", []int{2, 2}, 60, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduleDefinition(tt.hours, tt.duration)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSchedule)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewScheduleDefinitionCopiesHours(t *testing.T) {
	hours := []int{1, 2}
	def, err := NewScheduleDefinition(hours, 30)
	require.NoError(t, err)

	hours[0] = 9
	assert.Equal(t, []int{1, 2}, def.Hours)
}

func TestDefaultScheduleIsIndependent(t *testing.T) {
	a := DefaultSchedule()
	a.Hours[0] = 3
	assert.Equal(t, 2, DefaultSchedule().Hours[0])
}

func TestAlertConfigValidate(t *testing.T) {
	require.NoError(t, DefaultAlertConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*AlertConfig)
	}{
		{"pre-alert too small", func(c *AlertConfig) { c.PreAlertMinutes = 4 }},
		{"pre-alert too large", func(c *AlertConfig) { c.PreAlertMinutes = 31 }},
		{"volume negative", func(c *AlertConfig) { c.Volume = -1 }},
		{"volume too large", func(c *AlertConfig) { c.Volume = 101 }},
		{"custom without url", func(c *AlertConfig) { c.Sound = SoundChoice{Kind: SoundCustom} }},
		{"unknown sound", func(c *AlertConfig) { c.Sound.Kind = "bell" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAlertConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidAlertConfig)
		})
	}
}

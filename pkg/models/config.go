package models

import (
	"errors"
	"fmt"
)

// ErrInvalidAlertConfig is returned when alert settings are out of range
var ErrInvalidAlertConfig = errors.New("invalid alert config")

// Pre-alert and volume bounds
const (
	MinPreAlertMinutes = 5
	MaxPreAlertMinutes = 30
	MinVolume          = 0
	MaxVolume          = 100
)

// SoundKind selects between the built-in tone and a custom sound
type SoundKind string

const (
	SoundDefault SoundKind = "default"
	SoundCustom  SoundKind = "custom"
)

// SoundChoice is the alert sound selected by the user
type SoundChoice struct {
	Kind SoundKind `yaml:"sound"`
	URL  string    `yaml:"sound_url,omitempty"` // only used for SoundCustom
}

// AlertConfig holds the user's alert settings
type AlertConfig struct {
	Enabled         bool        `yaml:"enabled"`
	PreAlertMinutes int         `yaml:"pre_alert_minutes"` // 5-30
	Sound           SoundChoice `yaml:",inline"`
	Volume          int         `yaml:"volume"` // 0-100
	Use24Hour       bool        `yaml:"use_24_hour"`
}

// DefaultAlertConfig returns the settings a fresh session starts with
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		Enabled:         false,
		PreAlertMinutes: 10,
		Sound:           SoundChoice{Kind: SoundDefault},
		Volume:          50,
		Use24Hour:       true,
	}
}

// Validate checks the alert settings are within their allowed ranges
func (c AlertConfig) Validate() error {
	if c.PreAlertMinutes < MinPreAlertMinutes || c.PreAlertMinutes > MaxPreAlertMinutes {
		return fmt.Errorf("%w: pre-alert %d minutes not in [%d,%d]",
			ErrInvalidAlertConfig, c.PreAlertMinutes, MinPreAlertMinutes, MaxPreAlertMinutes)
	}
	if c.Volume < MinVolume || c.Volume > MaxVolume {
		return fmt.Errorf("%w: volume %d not in [%d,%d]", ErrInvalidAlertConfig, c.Volume, MinVolume, MaxVolume)
	}

	switch c.Sound.Kind {
	case SoundDefault:
	case SoundCustom:
		if c.Sound.URL == "" {
			return fmt.Errorf("%w: custom sound needs a url", ErrInvalidAlertConfig)
		}
	default:
		return fmt.Errorf("%w: unknown sound %q", ErrInvalidAlertConfig, c.Sound.Kind)
	}

	return nil
}

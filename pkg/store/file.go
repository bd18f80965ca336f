// Package store loads, saves and holds the notifier configuration.
package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// DefaultTickInterval is how often the rift state is re-evaluated
const DefaultTickInterval = time.Second

// MQTTConfig configures the optional MQTT alert publisher
type MQTTConfig struct {
	Broker   string `yaml:"broker"` // e.g. tcp://localhost:1883, empty disables
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id,omitempty"`
}

// FileConfig is the on-disk configuration
type FileConfig struct {
	Schedule     models.ScheduleDefinition `yaml:"schedule"`
	Alerts       models.AlertConfig        `yaml:"alerts"`
	TickInterval time.Duration             `yaml:"tick_interval"`
	MetricsAddr  string                    `yaml:"metrics_addr,omitempty"`
	MQTT         MQTTConfig                `yaml:"mqtt"`
	AutoStart    bool                      `yaml:"auto_start"`
}

// DefaultFileConfig returns the configuration used when no file exists
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Schedule:     models.DefaultSchedule(),
		Alerts:       models.DefaultAlertConfig(),
		TickInterval: DefaultTickInterval,
		MQTT:         MQTTConfig{Topic: "rift/alerts"},
	}
}

// Validate checks every section of the configuration
func (c FileConfig) Validate() error {
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	if err := c.Alerts.Validate(); err != nil {
		return err
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	return nil
}

// LoadFile reads the configuration at path on top of the defaults. A missing
// file yields the defaults.
func LoadFile(path string) (FileConfig, error) {
	cfg := DefaultFileConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveFile writes cfg to path
func SaveFile(path string, cfg FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

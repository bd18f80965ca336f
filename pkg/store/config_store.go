package store

import (
	"sync"
	"sync/atomic"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// ConfigStore holds the live alert settings. Readers take a snapshot per
// tick; writers replace the whole value after validation.
type ConfigStore struct {
	current atomic.Pointer[models.AlertConfig]

	mu        sync.Mutex // serialises writers
	listeners []func(models.AlertConfig)
}

// NewConfigStore creates a ConfigStore holding initial
func NewConfigStore(initial models.AlertConfig) (*ConfigStore, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	cs := &ConfigStore{}
	cs.current.Store(&initial)
	return cs, nil
}

// Snapshot returns a copy of the current settings
func (cs *ConfigStore) Snapshot() models.AlertConfig {
	return *cs.current.Load()
}

// Replace swaps in cfg if it is valid
func (cs *ConfigStore) Replace(cfg models.AlertConfig) error {
	_, err := cs.Update(func(c *models.AlertConfig) { *c = cfg })
	return err
}

// Update applies fn to a copy of the current settings and stores the result
// if it is valid. The previous settings stay in place on error.
func (cs *ConfigStore) Update(fn func(*models.AlertConfig)) (models.AlertConfig, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	next := *cs.current.Load()
	fn(&next)
	if err := next.Validate(); err != nil {
		return *cs.current.Load(), err
	}
	cs.current.Store(&next)

	for _, l := range cs.listeners {
		l(next)
	}
	return next, nil
}

// OnChange registers fn to be called after every successful update
func (cs *ConfigStore) OnChange(fn func(models.AlertConfig)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// Package ticker provides the cancellable repeating timer that drives the
// rift evaluation loop.
package ticker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// ErrStopped is returned when starting a ticker that was already stopped
var ErrStopped = errors.New("ticker stopped")

// Ticker runs a task immediately and then once every period until stopped.
// Runs never overlap: a run that would start while the previous one is
// still busy is skipped.
type Ticker struct {
	scheduler gocron.Scheduler
	period    time.Duration
	task      func()

	mu      sync.Mutex
	started bool
	stopped atomic.Bool
}

// Option configures a Ticker
type Option func(*options)

type options struct {
	clock clockwork.Clock
}

// WithClock sets the clock the underlying scheduler uses
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// New creates a Ticker for task
func New(period time.Duration, task func(), opts ...Option) (*Ticker, error) {
	if period <= 0 {
		return nil, fmt.Errorf("invalid tick period %s", period)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var schedOpts []gocron.SchedulerOption
	if o.clock != nil {
		schedOpts = append(schedOpts, gocron.WithClock(o.clock))
	}

	s, err := gocron.NewScheduler(schedOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Ticker{
		scheduler: s,
		period:    period,
		task:      task,
	}, nil
}

// Start schedules the first run immediately and one every period thereafter
func (t *Ticker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped.Load() {
		return ErrStopped
	}
	if t.started {
		return nil
	}

	_, err := t.scheduler.NewJob(
		gocron.DurationJob(t.period),
		gocron.NewTask(t.run),
		gocron.WithName("rift-tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create tick job: %w", err)
	}

	slog.Debug("Starting ticker", slog.Duration("period", t.period))
	t.scheduler.Start()
	t.started = true
	return nil
}

// Stop cancels all future runs and waits for a run in progress to finish.
// No run starts after Stop returns.
func (t *Ticker) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped.Swap(true) {
		return nil
	}

	slog.Debug("Stopping ticker")
	if err := t.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop ticker: %w", err)
	}
	return nil
}

func (t *Ticker) run() {
	if t.stopped.Load() {
		return
	}
	t.task()
}

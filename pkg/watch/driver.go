// Package watch runs the rift evaluation loop: once per tick it reads the
// clock, derives the rift state, decides on alerts and renders the result.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/borgmon/rift-notifier/pkg/alert"
	"github.com/borgmon/rift-notifier/pkg/metrics"
	"github.com/borgmon/rift-notifier/pkg/models"
	"github.com/borgmon/rift-notifier/pkg/schedule"
	"github.com/borgmon/rift-notifier/pkg/ticker"
)

// ConfigSource provides the alert settings for a tick
type ConfigSource interface {
	Snapshot() models.AlertConfig
}

// Dispatcher delivers a fired alert
type Dispatcher interface {
	Dispatch(ctx context.Context, alert models.Alert, cfg models.AlertConfig)
}

// Renderer shows the rift state, e.g. in the system tray
type Renderer interface {
	Render(state models.ClockState, cfg models.AlertConfig)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(state models.ClockState, cfg models.AlertConfig)

func (f RendererFunc) Render(state models.ClockState, cfg models.AlertConfig) { f(state, cfg) }

// Driver owns the alert history and evaluates one tick at a time
type Driver struct {
	clock      clockwork.Clock
	schedule   models.ScheduleDefinition
	config     ConfigSource
	dispatcher Dispatcher
	renderers  []Renderer
	recorder   metrics.Recorder

	mu      sync.Mutex
	history models.AlertFireHistory
	last    models.ClockState
}

// Option configures a Driver
type Option func(*Driver)

// WithClock replaces the wall clock
func WithClock(clock clockwork.Clock) Option {
	return func(d *Driver) { d.clock = clock }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r metrics.Recorder) Option {
	return func(d *Driver) { d.recorder = r }
}

// WithRenderer adds a renderer called after every tick
func WithRenderer(r Renderer) Option {
	return func(d *Driver) { d.renderers = append(d.renderers, r) }
}

// NewDriver creates a Driver. The schedule is validated here so a bad
// schedule fails at startup rather than on every tick.
func NewDriver(def models.ScheduleDefinition, config ConfigSource, dispatcher Dispatcher, opts ...Option) (*Driver, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		clock:      clockwork.NewRealClock(),
		schedule:   def,
		config:     config,
		dispatcher: dispatcher,
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Schedule returns the schedule the driver evaluates
func (d *Driver) Schedule() models.ScheduleDefinition { return d.schedule }

// State returns the state computed by the last tick
func (d *Driver) State() models.ClockState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Evaluate computes the current state without touching the alert history
func (d *Driver) Evaluate() models.ClockState {
	return schedule.Evaluate(d.clock.Now(), d.schedule)
}

// Tick runs one evaluation cycle. A panic inside the cycle is logged and
// swallowed so the loop keeps running.
func (d *Driver) Tick(ctx context.Context) (state models.ClockState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Tick failed", slog.Any("panic", r))
		}
		d.recorder.ObserveTickDuration(time.Since(start))
	}()

	cfg := d.config.Snapshot()
	state = schedule.Evaluate(d.clock.Now(), d.schedule)

	previous := d.last
	decision := alert.Tick(state, cfg, d.history)
	d.history = decision.History
	d.last = state

	if previous.IsOpen != state.IsOpen && !previous.Now.IsZero() {
		slog.Info("Rift state changed",
			slog.Bool("open", state.IsOpen),
			slog.Time("next_transition", state.NextTransition))
	}

	d.recorder.SetRiftOpen(state.IsOpen)
	d.recorder.SetSecondsToTransition(state.Remaining)

	if decision.FirePreAlert {
		d.fire(ctx, models.AlertKindPreAlert, state.NextTransition, state.Now, cfg)
	}
	if decision.FireOpenAlert {
		// While open NextTransition is the close instant
		opened := state.NextTransition.Add(-d.schedule.Duration())
		d.fire(ctx, models.AlertKindOpen, opened, state.Now, cfg)
	}

	for _, r := range d.renderers {
		r.Render(state, cfg)
	}
	return state
}

// TestAlert fires an alert of kind right away using the current settings,
// regardless of whether alerts are enabled.
func (d *Driver) TestAlert(ctx context.Context, kind models.AlertKind) error {
	switch kind {
	case models.AlertKindPreAlert, models.AlertKindOpen:
	default:
		return fmt.Errorf("unknown alert kind %q", kind)
	}

	state := d.Evaluate()
	d.fire(ctx, kind, state.NextTransition, state.Now, d.config.Snapshot())
	return nil
}

func (d *Driver) fire(ctx context.Context, kind models.AlertKind, occurrence, now time.Time, cfg models.AlertConfig) {
	a := alert.NewAlert(kind, occurrence, now, cfg)
	d.recorder.IncAlertFired(kind)
	if d.dispatcher != nil {
		d.dispatcher.Dispatch(ctx, a, cfg)
	}
}

// Run ticks every period until ctx is done. The first tick happens
// immediately; no tick runs after Run returns.
func (d *Driver) Run(ctx context.Context, period time.Duration) error {
	tk, err := ticker.New(period, func() { d.Tick(ctx) }, ticker.WithClock(d.clock))
	if err != nil {
		return err
	}
	if err := tk.Start(); err != nil {
		return err
	}

	slog.Info("Rift watch started",
		slog.Any("hours", d.schedule.Hours),
		slog.Int("duration_minutes", d.schedule.DurationMinutes),
		slog.String("timezone", schedule.TimezoneName(d.clock.Now())))

	<-ctx.Done()

	slog.Info("Rift watch stopping")
	return tk.Stop()
}

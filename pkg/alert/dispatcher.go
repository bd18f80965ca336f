package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// Sounder plays the alert sound. Implementations must not block for the
// duration of the sound.
type Sounder interface {
	Play(ctx context.Context, choice models.SoundChoice, volume int) error
}

// Notifier shows an OS level notification
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// FailureReporter receives collaborator failures so they can be surfaced to
// the user. It is never called with a nil error.
type FailureReporter func(alert models.Alert, err error)

// DeliveryError is what a FailureReporter receives: the collaborator that
// failed and its error.
type DeliveryError struct {
	Collaborator string // "sound" or "notification"
	Err          error
}

func (e *DeliveryError) Error() string { return e.Collaborator + ": " + e.Err.Error() }

func (e *DeliveryError) Unwrap() error { return e.Err }

// FailureFeed fans failures out to reporters. Reporters may be added while
// alerts are being dispatched.
type FailureFeed struct {
	mu        sync.RWMutex
	reporters []FailureReporter
}

// Add registers r
func (f *FailureFeed) Add(r FailureReporter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reporters = append(f.reporters, r)
}

// Report hands the failure to every reporter in the order they were added
func (f *FailureFeed) Report(alert models.Alert, err error) {
	f.mu.RLock()
	reporters := append([]FailureReporter(nil), f.reporters...)
	f.mu.RUnlock()

	for _, r := range reporters {
		r(alert, err)
	}
}

// Dispatcher delivers fired alerts to the sound and notification collaborators.
// Collaborator errors and panics stay inside the dispatcher.
type Dispatcher struct {
	sounder  Sounder
	notifier Notifier
	report   FailureReporter

	sounds sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Either collaborator may be nil.
func NewDispatcher(sounder Sounder, notifier Notifier, report FailureReporter) *Dispatcher {
	return &Dispatcher{
		sounder:  sounder,
		notifier: notifier,
		report:   report,
	}
}

// NewAlert builds the alert record for kind
func NewAlert(kind models.AlertKind, occurrence, firedAt time.Time, cfg models.AlertConfig) models.Alert {
	title, body := Message(kind, cfg.PreAlertMinutes)
	return models.Alert{
		ID:           uuid.New().String(),
		Kind:         kind,
		OccurrenceAt: occurrence,
		FiredAt:      firedAt,
		Title:        title,
		Body:         body,
	}
}

// Dispatch shows the notification for alert and starts its sound. The sound
// is loaded and started on its own goroutine so the caller never waits on
// the audio device or a download. Its failures are reported the same way.
func (d *Dispatcher) Dispatch(ctx context.Context, alert models.Alert, cfg models.AlertConfig) {
	slog.Info("Firing alert",
		slog.String("id", alert.ID),
		slog.String("kind", string(alert.Kind)),
		slog.Time("occurrence", alert.OccurrenceAt))

	if d.sounder != nil {
		d.sounds.Add(1)
		go func() {
			defer d.sounds.Done()
			d.guard(alert, "sound", func() error {
				return d.sounder.Play(ctx, cfg.Sound, cfg.Volume)
			})
		}()
	}

	if d.notifier != nil {
		d.guard(alert, "notification", func() error {
			return d.notifier.Notify(ctx, alert.Title, alert.Body)
		})
	}
}

// Wait blocks until every sound started by Dispatch has been handed to the
// sounder.
func (d *Dispatcher) Wait() {
	d.sounds.Wait()
}

func (d *Dispatcher) guard(alert models.Alert, what string, fn func() error) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", what, r)
			}
		}()
		err = fn()
	}()

	if err == nil {
		return
	}

	slog.Warn("Alert delivery failed",
		slog.String("id", alert.ID),
		slog.String("collaborator", what),
		slog.Any("error", err))

	if d.report != nil {
		d.report(alert, &DeliveryError{Collaborator: what, Err: err})
	}
}

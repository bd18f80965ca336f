// Package metrics exposes rift notifier metrics.
package metrics

import (
	"time"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// Recorder defines the observability hooks of the tick loop
type Recorder interface {
	SetRiftOpen(open bool)
	SetSecondsToTransition(d time.Duration)
	IncAlertFired(kind models.AlertKind)
	IncDeliveryFailure(kind models.AlertKind)
	ObserveTickDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) SetRiftOpen(bool)                     {}
func (NoopRecorder) SetSecondsToTransition(time.Duration) {}
func (NoopRecorder) IncAlertFired(models.AlertKind)       {}
func (NoopRecorder) IncDeliveryFailure(models.AlertKind)  {}
func (NoopRecorder) ObserveTickDuration(time.Duration)    {}

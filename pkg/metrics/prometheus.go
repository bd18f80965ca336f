package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	riftOpen         prom.Gauge
	secondsToNext    prom.Gauge
	alertsFired      *prom.CounterVec
	deliveryFailures *prom.CounterVec
	tickDuration     prom.Histogram
}

// NewPrometheusRecorder constructs and registers the metrics on reg
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	pr := &PrometheusRecorder{
		riftOpen: prom.NewGauge(prom.GaugeOpts{
			Namespace: "rift",
			Name:      "open",
			Help:      "1 while the rift is open",
		}),
		secondsToNext: prom.NewGauge(prom.GaugeOpts{
			Namespace: "rift",
			Name:      "seconds_to_transition",
			Help:      "Seconds until the rift next opens or closes",
		}),
		alertsFired: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rift",
			Name:      "alerts_fired_total",
			Help:      "Alerts fired by kind",
		}, []string{"kind"}),
		deliveryFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rift",
			Name:      "alert_delivery_failures_total",
			Help:      "Sound or notification failures by alert kind",
		}, []string{"kind"}),
		tickDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "rift",
			Name:      "tick_duration_seconds",
			Help:      "Time spent evaluating one tick",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
	}
	reg.MustRegister(pr.riftOpen, pr.secondsToNext, pr.alertsFired, pr.deliveryFailures, pr.tickDuration)
	return pr
}

func (pr *PrometheusRecorder) SetRiftOpen(open bool) {
	if open {
		pr.riftOpen.Set(1)
	} else {
		pr.riftOpen.Set(0)
	}
}

func (pr *PrometheusRecorder) SetSecondsToTransition(d time.Duration) {
	pr.secondsToNext.Set(d.Seconds())
}

func (pr *PrometheusRecorder) IncAlertFired(kind models.AlertKind) {
	pr.alertsFired.WithLabelValues(string(kind)).Inc()
}

func (pr *PrometheusRecorder) IncDeliveryFailure(kind models.AlertKind) {
	pr.deliveryFailures.WithLabelValues(string(kind)).Inc()
}

func (pr *PrometheusRecorder) ObserveTickDuration(d time.Duration) {
	pr.tickDuration.Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Serve exposes /metrics on addr until ctx is done
func Serve(ctx context.Context, addr string, reg *prom.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/rift-notifier/pkg/models"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.SetRiftOpen(true)
	pr.SetSecondsToTransition(90 * time.Second)
	pr.IncAlertFired(models.AlertKindOpen)
	pr.IncAlertFired(models.AlertKindOpen)
	pr.IncDeliveryFailure(models.AlertKindPreAlert)
	pr.ObserveTickDuration(time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(pr.riftOpen))
	assert.Equal(t, 90.0, testutil.ToFloat64(pr.secondsToNext))
	assert.Equal(t, 2.0, testutil.ToFloat64(pr.alertsFired.WithLabelValues("open_alert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.deliveryFailures.WithLabelValues("pre_alert")))

	pr.SetRiftOpen(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(pr.riftOpen))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 5)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).SetRiftOpen(true)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "rift_open 1")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.SetRiftOpen(true)
		r.IncAlertFired(models.AlertKindOpen)
		r.ObserveTickDuration(time.Second)
	})
}

package console

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/rift-notifier/pkg/models"
	"github.com/borgmon/rift-notifier/pkg/schedule"
	"github.com/borgmon/rift-notifier/pkg/store"
)

type fakeController struct {
	now   time.Time
	def   models.ScheduleDefinition
	tests []models.AlertKind
}

func (f *fakeController) Evaluate() models.ClockState         { return schedule.Evaluate(f.now, f.def) }
func (f *fakeController) Schedule() models.ScheduleDefinition { return f.def }

func (f *fakeController) TestAlert(_ context.Context, kind models.AlertKind) error {
	f.tests = append(f.tests, kind)
	return nil
}

func setup(t *testing.T, save SaveFunc) (*Console, *store.ConfigStore, *fakeController, *bytes.Buffer) {
	t.Helper()
	cs, err := store.NewConfigStore(models.DefaultAlertConfig())
	require.NoError(t, err)

	ctrl := &fakeController{
		now: time.Date(2026, 3, 10, 8, 15, 0, 0, time.UTC),
		def: models.DefaultSchedule(),
	}
	var out bytes.Buffer
	return newConsole(&out, cs, ctrl, save), cs, ctrl, &out
}

func TestExecuteChangesSettings(t *testing.T) {
	c, cs, _, out := setup(t, nil)
	ctx := context.Background()

	for _, line := range []string{"enable", "pre 15", "volume 80", "12h", "sound custom https://example.com/horn.wav"} {
		assert.False(t, c.Execute(ctx, line), line)
	}

	cfg := cs.Snapshot()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 15, cfg.PreAlertMinutes)
	assert.Equal(t, 80, cfg.Volume)
	assert.False(t, cfg.Use24Hour)
	assert.Equal(t, models.SoundChoice{Kind: models.SoundCustom, URL: "https://example.com/horn.wav"}, cfg.Sound)
	assert.NotContains(t, out.String(), "Error")

	c.Execute(ctx, "sound default")
	c.Execute(ctx, "disable")
	c.Execute(ctx, "24h")
	cfg = cs.Snapshot()
	assert.Equal(t, models.SoundDefault, cfg.Sound.Kind)
	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.Use24Hour)
}

func TestExecuteRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"pre 3", "Error"},
		{"pre 31", "Error"},
		{"volume 101", "Error"},
		{"volume loud", "Invalid number"},
		{"pre", "Usage"},
		{"sound custom", "Usage"},
		{"sound custom https://youtube.com/watch?v=x", "Error"},
		{"sound bell", "Unknown sound"},
		{"frobnicate", "Unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c, cs, _, out := setup(t, nil)
			before := cs.Snapshot()

			c.Execute(context.Background(), tt.line)

			assert.Contains(t, out.String(), tt.want)
			assert.Equal(t, before, cs.Snapshot())
		})
	}
}

func TestExecuteStatus(t *testing.T) {
	c, _, _, out := setup(t, nil)

	c.Execute(context.Background(), "status")

	assert.Contains(t, out.String(), "OPEN")
	assert.Contains(t, out.String(), "Rift closes in: 00:45:00")
	assert.Contains(t, out.String(), "UTC")
	assert.Contains(t, out.String(), "Alerts:      off")
}

func TestExecuteSchedule(t *testing.T) {
	c, _, ctrl, out := setup(t, nil)
	ctx := context.Background()

	c.Execute(ctx, "schedule")
	assert.Contains(t, out.String(), " * 08:00")
	assert.Contains(t, out.String(), "   11:00")

	out.Reset()
	ctrl.now = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	c.Execute(ctx, "12h")
	out.Reset()
	c.Execute(ctx, "schedule")
	assert.Contains(t, out.String(), " > 11:00 AM")
	assert.Contains(t, out.String(), "   2:00 AM")
}

func TestExecuteTestAlert(t *testing.T) {
	c, _, ctrl, out := setup(t, nil)
	ctx := context.Background()

	c.Execute(ctx, "test pre")
	c.Execute(ctx, "test open")
	c.Execute(ctx, "test later")

	assert.Equal(t, []models.AlertKind{models.AlertKindPreAlert, models.AlertKindOpen}, ctrl.tests)
	assert.Contains(t, out.String(), "Unknown alert")
}

func TestExecuteSave(t *testing.T) {
	var saved []models.AlertConfig
	c, _, _, out := setup(t, func(cfg models.AlertConfig) error {
		saved = append(saved, cfg)
		return nil
	})
	ctx := context.Background()

	c.Execute(ctx, "enable")
	c.Execute(ctx, "save")

	require.Len(t, saved, 1)
	assert.True(t, saved[0].Enabled)
	assert.Contains(t, out.String(), "Settings saved")

	failing, _, _, failOut := setup(t, func(models.AlertConfig) error { return errors.New("disk full") })
	failing.Execute(ctx, "save")
	assert.Contains(t, failOut.String(), "disk full")

	unsaved, _, _, noOut := setup(t, nil)
	unsaved.Execute(ctx, "save")
	assert.Contains(t, noOut.String(), "No config file")
}

func TestExecuteQuit(t *testing.T) {
	c, _, _, _ := setup(t, nil)
	ctx := context.Background()

	assert.False(t, c.Execute(ctx, "   "))
	assert.False(t, c.Execute(ctx, "help"))
	assert.True(t, c.Execute(ctx, "quit"))
	assert.True(t, c.Execute(ctx, "EXIT"))
}

func TestNoticeReachesOutput(t *testing.T) {
	c, _, _, out := setup(t, nil)

	c.Notice("Could not play the alert sound")

	assert.Equal(t, "! Could not play the alert sound\n", out.String())
}

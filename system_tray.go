package main

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"github.com/borgmon/rift-notifier/pkg/models"
	"github.com/borgmon/rift-notifier/pkg/schedule"
	"github.com/borgmon/rift-notifier/pkg/store"
)

// trayMenu shows the countdown and today's schedule in the system tray.
// It is rendered by the watch driver on every tick.
type trayMenu struct {
	app      fyne.App
	schedule models.ScheduleDefinition
	store    *store.ConfigStore
	onTest   func(models.AlertKind)
	onQuit   func()

	menu      *fyne.Menu
	status    *fyne.MenuItem
	clock     *fyne.MenuItem
	hours     []*fyne.MenuItem
	enabled   *fyne.MenuItem
	lastOpen  bool
	installed bool
}

func newTrayMenu(app fyne.App, def models.ScheduleDefinition, cs *store.ConfigStore, onTest func(models.AlertKind), onQuit func()) *trayMenu {
	return &trayMenu{
		app:      app,
		schedule: def,
		store:    cs,
		onTest:   onTest,
		onQuit:   onQuit,
	}
}

// install builds the menu and hands it to the tray. It must run on the
// main goroutine before the app starts.
func (t *trayMenu) install() {
	desk, ok := t.app.(desktop.App)
	if !ok {
		slog.Warn("System tray not supported on this platform")
		return
	}

	t.status = disabledItem("Rift: starting...")
	t.clock = disabledItem("")

	items := []*fyne.MenuItem{t.status, t.clock, fyne.NewMenuItemSeparator(), disabledItem("Schedule:")}
	for range t.schedule.Hours {
		item := disabledItem("")
		t.hours = append(t.hours, item)
		items = append(items, item)
	}

	t.enabled = fyne.NewMenuItem("Alerts Enabled", t.toggleAlerts)
	items = append(items,
		fyne.NewMenuItemSeparator(),
		t.enabled,
		fyne.NewMenuItem("Test Pre-Alert", func() { go t.onTest(models.AlertKindPreAlert) }),
		fyne.NewMenuItem("Test Open Alert", func() { go t.onTest(models.AlertKindOpen) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", t.onQuit),
	)

	t.menu = fyne.NewMenu("Rift Notifier", items...)
	desk.SetSystemTrayMenu(t.menu)
	desk.SetSystemTrayIcon(theme.HistoryIcon())
	t.installed = true
}

// Render implements watch.Renderer
func (t *trayMenu) Render(state models.ClockState, cfg models.AlertConfig) {
	fyne.Do(func() {
		if !t.installed {
			return
		}
		t.update(state, cfg)
	})
}

func (t *trayMenu) update(state models.ClockState, cfg models.AlertConfig) {
	if state.IsOpen {
		t.status.Label = fmt.Sprintf("Rift OPEN, closes in %s", state.Countdown)
	} else {
		t.status.Label = fmt.Sprintf("Next rift in %s", state.Countdown)
	}
	t.clock.Label = fmt.Sprintf("%s %s (%s)",
		schedule.FormatDate(state.Now),
		schedule.FormatClock(state.Now, cfg.Use24Hour),
		schedule.TimezoneName(state.Now))

	for i, label := range scheduleLabels(state, t.schedule, cfg.Use24Hour) {
		t.hours[i].Label = label
	}
	t.enabled.Checked = cfg.Enabled
	t.menu.Refresh()

	if desk, ok := t.app.(desktop.App); ok && state.IsOpen != t.lastOpen {
		if state.IsOpen {
			desk.SetSystemTrayIcon(theme.MediaPlayIcon())
		} else {
			desk.SetSystemTrayIcon(theme.HistoryIcon())
		}
	}
	t.lastOpen = state.IsOpen
}

func (t *trayMenu) toggleAlerts() {
	cfg, err := t.store.Update(func(c *models.AlertConfig) { c.Enabled = !c.Enabled })
	if err != nil {
		slog.Warn("Failed to toggle alerts", slog.Any("error", err))
		return
	}
	slog.Info("Alerts toggled", slog.Bool("enabled", cfg.Enabled))
	t.enabled.Checked = cfg.Enabled
	t.menu.Refresh()
}

// scheduleLabels formats every start hour of def, marking the occurrence
// that is open now or the next one to open.
func scheduleLabels(state models.ClockState, def models.ScheduleDefinition, use24Hour bool) []string {
	marked := state.NextTransition
	if state.IsOpen {
		marked = state.NextTransition.Add(-def.Duration())
	}

	labels := make([]string, 0, len(def.Hours))
	for _, h := range def.Hours {
		prefix := "    "
		if h == marked.Hour() {
			if state.IsOpen {
				prefix = "  ● "
			} else {
				prefix = "  → "
			}
		}
		labels = append(labels, prefix+schedule.FormatHour(h, use24Hour))
	}
	return labels
}

func disabledItem(label string) *fyne.MenuItem {
	item := fyne.NewMenuItem(label, nil)
	item.Disabled = true
	return item
}

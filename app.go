package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/borgmon/rift-notifier/pkg/alert"
	"github.com/borgmon/rift-notifier/pkg/audio"
	"github.com/borgmon/rift-notifier/pkg/console"
	"github.com/borgmon/rift-notifier/pkg/metrics"
	"github.com/borgmon/rift-notifier/pkg/models"
	"github.com/borgmon/rift-notifier/pkg/notify"
	"github.com/borgmon/rift-notifier/pkg/platform"
	"github.com/borgmon/rift-notifier/pkg/store"
	"github.com/borgmon/rift-notifier/pkg/watch"
)

const soundFetchTimeout = 15 * time.Second

// RunCmd implements the 'run' command.
type RunCmd struct {
	Headless    bool          `help:"Run without the tray icon; alerts are logged instead of shown"`
	Console     bool          `help:"Open an interactive prompt for changing alert settings"`
	Enable      bool          `help:"Enable alerts regardless of the config file"`
	PreAlert    int           `name:"pre-alert" help:"Pre-alert lead time in minutes (5-30)"`
	Tick        time.Duration `help:"How often the rift state is re-evaluated"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address, e.g. :9464"`
}

// apply copies the flags that were set over the file configuration
func (r *RunCmd) apply(cfg *store.FileConfig) {
	if r.Enable {
		cfg.Alerts.Enabled = true
	}
	if r.PreAlert != 0 {
		cfg.Alerts.PreAlertMinutes = r.PreAlert
	}
	if r.Tick != 0 {
		cfg.TickInterval = r.Tick
	}
	if r.MetricsAddr != "" {
		cfg.MetricsAddr = r.MetricsAddr
	}
}

func (r *RunCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	r.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var fyneApp fyne.App
	if !r.Headless {
		fyneApp = app.NewWithID(appID)
	}

	rn, err := newRiftNotifier(root.Config, cfg, fyneApp)
	if err != nil {
		return err
	}
	defer rn.close()

	return rn.run(r.Console)
}

// RiftNotifier holds the long running pieces of the 'run' command
type RiftNotifier struct {
	app        fyne.App // nil when headless
	configPath string
	cfg        store.FileConfig

	store    *store.ConfigStore
	player   *audio.Player
	failures alert.FailureFeed
	registry *prometheus.Registry
	recorder metrics.Recorder
	driver   *watch.Driver
	tray     *trayMenu

	stop    context.CancelFunc
	closers []func()
}

func newRiftNotifier(configPath string, cfg store.FileConfig, fyneApp fyne.App) (*RiftNotifier, error) {
	cs, err := store.NewConfigStore(cfg.Alerts)
	if err != nil {
		return nil, err
	}

	rn := &RiftNotifier{
		app:        fyneApp,
		configPath: configPath,
		cfg:        cfg,
		store:      cs,
		recorder:   metrics.NoopRecorder{},
	}

	if cfg.MetricsAddr != "" {
		rn.registry = prometheus.NewRegistry()
		rn.recorder = metrics.NewPrometheusRecorder(rn.registry)
	}

	rn.player = audio.NewPlayer(audio.NewFetcher(soundFetchTimeout))
	go func() {
		if err := audio.Init(); err != nil {
			slog.Warn("Alert sounds unavailable", slog.Any("error", err))
		}
	}()

	notifier, closeNotifier := newNotifier(fyneApp, cfg, rn.player)
	rn.closers = append(rn.closers, closeNotifier)

	rn.failures.Add(func(a models.Alert, err error) {
		rn.recorder.IncDeliveryFailure(a.Kind)
	})
	if fyneApp != nil {
		rn.failures.Add(notifyFailure(fyneApp))
	}

	dispatcher := alert.NewDispatcher(rn.player, notifier, rn.failures.Report)

	opts := []watch.Option{watch.WithRecorder(rn.recorder)}
	if fyneApp != nil {
		rn.tray = newTrayMenu(fyneApp, cfg.Schedule, cs, rn.testAlert, rn.quit)
		opts = append(opts, watch.WithRenderer(rn.tray))
	}

	rn.driver, err = watch.NewDriver(cfg.Schedule, cs, dispatcher, opts...)
	if err != nil {
		return nil, err
	}

	cs.OnChange(rn.preloadSound)
	rn.preloadSound(cs.Snapshot())

	return rn, nil
}

// newNotifier combines the notification outputs for cfg. With a nil app
// notifications go to the log.
func newNotifier(fyneApp fyne.App, cfg store.FileConfig, player *audio.Player) (alert.Notifier, func()) {
	var outputs notify.Multi
	if fyneApp != nil {
		outputs = append(outputs, notify.NewFyneNotifier(fyneApp), newAlertWindows(fyneApp, player))
	} else {
		outputs = append(outputs, notify.LogNotifier{})
	}

	closeFn := func() {}
	if cfg.MQTT.Broker != "" {
		m, disconnect, err := notify.DialMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			slog.Warn("MQTT alerts disabled", slog.Any("error", err))
		} else {
			outputs = append(outputs, m)
			closeFn = disconnect
		}
	}
	return outputs, closeFn
}

func (rn *RiftNotifier) run(withConsole bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	rn.stop = cancel

	if err := setupAutostart(rn.cfg.AutoStart, rn.configPath); err != nil {
		slog.Warn("Failed to setup autostart", slog.Any("error", err))
	}

	if rn.registry != nil {
		go func() {
			if err := metrics.Serve(ctx, rn.cfg.MetricsAddr, rn.registry); err != nil {
				slog.Error("Metrics server failed", slog.Any("error", err))
			}
		}()
	}

	if fw, err := store.NewFileWatcher(rn.configPath, rn.store, rn.cfg.Schedule); err != nil {
		slog.Warn("Config reload disabled", slog.Any("error", err))
	} else if err := fw.Start(ctx); err != nil {
		slog.Warn("Config reload disabled", slog.Any("error", err))
		_ = fw.Stop()
	} else {
		defer func() { _ = fw.Stop() }()
	}

	if withConsole {
		c, err := console.New(rn.store, rn.driver, rn.save)
		if err != nil {
			return err
		}
		// Keep log lines from clobbering the prompt
		slog.SetDefault(slog.New(slog.NewTextHandler(c.Stdout(), nil)))
		rn.failures.Add(func(_ models.Alert, err error) { c.Notice(failureMessage(err)) })
		go c.Run(ctx, cancel)
	} else if rn.app == nil {
		rn.failures.Add(logFailure)
	}

	if rn.app == nil {
		return rn.driver.Run(ctx, rn.cfg.TickInterval)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- rn.driver.Run(ctx, rn.cfg.TickInterval) }()
	go func() {
		<-ctx.Done()
		fyne.Do(rn.app.Quit)
	}()

	rn.tray.install()
	rn.app.Lifecycle().SetOnStarted(platform.SetActivationPolicy)
	rn.app.Run()

	cancel()
	return <-errCh
}

func (rn *RiftNotifier) testAlert(kind models.AlertKind) {
	if err := rn.driver.TestAlert(context.Background(), kind); err != nil {
		slog.Warn("Test alert failed", slog.Any("error", err))
	}
}

func (rn *RiftNotifier) save(alerts models.AlertConfig) error {
	cfg := rn.cfg
	cfg.Alerts = alerts
	if err := store.SaveFile(rn.configPath, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	slog.Info("Configuration saved", slog.String("path", rn.configPath))
	return nil
}

func (rn *RiftNotifier) preloadSound(cfg models.AlertConfig) {
	if cfg.Sound.Kind != models.SoundCustom {
		return
	}
	go func() {
		if err := rn.player.Preload(cfg.Sound.URL); err != nil {
			slog.Warn("Failed to load custom sound", slog.String("url", cfg.Sound.URL), slog.Any("error", err))
		}
	}()
}

func (rn *RiftNotifier) quit() {
	if rn.stop != nil {
		rn.stop()
	}
}

func (rn *RiftNotifier) close() {
	rn.player.Stop()
	for _, fn := range rn.closers {
		fn()
	}
}

// runTestAlert fires one alert without the tray and waits for the sound
func runTestAlert(cfg store.FileConfig, kind models.AlertKind, wait time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cs, err := store.NewConfigStore(cfg.Alerts)
	if err != nil {
		return err
	}

	player := audio.NewPlayer(audio.NewFetcher(soundFetchTimeout))
	defer player.Stop()

	notifier, closeNotifier := newNotifier(nil, cfg, player)
	defer closeNotifier()

	var (
		mu     sync.Mutex
		failed error
	)
	dispatcher := alert.NewDispatcher(player, notifier, func(a models.Alert, err error) {
		logFailure(a, err)
		mu.Lock()
		failed = errors.Join(failed, err)
		mu.Unlock()
	})
	driver, err := watch.NewDriver(cfg.Schedule, cs, dispatcher)
	if err != nil {
		return err
	}
	if err := driver.TestAlert(ctx, kind); err != nil {
		return err
	}
	dispatcher.Wait()
	if failed != nil {
		return failed
	}

	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/borgmon/rift-notifier/pkg/calendar"
	"github.com/borgmon/rift-notifier/pkg/models"
	"github.com/borgmon/rift-notifier/pkg/schedule"
	"github.com/borgmon/rift-notifier/pkg/store"
)

const appID = "com.borgmon.rift-notifier"

// CLI is the command line of rift-notifier
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"rift.yaml" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Run       RunCmd       `cmd:"" default:"withargs" help:"Watch the rift schedule and fire alerts"`
	Status    StatusCmd    `cmd:"" help:"Show whether the rift is open and when it next changes"`
	Schedule  ScheduleCmd  `cmd:"" help:"List today's rift openings"`
	ICS       ICSCmd       `cmd:"" name:"ics" help:"Export the rift schedule as an iCalendar feed"`
	TestAlert TestAlertCmd `cmd:"" name:"test-alert" help:"Fire a test alert through the configured outputs"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (c *CLI) load() (store.FileConfig, error) {
	cfg, err := store.LoadFile(c.Config)
	if err != nil {
		return store.FileConfig{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rift-notifier"),
		kong.Description("Countdown and alerts for the recurring rift."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		slog.Error("Command failed", slog.String("command", ctx.Command()), slog.Any("error", err))
		os.Exit(1)
	}
}

// StatusCmd implements the 'status' command.
type StatusCmd struct{}

func (s *StatusCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	printStatus(os.Stdout, time.Now(), cfg)
	return nil
}

func printStatus(w io.Writer, now time.Time, cfg store.FileConfig) {
	state := schedule.Evaluate(now, cfg.Schedule)
	use24 := cfg.Alerts.Use24Hour

	fmt.Fprintf(w, "%s %s (%s)\n", schedule.FormatDate(now), schedule.FormatClock(now, use24), schedule.TimezoneName(now))
	if state.IsOpen {
		fmt.Fprintf(w, "Rift is OPEN, closes in %s at %s\n", state.Countdown, schedule.FormatInstant(state.NextTransition, use24))
	} else {
		fmt.Fprintf(w, "Rift is closed, opens in %s at %s\n", state.Countdown, schedule.FormatInstant(state.NextTransition, use24))
	}
}

// ScheduleCmd implements the 'schedule' command.
type ScheduleCmd struct{}

func (s *ScheduleCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	printSchedule(os.Stdout, time.Now(), cfg)
	return nil
}

func printSchedule(w io.Writer, now time.Time, cfg store.FileConfig) {
	use24 := cfg.Alerts.Use24Hour
	fmt.Fprintf(w, "Rift schedule for %s (%s), open %d minutes each:\n",
		schedule.FormatDate(now), schedule.TimezoneName(now), cfg.Schedule.DurationMinutes)

	for _, start := range schedule.Occurrences(now, cfg.Schedule) {
		end := start.Add(cfg.Schedule.Duration())
		var note string
		switch {
		case !now.Before(start) && now.Before(end):
			note = "  open now"
		case end.Before(now) || end.Equal(now):
			note = "  passed"
		}
		fmt.Fprintf(w, "  %8s%s\n", schedule.FormatHour(start.Hour(), use24), note)
	}
}

// ICSCmd implements the 'ics' command.
type ICSCmd struct {
	Out string `short:"o" help:"Write the feed to this file instead of stdout" type:"path"`
}

func (i *ICSCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}

	if i.Out == "" {
		return calendar.Export(os.Stdout, cfg.Schedule, time.Now())
	}

	f, err := os.Create(i.Out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", i.Out, err)
	}
	if err := calendar.Export(f, cfg.Schedule, time.Now()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("Calendar written", slog.String("path", i.Out))
	return nil
}

// TestAlertCmd implements the 'test-alert' command.
type TestAlertCmd struct {
	Kind string        `short:"k" enum:"pre,open" default:"open" help:"Alert to fire (pre, open)"`
	Wait time.Duration `default:"6s" help:"How long to keep running so the sound can finish"`
}

func (t *TestAlertCmd) Run(root *CLI) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	return runTestAlert(cfg, alertKind(t.Kind), t.Wait)
}

func alertKind(name string) models.AlertKind {
	if name == "pre" {
		return models.AlertKindPreAlert
	}
	return models.AlertKindOpen
}

// Package console provides an interactive shell for changing alert
// settings while the rift watch is running.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/borgmon/rift-notifier/pkg/audio"
	"github.com/borgmon/rift-notifier/pkg/models"
	"github.com/borgmon/rift-notifier/pkg/schedule"
	"github.com/borgmon/rift-notifier/pkg/store"
)

// Controller is the part of the watch driver the console talks to.
type Controller interface {
	Evaluate() models.ClockState
	Schedule() models.ScheduleDefinition
	TestAlert(ctx context.Context, kind models.AlertKind) error
}

// SaveFunc persists the alert settings.
type SaveFunc func(models.AlertConfig) error

// Console handles the interactive settings prompt.
type Console struct {
	rl    *readline.Instance
	out   io.Writer
	store *store.ConfigStore
	ctrl  Controller
	save  SaveFunc
}

// New creates a console reading from the terminal. save may be nil, in
// which case the save command reports that there is nowhere to save to.
func New(cs *store.ConfigStore, ctrl Controller, save SaveFunc) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "rift> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(rl.Stdout(), cs, ctrl, save)
	c.rl = rl
	return c, nil
}

func newConsole(out io.Writer, cs *store.ConfigStore, ctrl Controller, save SaveFunc) *Console {
	return &Console{out: out, store: cs, ctrl: ctrl, save: save}
}

// Stdout returns a writer that does not clobber the prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Notice prints a message the user should see between prompts.
func (c *Console) Notice(msg string) {
	fmt.Fprintf(c.out, "! %s\n", msg)
}

// Run reads commands until quit, EOF or ctx is done. cancel is called when
// the user leaves the console.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if quit := c.Execute(ctx, line); quit {
			cancel()
			return
		}
	}
}

// Execute runs a single command line and reports whether the user asked
// to quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "status", "s":
		c.cmdStatus()

	case "schedule":
		c.cmdSchedule()

	case "enable", "on":
		c.update(func(cfg *models.AlertConfig) { cfg.Enabled = true })

	case "disable", "off":
		c.update(func(cfg *models.AlertConfig) { cfg.Enabled = false })

	case "pre":
		c.cmdPre(args)

	case "volume", "vol":
		c.cmdVolume(args)

	case "sound":
		c.cmdSound(args)

	case "24h":
		c.update(func(cfg *models.AlertConfig) { cfg.Use24Hour = true })

	case "12h":
		c.update(func(cfg *models.AlertConfig) { cfg.Use24Hour = false })

	case "test":
		c.cmdTest(ctx, args)

	case "save":
		c.cmdSave()

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Rift Notifier Commands:
  Status:
    status              - Show rift state and alert settings
    schedule            - List today's rift openings

  Alerts:
    enable | disable    - Turn alerts on or off
    pre <minutes>       - Pre-alert lead time (5-30)
    volume <0-100>      - Alert volume
    sound default       - Use the built-in beep
    sound custom <url>  - Use a WAV file from a URL or local path
    24h | 12h           - Time format
    test pre|open       - Fire a test alert now

  Other:
    save                - Write settings to the config file
    help                - Show this help
    quit                - Exit`)
}

func (c *Console) cmdStatus() {
	cfg := c.store.Snapshot()
	state := c.ctrl.Evaluate()

	label := "Next rift opens in"
	status := "CLOSED"
	if state.IsOpen {
		label = "Rift closes in"
		status = "OPEN"
	}

	fmt.Fprintf(c.out, "Local time:  %s %s (%s)\n",
		schedule.FormatDate(state.Now),
		schedule.FormatClock(state.Now, cfg.Use24Hour),
		schedule.TimezoneName(state.Now))
	fmt.Fprintf(c.out, "Rift:        %s\n", status)
	fmt.Fprintf(c.out, "%-12s %s (at %s)\n", label+":", state.Countdown,
		schedule.FormatInstant(state.NextTransition, cfg.Use24Hour))
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "Alerts:      %s\n", onOff(cfg.Enabled))
	fmt.Fprintf(c.out, "Pre-alert:   %d min\n", cfg.PreAlertMinutes)
	fmt.Fprintf(c.out, "Volume:      %d%%\n", cfg.Volume)
	if cfg.Sound.Kind == models.SoundCustom {
		fmt.Fprintf(c.out, "Sound:       custom (%s)\n", cfg.Sound.URL)
	} else {
		fmt.Fprintln(c.out, "Sound:       default")
	}
}

func (c *Console) cmdSchedule() {
	cfg := c.store.Snapshot()
	state := c.ctrl.Evaluate()
	def := c.ctrl.Schedule()

	current := state.NextTransition.Add(-def.Duration())
	for _, start := range schedule.Occurrences(state.Now, def) {
		marker := " "
		switch {
		case state.IsOpen && start.Equal(current):
			marker = "*"
		case !state.IsOpen && start.Equal(state.NextTransition):
			marker = ">"
		}
		fmt.Fprintf(c.out, " %s %s\n", marker, schedule.FormatHour(start.Hour(), cfg.Use24Hour))
	}
}

func (c *Console) cmdPre(args []string) {
	n, ok := c.intArg(args, "pre <minutes>")
	if !ok {
		return
	}
	c.update(func(cfg *models.AlertConfig) { cfg.PreAlertMinutes = n })
}

func (c *Console) cmdVolume(args []string) {
	n, ok := c.intArg(args, "volume <0-100>")
	if !ok {
		return
	}
	c.update(func(cfg *models.AlertConfig) { cfg.Volume = n })
}

func (c *Console) cmdSound(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: sound default | sound custom <url>")
		return
	}

	switch strings.ToLower(args[0]) {
	case "default":
		c.update(func(cfg *models.AlertConfig) {
			cfg.Sound = models.SoundChoice{Kind: models.SoundDefault}
		})
	case "custom":
		if len(args) < 2 {
			fmt.Fprintln(c.out, "Usage: sound custom <url>")
			return
		}
		url := args[1]
		if err := audio.CheckSoundURL(url); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		c.update(func(cfg *models.AlertConfig) {
			cfg.Sound = models.SoundChoice{Kind: models.SoundCustom, URL: url}
		})
	default:
		fmt.Fprintf(c.out, "Unknown sound %q (use default or custom)\n", args[0])
	}
}

func (c *Console) cmdTest(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: test pre|open")
		return
	}

	var kind models.AlertKind
	switch strings.ToLower(args[0]) {
	case "pre":
		kind = models.AlertKindPreAlert
	case "open":
		kind = models.AlertKindOpen
	default:
		fmt.Fprintf(c.out, "Unknown alert %q (use pre or open)\n", args[0])
		return
	}

	if err := c.ctrl.TestAlert(ctx, kind); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Sent test %s\n", kind)
}

func (c *Console) cmdSave() {
	if c.save == nil {
		fmt.Fprintln(c.out, "No config file to save to")
		return
	}
	if err := c.save(c.store.Snapshot()); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Settings saved")
}

func (c *Console) update(fn func(*models.AlertConfig)) {
	if _, err := c.store.Update(fn); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "OK")
}

func (c *Console) intArg(args []string, usage string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintf(c.out, "Usage: %s\n", usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid number: %s\n", args[0])
		return 0, false
	}
	return n, true
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

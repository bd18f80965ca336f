package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
)

// setupAutostart registers or removes the login item that starts the
// notifier in tray mode.
func setupAutostart(enable bool, configPath string) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}

	// Resolve symlinks if any
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	app := &autostart.App{
		Name:        "rift-notifier",
		DisplayName: "Rift Notifier",
		Exec:        autostartCommand(execPath, configPath),
	}

	switch {
	case enable && !app.IsEnabled():
		if err := app.Enable(); err != nil {
			return err
		}
		slog.Info("Autostart enabled", slog.String("exec", execPath))
	case !enable && app.IsEnabled():
		if err := app.Disable(); err != nil {
			return err
		}
		slog.Info("Autostart disabled")
	}
	return nil
}

// autostartCommand is the command line used at login. The config path is
// made absolute because login items do not start in the user's directory.
func autostartCommand(execPath, configPath string) []string {
	if abs, err := filepath.Abs(configPath); err == nil {
		configPath = abs
	}
	return []string{execPath, "--config", configPath, "run"}
}

package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// FileWatcher reloads the alerts section of the config file into a
// ConfigStore whenever the file changes.
type FileWatcher struct {
	configPath   string
	store        *ConfigStore
	schedule     models.ScheduleDefinition
	watcher      *fsnotify.Watcher
	debounceTime time.Duration

	stopOnce   sync.Once
	stopChan   chan struct{}
	reloadChan chan struct{}
	done       sync.WaitGroup
}

// NewFileWatcher creates a watcher for configPath. schedule is the schedule
// the process is running with; changes to it are reported but not applied.
func NewFileWatcher(configPath string, store *ConfigStore, schedule models.ScheduleDefinition) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	return &FileWatcher{
		configPath:   absPath,
		store:        store,
		schedule:     schedule,
		watcher:      watcher,
		debounceTime: 500 * time.Millisecond,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
	}, nil
}

// SetDebounce changes how long the watcher waits for writes to settle
func (fw *FileWatcher) SetDebounce(d time.Duration) { fw.debounceTime = d }

// Start begins monitoring the configuration file
func (fw *FileWatcher) Start(ctx context.Context) error {
	// Watch the directory, editors often replace the file instead of writing it
	configDir := filepath.Dir(fw.configPath)
	if err := fw.watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", configDir, err)
	}

	slog.Info("Starting configuration watcher", slog.String("config_path", fw.configPath))

	fw.done.Add(2)
	go fw.watchLoop(ctx)
	go fw.reloadLoop(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutines
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		err = fw.watcher.Close()
		fw.done.Wait()
	})
	return err
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	defer fw.done.Done()
	configFile := filepath.Base(fw.configPath)

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopChan:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				slog.Debug("Config file change detected", slog.String("file", event.Name), slog.String("op", event.Op.String()))
				fw.triggerReload()
			} else if event.Has(fsnotify.Remove) {
				slog.Warn("Config file removed", slog.String("file", event.Name))
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", slog.Any("error", err))
		}
	}
}

func (fw *FileWatcher) triggerReload() {
	select {
	case fw.reloadChan <- struct{}{}:
	default:
	}
}

func (fw *FileWatcher) reloadLoop(ctx context.Context) {
	defer fw.done.Done()
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-fw.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-fw.reloadChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(fw.debounceTime)
			fire = timer.C
		case <-fire:
			fire = nil
			fw.reload()
		}
	}
}

func (fw *FileWatcher) reload() {
	cfg, err := LoadFile(fw.configPath)
	if err != nil {
		slog.Error("Failed to reload configuration, keeping current settings", slog.Any("error", err))
		return
	}

	if !reflect.DeepEqual(cfg.Schedule, fw.schedule) {
		slog.Warn("Schedule changes take effect after restart")
	}

	if err := fw.store.Replace(cfg.Alerts); err != nil {
		slog.Error("Rejected reloaded alert settings", slog.Any("error", err))
		return
	}
	slog.Info("Alert settings reloaded", slog.String("config_path", fw.configPath))
}

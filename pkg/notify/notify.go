// Package notify contains the notification adapters used for rift alerts.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
)

// Notifier mirrors alert.Notifier so adapters can be combined here
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// FyneNotifier shows desktop notifications through the fyne app
type FyneNotifier struct {
	app fyne.App
}

// NewFyneNotifier creates a notifier for app
func NewFyneNotifier(app fyne.App) *FyneNotifier {
	return &FyneNotifier{app: app}
}

// Notify sends a desktop notification. Delivery is up to the OS; a denied
// permission silently drops the notification.
func (n *FyneNotifier) Notify(_ context.Context, title, body string) error {
	n.app.SendNotification(fyne.NewNotification(title, body))
	return nil
}

// LogNotifier writes notifications to the log, used in headless mode
type LogNotifier struct{}

// Notify logs the notification
func (LogNotifier) Notify(_ context.Context, title, body string) error {
	slog.Info("Notification", slog.String("title", title), slog.String("body", body))
	return nil
}

// Multi fans a notification out to several notifiers. Every notifier is
// tried; the errors are joined.
type Multi []Notifier

// Notify calls every notifier in order
func (m Multi) Notify(ctx context.Context, title, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

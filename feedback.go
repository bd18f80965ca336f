package main

import (
	"errors"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"

	"github.com/borgmon/rift-notifier/pkg/alert"
	"github.com/borgmon/rift-notifier/pkg/audio"
	"github.com/borgmon/rift-notifier/pkg/models"
)

// failureMessage turns an alert delivery failure into a hint for the user
func failureMessage(err error) string {
	var de *alert.DeliveryError
	collaborator := ""
	if errors.As(err, &de) {
		collaborator = de.Collaborator
	}

	switch {
	case errors.Is(err, audio.ErrAudioUnavailable):
		return "No audio output is available, so the alert sound could not play."
	case errors.Is(err, audio.ErrUnsupportedSound):
		return "Could not play the custom sound. Use a direct link to an MP3, WAV or OGG file, or switch to the default sound."
	case collaborator == "sound":
		return fmt.Sprintf("Could not play the alert sound: %v", de.Err)
	case collaborator == "notification":
		return fmt.Sprintf("Could not show the rift notification: %v", de.Err)
	default:
		return fmt.Sprintf("Rift alert failed: %v", err)
	}
}

// notifyFailure reports failures as a desktop notification
func notifyFailure(app fyne.App) alert.FailureReporter {
	return func(_ models.Alert, err error) {
		app.SendNotification(fyne.NewNotification("Rift Notifier", failureMessage(err)))
	}
}

func logFailure(a models.Alert, err error) {
	slog.Error(failureMessage(err), slog.String("kind", string(a.Kind)), slog.Any("error", err))
}

package alert

import (
	"fmt"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// Message returns the notification title and body for an alert kind
func Message(kind models.AlertKind, preAlertMinutes int) (string, string) {
	switch kind {
	case models.AlertKindPreAlert:
		unit := "minutes"
		if preAlertMinutes == 1 {
			unit = "minute"
		}
		return "Rift Opening Soon!", fmt.Sprintf("The Rift will open in %d %s!", preAlertMinutes, unit)
	default:
		return "Rift is Now Open!", "The Rift has opened! Enter now!"
	}
}

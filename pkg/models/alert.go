package models

import "time"

// AlertKind identifies which alert fired
type AlertKind string

const (
	AlertKindPreAlert AlertKind = "pre_alert"  // minutes before the rift opens
	AlertKindOpen     AlertKind = "open_alert" // the rift just opened
)

// Alert is a single fired alert handed to the sound and notification collaborators
type Alert struct {
	ID           string    // Unique identifier for the alert (UUID)
	Kind         AlertKind // Alert kind
	OccurrenceAt time.Time // Opening instant the alert belongs to
	FiredAt      time.Time // When the alert was fired
	Title        string    // Notification title
	Body         string    // Notification body
}

// AlertFireHistory carries the engine state from one tick to the next
type AlertFireHistory struct {
	WasOpenLastTick bool      // rift state seen on the previous tick
	PreAlertedFor   time.Time // opening instant that already got its pre-alert
}

// ClockState is the derived rift state for one instant
type ClockState struct {
	Now            time.Time
	IsOpen         bool
	NextTransition time.Time     // close instant when open, next opening when closed
	Remaining      time.Duration // whole seconds, never negative
	Countdown      string        // Remaining as HH:MM:SS
}

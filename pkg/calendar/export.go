// Package calendar exports the rift schedule as an iCalendar feed so it can
// be subscribed to from any calendar app.
package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/borgmon/rift-notifier/pkg/models"
)

const (
	productID = "-//borgmon//rift-notifier//EN"
	// Floating local time: the rift follows the wall clock, not a fixed zone
	floatingFormat = "20060102T150405"
)

// Export writes one daily recurring event per rift opening, starting on the
// day of from.
func Export(w io.Writer, def models.ScheduleDefinition, from time.Time) error {
	if err := def.Validate(); err != nil {
		return err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	year, month, day := from.Date()
	for _, h := range def.Hours {
		start := time.Date(year, month, day, h, 0, 0, 0, from.Location())
		end := start.Add(time.Duration(def.DurationMinutes) * time.Minute)
		cal.Children = append(cal.Children, newOccurrenceEvent(h, start, end, from).Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func newOccurrenceEvent(hour int, start, end, stamp time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, fmt.Sprintf("rift-%02d00@rift-notifier", hour))
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetText(ical.PropSummary, "Rift open")
	event.Props.SetText(ical.PropDescription, "The Space-Time Rift is open.")

	event.Props.Set(floatingProp(ical.PropDateTimeStart, start))
	event.Props.Set(floatingProp(ical.PropDateTimeEnd, end))

	rrule := ical.NewProp(ical.PropRecurrenceRule)
	rrule.Value = "FREQ=DAILY"
	event.Props.Set(rrule)

	return event
}

func floatingProp(name string, t time.Time) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = t.Format(floatingFormat)
	return prop
}

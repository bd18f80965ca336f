package schedule

import (
	"fmt"
	"time"
)

// FormatClock formats the wall clock the way the header shows it
func FormatClock(t time.Time, use24Hour bool) string {
	if use24Hour {
		return t.Format("15:04:05")
	}
	return t.Format("03:04:05 PM")
}

// FormatDate formats the short date shown below the clock
func FormatDate(t time.Time) string {
	return t.Format("Mon, Jan 2")
}

// FormatHour formats a schedule hour, e.g. "14:00" or "2:00 PM"
func FormatHour(hour int, use24Hour bool) string {
	if use24Hour {
		return fmt.Sprintf("%02d:00", hour)
	}
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:00 %s", h12, period)
}

// FormatInstant formats a transition instant for display
func FormatInstant(t time.Time, use24Hour bool) string {
	if use24Hour {
		return t.Format("Mon 15:04")
	}
	return t.Format("Mon 3:04 PM")
}

// TimezoneName reports the name of the zone t is expressed in. For the
// process-local zone it resolves the abbreviation, e.g. "CET".
func TimezoneName(t time.Time) string {
	name := t.Location().String()
	if name == "Local" || name == "" {
		abbr, _ := t.Zone()
		return abbr
	}
	return name
}

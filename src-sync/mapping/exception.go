package mapping

import (
	"time"

	"syncal/ical"
)

// alignRecurrenceID forces an exception's recurrence id onto the value type
// of the main event's start:
//
//   - same value type: unchanged
//   - id DATE-TIME, start DATE: reduced to its date component
//   - id DATE, start DATE-TIME: amended with the start's clock time and zone
func alignRecurrenceID(rid ical.DateTime, mainStart ical.DateTime) ical.DateTime {
	switch {
	case rid.IsDate() == mainStart.IsDate():
		return rid
	case rid.IsDate():
		return ical.DateTime{
			Time: time.Date(
				rid.Time.Year(), rid.Time.Month(), rid.Time.Day(),
				mainStart.Time.Hour(), mainStart.Time.Minute(), mainStart.Time.Second(), 0,
				mainStart.Time.Location(),
			),
			Kind: mainStart.Kind,
		}
	default:
		return rid.AsDate()
	}
}

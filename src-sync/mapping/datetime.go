package mapping

import (
	"log/slog"
	"time"

	"syncal/ical"
)

// tzidUTC is the storage zone id for all-day and UTC times.
const tzidUTC = "UTC"

// storageZoneID is the zone column value for a time value. All-day values
// are anchored at UTC midnights, so their zone column is always UTC.
func storageZoneID(dt ical.DateTime) string {
	switch dt.Kind {
	case ical.KindZoned:
		return dt.Time.Location().String()
	default:
		return tzidUTC
	}
}

// loadZone resolves a stored zone id, falling back to the given default and
// finally to UTC when the id is not available on this system.
func loadZone(tzid string, fallback *time.Location) *time.Location {
	if tzid == "" || tzid == tzidUTC {
		return time.UTC
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		slog.Warn("mapping: unknown time zone, using fallback", "tzid", tzid, "error", err)
		if fallback != nil {
			return fallback
		}
		return time.UTC
	}
	return loc
}

// timeFromColumns rebuilds a calendar value from a timestamp column pair.
func timeFromColumns(ts int64, tzid string, allDay bool, fallback *time.Location) ical.DateTime {
	t := time.UnixMilli(ts).In(time.UTC)
	if allDay {
		return ical.NewDate(t.Year(), t.Month(), t.Day())
	}
	loc := loadZone(tzid, fallback)
	if loc == time.UTC {
		return ical.NewDateTimeUTC(t)
	}
	return ical.NewDateTimeZoned(t, loc)
}

// alignEndWithStart forces the end value onto the start's value type:
//
//   - both DATE or both DATE-TIME: end unchanged
//   - end DATE, start DATE-TIME: end gets the start's clock time and zone
//   - end DATE-TIME, start DATE: end is reduced to its date component
func alignEndWithStart(end ical.DateTime, start ical.DateTime) ical.DateTime {
	switch {
	case end.IsDate() == start.IsDate():
		return end
	case end.IsDate():
		return ical.DateTime{
			Time: time.Date(
				end.Time.Year(), end.Time.Month(), end.Time.Day(),
				start.Time.Hour(), start.Time.Minute(), start.Time.Second(), 0,
				start.Time.Location(),
			),
			Kind: start.Kind,
		}
	default:
		return end.AsDate()
	}
}

// resolveEnd computes the effective end of a non-recurring event:
// an explicit end aligned to the start's value type, otherwise start plus
// duration, otherwise the default (one day for all-day events, the start
// itself for timed events).
func resolveEnd(from *ical.Event, start ical.DateTime) ical.DateTime {
	if from.DTEnd != nil {
		return alignEndWithStart(from.DTEnd.Anchor(start.Time.Location()), start)
	}

	if from.Duration != nil {
		dur := *from.Duration
		if start.IsDate() {
			dur = dur.InDays()
			t := dur.AddTo(start.Time)
			return ical.NewDate(t.Year(), t.Month(), t.Day())
		}
		return ical.DateTime{Time: dur.AddTo(start.Time), Kind: start.Kind}
	}

	if start.IsDate() {
		t := start.Time.AddDate(0, 0, 1)
		return ical.NewDate(t.Year(), t.Month(), t.Day())
	}
	return start
}

// recurringDuration computes the duration column of a recurring event:
// the explicit duration (whole days for all-day events), otherwise the
// difference to the end, otherwise the default (P1D all-day, P0D timed;
// exact zero durations are known to break instance expansion downstream).
func recurringDuration(from *ical.Event, start ical.DateTime) ical.Duration {
	allDay := start.IsDate()

	if from.Duration != nil {
		if allDay && !from.Duration.DatesOnly {
			return from.Duration.InDays()
		}
		return *from.Duration
	}

	if from.DTEnd != nil {
		end := from.DTEnd.Anchor(start.Time.Location())
		if !allDay && !end.IsDate() {
			return ical.DurationOfTime(end.Time.Sub(start.Time))
		}
		// with a DATE on either side the duration is a whole number of days
		days := int(end.AsDate().Time.Sub(start.AsDate().Time).Hours() / 24)
		return ical.DurationOfDays(days)
	}

	if allDay {
		return ical.DurationOfDays(1)
	}
	return ical.DurationOfDays(0)
}

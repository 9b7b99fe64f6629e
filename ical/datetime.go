package ical

import (
	"fmt"
	"strings"
	"time"
)

// TimeKind tells how a DateTime value is anchored in time.
type TimeKind int

const (
	// KindDate is a calendar date without a clock time.
	KindDate TimeKind = iota
	// KindFloating is a clock time without any zone attached.
	KindFloating
	// KindUTC is an absolute instant in UTC.
	KindUTC
	// KindZoned is a clock time in a named IANA zone.
	KindZoned
)

const (
	layoutDateTimeUTC   = "20060102T150405Z"
	layoutDateTimeLocal = "20060102T150405"
	layoutDate          = "20060102"
)

// DateTime is a calendar value, either a whole date or a date-time with one
// of three zonings. A KindDate value keeps its midnight in UTC so that its
// epoch milliseconds are stable regardless of the host zone.
type DateTime struct {
	Time time.Time
	Kind TimeKind
}

func NewDate(year int, month time.Month, day int) DateTime {
	return DateTime{
		Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Kind: KindDate,
	}
}

func NewDateTimeUTC(t time.Time) DateTime {
	return DateTime{Time: t.In(time.UTC), Kind: KindUTC}
}

func NewDateTimeFloating(t time.Time) DateTime {
	return DateTime{Time: t, Kind: KindFloating}
}

func NewDateTimeZoned(t time.Time, loc *time.Location) DateTime {
	if loc == time.UTC || loc.String() == "UTC" {
		return NewDateTimeUTC(t.In(time.UTC))
	}
	return DateTime{Time: t.In(loc), Kind: KindZoned}
}

// ParseDateTime parses an RFC 5545 DATE or DATE-TIME text value. A non-empty
// tzid anchors a local DATE-TIME form in that zone; an unknown tzid is an
// error so the caller can decide on a fallback.
func ParseDateTime(value string, tzid string) (DateTime, error) {
	value = strings.TrimSpace(value)
	switch {
	case len(value) == len(layoutDate):
		t, err := time.Parse(layoutDate, value)
		if err != nil {
			return DateTime{}, fmt.Errorf("ParseDateTime: %w", err)
		}
		return DateTime{Time: t, Kind: KindDate}, nil
	case strings.HasSuffix(value, "Z"):
		t, err := time.Parse(layoutDateTimeUTC, value)
		if err != nil {
			return DateTime{}, fmt.Errorf("ParseDateTime: %w", err)
		}
		return DateTime{Time: t, Kind: KindUTC}, nil
	default:
		if tzid == "" {
			t, err := time.Parse(layoutDateTimeLocal, value)
			if err != nil {
				return DateTime{}, fmt.Errorf("ParseDateTime: %w", err)
			}
			return DateTime{Time: t, Kind: KindFloating}, nil
		}
		loc, err := time.LoadLocation(tzid)
		if err != nil {
			return DateTime{}, fmt.Errorf("ParseDateTime: unknown zone %q: %w", tzid, err)
		}
		t, err := time.ParseInLocation(layoutDateTimeLocal, value, loc)
		if err != nil {
			return DateTime{}, fmt.Errorf("ParseDateTime: %w", err)
		}
		return NewDateTimeZoned(t, loc), nil
	}
}

// #region Getters

func (d DateTime) IsZero() bool {
	return d.Time.IsZero()
}

func (d DateTime) IsDate() bool {
	return d.Kind == KindDate
}

func (d DateTime) IsFloating() bool {
	return d.Kind == KindFloating
}

func (d DateTime) IsUTC() bool {
	return d.Kind == KindUTC
}

// TZID returns the zone identifier to carry on the wire, empty for values
// that carry none (dates, floating times and UTC instants).
func (d DateTime) TZID() string {
	if d.Kind == KindZoned {
		return d.Time.Location().String()
	}
	return ""
}

// Location returns the zone the value is anchored in. Dates and UTC instants
// answer UTC, floating times answer nil.
func (d DateTime) Location() *time.Location {
	switch d.Kind {
	case KindZoned:
		return d.Time.Location()
	case KindDate, KindUTC:
		return time.UTC
	default:
		return nil
	}
}

// UnixMilli returns the value's epoch milliseconds. Floating values must be
// anchored with Anchor before this is meaningful.
func (d DateTime) UnixMilli() int64 {
	return d.Time.UnixMilli()
}

// #endregion

// Anchor pins a floating value into loc, keeping its wall clock. Every other
// kind passes through unchanged.
func (d DateTime) Anchor(loc *time.Location) DateTime {
	if d.Kind != KindFloating {
		return d
	}
	t := time.Date(
		d.Time.Year(), d.Time.Month(), d.Time.Day(),
		d.Time.Hour(), d.Time.Minute(), d.Time.Second(), d.Time.Nanosecond(),
		loc,
	)
	return NewDateTimeZoned(t, loc)
}

// AsDate truncates the value to its calendar date.
func (d DateTime) AsDate() DateTime {
	return NewDate(d.Time.Year(), d.Time.Month(), d.Time.Day())
}

// String renders the RFC 5545 text form. Zoned values render their local
// clock; the TZID parameter travels separately.
func (d DateTime) String() string {
	switch d.Kind {
	case KindDate:
		return d.Time.Format(layoutDate)
	case KindUTC:
		return d.Time.In(time.UTC).Format(layoutDateTimeUTC)
	default:
		return d.Time.Format(layoutDateTimeLocal)
	}
}

package mapping

import (
	"testing"
	"time"

	"syncal/ical"
)

func TestAlignRecurrenceID(t *testing.T) {
	vienna := mustZone(t, "Europe/Vienna")
	timedStart := ical.NewDateTimeZoned(time.Date(2020, 6, 1, 10, 30, 0, 0, vienna), vienna)

	// case: a date id against a timed start gets the start's clock and zone
	func() {
		got := alignRecurrenceID(ical.NewDate(2020, 6, 8), timedStart)
		if got.Kind != ical.KindZoned || got.String() != "20200608T103000" || got.TZID() != "Europe/Vienna" {
			t.Error("unexpected aligned id", got)
		}
	}()

	// case: a timed id against an all-day start is reduced to its date
	func() {
		rid := ical.NewDateTimeUTC(time.Date(2020, 6, 8, 10, 30, 0, 0, time.UTC))
		got := alignRecurrenceID(rid, ical.NewDate(2020, 6, 1))
		if !got.IsDate() || got.String() != "20200608" {
			t.Error("unexpected aligned id", got)
		}
	}()

	// case: matching value types pass through
	func() {
		rid := ical.NewDateTimeUTC(time.Date(2020, 6, 8, 8, 30, 0, 0, time.UTC))
		if got := alignRecurrenceID(rid, timedStart); got != rid {
			t.Error("id should be unchanged", got)
		}
	}()
}

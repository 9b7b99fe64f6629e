package ical

import (
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	// case: a date value
	func() {
		dt, err := ParseDateTime("20200601", "")
		if err != nil {
			t.Error(err)
		}
		if !dt.IsDate() || dt.String() != "20200601" {
			t.Error("unexpected value", dt)
		}
		if dt.UnixMilli() != time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
			t.Error("a date anchors at midnight utc", dt.UnixMilli())
		}
	}()

	// case: a utc instant
	func() {
		dt, err := ParseDateTime("20200601T100000Z", "")
		if err != nil {
			t.Error(err)
		}
		if !dt.IsUTC() || dt.String() != "20200601T100000Z" {
			t.Error("unexpected value", dt)
		}
	}()

	// case: a floating local time
	func() {
		dt, err := ParseDateTime("20200601T100000", "")
		if err != nil {
			t.Error(err)
		}
		if !dt.IsFloating() || dt.String() != "20200601T100000" {
			t.Error("unexpected value", dt)
		}
	}()

	// case: a zoned local time
	func() {
		dt, err := ParseDateTime("20200601T100000", "Europe/Vienna")
		if err != nil {
			t.Error(err)
		}
		if dt.Kind != KindZoned || dt.TZID() != "Europe/Vienna" {
			t.Error("unexpected value", dt)
		}
		want := time.Date(2020, 6, 1, 8, 0, 0, 0, time.UTC)
		if dt.UnixMilli() != want.UnixMilli() {
			t.Error("unexpected instant", dt.UnixMilli())
		}
	}()

	// case: the UTC tzid collapses to a utc instant
	func() {
		dt, err := ParseDateTime("20200601T100000", "UTC")
		if err != nil {
			t.Error(err)
		}
		if !dt.IsUTC() {
			t.Error("unexpected kind", dt.Kind)
		}
	}()

	// case: unknown zones are an error
	func() {
		if _, err := ParseDateTime("20200601T100000", "Not/AZone"); err == nil {
			t.Error("expected an error")
		}
	}()

	// case: garbage is an error
	func() {
		if _, err := ParseDateTime("garbage-everywhere", ""); err == nil {
			t.Error("expected an error")
		}
	}()
}

func TestDateTimeAnchor(t *testing.T) {
	vienna, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		t.Fatal(err)
	}

	floating, err := ParseDateTime("20200601T100000", "")
	if err != nil {
		t.Fatal(err)
	}
	anchored := floating.Anchor(vienna)
	if anchored.Kind != KindZoned || anchored.TZID() != "Europe/Vienna" {
		t.Error("unexpected anchored value", anchored)
	}
	// the wall clock stays put
	if anchored.String() != "20200601T100000" {
		t.Error("unexpected wall clock", anchored.String())
	}

	// anchoring a zoned value changes nothing
	if again := anchored.Anchor(time.UTC); again != anchored {
		t.Error("anchored values pass through", again)
	}
}

func TestDateTimeAsDate(t *testing.T) {
	dt, err := ParseDateTime("20200601T235959Z", "")
	if err != nil {
		t.Fatal(err)
	}
	if got := dt.AsDate(); !got.IsDate() || got.String() != "20200601" {
		t.Error("unexpected date", got)
	}
}

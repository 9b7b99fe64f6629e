package mapping

import (
	"testing"
	"time"

	"syncal/ical"
	"syncal/src-sync/model"
)

func mustDuration(t *testing.T, s string) ical.Duration {
	t.Helper()
	d, err := ical.ParseDuration(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestAlarmMinutes(t *testing.T) {
	start := ical.NewDateTimeUTC(time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC))
	end := ical.NewDateTimeUTC(time.Date(2020, 6, 1, 11, 0, 0, 0, time.UTC))

	// case: a negative duration fires before the start, stored positive
	func() {
		alarm := &ical.Alarm{Trigger: ical.Trigger{Duration: mustDuration(t, "-PT45M")}}
		minutes, ok := alarmMinutes(alarm, start, end)
		if !ok || minutes != 45 {
			t.Error("unexpected minutes", minutes, ok)
		}
	}()

	// case: a positive duration fires after the start, stored negative
	func() {
		alarm := &ical.Alarm{Trigger: ical.Trigger{Duration: mustDuration(t, "PT5M")}}
		minutes, ok := alarmMinutes(alarm, start, end)
		if !ok || minutes != -5 {
			t.Error("unexpected minutes", minutes, ok)
		}
	}()

	// case: date-based offsets count plain days
	func() {
		alarm := &ical.Alarm{Trigger: ical.Trigger{Duration: mustDuration(t, "-P1D")}}
		minutes, ok := alarmMinutes(alarm, start, end)
		if !ok || minutes != 1440 {
			t.Error("unexpected minutes", minutes, ok)
		}
	}()

	// case: seconds are cut off
	func() {
		alarm := &ical.Alarm{Trigger: ical.Trigger{Duration: mustDuration(t, "-PT90S")}}
		minutes, ok := alarmMinutes(alarm, start, end)
		if !ok || minutes != 1 {
			t.Error("unexpected minutes", minutes, ok)
		}
	}()

	// case: end-related triggers are moved towards the start
	func() {
		alarm := &ical.Alarm{Trigger: ical.Trigger{
			Duration: mustDuration(t, "-PT10M"),
			Related:  ical.TriggerRelatedEnd,
		}}
		// 10 minutes before the end of a one-hour event is 50 minutes
		// after the start
		minutes, ok := alarmMinutes(alarm, start, end)
		if !ok || minutes != -50 {
			t.Error("unexpected minutes", minutes, ok)
		}
	}()

	// case: end-related trigger without an end has no answer
	func() {
		alarm := &ical.Alarm{Trigger: ical.Trigger{
			Duration: mustDuration(t, "-PT10M"),
			Related:  ical.TriggerRelatedEnd,
		}}
		if _, ok := alarmMinutes(alarm, start, ical.DateTime{}); ok {
			t.Error("expected no answer")
		}
	}()

	// case: absolute triggers count from the start
	func() {
		alarm := &ical.Alarm{Trigger: ical.Trigger{
			IsAbsolute: true,
			Absolute:   ical.NewDateTimeUTC(time.Date(2020, 6, 1, 9, 15, 0, 0, time.UTC)),
		}}
		minutes, ok := alarmMinutes(alarm, start, end)
		if !ok || minutes != 45 {
			t.Error("unexpected minutes", minutes, ok)
		}
	}()
}

func TestBuildReminderRow(t *testing.T) {
	start := ical.NewDateTimeUTC(time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC))
	end := start

	cases := []struct {
		action ical.AlarmAction
		method int
	}{
		{ical.AlarmActionDisplay, model.ReminderMethodAlert},
		{ical.AlarmActionAudio, model.ReminderMethodAlert},
		{ical.AlarmActionEmail, model.ReminderMethodEmail},
		{ical.AlarmActionProcedure, model.ReminderMethodDefault},
		{"", model.ReminderMethodDefault},
	}
	for _, c := range cases {
		alarm := ical.Alarm{Action: c.action, Trigger: ical.Trigger{Duration: mustDuration(t, "-PT15M")}}
		row := buildReminderRow(&alarm, start, end)
		if row.Method != c.method {
			t.Errorf("action %q: got method %d, want %d", c.action, row.Method, c.method)
		}
		if row.Minutes != 15 {
			t.Errorf("action %q: got minutes %d, want 15", c.action, row.Minutes)
		}
	}

	// an uncalculable trigger stores the default lead time
	alarm := ical.Alarm{Action: ical.AlarmActionDisplay, Trigger: ical.Trigger{IsAbsolute: true}}
	row := buildReminderRow(&alarm, start, end)
	if row.Minutes != model.ReminderMinutesDefault {
		t.Error("unexpected minutes", row.Minutes)
	}
}

func TestReminderToAlarm(t *testing.T) {
	// case: alert rows become display alarms firing before the start
	func() {
		row := model.ReminderRow{Method: model.ReminderMethodAlert, Minutes: 45}
		alarm := reminderToAlarm(&row, "Dentist", "owner@example.com")
		if alarm.Action != ical.AlarmActionDisplay {
			t.Error("unexpected action", alarm.Action)
		}
		if alarm.Trigger.Duration.String() != "-PT45M" {
			t.Error("unexpected trigger", alarm.Trigger.Duration.String())
		}
		if alarm.Description != "Dentist" {
			t.Error("unexpected description", alarm.Description)
		}
	}()

	// case: email rows address the owner account
	func() {
		row := model.ReminderRow{Method: model.ReminderMethodEmail, Minutes: 10}
		alarm := reminderToAlarm(&row, "Dentist", "owner@example.com")
		if alarm.Action != ical.AlarmActionEmail {
			t.Error("unexpected action", alarm.Action)
		}
		if len(alarm.Attendees) != 1 || alarm.Attendees[0] != "mailto:owner@example.com" {
			t.Error("unexpected attendees", alarm.Attendees)
		}
		if alarm.Summary != "Dentist" {
			t.Error("unexpected summary", alarm.Summary)
		}
	}()

	// case: email rows degrade to display when the owner is not an address
	func() {
		row := model.ReminderRow{Method: model.ReminderMethodEmail, Minutes: 10}
		alarm := reminderToAlarm(&row, "Dentist", "Local Account")
		if alarm.Action != ical.AlarmActionDisplay {
			t.Error("unexpected action", alarm.Action)
		}
	}()

	// case: the default lead time fires at the start
	func() {
		row := model.ReminderRow{Method: model.ReminderMethodAlert, Minutes: model.ReminderMinutesDefault}
		alarm := reminderToAlarm(&row, "Dentist", "owner@example.com")
		if !alarm.Trigger.Duration.IsZero() {
			t.Error("unexpected trigger", alarm.Trigger.Duration)
		}
	}()

	// case: untitled events get a generated description
	func() {
		row := model.ReminderRow{Method: model.ReminderMethodAlert, Minutes: 5}
		alarm := reminderToAlarm(&row, "  ", "owner@example.com")
		if alarm.Description != "Calendar Event Reminder" {
			t.Error("unexpected description", alarm.Description)
		}
	}()
}

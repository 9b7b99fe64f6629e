package mapping

import (
	"log/slog"
	"strings"
	"time"

	"syncal/ical"
	"syncal/src-sync/model"
	"syncal/src-sync/utils"
)

// reminderFallbackDescription is used for generated alarms of untitled
// events.
const reminderFallbackDescription = "calendar event reminder"

// alarmMinutes calculates how many minutes before the event start an alarm
// fires. Negative minutes mean after the start. The storage granularity is
// minutes; seconds are cut off.
//
// End-related triggers are moved towards the start using the event's
// effective duration. Returns false when there is not enough information,
// for instance an absolute trigger without a start or an end-related
// trigger without an end.
func alarmMinutes(alarm *ical.Alarm, start, end ical.DateTime) (int, bool) {
	trigger := alarm.Trigger

	if trigger.IsAbsolute {
		if trigger.Absolute.IsZero() || start.IsZero() {
			return 0, false
		}
		millisBefore := start.UnixMilli() - trigger.Absolute.UnixMilli()
		return int(millisBefore / 60000), true
	}

	dur := trigger.Duration
	var millisBefore int64
	if dur.DatesOnly {
		// date-based offsets count plain 24h days, zone shifts are not
		// applied here
		days := int64(dur.Days)
		if dur.Neg {
			days = -days
		}
		millisBefore = -days * 24 * 3600 * 1000
	} else {
		total := dur.AddTo(time.UnixMilli(0))
		millisBefore = -total.UnixMilli()
	}

	if trigger.RelatedOrDefault() == ical.TriggerRelatedEnd {
		if start.IsZero() || end.IsZero() {
			slog.Warn("mapping: event without duration, can't calculate end-related alarm")
			return 0, false
		}
		// move the alarm towards the end
		millisBefore -= end.UnixMilli() - start.UnixMilli()
	}
	return int(millisBefore / 60000), true
}

// buildReminderRow maps one alarm onto a reminder child row.
func buildReminderRow(alarm *ical.Alarm, start, end ical.DateTime) model.ReminderRow {
	var method int
	switch alarm.Action {
	case ical.AlarmActionDisplay, ical.AlarmActionAudio:
		method = model.ReminderMethodAlert
	case ical.AlarmActionEmail:
		method = model.ReminderMethodEmail
	default:
		// won't fire on the device, but the lead time is kept
		method = model.ReminderMethodDefault
	}

	minutes, ok := alarmMinutes(alarm, start, end)
	if !ok {
		minutes = model.ReminderMinutesDefault
	}

	return model.ReminderRow{Method: method, Minutes: minutes}
}

// reminderToAlarm rebuilds an alarm from a reminder row. Email reminders
// need a deliverable recipient; when the owner account is not an email
// address the alarm degrades to a display alarm.
func reminderToAlarm(row *model.ReminderRow, eventTitle, ownerAccount string) ical.Alarm {
	description := eventTitle
	if strings.TrimSpace(description) == "" {
		description = utils.CleanupString(reminderFallbackDescription)
	}

	minutes := row.Minutes
	if minutes == model.ReminderMinutesDefault {
		minutes = 0
	}
	alarm := ical.Alarm{
		Trigger: ical.Trigger{
			Duration: ical.DurationOfTime(-time.Duration(minutes) * time.Minute),
		},
		Description: description,
	}

	if row.Method == model.ReminderMethodEmail {
		if strings.Count(ownerAccount, "@") == 1 && !strings.HasPrefix(ownerAccount, "@") {
			alarm.Action = ical.AlarmActionEmail
			alarm.Summary = description
			alarm.Attendees = []string{"mailto:" + ownerAccount}
			return alarm
		}
		slog.Warn("mapping: owner account is not an email address, changing email reminder to display")
	}
	alarm.Action = ical.AlarmActionDisplay
	return alarm
}

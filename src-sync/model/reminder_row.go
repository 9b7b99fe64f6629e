package model

import (
	"fmt"

	"github.com/uptrace/bun"
)

// Reminder method column values.
const (
	ReminderMethodDefault = 0
	ReminderMethodAlert   = 1
	ReminderMethodEmail   = 2
	ReminderMethodSMS     = 3
	ReminderMethodAlarm   = 4
)

// ReminderMinutesDefault marks a reminder whose lead time could not be
// computed and falls back to the calendar default.
const ReminderMinutesDefault = -1

// ReminderRow is one reminder child row: fire Minutes before the event
// start. Minutes may be negative for a reminder after the start.
type ReminderRow struct {
	bun.BaseModel `bun:"table:event_reminders"`

	ID      int64 `bun:"id,pk,autoincrement"`
	EventID int64 `bun:"event_id,notnull"`

	Method  int `bun:"reminder_method"`
	Minutes int `bun:"reminder_minutes"`
}

func (r *ReminderRow) Validate() error {
	switch r.Method {
	case ReminderMethodDefault, ReminderMethodAlert, ReminderMethodEmail,
		ReminderMethodSMS, ReminderMethodAlarm:
	default:
		return fmt.Errorf("ReminderRow.Validate: invalid method %d", r.Method)
	}
	return nil
}

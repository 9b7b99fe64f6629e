package model

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/uptrace/bun"
	"github.com/xyedo/rrule"
)

type EventRowIDCtxKeyType string

const EventRowIDCtxKey EventRowIDCtxKeyType = "event-row-ids"

// Status column values.
const (
	EventStatusTentative = 0
	EventStatusConfirmed = 1
	EventStatusCanceled  = 2
)

// Availability column values.
const (
	AvailabilityBusy      = 0
	AvailabilityFree      = 1
	AvailabilityTentative = 2
)

// Access level column values.
const (
	AccessDefault      = 0
	AccessConfidential = 1
	AccessPrivate      = 2
	AccessPublic       = 3
)

// EventRow is the parent row of one event occurrence set: either a main
// event or an exception of one. Optional columns are pointers so that an
// absent value survives a round trip as absent, not as a zero.
type EventRow struct {
	bun.BaseModel `bun:"table:events"`

	ID         int64 `bun:"id,pk,autoincrement"`
	CalendarID int64 `bun:"calendar_id,notnull"`

	SyncID      string  `bun:"sync_id"`
	ETag        *string `bun:"etag"`
	ScheduleTag *string `bun:"schedule_tag"`
	Flags       int     `bun:"flags"`
	Dirty       bool    `bun:"dirty"`
	Deleted     bool    `bun:"deleted"`

	UID      string `bun:"uid"`
	Sequence *int   `bun:"sequence"`

	Title       string `bun:"title"`
	Location    string `bun:"event_location"`
	Description string `bun:"description"`
	Organizer   string `bun:"organizer"`

	DtStart       int64   `bun:"dtstart,notnull"`
	StartTimeZone string  `bun:"event_timezone,notnull"`
	DtEnd         *int64  `bun:"dtend"`
	EndTimeZone   *string `bun:"event_end_timezone"`
	Duration      *string `bun:"duration"`
	AllDay        bool    `bun:"all_day"`

	RRule  *string `bun:"rrule"`
	RDate  *string `bun:"rdate"`
	ExRule *string `bun:"exrule"`
	ExDate *string `bun:"exdate"`

	AccessLevel     int  `bun:"access_level"`
	Availability    int  `bun:"availability"`
	Status          *int `bun:"event_status"`
	HasAttendeeData bool `bun:"has_attendee_data"`

	// Exception linkage, set on exception rows only.
	OriginalID           *int64  `bun:"original_id"`
	OriginalSyncID       *string `bun:"original_sync_id"`
	OriginalInstanceTime *int64  `bun:"original_instance_time"`
	OriginalAllDay       *bool   `bun:"original_all_day"`
}

func (e *EventRow) IsException() bool {
	return e.OriginalInstanceTime != nil
}

func (e *EventRow) IsRecurring() bool {
	return e.RRule != nil || e.RDate != nil
}

// Validate checks the cross-column invariants before the row is written.
func (e *EventRow) Validate() error {
	switch {
	case e.CalendarID == 0:
		return fmt.Errorf("EventRow.Validate: calendar id is required")
	case e.DtStart == 0:
		return fmt.Errorf("EventRow.Validate: dtstart is required")
	case e.StartTimeZone == "":
		return fmt.Errorf("EventRow.Validate: event timezone is required")
	case e.IsRecurring() && e.DtEnd != nil:
		return fmt.Errorf("EventRow.Validate: recurring event must not carry dtend")
	case e.IsRecurring() && e.Duration == nil:
		return fmt.Errorf("EventRow.Validate: recurring event requires duration")
	case !e.IsRecurring() && e.Duration != nil:
		return fmt.Errorf("EventRow.Validate: non-recurring event must not carry duration")
	case e.DtEnd != nil && *e.DtEnd < e.DtStart:
		return fmt.Errorf("EventRow.Validate: dtend is before dtstart")
	case e.IsException() && e.IsRecurring():
		return fmt.Errorf("EventRow.Validate: exception row must not recur")
	}
	if e.RRule != nil {
		if _, err := rrule.StrToRRuleSet(*e.RRule); err != nil {
			return fmt.Errorf("EventRow.Validate: invalid rrule: %w", err)
		}
	}
	return nil
}

var _ bun.AfterDeleteHook = (*EventRow)(nil)

// Cleanup attendee, reminder and extended child rows.
func (e *EventRow) AfterDelete(ctx context.Context, query *bun.DeleteQuery) error {
	if query.DB() == nil {
		return fmt.Errorf("EventRow.AfterDelete: db is nil")
	}

	switch eventRowID := ctx.Value(EventRowIDCtxKey).(type) {
	case int64:
		if eventRowID == 0 {
			return fmt.Errorf("EventRow.AfterDelete: deleted event row id is zero")
		}
		return deleteChildRows(ctx, query.DB(), []int64{eventRowID})
	case []int64:
		if len(eventRowID) == 0 {
			return fmt.Errorf("EventRow.AfterDelete: deleted event row ids are empty")
		}
		return deleteChildRows(ctx, query.DB(), eventRowID)
	case nil:
		return fmt.Errorf("EventRow.AfterDelete: event row id is nil")
	default:
		return fmt.Errorf("EventRow.AfterDelete: wrong event row id type | type=%T", eventRowID)
	}
}

func deleteChildRows(ctx context.Context, db bun.IDB, eventRowIDs []int64) error {
	for _, model := range []any{
		(*AttendeeRow)(nil),
		(*ReminderRow)(nil),
		(*ExtendedRow)(nil),
	} {
		if _, err := db.NewDelete().
			Model(model).
			Where("event_id IN (?)", bun.In(eventRowIDs)).
			Exec(ctx); err != nil {
			return fmt.Errorf("deleteChildRows: %w", err)
		}
	}

	// exceptions of a deleted main row go with it
	exceptionIDs := []int64{}
	if err := db.NewSelect().
		Model((*EventRow)(nil)).
		Column("id").
		Where("original_id IN (?)", bun.In(eventRowIDs)).
		Scan(ctx, &exceptionIDs); err != nil {
		slog.Warn("deleteChildRows: can't get exception row ids", "error", err)
		return nil
	}
	if len(exceptionIDs) == 0 {
		return nil
	}
	if _, err := db.NewDelete().
		Model((*EventRow)(nil)).
		Where("id IN (?)", bun.In(exceptionIDs)).
		Exec(context.WithValue(ctx, EventRowIDCtxKey, exceptionIDs)); err != nil {
		return fmt.Errorf("deleteChildRows: can't delete exception rows: %w", err)
	}
	return nil
}

// ValidateURL rejects extended URL values that would not survive a sync.
func ValidateURL(raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return fmt.Errorf("ValidateURL: %w", err)
	}
	return nil
}

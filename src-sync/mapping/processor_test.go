package mapping

import (
	"testing"
	"time"

	"syncal/ical"
	"syncal/src-sync/model"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestProcessTimedEvent(t *testing.T) {
	vienna := mustZone(t, "Europe/Vienna")
	processor := Processor{OwnerAccount: "owner@example.com"}

	start := time.Date(2020, 6, 1, 10, 0, 0, 0, vienna)
	end := time.Date(2020, 6, 1, 11, 30, 0, 0, vienna)
	data := &model.EventAndExceptions{Main: &model.EventRecord{
		Event: model.EventRow{
			UID:           "uid-1",
			Title:         "Dentist",
			DtStart:       start.UnixMilli(),
			StartTimeZone: "Europe/Vienna",
			DtEnd:         int64Ptr(end.UnixMilli()),
			Status:        intPtr(model.EventStatusConfirmed),
			Availability:  model.AvailabilityFree,
			AccessLevel:   model.AccessPrivate,
			Sequence:      intPtr(2),
		},
	}}

	event, err := processor.Process(data)
	if err != nil {
		t.Fatal(err)
	}
	if event.UID != "uid-1" || event.Summary != "Dentist" {
		t.Error("unexpected identity", event.UID, event.Summary)
	}
	if event.DTStart.UnixMilli() != start.UnixMilli() || event.DTStart.TZID() != "Europe/Vienna" {
		t.Error("unexpected start", event.DTStart)
	}
	// the end zone column is missing, the start zone fills in
	if event.DTEnd == nil || event.DTEnd.UnixMilli() != end.UnixMilli() || event.DTEnd.TZID() != "Europe/Vienna" {
		t.Error("unexpected end", event.DTEnd)
	}
	if event.Status != ical.EventStatusConfirmed {
		t.Error("unexpected status", event.Status)
	}
	if event.Opaque {
		t.Error("a free event is transparent")
	}
	if event.Classification != ical.ClassificationPrivate {
		t.Error("unexpected classification", event.Classification)
	}
	if event.Sequence != 2 {
		t.Error("unexpected sequence", event.Sequence)
	}
	if event.Organizer != nil {
		t.Error("no attendees, no organizer", event.Organizer)
	}
}

func TestProcessEndAndDuration(t *testing.T) {
	processor := Processor{}
	start := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)

	// case: an end at or before the start is ignored
	func() {
		data := &model.EventAndExceptions{Main: &model.EventRecord{
			Event: model.EventRow{
				UID: "uid-1", DtStart: start.UnixMilli(), StartTimeZone: "UTC",
				DtEnd: int64Ptr(start.UnixMilli()),
			},
		}}
		event, err := processor.Process(data)
		if err != nil {
			t.Fatal(err)
		}
		if event.DTEnd != nil {
			t.Error("a zero-length end should be dropped", event.DTEnd)
		}
	}()

	// case: a duration column synthesizes the end
	func() {
		data := &model.EventAndExceptions{Main: &model.EventRecord{
			Event: model.EventRow{
				UID: "uid-1", DtStart: start.UnixMilli(), StartTimeZone: "UTC",
				Duration: strPtr("PT1H30M"),
			},
		}}
		event, err := processor.Process(data)
		if err != nil {
			t.Fatal(err)
		}
		if event.DTEnd == nil || event.DTEnd.UnixMilli() != start.Add(90*time.Minute).UnixMilli() {
			t.Error("unexpected synthesized end", event.DTEnd)
		}
	}()

	// case: all-day durations count calendar days
	func() {
		dayStart := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
		data := &model.EventAndExceptions{Main: &model.EventRecord{
			Event: model.EventRow{
				UID: "uid-1", DtStart: dayStart.UnixMilli(), StartTimeZone: "UTC",
				AllDay: true, Duration: strPtr("P2D"),
			},
		}}
		event, err := processor.Process(data)
		if err != nil {
			t.Fatal(err)
		}
		if event.DTEnd == nil || !event.DTEnd.IsDate() || event.DTEnd.String() != "20200603" {
			t.Error("unexpected synthesized end", event.DTEnd)
		}
	}()

	// case: an unparseable duration is ignored
	func() {
		data := &model.EventAndExceptions{Main: &model.EventRecord{
			Event: model.EventRow{
				UID: "uid-1", DtStart: start.UnixMilli(), StartTimeZone: "UTC",
				Duration: strPtr("garbage"),
			},
		}}
		event, err := processor.Process(data)
		if err != nil {
			t.Fatal(err)
		}
		if event.DTEnd != nil {
			t.Error("unexpected end", event.DTEnd)
		}
	}()
}

func TestProcessRecurrence(t *testing.T) {
	processor := Processor{}
	start := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)

	data := &model.EventAndExceptions{Main: &model.EventRecord{
		Event: model.EventRow{
			UID: "uid-1", DtStart: start.UnixMilli(), StartTimeZone: "UTC",
			Duration: strPtr("PT1H"),
			RRule:    strPtr("FREQ=DAILY;COUNT=10"),
			RDate:    strPtr("20200601T100000Z,20200615T100000Z"),
			ExDate:   strPtr("20200603T100000Z"),
		},
	}}
	event, err := processor.Process(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(event.RRules) != 1 || event.RRules[0] != "FREQ=DAILY;COUNT=10" {
		t.Error("unexpected rules", event.RRules)
	}
	// the stored start instant must not come back as a recurrence date
	rdates := event.AllRDates()
	if len(rdates) != 1 || rdates[0].String() != "20200615T100000Z" {
		t.Error("unexpected recurrence dates", rdates)
	}
	exdates := event.AllExDates()
	if len(exdates) != 1 || exdates[0].String() != "20200603T100000Z" {
		t.Error("unexpected exception dates", exdates)
	}
}

func TestProcessRetainedProperties(t *testing.T) {
	processor := Processor{}
	start := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)

	classRaw, err := ical.UnknownProperty{Name: "CLASS", Value: "X-TOP-SECRET"}.EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}
	colorRaw, err := ical.UnknownProperty{Name: "X-COLOR", Value: "red"}.EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}

	record := &model.EventRecord{
		Event: model.EventRow{
			UID: "uid-1", DtStart: start.UnixMilli(), StartTimeZone: "UTC",
			AccessLevel: model.AccessPrivate,
		},
	}
	record.AddExtended(model.ExtNameUnknownProperty, classRaw)
	record.AddExtended(model.ExtNameUnknownProperty, colorRaw)
	record.AddExtended(model.ExtNameCategories, `Work\Private`)
	record.AddExtended(model.ExtNameURL, "https://example.com/event")

	event, err := processor.Process(&model.EventAndExceptions{Main: record})
	if err != nil {
		t.Fatal(err)
	}

	// the retained classification wins over the access level column
	if event.Classification != "X-TOP-SECRET" {
		t.Error("unexpected classification", event.Classification)
	}
	if len(event.Unknown) != 1 || event.Unknown[0].Name != "X-COLOR" {
		t.Error("unexpected unknown properties", event.Unknown)
	}
	if len(event.Categories) != 2 || event.Categories[0] != "Work" || event.Categories[1] != "Private" {
		t.Error("unexpected categories", event.Categories)
	}
	if event.URL != "https://example.com/event" {
		t.Error("unexpected url", event.URL)
	}
}

func TestProcessExceptions(t *testing.T) {
	vienna := mustZone(t, "Europe/Vienna")
	processor := Processor{}

	start := time.Date(2020, 6, 1, 10, 30, 0, 0, vienna)
	instance := time.Date(2020, 6, 8, 10, 30, 0, 0, vienna)
	moved := time.Date(2020, 6, 8, 14, 0, 0, 0, vienna)
	cancelled := time.Date(2020, 6, 15, 10, 30, 0, 0, vienna)

	data := &model.EventAndExceptions{
		Main: &model.EventRecord{Event: model.EventRow{
			UID: "uid-1", DtStart: start.UnixMilli(), StartTimeZone: "Europe/Vienna",
			Duration: strPtr("PT1H"), RRule: strPtr("FREQ=WEEKLY;COUNT=10"),
		}},
		Exceptions: []*model.EventRecord{
			{Event: model.EventRow{
				UID: "uid-1", Title: "Moved",
				DtStart: moved.UnixMilli(), StartTimeZone: "Europe/Vienna",
				DtEnd:                int64Ptr(moved.Add(time.Hour).UnixMilli()),
				OriginalInstanceTime: int64Ptr(instance.UnixMilli()),
				OriginalAllDay:       boolPtr(false),
			}},
			{Event: model.EventRow{
				UID: "uid-1", Title: "Cancelled",
				DtStart: cancelled.UnixMilli(), StartTimeZone: "Europe/Vienna",
				DtEnd:                int64Ptr(cancelled.Add(time.Hour).UnixMilli()),
				OriginalInstanceTime: int64Ptr(cancelled.UnixMilli()),
				OriginalAllDay:       boolPtr(false),
				Status:               intPtr(model.EventStatusCanceled),
			}},
			// nothing ties this one to an instance
			{Event: model.EventRow{
				UID: "uid-1", Title: "Orphan",
				DtStart: moved.UnixMilli(), StartTimeZone: "Europe/Vienna",
			}},
		},
	}

	event, err := processor.Process(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(event.Exceptions) != 1 {
		t.Fatal("expected one attached exception", len(event.Exceptions))
	}

	exception := event.Exceptions[0]
	if exception.Summary != "Moved" {
		t.Error("unexpected exception", exception.Summary)
	}
	if exception.RecurrenceID == nil || exception.RecurrenceID.UnixMilli() != instance.UnixMilli() {
		t.Error("unexpected recurrence id", exception.RecurrenceID)
	}
	if exception.RecurrenceID.TZID() != "Europe/Vienna" {
		t.Error("the id should carry the exception row's zone", exception.RecurrenceID)
	}

	// the cancelled instance folds into the exception dates
	exdates := event.AllExDates()
	if len(exdates) != 1 || exdates[0].UnixMilli() != cancelled.UnixMilli() {
		t.Error("unexpected exception dates", exdates)
	}
}

func TestProcessExceptionsOfNonRecurring(t *testing.T) {
	processor := Processor{}
	start := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)

	data := &model.EventAndExceptions{
		Main: &model.EventRecord{Event: model.EventRow{
			UID: "uid-1", DtStart: start.UnixMilli(), StartTimeZone: "UTC",
			DtEnd: int64Ptr(start.Add(time.Hour).UnixMilli()),
		}},
		Exceptions: []*model.EventRecord{
			{Event: model.EventRow{
				UID: "uid-1", DtStart: start.UnixMilli(), StartTimeZone: "UTC",
				OriginalInstanceTime: int64Ptr(start.UnixMilli()),
			}},
		},
	}
	event, err := processor.Process(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(event.Exceptions) != 0 {
		t.Error("a non-recurring event can't have exceptions", len(event.Exceptions))
	}
}

func TestProcessUIDFallback(t *testing.T) {
	processor := Processor{}
	record := &model.EventRecord{Event: model.EventRow{
		DtStart: time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC).UnixMilli(), StartTimeZone: "UTC",
	}}
	record.AddExtended(model.ExtNameICalUID, "legacy-uid")

	event, err := processor.Process(&model.EventAndExceptions{Main: record})
	if err != nil {
		t.Fatal(err)
	}
	if event.UID != "legacy-uid" {
		t.Error("unexpected uid", event.UID)
	}
}

// build then process and check the event comes back equivalent
func TestRoundTrip(t *testing.T) {
	vienna := mustZone(t, "Europe/Vienna")
	builder := Builder{CalendarID: 1, SyncID: "event-1.ics", OwnerAccount: "owner@example.com"}
	processor := Processor{OwnerAccount: "owner@example.com"}

	start := ical.NewDateTimeZoned(time.Date(2020, 6, 1, 10, 30, 0, 0, vienna), vienna)
	end := ical.NewDateTimeZoned(time.Date(2020, 6, 1, 12, 0, 0, 0, vienna), vienna)
	rid := ical.NewDateTimeZoned(time.Date(2020, 6, 8, 10, 30, 0, 0, vienna), vienna)
	exStart := ical.NewDateTimeZoned(time.Date(2020, 6, 8, 14, 0, 0, 0, vienna), vienna)
	exEnd := ical.NewDateTimeZoned(time.Date(2020, 6, 8, 15, 30, 0, 0, vienna), vienna)

	original := &ical.Event{
		UID:     "uid-1",
		Summary: "Weekly sync",
		DTStart: start,
		DTEnd:   &end,
		RRules:  []string{"FREQ=WEEKLY;COUNT=10"},
		Status:  ical.EventStatusConfirmed,
		Opaque:  true,
		Attendees: []ical.Attendee{
			{CalAddress: "mailto:owner@example.com", PartStat: ical.AttendeePartStatAccepted},
			{CalAddress: "mailto:guest@example.com", Role: ical.AttendeeRoleOptParticip},
		},
		Organizer:  &ical.Organizer{CalAddress: "mailto:owner@example.com"},
		Categories: []string{"Work"},
		Alarms: []ical.Alarm{
			{Action: ical.AlarmActionDisplay, Trigger: ical.Trigger{Duration: mustDuration(t, "-PT15M")}},
		},
		Exceptions: []*ical.Event{{
			UID:          "uid-1",
			Summary:      "Moved",
			DTStart:      exStart,
			DTEnd:        &exEnd,
			RecurrenceID: &rid,
		}},
	}

	data, err := builder.Build(original)
	if err != nil {
		t.Fatal(err)
	}
	got, err := processor.Process(data)
	if err != nil {
		t.Fatal(err)
	}

	if got.UID != original.UID || got.Summary != original.Summary {
		t.Error("unexpected identity", got.UID, got.Summary)
	}
	if got.DTStart.UnixMilli() != start.UnixMilli() || got.DTStart.TZID() != "Europe/Vienna" {
		t.Error("unexpected start", got.DTStart)
	}
	// the recurring event stored a duration, the end comes back synthesized
	if got.DTEnd == nil || got.DTEnd.UnixMilli() != end.UnixMilli() {
		t.Error("unexpected end", got.DTEnd)
	}
	if len(got.RRules) != 1 || got.RRules[0] != "FREQ=WEEKLY;COUNT=10" {
		t.Error("unexpected rules", got.RRules)
	}
	if len(got.AllRDates()) != 0 {
		t.Error("a rule-only event gets no recurrence dates back", got.RDates)
	}
	if got.Status != ical.EventStatusConfirmed || !got.Opaque {
		t.Error("unexpected status columns", got.Status, got.Opaque)
	}

	if got.Organizer == nil || got.Organizer.Email() != "owner@example.com" {
		t.Error("unexpected organizer", got.Organizer)
	}
	if len(got.Attendees) != 2 {
		t.Fatal("unexpected attendees", got.Attendees)
	}
	if got.Attendees[0].Email() != "owner@example.com" || got.Attendees[0].PartStat != ical.AttendeePartStatAccepted {
		t.Error("unexpected owner attendee", got.Attendees[0])
	}
	if got.Attendees[1].Role != ical.AttendeeRoleOptParticip {
		t.Error("unexpected guest attendee", got.Attendees[1])
	}

	if len(got.Categories) != 1 || got.Categories[0] != "Work" {
		t.Error("unexpected categories", got.Categories)
	}
	if len(got.Alarms) != 1 || got.Alarms[0].Trigger.Duration.String() != "-PT15M" {
		t.Error("unexpected alarms", got.Alarms)
	}

	if len(got.Exceptions) != 1 {
		t.Fatal("unexpected exceptions", got.Exceptions)
	}
	exception := got.Exceptions[0]
	if exception.Summary != "Moved" {
		t.Error("unexpected exception", exception.Summary)
	}
	if exception.RecurrenceID == nil || exception.RecurrenceID.UnixMilli() != rid.UnixMilli() {
		t.Error("unexpected recurrence id", exception.RecurrenceID)
	}
	if exception.DTStart.UnixMilli() != exStart.UnixMilli() {
		t.Error("unexpected exception start", exception.DTStart)
	}
}

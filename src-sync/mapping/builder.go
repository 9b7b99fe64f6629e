package mapping

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"syncal/ical"
	"syncal/src-sync/metric"
	"syncal/src-sync/model"
)

// classPropertyName is the wire name of the classification property; values
// other than public/private are retained verbatim as an extended row so they
// survive a round trip.
const classPropertyName = "CLASS"

// Builder maps an event with its exceptions onto a storage record tree.
type Builder struct {
	CalendarID   int64
	SyncID       string
	ETag         string
	ScheduleTag  string
	Flags        int
	OwnerAccount string

	// DefaultLocation anchors floating times; defaults to the system zone.
	DefaultLocation *time.Location
}

// buildUnit writes its columns into the record, returning false to discard
// the whole record.
type buildUnit func(b *Builder, from, main *ical.Event, role Role, to *model.EventRecord) bool

// buildUnits run in order; sync columns first, then event columns, then
// child rows.
var buildUnits = []buildUnit{
	(*Builder).buildSyncID,
	(*Builder).buildDirtyDeleted,
	(*Builder).buildCalendarID,
	(*Builder).buildTitle,
	(*Builder).buildDescription,
	(*Builder).buildLocation,
	(*Builder).buildStatus,
	(*Builder).buildETag,
	(*Builder).buildSyncFlags,
	(*Builder).buildSequence,
	(*Builder).buildTimeFields,
	(*Builder).buildAccessLevel,
	(*Builder).buildAvailability,
	(*Builder).buildRecurrenceFields,
	(*Builder).buildOriginalInstanceTime,
	(*Builder).buildOrganizer,
	(*Builder).buildUID,
	(*Builder).buildHasAttendeeData,
	(*Builder).buildAttendees,
	(*Builder).buildCategories,
	(*Builder).buildReminders,
	(*Builder).buildUnknownProperties,
	(*Builder).buildURL,
}

func (b *Builder) defaultLocation() *time.Location {
	if b.DefaultLocation != nil {
		return b.DefaultLocation
	}
	return time.Local
}

// Build maps the event and its exceptions onto a record tree. A failing
// main event is an error; a failing exception is dropped with a warning.
func (b *Builder) Build(event *ical.Event) (*model.EventAndExceptions, error) {
	if event == nil {
		return nil, fmt.Errorf("Builder.Build: event is nil")
	}
	main, ok := b.buildOne(event, event, RoleMain)
	if !ok {
		return nil, fmt.Errorf("Builder.Build: event %q: %w", event.UID, ical.ErrStartDateNotSet)
	}

	out := &model.EventAndExceptions{Main: main}
	for _, exception := range event.Exceptions {
		record, ok := b.buildOne(exception, event, RoleException)
		if !ok {
			slog.Warn("mapping: dropping exception that can't be stored",
				"uid", event.UID, "summary", exception.Summary)
			metric.DroppedExceptions.Inc()
			continue
		}
		out.Exceptions = append(out.Exceptions, record)
	}
	return out, nil
}

func (b *Builder) buildOne(from, main *ical.Event, role Role) (*model.EventRecord, bool) {
	record := &model.EventRecord{}
	for _, unit := range buildUnits {
		if !unit(b, from, main, role, record) {
			return nil, false
		}
	}
	return record, true
}

func (b *Builder) buildSyncID(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	if role == RoleMain {
		to.Event.SyncID = b.SyncID
		return true
	}
	if b.SyncID != "" {
		syncID := b.SyncID
		to.Event.OriginalSyncID = &syncID
	}
	return true
}

func (b *Builder) buildDirtyDeleted(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	// a freshly written row is never dirty or deleted
	to.Event.Dirty = false
	to.Event.Deleted = false
	return true
}

func (b *Builder) buildCalendarID(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	to.Event.CalendarID = b.CalendarID
	return true
}

func (b *Builder) buildTitle(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	to.Event.Title = strings.TrimSpace(from.Summary)
	return true
}

func (b *Builder) buildDescription(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	to.Event.Description = strings.TrimSpace(from.Description)
	return true
}

func (b *Builder) buildLocation(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	to.Event.Location = strings.TrimSpace(from.Location)
	return true
}

func (b *Builder) buildStatus(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	var status int
	switch from.Status {
	case "":
		return true
	case ical.EventStatusConfirmed:
		status = model.EventStatusConfirmed
	case ical.EventStatusCancelled:
		status = model.EventStatusCanceled
	default:
		// every other value is stored as tentative
		status = model.EventStatusTentative
	}
	to.Event.Status = &status
	return true
}

func (b *Builder) buildETag(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	if role != RoleMain {
		return true
	}
	if b.ETag != "" {
		eTag := b.ETag
		to.Event.ETag = &eTag
	}
	if b.ScheduleTag != "" {
		scheduleTag := b.ScheduleTag
		to.Event.ScheduleTag = &scheduleTag
	}
	return true
}

func (b *Builder) buildSyncFlags(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	to.Event.Flags = b.Flags
	return true
}

func (b *Builder) buildSequence(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	// a stored zero distinguishes synced events from locally created rows,
	// which keep a NULL sequence
	sequence := from.Sequence
	to.Event.Sequence = &sequence
	return true
}

// buildTimeFields writes start, end, duration, all-day flag and both zone
// columns. Recurring main events store a duration and no end; everything
// else stores an end and no duration.
func (b *Builder) buildTimeFields(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	if from.DTStart.IsZero() {
		return false
	}
	start := from.DTStart.Anchor(b.defaultLocation())
	allDay := from.IsAllDay()

	to.Event.DtStart = start.UnixMilli()
	to.Event.StartTimeZone = storageZoneID(start)
	to.Event.AllDay = allDay

	if role == RoleMain && from.IsRecurring() {
		duration := recurringDuration(from, start).String()
		to.Event.Duration = &duration
		return true
	}

	end := resolveEnd(from, start)
	endMillis := end.UnixMilli()
	endZone := storageZoneID(end)
	to.Event.DtEnd = &endMillis
	to.Event.EndTimeZone = &endZone
	return true
}

func (b *Builder) buildAccessLevel(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	retain := false
	switch from.Classification {
	case ical.ClassificationPublic:
		to.Event.AccessLevel = model.AccessPublic
	case ical.ClassificationPrivate:
		to.Event.AccessLevel = model.AccessPrivate
	case ical.ClassificationConfidential:
		to.Event.AccessLevel = model.AccessConfidential
		retain = true
	case "":
		to.Event.AccessLevel = model.AccessDefault
	default:
		// custom classifications are stored as private
		to.Event.AccessLevel = model.AccessPrivate
		retain = true
	}

	if retain {
		// confidential and custom values don't fit the column; retain the
		// property itself so it comes back unchanged
		prop := ical.UnknownProperty{Name: classPropertyName, Value: string(from.Classification)}
		raw, err := prop.EncodeJSON()
		if err != nil {
			slog.Warn("mapping: can't retain classification", "error", err)
			return true
		}
		to.AddExtended(model.ExtNameUnknownProperty, raw)
	}
	return true
}

func (b *Builder) buildAvailability(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	if from.Opaque {
		to.Event.Availability = model.AvailabilityBusy
	} else {
		to.Event.Availability = model.AvailabilityFree
	}
	return true
}

func (b *Builder) buildRecurrenceFields(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	if role != RoleMain || !from.IsRecurring() {
		return true
	}
	start := from.DTStart.Anchor(b.defaultLocation())

	if len(from.RRules) > 0 {
		rules := encodeRules(from.RRules)
		to.Event.RRule = &rules
	}

	if len(from.RDates) > 0 {
		if hasInfiniteRule(from.RRules) {
			// instance expansion can't handle a recurrence date list next
			// to a rule without COUNT or UNTIL
			slog.Warn("mapping: infinite rule plus recurrence dates, ignoring the dates",
				"uid", from.UID)
			metric.DroppedDateSets.Inc()
		} else {
			// the start instant gets lost in storage unless it appears in
			// the date list itself
			sets := append([]ical.DateSet{{Dates: []ical.DateTime{start}}}, anchorSets(from.RDates, b.defaultLocation())...)
			rdate := encodeDateSets(sets, start)
			if rdate != "" {
				to.Event.RDate = &rdate
			}
		}
	}

	if len(from.ExRules) > 0 {
		rules := encodeRules(from.ExRules)
		to.Event.ExRule = &rules
	}

	if len(from.ExDates) > 0 {
		exdate := encodeDateSets(anchorSets(from.ExDates, b.defaultLocation()), start)
		if exdate != "" {
			to.Event.ExDate = &exdate
		}
	}
	return true
}

func anchorSets(sets []ical.DateSet, loc *time.Location) []ical.DateSet {
	out := make([]ical.DateSet, len(sets))
	for i, set := range sets {
		out[i].Dates = make([]ical.DateTime, len(set.Dates))
		for j, d := range set.Dates {
			out[i].Dates[j] = d.Anchor(loc)
		}
	}
	return out
}

func (b *Builder) buildOriginalInstanceTime(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	if role != RoleException {
		return true
	}
	if from.RecurrenceID == nil {
		// nothing ties this exception to an instance of the main event
		return false
	}
	if main.DTStart.IsZero() {
		return false
	}
	mainStart := main.DTStart.Anchor(b.defaultLocation())

	originalAllDay := mainStart.IsDate()
	to.Event.OriginalAllDay = &originalAllDay

	aligned := alignRecurrenceID(from.RecurrenceID.Anchor(b.defaultLocation()), mainStart)
	originalInstanceTime := aligned.UnixMilli()
	to.Event.OriginalInstanceTime = &originalInstanceTime
	return true
}

func (b *Builder) buildOrganizer(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	// the organizer only matters for group-scheduled events; everything
	// else belongs to the owner
	if len(from.Attendees) == 0 {
		to.Event.Organizer = b.OwnerAccount
		return true
	}
	if from.Organizer != nil {
		if email := from.Organizer.Email(); email != "" {
			to.Event.Organizer = email
			return true
		}
	}
	to.Event.Organizer = b.OwnerAccount
	return true
}

func (b *Builder) buildUID(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	to.Event.UID = from.UID
	return true
}

func (b *Builder) buildHasAttendeeData(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	to.Event.HasAttendeeData = len(from.Attendees) > 0
	return true
}

func (b *Builder) buildAttendees(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	for i := range from.Attendees {
		attendee := &from.Attendees[i]

		row := model.AttendeeRow{DisplayName: attendee.CommonName}
		if email := attendee.Email(); email != "" {
			row.Email = email
		} else if scheme := attendee.URIScheme(); scheme != "" {
			row.IDNamespace = scheme
			row.Identity = attendee.CalAddress[len(scheme)+1:]
		} else {
			slog.Warn("mapping: attendee without usable address, ignoring",
				"address", attendee.CalAddress)
			metric.DroppedAttendees.Inc()
			continue
		}

		row.Type, row.Relationship = attendeeTypeAndRelationship(attendee)
		if isOwnerAddress(attendee, b.OwnerAccount) {
			row.Relationship = model.RelationshipOrganizer
		}
		row.Status = partStatToStatus(attendee.PartStat)

		to.Attendees = append(to.Attendees, row)
	}
	return true
}

func (b *Builder) buildCategories(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	if len(from.Categories) == 0 {
		return true
	}
	// the separator can't be escaped, drop it from the names
	cleaned := make([]string, 0, len(from.Categories))
	for _, category := range from.Categories {
		cleaned = append(cleaned, strings.ReplaceAll(category, model.CategoriesSeparator, ""))
	}
	to.AddExtended(model.ExtNameCategories, model.JoinCategories(cleaned))
	return true
}

func (b *Builder) buildReminders(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	if len(from.Alarms) == 0 {
		return true
	}
	start := from.DTStart.Anchor(b.defaultLocation())
	end := resolveEnd(from, start)
	for i := range from.Alarms {
		to.Reminders = append(to.Reminders, buildReminderRow(&from.Alarms[i], start, end))
	}
	return true
}

func (b *Builder) buildUnknownProperties(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	for _, prop := range from.Unknown {
		if prop.Value == "" {
			slog.Warn("mapping: ignoring unknown property with empty value", "name", prop.Name)
			metric.DroppedProperties.Inc()
			continue
		}
		if len(prop.Value) > ical.MaxUnknownPropertySize {
			slog.Warn("mapping: ignoring unknown property, value too long",
				"name", prop.Name, "octets", len(prop.Value))
			metric.DroppedProperties.Inc()
			continue
		}
		raw, err := prop.EncodeJSON()
		if err != nil {
			slog.Warn("mapping: can't encode unknown property", "name", prop.Name, "error", err)
			metric.DroppedProperties.Inc()
			continue
		}
		to.AddExtended(model.ExtNameUnknownProperty, raw)
	}
	return true
}

func (b *Builder) buildURL(from, main *ical.Event, role Role, to *model.EventRecord) bool {
	if from.URL == "" {
		return true
	}
	if err := model.ValidateURL(from.URL); err != nil {
		slog.Warn("mapping: ignoring invalid event url", "url", from.URL, "error", err)
		return true
	}
	to.AddExtended(model.ExtNameURL, from.URL)
	return true
}

package mapping

import (
	"fmt"
	"log/slog"
	"time"

	"syncal/ical"
	"syncal/src-sync/metric"
	"syncal/src-sync/model"
)

// Processor maps a storage record tree back onto an event with its
// exceptions.
type Processor struct {
	OwnerAccount string

	// DefaultLocation resolves zone columns that name no loadable zone;
	// defaults to the system zone.
	DefaultLocation *time.Location
}

// processUnit reads its columns and fills event fields. Absent columns
// leave the fields untouched.
type processUnit func(p *Processor, from, main *model.EventRecord, role Role, to *ical.Event)

var processUnits = []processUnit{
	(*Processor).processUID,
	(*Processor).processOriginalInstanceTime,
	(*Processor).processTitle,
	(*Processor).processLocation,
	(*Processor).processStartTime,
	(*Processor).processEndTime,
	(*Processor).processDuration,
	(*Processor).processRecurrenceFields,
	(*Processor).processDescription,
	(*Processor).processAccessLevel,
	(*Processor).processAvailability,
	(*Processor).processStatus,
	(*Processor).processSequence,
	(*Processor).processOrganizer,
	(*Processor).processAttendees,
	(*Processor).processCategories,
	(*Processor).processUnknownProperties,
	(*Processor).processURL,
	(*Processor).processReminders,
}

func (p *Processor) defaultLocation() *time.Location {
	if p.DefaultLocation != nil {
		return p.DefaultLocation
	}
	return time.Local
}

// Process maps a record tree back onto an event. Exception records of a
// recurring main record come back as exception events, except cancelled
// instances, which fold into the main event's exception dates. Exceptions
// without an instance time are dropped with a warning.
func (p *Processor) Process(data *model.EventAndExceptions) (*ical.Event, error) {
	if data == nil || data.Main == nil {
		return nil, fmt.Errorf("Processor.Process: main record is nil")
	}
	if data.Main.Event.DtStart == 0 {
		return nil, fmt.Errorf("Processor.Process: main record has no start time")
	}

	main := p.processOne(data.Main, data.Main, RoleMain)

	if main.IsRecurring() {
		for _, record := range data.Exceptions {
			if record.Event.DtStart == 0 {
				slog.Warn("mapping: dropping exception record without start time",
					"uid", main.UID)
				metric.DroppedExceptions.Inc()
				continue
			}
			exception := p.processOne(record, data.Main, RoleException)
			if exception.RecurrenceID == nil {
				slog.Warn("mapping: dropping exception record without instance time",
					"uid", main.UID)
				metric.DroppedExceptions.Inc()
				continue
			}

			if record.Event.Status != nil && *record.Event.Status == model.EventStatusCanceled {
				// a cancelled instance is an excluded date, not an event
				main.ExDates = append(main.ExDates, ical.DateSet{
					Dates: []ical.DateTime{*exception.RecurrenceID},
				})
				continue
			}
			main.Exceptions = append(main.Exceptions, exception)
		}
	}
	return main, nil
}

func (p *Processor) processOne(from, main *model.EventRecord, role Role) *ical.Event {
	event := &ical.Event{Opaque: true}
	for _, unit := range processUnits {
		unit(p, from, main, role, event)
	}
	return event
}

func (p *Processor) processUID(from, main *model.EventRecord, role Role, to *ical.Event) {
	if from.Event.UID != "" {
		to.UID = from.Event.UID
		return
	}
	// older stores kept the UID in an extended row
	to.UID = from.ExtendedValue(model.ExtNameICalUID)
}

func (p *Processor) processOriginalInstanceTime(from, main *model.EventRecord, role Role, to *ical.Event) {
	if role != RoleException {
		return
	}
	ts := from.Event.OriginalInstanceTime
	if ts == nil {
		return
	}
	originalAllDay := from.Event.OriginalAllDay != nil && *from.Event.OriginalAllDay

	// a timed instance id lives in the start zone of the exception row
	rid := timeFromColumns(*ts, from.Event.StartTimeZone, originalAllDay, p.defaultLocation())
	to.RecurrenceID = &rid
}

func (p *Processor) processTitle(from, main *model.EventRecord, role Role, to *ical.Event) {
	to.Summary = from.Event.Title
}

func (p *Processor) processLocation(from, main *model.EventRecord, role Role, to *ical.Event) {
	to.Location = from.Event.Location
}

func (p *Processor) processDescription(from, main *model.EventRecord, role Role, to *ical.Event) {
	to.Description = from.Event.Description
}

func (p *Processor) processStartTime(from, main *model.EventRecord, role Role, to *ical.Event) {
	if from.Event.DtStart == 0 {
		return
	}
	to.DTStart = timeFromColumns(
		from.Event.DtStart, from.Event.StartTimeZone, from.Event.AllDay, p.defaultLocation())
}

func (p *Processor) endZoneID(row *model.EventRow) string {
	if row.EndTimeZone != nil {
		return *row.EndTimeZone
	}
	// no end zone column, assume the start's
	return row.StartTimeZone
}

func (p *Processor) processEndTime(from, main *model.EventRecord, role Role, to *ical.Event) {
	if from.Event.DtEnd == nil {
		return
	}
	tsEnd := *from.Event.DtEnd
	if tsEnd <= from.Event.DtStart {
		// a zero-length event only stores its start
		if tsEnd < from.Event.DtStart {
			slog.Warn("mapping: ignoring end time before start time",
				"start", from.Event.DtStart, "end", tsEnd)
		}
		return
	}
	end := timeFromColumns(tsEnd, p.endZoneID(&from.Event), from.Event.AllDay, p.defaultLocation())
	to.DTEnd = &end
}

// processDuration turns a duration column into an end time; emitting an end
// instead of a duration round-trips better across consumers.
func (p *Processor) processDuration(from, main *model.EventRecord, role Role, to *ical.Event) {
	if from.Event.DtEnd != nil || from.Event.Duration == nil {
		return
	}
	duration, err := ical.ParseDuration(*from.Event.Duration)
	if err != nil {
		slog.Warn("mapping: can't parse duration column, ignoring",
			"duration", *from.Event.Duration, "error", err)
		return
	}
	if duration.IsZero() {
		return
	}

	if from.Event.AllDay {
		endDay := duration.AddTo(time.UnixMilli(from.Event.DtStart).In(time.UTC))
		end := ical.NewDate(endDay.Year(), endDay.Month(), endDay.Day())
		to.DTEnd = &end
		return
	}

	start := timeFromColumns(
		from.Event.DtStart, p.endZoneID(&from.Event), false, p.defaultLocation())
	end := ical.DateTime{Time: duration.AddTo(start.Time), Kind: start.Kind}
	to.DTEnd = &end
}

func (p *Processor) processRecurrenceFields(from, main *model.EventRecord, role Role, to *ical.Event) {
	row := &from.Event

	var rules []string
	if row.RRule != nil {
		rules = decodeRules(*row.RRule, row.DtStart)
	}

	var rdates []ical.DateSet
	if row.RDate != nil {
		set, err := decodeDateSet(*row.RDate, row.AllDay, p.defaultLocation(), row.DtStart)
		if err != nil {
			slog.Warn("mapping: can't parse recurrence dates, ignoring", "error", err)
		} else if len(set.Dates) > 0 {
			rdates = append(rdates, set)
		}
	}

	// only recurring main events carry recurrence properties
	if role != RoleMain || (len(rules) == 0 && len(rdates) == 0) {
		return
	}
	to.RRules = rules
	to.RDates = rdates

	if row.ExRule != nil {
		to.ExRules = decodeRules(*row.ExRule, row.DtStart)
	}
	if row.ExDate != nil {
		set, err := decodeDateSet(*row.ExDate, row.AllDay, p.defaultLocation())
		if err != nil {
			slog.Warn("mapping: can't parse exception dates, ignoring", "error", err)
		} else if len(set.Dates) > 0 {
			to.ExDates = append(to.ExDates, set)
		}
	}
}

func (p *Processor) processAccessLevel(from, main *model.EventRecord, role Role, to *ical.Event) {
	switch from.Event.AccessLevel {
	case model.AccessPublic:
		to.Classification = ical.ClassificationPublic
	case model.AccessPrivate:
		to.Classification = ical.ClassificationPrivate
	case model.AccessConfidential:
		to.Classification = ical.ClassificationConfidential
	}
	// a retained classification row wins, see processUnknownProperties
}

func (p *Processor) processAvailability(from, main *model.EventRecord, role Role, to *ical.Event) {
	to.Opaque = from.Event.Availability != model.AvailabilityFree
}

func (p *Processor) processStatus(from, main *model.EventRecord, role Role, to *ical.Event) {
	if from.Event.Status == nil {
		return
	}
	switch *from.Event.Status {
	case model.EventStatusConfirmed:
		to.Status = ical.EventStatusConfirmed
	case model.EventStatusTentative:
		to.Status = ical.EventStatusTentative
	case model.EventStatusCanceled:
		to.Status = ical.EventStatusCancelled
	}
}

func (p *Processor) processSequence(from, main *model.EventRecord, role Role, to *ical.Event) {
	if from.Event.Sequence != nil && *from.Event.Sequence > 0 {
		to.Sequence = *from.Event.Sequence
	}
}

func (p *Processor) processOrganizer(from, main *model.EventRecord, role Role, to *ical.Event) {
	// exceptions take the organizer from the main row
	organizer := main.Event.Organizer

	// the organizer is only meaningful for group-scheduled events
	if len(from.Attendees) == 0 || organizer == "" {
		return
	}
	to.Organizer = &ical.Organizer{CalAddress: "mailto:" + organizer}
}

func (p *Processor) processAttendees(from, main *model.EventRecord, role Role, to *ical.Event) {
	for i := range from.Attendees {
		row := &from.Attendees[i]

		var address string
		switch {
		case row.Identity != "" && row.IDNamespace != "":
			address = row.IDNamespace + ":" + row.Identity
		case row.Email != "":
			address = "mailto:" + row.Email
		default:
			slog.Warn("mapping: attendee row without address, ignoring", "id", row.ID)
			metric.DroppedAttendees.Inc()
			continue
		}

		cutype, attendeeRole := attendeeParamsFromColumns(row.Type, row.Relationship)
		to.Attendees = append(to.Attendees, ical.Attendee{
			CalAddress: address,
			CommonName: row.DisplayName,
			Cutype:     cutype,
			Role:       attendeeRole,
			PartStat:   statusToPartStat(row.Status),
			RSVP:       true,
		})
	}
}

func (p *Processor) processCategories(from, main *model.EventRecord, role Role, to *ical.Event) {
	value := from.ExtendedValue(model.ExtNameCategories)
	if value == "" {
		return
	}
	to.Categories = append(to.Categories, model.SplitCategories(value)...)
}

func (p *Processor) processUnknownProperties(from, main *model.EventRecord, role Role, to *ical.Event) {
	for _, row := range from.Extended {
		if row.Name != model.ExtNameUnknownProperty {
			continue
		}
		prop, err := ical.DecodeUnknownProperty(row.Value)
		if err != nil {
			slog.Warn("mapping: can't parse retained property, ignoring", "error", err)
			continue
		}
		if prop.Name == classPropertyName {
			// a retained classification overrides the access level column
			to.Classification = ical.Classification(prop.Value)
			continue
		}
		to.Unknown = append(to.Unknown, prop)
	}
}

func (p *Processor) processURL(from, main *model.EventRecord, role Role, to *ical.Event) {
	url := from.ExtendedValue(model.ExtNameURL)
	if url == "" {
		return
	}
	if err := model.ValidateURL(url); err != nil {
		slog.Warn("mapping: ignoring invalid stored url", "url", url, "error", err)
		return
	}
	to.URL = url
}

func (p *Processor) processReminders(from, main *model.EventRecord, role Role, to *ical.Event) {
	for i := range from.Reminders {
		to.Alarms = append(to.Alarms,
			reminderToAlarm(&from.Reminders[i], from.Event.Title, p.OwnerAccount))
	}
}

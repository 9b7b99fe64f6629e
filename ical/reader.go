package ical

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	goical "github.com/emersion/go-ical"
)

// DecodeCalendar parses VCALENDAR data. Events sharing a UID are grouped:
// the one without a RECURRENCE-ID becomes the main event and the others
// attach to it as exceptions. An exception without a main event stands
// alone.
func DecodeCalendar(r io.Reader) (*Calendar, error) {
	decoder := goical.NewDecoder(r)
	cal := NewCalendar()

	var all []*Event
	decoded := false
	for {
		raw, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("DecodeCalendar: %w", err)
		}
		decoded = true

		if name, err := raw.Props.Text(goical.PropName); err == nil && name != "" {
			cal.SetName(name)
		} else if name, err := raw.Props.Text("X-WR-CALNAME"); err == nil && name != "" {
			cal.SetName(name)
		}
		if desc, err := raw.Props.Text("X-WR-CALDESC"); err == nil && desc != "" {
			cal.SetDescription(desc)
		}
		if url := raw.Props.Get("URL"); url != nil && url.Value != "" {
			cal.SetUrl(url.Value)
		}

		for _, child := range raw.Children {
			if child.Name != goical.CompEvent {
				continue
			}
			event, err := decodeEvent(child)
			if err != nil {
				return nil, fmt.Errorf("DecodeCalendar: %w", err)
			}
			all = append(all, event)
		}
	}
	if !decoded {
		return nil, fmt.Errorf("DecodeCalendar: %w", ErrNoCalendarData)
	}

	for _, event := range groupEvents(all) {
		cal.AddEvent(event)
	}
	return &cal, nil
}

// groupEvents attaches exception events to their main event by UID, keeping
// the input order of the main events.
func groupEvents(all []*Event) []*Event {
	mains := make(map[string]*Event)
	var out []*Event
	for _, event := range all {
		if event.RecurrenceID == nil {
			mains[event.UID] = event
			out = append(out, event)
		}
	}
	for _, event := range all {
		if event.RecurrenceID == nil {
			continue
		}
		if main, ok := mains[event.UID]; ok {
			main.Exceptions = append(main.Exceptions, event)
		} else {
			out = append(out, event)
		}
	}
	return out
}

// ignoredProps are properties the codec regenerates on write and never needs
// to carry through storage.
var ignoredProps = map[string]bool{
	"DTSTAMP":       true,
	"CREATED":       true,
	"LAST-MODIFIED": true,
	"PRODID":        true,
	"COLOR":         true,
}

func decodeEvent(comp *goical.Component) (*Event, error) {
	// a missing UID gets a generated one
	event := NewEvent()

	for name, props := range comp.Props {
		for i := range props {
			prop := &props[i]
			switch name {
			case "UID":
				event.UID = prop.Value
			case "SUMMARY":
				event.Summary = prop.Value
			case "LOCATION":
				event.Location = prop.Value
			case "DESCRIPTION":
				event.Description = prop.Value
			case "URL":
				event.URL = prop.Value
			case "SEQUENCE":
				seq, err := strconv.Atoi(prop.Value)
				if err != nil {
					return nil, fmt.Errorf("decodeEvent: sequence: %w", err)
				}
				event.Sequence = seq
			case "CLASS":
				event.Classification = Classification(strings.ToUpper(prop.Value))
			case "STATUS":
				event.Status = EventStatus(strings.ToUpper(prop.Value))
			case "TRANSP":
				event.Opaque = !strings.EqualFold(prop.Value, "TRANSPARENT")
			case "DTSTART":
				dt, err := dateTimeFromProp(prop)
				if err != nil {
					return nil, err
				}
				event.DTStart = dt
			case "DTEND":
				dt, err := dateTimeFromProp(prop)
				if err != nil {
					return nil, err
				}
				event.DTEnd = &dt
			case "DURATION":
				dur, err := ParseDuration(prop.Value)
				if err != nil {
					return nil, fmt.Errorf("decodeEvent: %w", err)
				}
				event.Duration = &dur
			case "RECURRENCE-ID":
				dt, err := dateTimeFromProp(prop)
				if err != nil {
					return nil, err
				}
				event.RecurrenceID = &dt
			case "RRULE":
				event.RRules = append(event.RRules, prop.Value)
			case "EXRULE":
				event.ExRules = append(event.ExRules, prop.Value)
			case "RDATE":
				set, err := dateSetFromProp(prop)
				if err != nil {
					return nil, err
				}
				event.RDates = append(event.RDates, set)
			case "EXDATE":
				set, err := dateSetFromProp(prop)
				if err != nil {
					return nil, err
				}
				event.ExDates = append(event.ExDates, set)
			case "ORGANIZER":
				event.Organizer = &Organizer{
					CalAddress: prop.Value,
					CommonName: prop.Params.Get("CN"),
				}
			case "ATTENDEE":
				event.Attendees = append(event.Attendees, attendeeFromProp(prop))
			case "CATEGORIES":
				for _, category := range strings.Split(prop.Value, ",") {
					if category = strings.TrimSpace(category); category != "" {
						event.Categories = append(event.Categories, category)
					}
				}
			default:
				if ignoredProps[name] {
					continue
				}
				event.Unknown = append(event.Unknown, UnknownProperty{
					Name:   name,
					Value:  prop.Value,
					Params: flattenParams(prop.Params),
				})
			}
		}
	}

	for _, child := range comp.Children {
		if child.Name != "VALARM" {
			continue
		}
		alarm, err := decodeAlarm(child)
		if err != nil {
			return nil, err
		}
		event.Alarms = append(event.Alarms, alarm)
	}
	return event, nil
}

func decodeAlarm(comp *goical.Component) (Alarm, error) {
	var alarm Alarm
	for name, props := range comp.Props {
		for i := range props {
			prop := &props[i]
			switch name {
			case "ACTION":
				alarm.Action = AlarmAction(strings.ToUpper(prop.Value))
			case "TRIGGER":
				trigger, err := triggerFromProp(prop)
				if err != nil {
					return Alarm{}, err
				}
				alarm.Trigger = trigger
			case "DESCRIPTION":
				alarm.Description = prop.Value
			case "SUMMARY":
				alarm.Summary = prop.Value
			case "ATTENDEE":
				alarm.Attendees = append(alarm.Attendees, prop.Value)
			}
		}
	}
	return alarm, nil
}

func triggerFromProp(prop *goical.Prop) (Trigger, error) {
	if strings.EqualFold(prop.Params.Get("VALUE"), "DATE-TIME") || strings.HasSuffix(prop.Value, "Z") {
		dt, err := ParseDateTime(prop.Value, "")
		if err != nil {
			return Trigger{}, fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
		}
		return Trigger{IsAbsolute: true, Absolute: dt}, nil
	}
	dur, err := ParseDuration(prop.Value)
	if err != nil {
		return Trigger{}, fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
	}
	return Trigger{
		Duration: dur,
		Related:  TriggerRelated(strings.ToUpper(prop.Params.Get("RELATED"))),
	}, nil
}

func dateTimeFromProp(prop *goical.Prop) (DateTime, error) {
	dt, err := ParseDateTime(prop.Value, prop.Params.Get("TZID"))
	if err != nil {
		return DateTime{}, fmt.Errorf("decodeEvent: %s: %w", prop.Name, err)
	}
	return dt, nil
}

func dateSetFromProp(prop *goical.Prop) (DateSet, error) {
	tzid := prop.Params.Get("TZID")
	var set DateSet
	for _, part := range strings.Split(prop.Value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dt, err := ParseDateTime(part, tzid)
		if err != nil {
			return DateSet{}, fmt.Errorf("decodeEvent: %s: %w", prop.Name, err)
		}
		set.Dates = append(set.Dates, dt)
	}
	return set, nil
}

func flattenParams(params goical.Params) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for name := range params {
		out[name] = params.Get(name)
	}
	return out
}

func attendeeFromProp(prop *goical.Prop) Attendee {
	return Attendee{
		CalAddress: prop.Value,
		CommonName: prop.Params.Get("CN"),
		Cutype:     AttendeeCutype(strings.ToUpper(prop.Params.Get("CUTYPE"))),
		Role:       AttendeeRole(strings.ToUpper(prop.Params.Get("ROLE"))),
		PartStat:   AttendeePartStat(strings.ToUpper(prop.Params.Get("PARTSTAT"))),
		RSVP:       strings.EqualFold(prop.Params.Get("RSVP"), "TRUE"),
	}
}

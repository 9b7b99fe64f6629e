package ical

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"
)

const prodID = "-//syncal//syncal//EN"

// EncodeCalendar renders the calendar as a VCALENDAR stream. Exceptions are
// written as sibling VEVENTs after their main event.
func EncodeCalendar(w io.Writer, cal *Calendar) error {
	out := goical.NewCalendar()
	out.Props.SetText(goical.PropProductID, prodID)
	out.Props.SetText(goical.PropVersion, "2.0")
	if cal.GetName() != "" {
		out.Props.SetText("X-WR-CALNAME", cal.GetName())
	}
	if cal.GetDescription() != "" {
		out.Props.SetText("X-WR-CALDESC", cal.GetDescription())
	}
	if cal.GetUrl() != "" {
		out.Props.SetText("URL", cal.GetUrl())
	}

	for _, event := range cal.GetEvents() {
		out.Children = append(out.Children, encodeEvent(event))
		for _, exception := range event.Exceptions {
			out.Children = append(out.Children, encodeEvent(exception))
		}
	}

	if err := goical.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("EncodeCalendar: %w", err)
	}
	return nil
}

func encodeEvent(e *Event) *goical.Component {
	comp := goical.NewComponent(goical.CompEvent)
	comp.Props.SetText(goical.PropUID, e.UID)
	comp.Props.SetDateTime(goical.PropDateTimeStamp, time.Now().UTC())

	if e.Sequence > 0 {
		comp.Props.SetText("SEQUENCE", strconv.Itoa(e.Sequence))
	}
	if e.Summary != "" {
		comp.Props.SetText("SUMMARY", e.Summary)
	}
	if e.Location != "" {
		comp.Props.SetText("LOCATION", e.Location)
	}
	if e.Description != "" {
		comp.Props.SetText("DESCRIPTION", e.Description)
	}
	if e.URL != "" {
		comp.Props.SetText("URL", e.URL)
	}
	if e.Classification != "" {
		comp.Props.SetText("CLASS", string(e.Classification))
	}
	if e.Status != "" {
		comp.Props.SetText("STATUS", string(e.Status))
	}
	if !e.Opaque {
		comp.Props.SetText("TRANSP", "TRANSPARENT")
	}

	if !e.DTStart.IsZero() {
		comp.Props.Set(dateTimeProp("DTSTART", e.DTStart))
	}
	switch {
	case e.DTEnd != nil:
		comp.Props.Set(dateTimeProp("DTEND", *e.DTEnd))
	case e.Duration != nil:
		comp.Props.SetText("DURATION", e.Duration.String())
	}
	if e.RecurrenceID != nil {
		comp.Props.Set(dateTimeProp("RECURRENCE-ID", *e.RecurrenceID))
	}

	for _, rule := range e.RRules {
		prop := goical.NewProp("RRULE")
		prop.Value = rule
		comp.Props.Add(prop)
	}
	for _, rule := range e.ExRules {
		prop := goical.NewProp("EXRULE")
		prop.Value = rule
		comp.Props.Add(prop)
	}
	for _, set := range e.RDates {
		if prop := dateSetProp("RDATE", set); prop != nil {
			comp.Props.Add(prop)
		}
	}
	for _, set := range e.ExDates {
		if prop := dateSetProp("EXDATE", set); prop != nil {
			comp.Props.Add(prop)
		}
	}

	if e.Organizer != nil {
		prop := goical.NewProp("ORGANIZER")
		prop.Value = e.Organizer.CalAddress
		if e.Organizer.CommonName != "" {
			prop.Params.Set("CN", e.Organizer.CommonName)
		}
		comp.Props.Add(prop)
	}
	for i := range e.Attendees {
		comp.Props.Add(attendeeProp(&e.Attendees[i]))
	}
	if len(e.Categories) > 0 {
		comp.Props.SetText("CATEGORIES", strings.Join(e.Categories, ","))
	}

	for _, unknown := range e.Unknown {
		prop := goical.NewProp(unknown.Name)
		prop.Value = unknown.Value
		for name, value := range unknown.Params {
			prop.Params.Set(name, value)
		}
		comp.Props.Add(prop)
	}

	for i := range e.Alarms {
		comp.Children = append(comp.Children, encodeAlarm(&e.Alarms[i]))
	}
	return comp
}

func encodeAlarm(alarm *Alarm) *goical.Component {
	comp := goical.NewComponent("VALARM")

	action := alarm.Action
	if action == "" {
		action = AlarmActionDisplay
	}
	comp.Props.SetText("ACTION", string(action))

	trigger := goical.NewProp("TRIGGER")
	if alarm.Trigger.IsAbsolute {
		trigger.Value = alarm.Trigger.Absolute.String()
		trigger.Params.Set("VALUE", "DATE-TIME")
	} else {
		trigger.Value = alarm.Trigger.Duration.String()
		if alarm.Trigger.RelatedOrDefault() == TriggerRelatedEnd {
			trigger.Params.Set("RELATED", "END")
		}
	}
	comp.Props.Set(trigger)

	if alarm.Description != "" {
		comp.Props.SetText("DESCRIPTION", alarm.Description)
	}
	if alarm.Summary != "" {
		comp.Props.SetText("SUMMARY", alarm.Summary)
	}
	for _, attendee := range alarm.Attendees {
		prop := goical.NewProp("ATTENDEE")
		prop.Value = attendee
		comp.Props.Add(prop)
	}
	return comp
}

// dateTimeProp renders one DTSTART-style property, carrying the TZID or the
// VALUE=DATE parameter the value type calls for.
func dateTimeProp(name string, dt DateTime) *goical.Prop {
	prop := goical.NewProp(name)
	prop.Value = dt.String()
	switch dt.Kind {
	case KindDate:
		prop.Params.Set("VALUE", "DATE")
	case KindZoned:
		prop.Params.Set("TZID", dt.TZID())
	}
	return prop
}

// dateSetProp renders one RDATE-style property. The first entry decides the
// value type and zone of the whole property, as RFC 5545 requires.
func dateSetProp(name string, set DateSet) *goical.Prop {
	if len(set.Dates) == 0 {
		return nil
	}
	prop := dateTimeProp(name, set.Dates[0])

	first := set.Dates[0]
	parts := make([]string, 0, len(set.Dates))
	for _, dt := range set.Dates {
		switch first.Kind {
		case KindDate:
			dt = dt.AsDate()
		case KindZoned:
			dt = NewDateTimeZoned(dt.Time, first.Time.Location())
		case KindUTC:
			if !dt.IsDate() {
				dt = NewDateTimeUTC(dt.Time)
			}
		}
		parts = append(parts, dt.String())
	}
	prop.Value = strings.Join(parts, ",")
	return prop
}

func attendeeProp(a *Attendee) *goical.Prop {
	prop := goical.NewProp("ATTENDEE")
	prop.Value = a.CalAddress
	if a.CommonName != "" {
		prop.Params.Set("CN", a.CommonName)
	}
	if a.Cutype != "" {
		prop.Params.Set("CUTYPE", string(a.Cutype))
	}
	if a.Role != "" {
		prop.Params.Set("ROLE", string(a.Role))
	}
	if a.PartStat != "" {
		prop.Params.Set("PARTSTAT", string(a.PartStat))
	}
	if a.RSVP {
		prop.Params.Set("RSVP", "TRUE")
	}
	return prop
}

package ical

import (
	"strings"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusConfirmed EventStatus = "CONFIRMED"
	EventStatusTentative EventStatus = "TENTATIVE"
	EventStatusCancelled EventStatus = "CANCELLED"
)

type Classification string

const (
	ClassificationPublic       Classification = "PUBLIC"
	ClassificationPrivate      Classification = "PRIVATE"
	ClassificationConfidential Classification = "CONFIDENTIAL"
)

// Organizer is the ORGANIZER property of an event.
type Organizer struct {
	CalAddress string
	CommonName string
}

func (o *Organizer) Email() string {
	if addr, ok := strings.CutPrefix(strings.ToLower(o.CalAddress), "mailto:"); ok {
		return o.CalAddress[len(o.CalAddress)-len(addr):]
	}
	return ""
}

// DateSet is the value list of one RDATE or EXDATE property. All entries of
// a property share one value type and zone on the wire, but entries here may
// be heterogeneous after merging.
type DateSet struct {
	Dates []DateTime
}

// Event is one VEVENT with its attached exception events.
type Event struct {
	UID      string
	Sequence int

	Summary     string
	Location    string
	Description string
	URL         string

	Classification Classification
	Status         EventStatus
	// Opaque mirrors TRANSP; events block time unless marked transparent.
	Opaque bool

	DTStart  DateTime
	DTEnd    *DateTime
	Duration *Duration

	RRules  []string
	RDates  []DateSet
	ExRules []string
	ExDates []DateSet

	// RecurrenceID is set on exception events only.
	RecurrenceID *DateTime

	Organizer *Organizer
	Attendees []Attendee
	Alarms    []Alarm

	Categories []string
	Unknown    []UnknownProperty

	Exceptions []*Event
}

func NewEvent() *Event {
	return &Event{
		UID:    uuid.NewString(),
		Opaque: true,
	}
}

func (e *Event) IsAllDay() bool {
	return e.DTStart.IsDate()
}

func (e *Event) IsRecurring() bool {
	return len(e.RRules) > 0 || len(e.RDates) > 0
}

// AllRDates flattens the RDATE sets in property order.
func (e *Event) AllRDates() []DateTime {
	return flattenSets(e.RDates)
}

// AllExDates flattens the EXDATE sets in property order.
func (e *Event) AllExDates() []DateTime {
	return flattenSets(e.ExDates)
}

func flattenSets(sets []DateSet) []DateTime {
	var out []DateTime
	for _, set := range sets {
		out = append(out, set.Dates...)
	}
	return out
}

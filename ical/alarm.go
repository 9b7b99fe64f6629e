package ical

type AlarmAction string

const (
	AlarmActionAudio     AlarmAction = "AUDIO"
	AlarmActionDisplay   AlarmAction = "DISPLAY"
	AlarmActionEmail     AlarmAction = "EMAIL"
	AlarmActionProcedure AlarmAction = "PROCEDURE"
)

type TriggerRelated string

const (
	TriggerRelatedStart TriggerRelated = "START"
	TriggerRelatedEnd   TriggerRelated = "END"
)

// Trigger is a VALARM trigger: either an absolute UTC instant or a duration
// relative to the event start or end. A negative duration fires before the
// related edge.
type Trigger struct {
	IsAbsolute bool
	Absolute   DateTime
	Duration   Duration
	// Related defaults to start when empty.
	Related TriggerRelated
}

func (t Trigger) RelatedOrDefault() TriggerRelated {
	if t.Related == "" {
		return TriggerRelatedStart
	}
	return t.Related
}

// Alarm is one VALARM component of an event.
type Alarm struct {
	Action      AlarmAction
	Trigger     Trigger
	Description string
	Summary     string
	// Attendees are the cal-addresses an email alarm is delivered to.
	Attendees []string
}

package model

// EventRecord is one parent row with its child rows, the unit the mapping
// pipelines produce and consume. It carries no database handle.
type EventRecord struct {
	Event     EventRow
	Attendees []AttendeeRow
	Reminders []ReminderRow
	Extended  []ExtendedRow
}

// Extended value lookup by well-known name; empty string when absent.
func (r *EventRecord) ExtendedValue(name string) string {
	for _, row := range r.Extended {
		if row.Name == name {
			return row.Value
		}
	}
	return ""
}

func (r *EventRecord) AddExtended(name, value string) {
	r.Extended = append(r.Extended, ExtendedRow{Name: name, Value: value})
}

// EventAndExceptions is a main event record plus the exception records that
// override single instances of it.
type EventAndExceptions struct {
	Main       *EventRecord
	Exceptions []*EventRecord
}

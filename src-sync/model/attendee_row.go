package model

import (
	"fmt"

	"github.com/uptrace/bun"
)

// Attendee type column values.
const (
	AttendeeTypeNone     = 0
	AttendeeTypeRequired = 1
	AttendeeTypeOptional = 2
	AttendeeTypeResource = 3
)

// Attendee relationship column values.
const (
	RelationshipNone      = 0
	RelationshipAttendee  = 1
	RelationshipOrganizer = 2
	RelationshipPerformer = 3
	RelationshipSpeaker   = 4
)

// Attendee status column values.
const (
	AttendeeStatusNone      = 0
	AttendeeStatusAccepted  = 1
	AttendeeStatusDeclined  = 2
	AttendeeStatusInvited   = 3
	AttendeeStatusTentative = 4
)

// AttendeeRow is one attendee child row. Mail attendees carry Email; other
// URI schemes carry IDNamespace (the scheme) plus Identity (the rest).
type AttendeeRow struct {
	bun.BaseModel `bun:"table:event_attendees"`

	ID      int64 `bun:"id,pk,autoincrement"`
	EventID int64 `bun:"event_id,notnull"`

	Email       string `bun:"attendee_email"`
	IDNamespace string `bun:"attendee_id_namespace"`
	Identity    string `bun:"attendee_identity"`
	DisplayName string `bun:"attendee_name"`

	Type         int `bun:"attendee_type"`
	Relationship int `bun:"attendee_relationship"`
	Status       int `bun:"attendee_status"`
}

func (a *AttendeeRow) Validate() error {
	switch {
	case a.Email == "" && a.Identity == "":
		return fmt.Errorf("AttendeeRow.Validate: attendee carries neither email nor identity")
	case a.Identity != "" && a.IDNamespace == "":
		return fmt.Errorf("AttendeeRow.Validate: identity without namespace")
	}
	switch a.Type {
	case AttendeeTypeNone, AttendeeTypeRequired, AttendeeTypeOptional, AttendeeTypeResource:
	default:
		return fmt.Errorf("AttendeeRow.Validate: invalid type %d", a.Type)
	}
	switch a.Relationship {
	case RelationshipNone, RelationshipAttendee, RelationshipOrganizer,
		RelationshipPerformer, RelationshipSpeaker:
	default:
		return fmt.Errorf("AttendeeRow.Validate: invalid relationship %d", a.Relationship)
	}
	switch a.Status {
	case AttendeeStatusNone, AttendeeStatusAccepted, AttendeeStatusDeclined,
		AttendeeStatusInvited, AttendeeStatusTentative:
	default:
		return fmt.Errorf("AttendeeRow.Validate: invalid status %d", a.Status)
	}
	return nil
}

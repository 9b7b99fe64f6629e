package mapping

import (
	"strings"

	"syncal/ical"
	"syncal/src-sync/model"
)

// attendeeTypeAndRelationship maps an attendee's user category and role to
// the type/relationship column pair.
func attendeeTypeAndRelationship(a *ical.Attendee) (int, int) {
	// a chair of any non-resource category is a speaker
	if a.Role == ical.AttendeeRoleChair && a.Cutype != ical.AttendeeCutypeResource &&
		a.Cutype != ical.AttendeeCutypeRoom {
		return model.AttendeeTypeRequired, model.RelationshipSpeaker
	}
	switch a.Cutype {
	case ical.AttendeeCutypeResource:
		if a.Role == ical.AttendeeRoleChair {
			return model.AttendeeTypeResource, model.RelationshipSpeaker
		}
		return model.AttendeeTypeResource, model.RelationshipNone
	case ical.AttendeeCutypeRoom:
		return model.AttendeeTypeResource, model.RelationshipPerformer
	case ical.AttendeeCutypeGroup:
		return typeFromRole(a.Role), model.RelationshipPerformer
	case ical.AttendeeCutypeUnknown:
		return typeFromRole(a.Role), model.RelationshipNone
	default:
		// individual, custom categories and no category are people
		return typeFromRole(a.Role), model.RelationshipAttendee
	}
}

func typeFromRole(role ical.AttendeeRole) int {
	switch role {
	case ical.AttendeeRoleOptParticip:
		return model.AttendeeTypeOptional
	case ical.AttendeeRoleNonParticip:
		return model.AttendeeTypeNone
	default:
		return model.AttendeeTypeRequired
	}
}

// attendeeParamsFromColumns is the inverse: the column pair back to the
// (cutype, role) parameters, empty meaning "don't emit the parameter".
func attendeeParamsFromColumns(typ, relationship int) (ical.AttendeeCutype, ical.AttendeeRole) {
	switch relationship {
	case model.RelationshipPerformer:
		if typ == model.AttendeeTypeResource {
			return ical.AttendeeCutypeRoom, ""
		}
		return ical.AttendeeCutypeGroup, roleFromType(typ)
	case model.RelationshipSpeaker:
		if typ == model.AttendeeTypeResource {
			return ical.AttendeeCutypeResource, ical.AttendeeRoleChair
		}
		return "", ical.AttendeeRoleChair
	case model.RelationshipNone:
		if typ == model.AttendeeTypeResource {
			return ical.AttendeeCutypeResource, ""
		}
		return ical.AttendeeCutypeUnknown, roleFromType(typ)
	default:
		// organizer and attendee map by type alone
		if typ == model.AttendeeTypeResource {
			return ical.AttendeeCutypeResource, ""
		}
		return "", roleFromType(typ)
	}
}

func roleFromType(typ int) ical.AttendeeRole {
	switch typ {
	case model.AttendeeTypeOptional:
		return ical.AttendeeRoleOptParticip
	case model.AttendeeTypeNone:
		return ical.AttendeeRoleNonParticip
	default:
		return ""
	}
}

// partStatToStatus maps a participation status to the status column.
// Delegated and custom values carry no usable answer and collapse to none.
func partStatToStatus(partStat ical.AttendeePartStat) int {
	switch partStat {
	case ical.AttendeePartStatAccepted:
		return model.AttendeeStatusAccepted
	case ical.AttendeePartStatDeclined:
		return model.AttendeeStatusDeclined
	case ical.AttendeePartStatTentative:
		return model.AttendeeStatusTentative
	case ical.AttendeePartStatDelegated:
		return model.AttendeeStatusNone
	case ical.AttendeePartStatNeedsAction, "":
		return model.AttendeeStatusInvited
	default:
		return model.AttendeeStatusNone
	}
}

// statusToPartStat is the inverse; a none status yields no PARTSTAT at all.
func statusToPartStat(status int) ical.AttendeePartStat {
	switch status {
	case model.AttendeeStatusAccepted:
		return ical.AttendeePartStatAccepted
	case model.AttendeeStatusDeclined:
		return ical.AttendeePartStatDeclined
	case model.AttendeeStatusTentative:
		return ical.AttendeePartStatTentative
	case model.AttendeeStatusInvited:
		return ical.AttendeePartStatNeedsAction
	default:
		return ""
	}
}

// isOwnerAddress reports whether an attendee address belongs to the calendar
// owner account.
func isOwnerAddress(a *ical.Attendee, ownerAccount string) bool {
	email := a.Email()
	return email != "" && strings.EqualFold(email, ownerAccount)
}

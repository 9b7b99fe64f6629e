package ical

import "strings"

type AttendeeCutype string

const (
	AttendeeCutypeIndividual AttendeeCutype = "INDIVIDUAL"
	AttendeeCutypeGroup      AttendeeCutype = "GROUP"
	AttendeeCutypeResource   AttendeeCutype = "RESOURCE"
	AttendeeCutypeRoom       AttendeeCutype = "ROOM"
	AttendeeCutypeUnknown    AttendeeCutype = "UNKNOWN"
)

type AttendeeRole string

const (
	AttendeeRoleChair       AttendeeRole = "CHAIR"
	AttendeeRoleReqParticip AttendeeRole = "REQ-PARTICIPANT"
	AttendeeRoleOptParticip AttendeeRole = "OPT-PARTICIPANT"
	AttendeeRoleNonParticip AttendeeRole = "NON-PARTICIPANT"
)

type AttendeePartStat string

const (
	AttendeePartStatNeedsAction AttendeePartStat = "NEEDS-ACTION"
	AttendeePartStatAccepted    AttendeePartStat = "ACCEPTED"
	AttendeePartStatDeclined    AttendeePartStat = "DECLINED"
	AttendeePartStatTentative   AttendeePartStat = "TENTATIVE"
	AttendeePartStatDelegated   AttendeePartStat = "DELEGATED"
)

// Attendee is one ATTENDEE property of an event.
type Attendee struct {
	// CalAddress is the attendee URI, normally "mailto:user@host".
	CalAddress string
	CommonName string
	Cutype     AttendeeCutype
	Role       AttendeeRole
	PartStat   AttendeePartStat
	RSVP       bool
}

// Email extracts the address from a mailto cal-address, empty otherwise.
func (a *Attendee) Email() string {
	if addr, ok := strings.CutPrefix(strings.ToLower(a.CalAddress), "mailto:"); ok {
		return a.CalAddress[len(a.CalAddress)-len(addr):]
	}
	return ""
}

// URIScheme returns the scheme of a non-mailto cal-address, empty when the
// address is a mailto or carries no scheme at all.
func (a *Attendee) URIScheme() string {
	if a.Email() != "" {
		return ""
	}
	scheme, _, ok := strings.Cut(a.CalAddress, ":")
	if !ok || scheme == "" {
		return ""
	}
	return strings.ToLower(scheme)
}

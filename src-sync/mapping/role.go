// Package mapping converts calendar events to storage records and back.
//
// Both directions run a fixed, ordered list of field units over the event or
// record. Each unit owns a small set of columns or properties and is told
// whether it is working on the main event or on an exception of it.
package mapping

// Role tells a field unit whether the value it is working on is the main
// event or an exception overriding one instance of the main event.
type Role int

const (
	RoleMain Role = iota
	RoleException
)

func (r Role) String() string {
	if r == RoleException {
		return "exception"
	}
	return "main"
}

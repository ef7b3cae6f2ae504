// Package roles defines the closed set of portal roles.
package roles

import (
	"fmt"
	"strings"
)

// Role is a portal user role. The zero value is None and means there is no
// authenticated user.
type Role uint8

const (
	None      Role = iota
	Applicant      // Submits enrollment applications
	Moderator      // Reviews applications for one organization
	AdminApp       // Platform-wide administrator
	AdminOrg       // Administrator of one organization
)

// All lists every assignable role in display order.
var All = []Role{Applicant, Moderator, AdminApp, AdminOrg}

// String returns the wire name of the role as used by the backend.
func (r Role) String() string {
	switch r {
	case None:
		return ""
	case Applicant:
		return "applicant"
	case Moderator:
		return "moderator"
	case AdminApp:
		return "admin_app"
	case AdminOrg:
		return "admin_org"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case Applicant, Moderator, AdminApp, AdminOrg:
		return true
	case None:
		return false
	}
	return false
}

// Parse converts a backend role name to a Role.
func Parse(s string) (Role, error) {
	switch strings.TrimSpace(s) {
	case "applicant":
		return Applicant, nil
	case "moderator":
		return Moderator, nil
	case "admin_app":
		return AdminApp, nil
	case "admin_org":
		return AdminOrg, nil
	}
	return None, fmt.Errorf("unknown role %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value decodes to None.
func (r *Role) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = None
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Set is an immutable set of roles.
type Set uint8

// NewSet builds a set from the given roles. None and invalid values are ignored.
func NewSet(rs ...Role) Set {
	var s Set
	for _, r := range rs {
		if r.Valid() {
			s |= 1 << r
		}
	}
	return s
}

// Any is the set of every assignable role.
var Any = NewSet(All...)

// Contains reports whether r is in the set.
func (s Set) Contains(r Role) bool {
	return r.Valid() && s&(1<<r) != 0
}

// Roles returns the members of the set in display order.
func (s Set) Roles() []Role {
	out := make([]Role, 0, len(All))
	for _, r := range All {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, len(All))
	for _, r := range s.Roles() {
		names = append(names, r.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Package guard decides whether a session may see a role-gated page.
package guard

import (
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/jrsteele09/admissions-portal/session"
)

type Outcome uint8

const (
	Allow Outcome = iota
	Loading
	RedirectLogin
	RedirectNotFound
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectNotFound:
		return "redirect_not_found"
	default:
		return "unknown"
	}
}

// Decide applies the access rules in order: loading wins, then a missing
// token or session sends the user to login, then a role outside allowed is
// answered with not-found rather than forbidden.
func Decide(snap session.Snapshot, hasToken bool, allowed roles.Set) Outcome {
	switch {
	case snap.State == session.StateLoading:
		return Loading
	case !hasToken || snap.State != session.StateAuthenticated || snap.Session == nil:
		return RedirectLogin
	case !allowed.Contains(snap.Session.Role):
		return RedirectNotFound
	default:
		return Allow
	}
}

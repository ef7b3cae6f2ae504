package guard_test

import (
	"testing"

	"github.com/jrsteele09/admissions-portal/guard"
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/stretchr/testify/require"
)

func authenticated(r roles.Role) session.Snapshot {
	return session.Snapshot{
		State:   session.StateAuthenticated,
		Session: &session.Session{ID: 1, Email: "user@example.org", Role: r},
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		snap     session.Snapshot
		hasToken bool
		allowed  roles.Set
		want     guard.Outcome
	}{
		{"loading with token", session.Snapshot{State: session.StateLoading}, true, roles.Any, guard.Loading},
		{"loading without token", session.Snapshot{State: session.StateLoading}, false, roles.Any, guard.Loading},
		{"anonymous", session.Snapshot{State: session.StateAnonymous}, false, roles.Any, guard.RedirectLogin},
		{"session but token gone", authenticated(roles.Applicant), false, roles.Any, guard.RedirectLogin},
		{"wrong role", authenticated(roles.Applicant), true, roles.NewSet(roles.AdminOrg), guard.RedirectNotFound},
		{"allowed role", authenticated(roles.AdminOrg), true, roles.NewSet(roles.AdminOrg), guard.Allow},
		{"empty allowed set", authenticated(roles.AdminApp), true, roles.NewSet(), guard.RedirectNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, guard.Decide(tt.snap, tt.hasToken, tt.allowed))
		})
	}
}

func TestDecide_ApplicantOnModerators(t *testing.T) {
	route, ok := guard.Lookup("/moderators")
	require.True(t, ok)
	require.Equal(t, guard.RedirectNotFound, guard.Decide(authenticated(roles.Applicant), true, route.Allowed))
}

func TestDecide_AnonymousOnDashboard(t *testing.T) {
	route, ok := guard.Lookup("/dashboard")
	require.True(t, ok)
	require.Equal(t, guard.RedirectLogin, guard.Decide(session.Snapshot{State: session.StateAnonymous}, false, route.Allowed))
}

func TestLookup(t *testing.T) {
	route, ok := guard.Lookup("/application/12/4")
	require.True(t, ok)
	require.Equal(t, guard.PathApplicationForm, route.Pattern)
	require.True(t, route.Allowed.Contains(roles.Applicant))
	require.False(t, route.Allowed.Contains(roles.Moderator))

	_, ok = guard.Lookup("/application/12")
	require.False(t, ok)
	_, ok = guard.Lookup("/nowhere")
	require.False(t, ok)

	route, ok = guard.Lookup("/messages/")
	require.True(t, ok)
	require.False(t, route.Allowed.Contains(roles.AdminApp))
}

func TestIsPublic(t *testing.T) {
	require.True(t, guard.IsPublic("/login"))
	require.True(t, guard.IsPublic("/institutions-apply"))
	require.False(t, guard.IsPublic("/dashboard"))
}

package roles_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, r := range roles.All {
		t.Run(r.String(), func(t *testing.T) {
			parsed, err := roles.Parse(r.String())
			require.NoError(t, err)
			require.Equal(t, r, parsed)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		r, err := roles.Parse("super_admin")
		require.Error(t, err)
		require.Equal(t, roles.None, r)
	})
}

func TestRole_JSON(t *testing.T) {
	var payload struct {
		Role roles.Role `json:"role"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"role":"admin_org"}`), &payload))
	require.Equal(t, roles.AdminOrg, payload.Role)

	require.Error(t, json.Unmarshal([]byte(`{"role":"root"}`), &payload))

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"admin_org"}`, string(out))
}

func TestSet(t *testing.T) {
	s := roles.NewSet(roles.Moderator, roles.AdminOrg, roles.None)

	require.True(t, s.Contains(roles.Moderator))
	require.True(t, s.Contains(roles.AdminOrg))
	require.False(t, s.Contains(roles.Applicant))
	require.False(t, s.Contains(roles.None))
	require.Equal(t, []roles.Role{roles.Moderator, roles.AdminOrg}, s.Roles())
	require.Equal(t, "{moderator, admin_org}", s.String())

	require.Equal(t, roles.All, roles.Any.Roles())
}

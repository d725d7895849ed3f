package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"user", "admin"} {
		r, ok := ParseRole(valid)
		require.True(t, ok)
		require.Equal(t, valid, r.String())
	}

	for _, invalid := range []string{"", "root", "Admin", "superuser"} {
		_, ok := ParseRole(invalid)
		require.False(t, ok, "role %q should not parse", invalid)
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	t.Run("allows member of required set", func(t *testing.T) {
		d := Authorize(RoleAdmin, RoleAdmin)
		require.True(t, d.Allowed)
		require.Equal(t, RoleAdmin, d.Role)
	})

	t.Run("denies user for admin-only set", func(t *testing.T) {
		d := Authorize(RoleUser, RoleAdmin)
		require.False(t, d.Allowed)
		require.Equal(t, RoleUser, d.Role)
		require.Equal(t, []Role{RoleAdmin}, d.Required)
	})

	t.Run("allows any role in a multi-role set", func(t *testing.T) {
		require.True(t, Authorize(RoleUser, RoleUser, RoleAdmin).Allowed)
		require.True(t, Authorize(RoleAdmin, RoleUser, RoleAdmin).Allowed)
	})

	t.Run("empty required set denies everything", func(t *testing.T) {
		require.False(t, Authorize(RoleAdmin).Allowed)
	})
}

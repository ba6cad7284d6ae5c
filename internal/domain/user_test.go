package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/registry/internal/apperr"
)

func TestNewUserDefaults(t *testing.T) {
	u, err := NewUser("dev@example.com", "dev", "Dev Eloper", RoleViewer)
	require.NoError(t, err)

	assert.Equal(t, UserStatusPending, u.Status)
	assert.Equal(t, RoleViewer, u.Role)
	assert.False(t, u.IsActive())
}

func TestUserStatusTransitions(t *testing.T) {
	u, err := NewUser("dev@example.com", "dev", "", RoleViewer)
	require.NoError(t, err)

	require.NoError(t, u.Activate())
	assert.True(t, u.IsActive())

	require.NoError(t, u.Suspend())
	assert.Equal(t, UserStatusSuspended, u.Status)

	// Suspended accounts can be reinstated.
	require.NoError(t, u.Activate())
	assert.True(t, u.IsActive())
}

func TestUserChangeRoleRejectsUnknown(t *testing.T) {
	u, err := NewUser("dev@example.com", "dev", "", RoleViewer)
	require.NoError(t, err)

	require.NoError(t, u.ChangeRole(RoleEditor))
	assert.Equal(t, RoleEditor, u.Role)

	err = u.ChangeRole(Role("root"))
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.CodeValidation, ae.Code)
	assert.Equal(t, RoleEditor, u.Role)
}

func TestNewUserValidation(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		username string
	}{
		{"missing email", "", "dev"},
		{"malformed email", "not-an-email", "dev"},
		{"missing username", "dev@example.com", ""},
		{"short username", "dev@example.com", "ab"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.email, tc.username, "", RoleViewer)
			require.Error(t, err)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
		})
	}
}

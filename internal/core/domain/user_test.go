package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"ADMIN", "MANAGER", "CLIENT"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}

	for _, invalid := range []string{"", "admin", "SUPERUSER", "Client"} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "role %q must be rejected", invalid)
	}
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleAdmin.CanManageUsers())
	assert.True(t, RoleManager.CanManageUsers())
	assert.False(t, RoleClient.CanManageUsers())

	assert.True(t, RoleAdmin.CanViewAllAccounts())
	assert.True(t, RoleManager.CanViewAllAccounts())
	assert.False(t, RoleClient.CanViewAllAccounts())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleIsOfficer(t *testing.T) {
	assert.True(t, RoleClassA.IsOfficer())
	assert.True(t, RoleClassB.IsOfficer())
	assert.True(t, RoleClassC.IsOfficer())
	assert.False(t, RoleCitizen.IsOfficer())
	assert.False(t, RoleContractor.IsOfficer())
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"citizen", "contractor", "class_c", "class_b", "class_a"} {
		assert.Truef(t, IsValidRole(role), "expected %s to be valid", role)
	}
	assert.False(t, IsValidRole("admin"))
	assert.False(t, IsValidRole(""))
}

func TestPasswordHashing(t *testing.T) {
	u := &User{Password: "s3cret-pass"}
	require.NoError(t, u.HashPassword())
	assert.NotEqual(t, "s3cret-pass", u.Password)

	assert.True(t, u.ComparePassword("s3cret-pass"))
	assert.False(t, u.ComparePassword("wrong-pass"))
}

package lifecycle

import (
	"testing"

	"civicdesk-be/models"

	"github.com/stretchr/testify/assert"
)

func TestHasPermissionMatrix(t *testing.T) {
	cases := []struct {
		role       models.Role
		permission Permission
		want       bool
	}{
		{models.RoleCitizen, ReportsCreate, true},
		{models.RoleCitizen, ReportsViewOwn, true},
		{models.RoleCitizen, ReportsValidate, false},
		{models.RoleCitizen, WorkOrdersCreate, false},
		{models.RoleCitizen, UsersCreate, false},

		{models.RoleContractor, WorkOrdersViewAssigned, true},
		{models.RoleContractor, WorkOrdersUpdateStatus, true},
		{models.RoleContractor, WorkOrdersAssign, false},
		{models.RoleContractor, WorkOrdersVerify, false},
		{models.RoleContractor, ReportsCreate, false},

		{models.RoleClassC, ReportsViewWard, true},
		{models.RoleClassC, ReportsValidate, true},
		{models.RoleClassC, WorkOrdersCreate, true},
		{models.RoleClassC, WorkOrdersVerify, true},
		{models.RoleClassC, ReportsViewAll, false},
		{models.RoleClassC, ContractorsApprove, false},
		{models.RoleClassC, UsersCreate, false},

		{models.RoleClassB, ReportsViewDepartment, true},
		{models.RoleClassB, ContractorsApprove, true},
		{models.RoleClassB, ContractorsSuspend, true},
		{models.RoleClassB, UsersCreate, true},
		{models.RoleClassB, ReportsViewAll, false},
		{models.RoleClassB, SLAModifyCity, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, HasPermission(tc.role, tc.permission),
			"%s / %s", tc.role, tc.permission)
	}
}

func TestClassAHasEveryPermission(t *testing.T) {
	for _, p := range allPermissions {
		assert.Truef(t, HasPermission(models.RoleClassA, p), "class_a missing %s", p)
	}
}

func TestUnknownRoleHasNoPermissions(t *testing.T) {
	assert.False(t, HasPermission(models.Role("intern"), ReportsCreate))
	assert.Empty(t, PermissionsForRole(models.Role("intern")))
}

func TestPermissionsForRoleMatchesLookup(t *testing.T) {
	for _, role := range []models.Role{
		models.RoleCitizen, models.RoleContractor,
		models.RoleClassC, models.RoleClassB, models.RoleClassA,
	} {
		for _, p := range PermissionsForRole(role) {
			assert.Truef(t, HasPermission(role, p), "%s / %s", role, p)
		}
	}
}

func TestBudgetCeilings(t *testing.T) {
	assert.True(t, CanApproveBudget(models.RoleClassC, 50_000))
	assert.False(t, CanApproveBudget(models.RoleClassC, 50_001))

	assert.True(t, CanApproveBudget(models.RoleClassB, 500_000))
	assert.False(t, CanApproveBudget(models.RoleClassB, 500_001))

	assert.True(t, CanApproveBudget(models.RoleClassA, 10_000_000))

	assert.False(t, CanApproveBudget(models.RoleCitizen, 1))
	assert.False(t, CanApproveBudget(models.RoleContractor, 1))
}

func TestBudgetLimit(t *testing.T) {
	assert.Equal(t, float64(50_000), BudgetLimit(models.RoleClassC))
	assert.Equal(t, float64(500_000), BudgetLimit(models.RoleClassB))
	assert.Equal(t, UnlimitedBudget, BudgetLimit(models.RoleClassA))
	assert.Equal(t, float64(0), BudgetLimit(models.RoleCitizen))
}

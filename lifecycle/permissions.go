package lifecycle

import "civicdesk-be/models"

// Permission identifies one grantable capability.
type Permission string

const (
	ReportsCreate         Permission = "reports:create"
	ReportsViewOwn        Permission = "reports:view_own"
	ReportsViewAll        Permission = "reports:view_all"
	ReportsViewWard       Permission = "reports:view_ward"
	ReportsViewDepartment Permission = "reports:view_department"
	ReportsValidate       Permission = "reports:validate"
	ReportsOverrideAI     Permission = "reports:override_ai"
	ReportsClose          Permission = "reports:close"

	WorkOrdersCreate         Permission = "workorders:create"
	WorkOrdersViewAssigned   Permission = "workorders:view_assigned"
	WorkOrdersViewWard       Permission = "workorders:view_ward"
	WorkOrdersViewDepartment Permission = "workorders:view_department"
	WorkOrdersViewAll        Permission = "workorders:view_all"
	WorkOrdersAssign         Permission = "workorders:assign"
	WorkOrdersReassign       Permission = "workorders:reassign"
	WorkOrdersUpdateStatus   Permission = "workorders:update_status"
	WorkOrdersVerify         Permission = "workorders:verify"
	WorkOrdersEmergency      Permission = "workorders:emergency"

	ContractorsViewAssigned Permission = "contractors:view_assigned"
	ContractorsViewWard     Permission = "contractors:view_ward"
	ContractorsViewAll      Permission = "contractors:view_all"
	ContractorsRegister     Permission = "contractors:register"
	ContractorsApprove      Permission = "contractors:approve"
	ContractorsSuspend      Permission = "contractors:suspend"

	AnalyticsViewPublic     Permission = "analytics:view_public"
	AnalyticsViewWard       Permission = "analytics:view_ward"
	AnalyticsViewDepartment Permission = "analytics:view_department"
	AnalyticsViewCity       Permission = "analytics:view_city"

	BudgetView             Permission = "budget:view"
	BudgetApprove50K       Permission = "budget:approve_50k"
	BudgetApprove5L        Permission = "budget:approve_5l"
	BudgetApproveUnlimited Permission = "budget:approve_unlimited"

	SLAView       Permission = "sla:view"
	SLAModifyWard Permission = "sla:modify_ward"
	SLAModifyCity Permission = "sla:modify_city"

	UsersViewWard       Permission = "users:view_ward"
	UsersViewDepartment Permission = "users:view_department"
	UsersViewAll        Permission = "users:view_all"
	UsersCreate         Permission = "users:create"
	UsersUpdate         Permission = "users:update"
)

var allPermissions = []Permission{
	ReportsCreate, ReportsViewOwn, ReportsViewAll, ReportsViewWard,
	ReportsViewDepartment, ReportsValidate, ReportsOverrideAI, ReportsClose,
	WorkOrdersCreate, WorkOrdersViewAssigned, WorkOrdersViewWard,
	WorkOrdersViewDepartment, WorkOrdersViewAll, WorkOrdersAssign,
	WorkOrdersReassign, WorkOrdersUpdateStatus, WorkOrdersVerify,
	WorkOrdersEmergency,
	ContractorsViewAssigned, ContractorsViewWard, ContractorsViewAll,
	ContractorsRegister, ContractorsApprove, ContractorsSuspend,
	AnalyticsViewPublic, AnalyticsViewWard, AnalyticsViewDepartment,
	AnalyticsViewCity,
	BudgetView, BudgetApprove50K, BudgetApprove5L, BudgetApproveUnlimited,
	SLAView, SLAModifyWard, SLAModifyCity,
	UsersViewWard, UsersViewDepartment, UsersViewAll, UsersCreate, UsersUpdate,
}

// rolePermissions is the static role to permission-set mapping. It is fixed at
// deploy time; there is no caching or invalidation to get wrong.
var rolePermissions = map[models.Role]map[Permission]bool{
	models.RoleCitizen: permSet(
		ReportsCreate, ReportsViewOwn, AnalyticsViewPublic, SLAView,
	),
	models.RoleContractor: permSet(
		WorkOrdersViewAssigned, WorkOrdersUpdateStatus, AnalyticsViewPublic, SLAView,
	),
	models.RoleClassC: permSet(
		ReportsViewWard, ReportsValidate, ReportsOverrideAI, ReportsClose,
		WorkOrdersCreate, WorkOrdersViewWard, WorkOrdersAssign, WorkOrdersVerify,
		WorkOrdersEmergency,
		ContractorsViewWard,
		AnalyticsViewWard,
		BudgetApprove50K,
		SLAView,
		UsersViewWard,
	),
	models.RoleClassB: permSet(
		ReportsViewDepartment, ReportsValidate, ReportsOverrideAI, ReportsClose,
		WorkOrdersCreate, WorkOrdersViewDepartment, WorkOrdersAssign,
		WorkOrdersReassign, WorkOrdersVerify, WorkOrdersEmergency,
		ContractorsViewAll, ContractorsRegister, ContractorsApprove,
		ContractorsSuspend,
		AnalyticsViewDepartment,
		BudgetView, BudgetApprove5L,
		SLAView, SLAModifyWard,
		UsersViewDepartment, UsersCreate, UsersUpdate,
	),
	models.RoleClassA: permSet(allPermissions...),
}

func permSet(perms ...Permission) map[Permission]bool {
	set := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// HasPermission is a pure set-membership lookup.
func HasPermission(role models.Role, permission Permission) bool {
	return rolePermissions[role][permission]
}

// PermissionsForRole returns the full permission set granted to a role.
func PermissionsForRole(role models.Role) []Permission {
	set := rolePermissions[role]
	perms := make([]Permission, 0, len(set))
	for _, p := range allPermissions {
		if set[p] {
			perms = append(perms, p)
		}
	}
	return perms
}

// UnlimitedBudget marks a role with no approval ceiling.
const UnlimitedBudget float64 = -1

// budgetLimits holds the budget-approval ceiling per role, in INR.
var budgetLimits = map[models.Role]float64{
	models.RoleCitizen:    0,
	models.RoleContractor: 0,
	models.RoleClassC:     50_000,
	models.RoleClassB:     500_000,
	models.RoleClassA:     UnlimitedBudget,
}

// BudgetLimit returns the approval ceiling for a role in INR.
// UnlimitedBudget means no ceiling.
func BudgetLimit(role models.Role) float64 {
	return budgetLimits[role]
}

// CanApproveBudget reports whether the role may approve the given amount.
func CanApproveBudget(role models.Role, amount float64) bool {
	limit := budgetLimits[role]
	if limit == UnlimitedBudget {
		return true
	}
	return amount <= limit
}

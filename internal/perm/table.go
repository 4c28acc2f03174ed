// Package perm holds the static permission matrix and the pure functions
// that answer authorization questions from it. The table is process-wide
// immutable configuration: it is declared once and never mutated at runtime.
package perm

// Role names. RoleAdmin is the top administrative role and bypasses guard
// checks entirely.
const (
	RoleAdmin       = "ADMIN"
	RoleAdminClient = "ADMIN_CLIENT"
	RoleOperator    = "OPERATOR"
	RoleUser        = "USER"
)

// Module names. Every guarded HTTP surface belongs to exactly one module.
const (
	ModuleAdmin      = "ADMIN"
	ModuleClient     = "CLIENT"
	ModuleUser       = "USER"
	ModulePackage    = "PACKAGE"
	ModuleSource     = "SOURCE"
	ModuleCostCenter = "COST_CENTER"
	ModuleEvent      = "EVENT"
)

// Assignment names. An assignment is the permission unit carried by a user
// grant; a module gates its primary actions on its main assignment.
const (
	AssignmentClient     = "CLIENT"
	AssignmentUser       = "USER"
	AssignmentPackage    = "PACKAGE"
	AssignmentSource     = "SOURCE"
	AssignmentCostCenter = "COST_CENTER"
	AssignmentEvent      = "EVENT"
)

// Action tags accepted by the guard.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// moduleEntry describes one module row of the permission table.
type moduleEntry struct {
	allowedRoles         []string
	mainAssignment       string
	creatableAssignments []string
}

// roleEntry describes one role row of the permission table.
type roleEntry struct {
	allowedAssignments []string
	createdBy          []string
}

var moduleTable = map[string]moduleEntry{
	ModuleAdmin: {
		allowedRoles:         []string{RoleAdmin},
		mainAssignment:       AssignmentClient,
		creatableAssignments: []string{AssignmentClient, AssignmentPackage},
	},
	ModuleClient: {
		allowedRoles:         []string{RoleAdmin, RoleAdminClient},
		mainAssignment:       AssignmentClient,
		creatableAssignments: []string{AssignmentClient, AssignmentUser},
	},
	ModuleUser: {
		allowedRoles:         []string{RoleAdmin, RoleAdminClient, RoleOperator, RoleUser},
		mainAssignment:       AssignmentUser,
		creatableAssignments: []string{AssignmentUser},
	},
	ModulePackage: {
		allowedRoles:         []string{RoleAdmin},
		mainAssignment:       AssignmentPackage,
		creatableAssignments: []string{AssignmentPackage},
	},
	ModuleSource: {
		allowedRoles:         []string{RoleAdmin, RoleAdminClient, RoleOperator},
		mainAssignment:       AssignmentSource,
		creatableAssignments: []string{AssignmentSource},
	},
	ModuleCostCenter: {
		allowedRoles:         []string{RoleAdmin, RoleAdminClient, RoleOperator},
		mainAssignment:       AssignmentCostCenter,
		creatableAssignments: []string{AssignmentCostCenter},
	},
	ModuleEvent: {
		allowedRoles:         []string{RoleAdmin, RoleAdminClient},
		mainAssignment:       AssignmentEvent,
		creatableAssignments: nil,
	},
}

var roleTable = map[string]roleEntry{
	RoleAdmin: {
		allowedAssignments: []string{
			AssignmentClient, AssignmentUser, AssignmentPackage,
			AssignmentSource, AssignmentCostCenter, AssignmentEvent,
		},
		createdBy: []string{RoleAdmin},
	},
	RoleAdminClient: {
		allowedAssignments: []string{
			AssignmentClient, AssignmentUser, AssignmentSource,
			AssignmentCostCenter, AssignmentEvent,
		},
		createdBy: []string{RoleAdmin},
	},
	RoleOperator: {
		allowedAssignments: []string{
			AssignmentUser, AssignmentSource, AssignmentCostCenter,
		},
		createdBy: []string{RoleAdmin, RoleAdminClient},
	},
	RoleUser: {
		allowedAssignments: []string{AssignmentUser},
		createdBy:          []string{RoleAdmin, RoleAdminClient, RoleOperator},
	},
}

// KnownModule reports whether name is a recognized module.
func KnownModule(name string) bool {
	_, ok := moduleTable[name]
	return ok
}

// KnownRole reports whether name is a recognized role.
func KnownRole(name string) bool {
	_, ok := roleTable[name]
	return ok
}

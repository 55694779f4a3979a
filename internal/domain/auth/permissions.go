package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
)

const (
	PermEvaluationsRead   = "evaluations.read"
	PermEvaluationsWrite  = "evaluations.write"
	PermEvaluationsAssign = "evaluations.assign"
	PermTemplatesManage   = "evaluations.templates.manage"
	PermReportsRead       = "reports.read"
	PermAuditRead         = "audit.read"
)

var DefaultPermissions = []string{
	PermEvaluationsRead,
	PermEvaluationsWrite,
	PermEvaluationsAssign,
	PermTemplatesManage,
	PermReportsRead,
	PermAuditRead,
}

// RolePermissions is the seed matrix. Employees and managers read and
// answer their own evaluations; only HR assigns them and owns the
// template catalog.
var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEvaluationsRead,
		PermEvaluationsWrite,
	},
	RoleManager: {
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermReportsRead,
	},
	RoleHR: {
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermEvaluationsAssign,
		PermTemplatesManage,
		PermReportsRead,
		PermAuditRead,
	},
}

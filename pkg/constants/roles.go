package constants

// User roles. Flat role model: admin unlocks user management and raw
// report queries, manager unlocks approvals, everyone else is scoped by
// assignment.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAuditor = "auditor"
	RoleStaff   = "staff"
)

// IsAdmin reports whether the role grants system administration rights.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// IsManager reports whether the role grants approval rights (admins
// implicitly qualify).
func IsManager(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// ValidRoles lists the assignable roles for user management validation.
var ValidRoles = []string{RoleAdmin, RoleManager, RoleAuditor, RoleStaff}

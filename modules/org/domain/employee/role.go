package employee

// Role is the closed set of employee roles. Workflow authorization checks go
// through the predicates below, never through ad-hoc string comparisons.
type Role string

const (
	RoleSystemAdmin Role = "System Admin"
	RoleHRManager   Role = "HR Manager"
	RoleEmployee    Role = "Employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleHRManager, RoleEmployee:
		return true
	}
	return false
}

// IsAuthorizedReviewer reports whether the role may review and decide change
// requests.
func (r Role) IsAuthorizedReviewer() bool {
	return r == RoleSystemAdmin || r == RoleHRManager
}

// AdminRoles are the roles notified when a change request is submitted.
func AdminRoles() []Role {
	return []Role{RoleSystemAdmin, RoleHRManager}
}

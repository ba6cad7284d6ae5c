package domain

// Role is the access level of a registry user. Roles form a strict
// hierarchy: a higher ordinal implies every capability of a lower one.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Valid returns true if the Role is recognized.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// Ordinal maps a role to its position in the hierarchy. Unknown roles map
// to zero, below every valid role.
func (r Role) Ordinal() int {
	switch r {
	case RoleViewer:
		return 1
	case RoleEditor:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

// AtLeast reports whether r grants the capabilities of min.
func (r Role) AtLeast(min Role) bool {
	return r.Ordinal() >= min.Ordinal() && r.Ordinal() > 0
}

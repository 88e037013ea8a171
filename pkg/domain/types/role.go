package types

// Role represents the access level of an authenticated identity
type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// Elevated returns true for roles allowed to review claims and adjust
// ledgers
func (r Role) Elevated() bool {
	return r == RoleStaff || r == RoleAdmin
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

package entity

import "slices"

// Role decides which back-office areas a user may open.
type Role string

const (
	// RoleUser indicates a regular shopper.
	RoleUser Role = "user"
	// RoleSeller indicates a seller managing their own products and coupons.
	RoleSeller Role = "seller"
	// RoleAdmin indicates a back-office administrator.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// Roles is a set of roles allowed somewhere.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

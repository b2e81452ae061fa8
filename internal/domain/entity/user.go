// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// User is the authenticated identity as the backend reports it.
type User struct {
	ID        string     `json:"id"`
	Fullname  string     `json:"fullname"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Avatar    string     `json:"avatar,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// HasRole reports whether the user holds one of the given roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}

	return Roles(roles).Contains(u.Role)
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

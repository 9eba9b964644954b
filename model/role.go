package model

import "fmt"

// Role identifies what an authenticated principal is allowed to do
type Role string

const (
	RoleStudent Role = "student"
	RoleCollege Role = "college"
	RoleAdmin   Role = "admin"
)

// ParseRole converts a raw claim value into a Role.
// Institutions always authenticate as RoleCollege; there is no separate
// "college-admin" identity.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleCollege, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	return string(r)
}

package auth

import (
	"fmt"
	"strings"
)

// Role is a coarse capability tier gating entire operations. The set is
// closed: anything outside admin/teacher is rejected at parse time.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
)

// ParseRole normalizes raw input into a known role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTeacher:
		return RoleTeacher, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, raw)
	}
}

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

func (r Role) String() string { return string(r) }

// Roles lists every known role, useful for exhaustive policy tests.
func Roles() []Role {
	return []Role{RoleAdmin, RoleTeacher}
}

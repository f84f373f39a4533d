package auth

import (
	"fmt"
	"strings"
)

// Role is a flat authorization label. Holding one role never
// implies holding another.
type Role string

const (
	// RoleAdmin manages catalog content and user accounts
	RoleAdmin Role = "admin"
	// RoleSuperUser is granted alongside admin on sensitive operations
	RoleSuperUser Role = "super-user"
	// RoleUser is the baseline role of every registered account
	RoleUser Role = "user"
)

// DefaultRole is assigned on registration
const DefaultRole = RoleUser

func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the predefined roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSuperUser, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole converts a label into a Role
func ParseRole(label string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(label)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", label)
	}
	return r, nil
}

// Roles is the set of labels held by a user.
type Roles []Role

// Has checks if the set contains role
func (rs Roles) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the set and allowed intersect.
func (rs Roles) HasAny(allowed ...Role) bool {
	for _, a := range allowed {
		if rs.Has(a) {
			return true
		}
	}
	return false
}

// Normalize removes duplicates and falls back to DefaultRole
// so the set is never empty.
func (rs Roles) Normalize() Roles {
	out := make(Roles, 0, len(rs))
	for _, r := range rs {
		if r == "" || out.Has(r) {
			continue
		}
		out = append(out, r)
	}

	if len(out) == 0 {
		out = append(out, DefaultRole)
	}

	return out
}

func (rs Roles) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

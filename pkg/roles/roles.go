package roles

import (
	"strings"

	custom_error "itinventory/pkg/errors"
)

// Role is the permission level of a user.
type Role string

const (
	User      Role = "user"
	Moderator Role = "moderator"
	Admin     Role = "admin"
)

type HierarchyLevel int

const (
	UserLevel      HierarchyLevel = 1
	ModeratorLevel HierarchyLevel = 2
	AdminLevel     HierarchyLevel = 3
)

func (r Role) GetHierarchyLevel() HierarchyLevel {
	switch r {
	case User:
		return UserLevel
	case Moderator:
		return ModeratorLevel
	case Admin:
		return AdminLevel
	default:
		return UserLevel
	}
}

// HasPermission reports whether r is at least requiredRole.
func (r Role) HasPermission(requiredRole Role) bool {
	return r.GetHierarchyLevel() >= requiredRole.GetHierarchyLevel()
}

func (r Role) IsValid() bool {
	switch r {
	case User, Moderator, Admin:
		return true
	default:
		return false
	}
}

// Parse reads a role name as typed by an operator. Backup resets need Admin;
// every inventory operation is open to User.
func Parse(name string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(name)))
	if role == "" {
		return Default(), nil
	}
	if !role.IsValid() {
		return "", custom_error.Newf(custom_error.CodeValidation, "unknown role %q", name).
			WithDetails(map[string]any{"role": "must be user, moderator or admin"})
	}
	return role, nil
}

// Default is the role given to self-registered users.
func Default() Role {
	return User
}

func (r Role) String() string {
	return string(r)
}

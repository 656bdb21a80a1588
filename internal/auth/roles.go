package auth

// Role is the authorization level carried in access tokens.
type Role string

const (
	RoleUser       Role = "user"
	RoleBusiness   Role = "business"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// ParseRole maps a stored role name to a Role, defaulting to RoleUser.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleBusiness, RoleAdmin, RoleSuperAdmin:
		return Role(s)
	default:
		return RoleUser
	}
}

// IsAdmin reports whether the role may perform administrative actions:
// coupon issuance, payment approval, catalog management, listing all orders.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Allows reports whether r satisfies any of the required roles. Super admins
// satisfy every requirement.
func (r Role) Allows(required ...Role) bool {
	if r == RoleSuperAdmin {
		return true
	}
	for _, req := range required {
		if r == req {
			return true
		}
	}
	return false
}

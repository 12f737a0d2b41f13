package domain

// Role is a canonical permission tag derived from identity metadata.
type Role string

const (
	RoleUser          Role = "user"
	RoleBusinessOwner Role = "business_owner"
	RoleModerator     Role = "moderator"
	RoleAdmin         Role = "admin"
	RoleSuperAdmin    Role = "super_admin"
)

// roleRank orders the tiered roles; higher rank implies every lower tier for
// classification purposes. Roles outside the ladder rank as plain users.
var roleRank = map[Role]int{
	RoleUser:          0,
	RoleBusinessOwner: 0,
	RoleModerator:     1,
	RoleAdmin:         2,
	RoleSuperAdmin:    3,
}

// KnownRole reports whether the tag is part of the canonical set.
func KnownRole(r Role) bool {
	_, ok := roleRank[r]
	return ok
}

// RoleSet is a normalized set of canonical roles. It is derived fresh on
// every request and never cached across requests.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports exact membership.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// HasAtLeast reports whether any member meets the tier of the given role.
func (s RoleSet) HasAtLeast(role Role) bool {
	want := roleRank[role]
	for member := range s {
		if rank, ok := roleRank[member]; ok && rank >= want {
			return true
		}
	}
	return false
}

// IsAdmin reports admin-or-above membership.
func (s RoleSet) IsAdmin() bool {
	return s.HasAtLeast(RoleAdmin)
}

// IsSuperAdmin reports top-tier membership.
func (s RoleSet) IsSuperAdmin() bool {
	return s.Has(RoleSuperAdmin)
}

// Slice returns the members in unspecified order.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	return out
}

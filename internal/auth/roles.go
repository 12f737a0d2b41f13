package auth

import (
	"strings"

	"github.com/samber/lo"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
)

// Role metadata fields collected in priority order: app-level assignments
// (written by operators through the provider's admin API) win over
// user-editable metadata.
var roleFields = []string{"roles", "role"}

// ResolveRoles normalizes the provider-shaped role metadata on an identity
// into a canonical RoleSet. The raw shape is not guaranteed: each field may
// be a single string, an array, or absent entirely. Malformed input never
// errors; the worst case is an empty set, which is least privilege.
func ResolveRoles(identity *domain.Identity) domain.RoleSet {
	if identity == nil {
		return domain.NewRoleSet()
	}

	var raw []string
	for _, bag := range []map[string]any{identity.AppMetadata, identity.UserMetadata} {
		for _, field := range roleFields {
			raw = append(raw, coerceStrings(bag[field])...)
		}
	}

	cleaned := lo.FilterMap(raw, func(entry string, _ int) (domain.Role, bool) {
		role := domain.Role(strings.ToLower(strings.TrimSpace(entry)))
		return role, domain.KnownRole(role)
	})

	return domain.NewRoleSet(lo.Uniq(cleaned)...)
}

// coerceStrings flattens a scalar-or-array metadata value into strings,
// ignoring anything that is not string-shaped.
func coerceStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

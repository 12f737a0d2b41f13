package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
)

func identityWith(appMeta, userMeta map[string]any) *domain.Identity {
	return &domain.Identity{SubjectID: "sub-1", AppMetadata: appMeta, UserMetadata: userMeta}
}

func TestResolveRoles(t *testing.T) {
	tests := []struct {
		name     string
		identity *domain.Identity
		want     []domain.Role
	}{
		{
			name:     "nil identity",
			identity: nil,
			want:     nil,
		},
		{
			name:     "no metadata",
			identity: identityWith(nil, nil),
			want:     nil,
		},
		{
			name:     "single string",
			identity: identityWith(map[string]any{"role": "admin"}, nil),
			want:     []domain.Role{domain.RoleAdmin},
		},
		{
			name:     "array of strings",
			identity: identityWith(map[string]any{"roles": []any{"admin", "moderator"}}, nil),
			want:     []domain.Role{domain.RoleAdmin, domain.RoleModerator},
		},
		{
			name:     "app and user metadata merge",
			identity: identityWith(map[string]any{"roles": []any{"admin"}}, map[string]any{"role": "business_owner"}),
			want:     []domain.Role{domain.RoleAdmin, domain.RoleBusinessOwner},
		},
		{
			name:     "case and whitespace normalized",
			identity: identityWith(map[string]any{"roles": []any{" Super_Admin ", "ADMIN"}}, nil),
			want:     []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin},
		},
		{
			name:     "duplicates collapse",
			identity: identityWith(map[string]any{"roles": []any{"user", "user"}}, map[string]any{"role": "user"}),
			want:     []domain.Role{domain.RoleUser},
		},
		{
			name:     "unknown tags dropped",
			identity: identityWith(map[string]any{"roles": []any{"wizard", "admin"}}, nil),
			want:     []domain.Role{domain.RoleAdmin},
		},
		{
			name:     "empties dropped",
			identity: identityWith(map[string]any{"roles": []any{"", "  "}}, nil),
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRoles(tt.identity)
			assert.ElementsMatch(t, tt.want, got.Slice())
		})
	}
}

// Malformed metadata must never panic; the worst case is least privilege.
func TestResolveRolesMalformed(t *testing.T) {
	malformed := []any{
		42,
		3.14,
		true,
		map[string]any{"nested": "admin"},
		[]any{1, true, nil},
		[]any{map[string]any{}},
	}

	for _, value := range malformed {
		identity := identityWith(map[string]any{"roles": value, "role": value}, map[string]any{"roles": value})
		assert.NotPanics(t, func() {
			roles := ResolveRoles(identity)
			assert.Empty(t, roles.Slice())
		})
	}
}

func TestRoleSetTiers(t *testing.T) {
	assert.True(t, domain.NewRoleSet(domain.RoleSuperAdmin).IsAdmin())
	assert.True(t, domain.NewRoleSet(domain.RoleSuperAdmin).HasAtLeast(domain.RoleModerator))
	assert.True(t, domain.NewRoleSet(domain.RoleAdmin).HasAtLeast(domain.RoleModerator))
	assert.False(t, domain.NewRoleSet(domain.RoleAdmin).IsSuperAdmin())
	assert.False(t, domain.NewRoleSet(domain.RoleModerator).IsAdmin())
	assert.False(t, domain.NewRoleSet().IsAdmin())
}

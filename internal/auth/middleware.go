package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
	apperrors "github.com/spec-kit/directory-gatekeeper/pkg/util"
)

// APIAuth guards JSON API routes. Unlike the page gatekeeper it answers with
// status codes instead of redirects.
type APIAuth struct {
	bridge *SessionBridge
}

// NewAPIAuth constructs middleware over the session bridge.
func NewAPIAuth(bridge *SessionBridge) *APIAuth {
	return &APIAuth{bridge: bridge}
}

// RequireAdmin enforces admin-or-above on API routes.
func (m *APIAuth) RequireAdmin(c *fiber.Ctx) error {
	identity, mutations := m.bridge.Resolve(
		c.UserContext(),
		c.Cookies(AccessTokenCookie),
		c.Cookies(RefreshTokenCookie),
	)
	for _, mut := range mutations {
		c.Cookie(&fiber.Cookie{
			Name:     mut.Name,
			Value:    mut.Value,
			Path:     mut.Path,
			MaxAge:   mut.MaxAge,
			HTTPOnly: mut.HTTPOnly,
			Secure:   mut.Secure,
			SameSite: mut.SameSite,
		})
	}

	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !ResolveRoles(identity).IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}

	c.Locals("api_identity", identity)
	return c.Next()
}

// IdentityFromContext retrieves the identity stored by RequireAdmin.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals("api_identity").(*domain.Identity)
	return identity, ok && identity != nil
}

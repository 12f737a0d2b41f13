package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/directory-gatekeeper/internal/gatekeeper"
)

// PagesHandler stands in for the directory application's page handlers,
// which render behind the gatekeeper. It echoes what the downstream app
// receives for an allowed request: the resolved locale, the path and the
// caller's role set.
type PagesHandler struct{}

// NewPagesHandler returns a new handler instance.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Serve answers any allowed page request.
func (h *PagesHandler) Serve(c *fiber.Ctx) error {
	locale, rest := gatekeeper.ResolveLocale(c.Path())

	response := fiber.Map{
		"locale": locale,
		"path":   rest,
	}
	if identity, ok := gatekeeper.IdentityFromContext(c); ok {
		response["subject"] = identity.SubjectID
		response["roles"] = gatekeeper.RolesFromContext(c).Slice()
	}
	return c.JSON(response)
}

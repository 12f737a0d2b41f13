package gatekeeper

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-gatekeeper/internal/audit"
	"github.com/spec-kit/directory-gatekeeper/internal/auth"
	"github.com/spec-kit/directory-gatekeeper/internal/domain"
	"github.com/spec-kit/directory-gatekeeper/internal/observability"
)

const identityKey = "gatekeeper_identity"
const rolesKey = "gatekeeper_roles"

// Gatekeeper is the per-request edge authorization layer: it resolves the
// locale, bridges session cookies, derives roles, consults the maintenance
// gate and turns all of it into a single allow-or-redirect decision before
// any page handler runs.
type Gatekeeper struct {
	bridge  *auth.SessionBridge
	gate    *MaintenanceGate
	metrics *observability.Metrics
	auditor *audit.Recorder
	logger  *zap.Logger
}

// New constructs the gatekeeper middleware.
func New(bridge *auth.SessionBridge, gate *MaintenanceGate, metrics *observability.Metrics, auditor *audit.Recorder, logger *zap.Logger) *Gatekeeper {
	return &Gatekeeper{
		bridge:  bridge,
		gate:    gate,
		metrics: metrics,
		auditor: auditor,
		logger:  logger,
	}
}

// Handle runs the gatekeeper for one request.
func (g *Gatekeeper) Handle(c *fiber.Ctx) error {
	locale, rest := ResolveLocale(c.Path())

	// Pull everything off the fiber context before the concurrent phase;
	// fiber contexts are not safe for use from other goroutines.
	ctx := c.UserContext()
	accessToken := c.Cookies(auth.AccessTokenCookie)
	refreshToken := c.Cookies(auth.RefreshTokenCookie)
	bypassQuery := c.Query(BypassQueryParam)
	bypassCookie := c.Cookies(BypassCookie)

	// The identity lookup and the maintenance-flag read are independent;
	// issue them concurrently so neither's latency stacks on the other.
	var (
		identity       *domain.Identity
		sessionCookies []domain.CookieMutation
		maintenance    bool
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		identity, sessionCookies = g.bridge.Resolve(ctx, accessToken, refreshToken)
	}()
	go func() {
		defer wg.Done()
		maintenance = g.gate.Enabled(ctx)
	}()
	wg.Wait()

	roles := auth.ResolveRoles(identity)

	bypassValid, bypassGranted, bypassCookies := g.gate.EvaluateBypass(bypassQuery, bypassCookie)
	if bypassGranted {
		g.auditor.Record(actorLabel(identity), "maintenance_bypass_granted", c.Path(), nil)
	}

	decision := Decide(DecisionInput{
		Locale:        locale,
		GuessedLocale: GuessLocale(c.Get(fiber.HeaderAcceptLanguage)),
		Path:          rest,
		OriginalURI:   c.OriginalURL(),
		Identity:      identity,
		Roles:         roles,
		Maintenance:   maintenance,
		BypassValid:   bypassValid,
		Cookies:       append(sessionCookies, bypassCookies...),
	})

	g.metrics.RecordDecision(string(decision.Kind))
	applyCookies(c, decision.Cookies)

	if decision.Kind == domain.DecisionAllow {
		c.Locals(identityKey, identity)
		c.Locals(rolesKey, roles)
		return c.Next()
	}

	g.logger.Debug("gatekeeper redirect",
		zap.String("kind", string(decision.Kind)),
		zap.String("path", c.Path()),
		zap.String("location", decision.Location))

	return c.Redirect(decision.Location, fiber.StatusTemporaryRedirect)
}

// IdentityFromContext retrieves the identity stored by an allowed request.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*domain.Identity)
	return identity, ok && identity != nil
}

// RolesFromContext retrieves the role set stored by an allowed request.
func RolesFromContext(c *fiber.Ctx) domain.RoleSet {
	if roles, ok := c.Locals(rolesKey).(domain.RoleSet); ok {
		return roles
	}
	return domain.NewRoleSet()
}

func applyCookies(c *fiber.Ctx, mutations []domain.CookieMutation) {
	for _, m := range mutations {
		c.Cookie(&fiber.Cookie{
			Name:     m.Name,
			Value:    m.Value,
			Path:     m.Path,
			MaxAge:   m.MaxAge,
			HTTPOnly: m.HTTPOnly,
			Secure:   m.Secure,
			SameSite: m.SameSite,
		})
	}
}

func actorLabel(identity *domain.Identity) string {
	if identity == nil {
		return "anonymous"
	}
	return identity.SubjectID
}

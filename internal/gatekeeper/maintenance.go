package gatekeeper

import (
	"context"
	"crypto/subtle"

	"go.uber.org/zap"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
	"github.com/spec-kit/directory-gatekeeper/internal/repository"
)

// BypassCookie is the maintenance bypass cookie name.
const BypassCookie = "maint_bypass"

// BypassQueryParam presents the bypass secret via query string; a match
// sets the cookie for the rest of the browser session.
const BypassQueryParam = "bypass"

// MaintenanceGate consults the global maintenance flag and evaluates bypass
// credentials. The flag is read through on every request; a store failure
// reads as "off" so a database blip cannot lock the whole site behind the
// maintenance page.
type MaintenanceGate struct {
	settings      repository.SettingsRepository
	bypassSecret  []byte
	secureCookies bool
	logger        *zap.Logger
}

// NewMaintenanceGate constructs the gate.
func NewMaintenanceGate(settings repository.SettingsRepository, bypassSecret string, secureCookies bool, logger *zap.Logger) *MaintenanceGate {
	return &MaintenanceGate{
		settings:      settings,
		bypassSecret:  []byte(bypassSecret),
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Enabled reads the maintenance flag.
func (g *MaintenanceGate) Enabled(ctx context.Context) bool {
	enabled, err := g.settings.MaintenanceEnabled(ctx)
	if err != nil {
		g.logger.Warn("maintenance flag read failed; treating as off", zap.Error(err))
		return false
	}
	return enabled
}

// EvaluateBypass checks the query token and pre-existing cookie. A valid
// query token additionally yields the cookie mutation granting bypass for
// the rest of the browser session; granted reports that fresh grant so the
// caller can audit it.
func (g *MaintenanceGate) EvaluateBypass(queryToken, cookieToken string) (valid, granted bool, mutations []domain.CookieMutation) {
	if g.matches(cookieToken) {
		return true, false, nil
	}
	if g.matches(queryToken) {
		return true, true, []domain.CookieMutation{{
			Name:     BypassCookie,
			Value:    queryToken,
			Path:     "/",
			HTTPOnly: true,
			Secure:   g.secureCookies,
			SameSite: "Lax",
		}}
	}
	return false, false, nil
}

func (g *MaintenanceGate) matches(token string) bool {
	if len(g.bypassSecret) == 0 || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), g.bypassSecret) == 1
}

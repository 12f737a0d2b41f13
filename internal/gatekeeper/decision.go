package gatekeeper

import (
	"net/url"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
)

// DecisionInput is everything the Decision Builder needs, gathered by the
// middleware. Cookies carries every mutation produced upstream (session
// refresh, bypass grant); Decide threads them onto the verdict so they reach
// the response no matter which branch wins.
type DecisionInput struct {
	Locale        string // "" when the path carries no locale segment
	GuessedLocale string
	Path          string // locale-stripped
	OriginalURI   string // path plus query as received
	Identity      *domain.Identity
	Roles         domain.RoleSet
	Maintenance   bool
	BypassValid   bool
	Cookies       []domain.CookieMutation
}

// Decide evaluates the gatekeeper state machine. The transition order is a
// correctness invariant: locale before maintenance before classification
// before auth before privilege, first match wins.
func Decide(in DecisionInput) domain.Decision {
	verdict := func(d domain.Decision) domain.Decision {
		d.Cookies = in.Cookies
		return d
	}

	if in.Locale == "" {
		locale := in.GuessedLocale
		if locale == "" {
			locale = DefaultLocale
		}
		return verdict(domain.Decision{
			Kind:     domain.DecisionRedirectLocale,
			Location: "/" + locale + in.OriginalURI,
		})
	}

	if in.Maintenance && !in.BypassValid && !in.Roles.IsSuperAdmin() && in.Path != "/maintenance" {
		return verdict(domain.Decision{
			Kind:     domain.DecisionRedirectMaintenance,
			Location: "/" + in.Locale + "/maintenance",
		})
	}

	class := ClassifyRoute(in.Path)
	if class == domain.RoutePublic {
		return verdict(domain.Decision{Kind: domain.DecisionAllow})
	}

	if in.Identity == nil {
		return verdict(domain.Decision{
			Kind:     domain.DecisionRedirectLogin,
			Location: "/" + in.Locale + "/login?redirectedFrom=" + url.QueryEscape(in.OriginalURI),
		})
	}

	if class == domain.RouteSuperAdmin && !in.Roles.IsSuperAdmin() {
		return verdict(domain.Decision{
			Kind:     domain.DecisionRedirectForbidden,
			Scope:    domain.ForbiddenScopeSuper,
			Location: "/" + in.Locale + "/?forbidden=" + string(domain.ForbiddenScopeSuper),
		})
	}

	if class == domain.RouteAdmin && !in.Roles.IsAdmin() {
		return verdict(domain.Decision{
			Kind:     domain.DecisionRedirectForbidden,
			Scope:    domain.ForbiddenScopeAdmin,
			Location: "/" + in.Locale + "/?forbidden=" + string(domain.ForbiddenScopeAdmin),
		})
	}

	return verdict(domain.Decision{Kind: domain.DecisionAllow})
}

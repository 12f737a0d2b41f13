package gatekeeper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
)

func user() *domain.Identity {
	return &domain.Identity{SubjectID: "user-1", Email: "user@example.com"}
}

func TestDecideLocaleRedirect(t *testing.T) {
	dec := Decide(DecisionInput{
		Locale:        "",
		GuessedLocale: "fr",
		Path:          "/dashboard",
		OriginalURI:   "/dashboard?tab=stats",
	})
	assert.Equal(t, domain.DecisionRedirectLocale, dec.Kind)
	assert.Equal(t, "/fr/dashboard?tab=stats", dec.Location)
}

func TestDecideLocaleRedirectFallback(t *testing.T) {
	dec := Decide(DecisionInput{OriginalURI: "/", Path: "/"})
	assert.Equal(t, domain.DecisionRedirectLocale, dec.Kind)
	assert.Equal(t, "/"+DefaultLocale+"/", dec.Location)
}

func TestDecideMaintenance(t *testing.T) {
	base := DecisionInput{
		Locale:      "en",
		Path:        "/business/dashboard",
		OriginalURI: "/en/business/dashboard",
		Identity:    user(),
		Maintenance: true,
	}

	t.Run("plain user is blocked", func(t *testing.T) {
		in := base
		in.Roles = domain.NewRoleSet(domain.RoleUser)
		dec := Decide(in)
		assert.Equal(t, domain.DecisionRedirectMaintenance, dec.Kind)
		assert.Equal(t, "/en/maintenance", dec.Location)
	})

	t.Run("super admin passes", func(t *testing.T) {
		in := base
		in.Roles = domain.NewRoleSet(domain.RoleSuperAdmin)
		dec := Decide(in)
		assert.Equal(t, domain.DecisionAllow, dec.Kind)
	})

	t.Run("bypass holder passes", func(t *testing.T) {
		in := base
		in.Roles = domain.NewRoleSet(domain.RoleUser)
		in.BypassValid = true
		dec := Decide(in)
		assert.Equal(t, domain.DecisionAllow, dec.Kind)
	})

	t.Run("maintenance page itself stays reachable", func(t *testing.T) {
		in := base
		in.Path = "/maintenance"
		in.Identity = nil
		dec := Decide(in)
		assert.Equal(t, domain.DecisionAllow, dec.Kind)
	})

	t.Run("maintenance blocks public pages too", func(t *testing.T) {
		in := base
		in.Path = "/blog/post"
		in.Identity = nil
		dec := Decide(in)
		assert.Equal(t, domain.DecisionRedirectMaintenance, dec.Kind)
	})
}

func TestDecideLoginRedirect(t *testing.T) {
	dec := Decide(DecisionInput{
		Locale:      "en",
		Path:        "/admin/businesses",
		OriginalURI: "/en/admin/businesses",
	})
	assert.Equal(t, domain.DecisionRedirectLogin, dec.Kind)
	assert.Equal(t, "/en/login?redirectedFrom=%2Fen%2Fadmin%2Fbusinesses", dec.Location)
}

func TestDecideForbidden(t *testing.T) {
	t.Run("admin lacking super_admin", func(t *testing.T) {
		dec := Decide(DecisionInput{
			Locale:      "en",
			Path:        "/godmode",
			OriginalURI: "/en/godmode",
			Identity:    user(),
			Roles:       domain.NewRoleSet(domain.RoleAdmin),
		})
		assert.Equal(t, domain.DecisionRedirectForbidden, dec.Kind)
		assert.Equal(t, domain.ForbiddenScopeSuper, dec.Scope)
		assert.Equal(t, "/en/?forbidden=super", dec.Location)
	})

	t.Run("user lacking admin", func(t *testing.T) {
		dec := Decide(DecisionInput{
			Locale:      "en",
			Path:        "/admin/businesses",
			OriginalURI: "/en/admin/businesses",
			Identity:    user(),
			Roles:       domain.NewRoleSet(domain.RoleUser),
		})
		assert.Equal(t, domain.DecisionRedirectForbidden, dec.Kind)
		assert.Equal(t, domain.ForbiddenScopeAdmin, dec.Scope)
		assert.Equal(t, "/en/?forbidden=admin", dec.Location)
	})

	t.Run("super_admin reaches godmode", func(t *testing.T) {
		dec := Decide(DecisionInput{
			Locale:      "en",
			Path:        "/godmode",
			OriginalURI: "/en/godmode",
			Identity:    user(),
			Roles:       domain.NewRoleSet(domain.RoleSuperAdmin),
		})
		assert.Equal(t, domain.DecisionAllow, dec.Kind)
	})

	t.Run("super_admin implies admin", func(t *testing.T) {
		dec := Decide(DecisionInput{
			Locale:      "en",
			Path:        "/admin/businesses",
			OriginalURI: "/en/admin/businesses",
			Identity:    user(),
			Roles:       domain.NewRoleSet(domain.RoleSuperAdmin),
		})
		assert.Equal(t, domain.DecisionAllow, dec.Kind)
	})
}

func TestDecidePublicAllow(t *testing.T) {
	dec := Decide(DecisionInput{
		Locale:      "en",
		Path:        "/business/acme",
		OriginalURI: "/en/business/acme",
	})
	assert.Equal(t, domain.DecisionAllow, dec.Kind)
}

// Cookie mutations produced upstream must survive every branch, including
// redirects: dropping a refreshed session cookie on a redirect silently logs
// the user out.
func TestDecideCarriesCookies(t *testing.T) {
	cookies := []domain.CookieMutation{{Name: "sb-access-token", Value: "rotated"}}

	inputs := []DecisionInput{
		{Locale: "", GuessedLocale: "en", Path: "/dashboard", OriginalURI: "/dashboard", Cookies: cookies},
		{Locale: "en", Path: "/dashboard", OriginalURI: "/en/dashboard", Cookies: cookies},
		{Locale: "en", Path: "/", OriginalURI: "/en/", Cookies: cookies},
		{Locale: "en", Path: "/dashboard", OriginalURI: "/en/dashboard", Identity: user(), Maintenance: true, Cookies: cookies},
	}
	for _, in := range inputs {
		dec := Decide(in)
		assert.Equal(t, cookies, dec.Cookies, "decision %s must carry cookies", dec.Kind)
	}
}

package gatekeeper

import (
	"strings"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
)

// Static route prefix lists, matched longest-prefix-first against the
// locale-stripped path. Public prefixes win ties so always-public content
// (e.g. the public business-profile view under /business) stays reachable
// without authentication even when nested near protected paths.
var (
	publicPrefixes = []string{
		"/",
		"/login",
		"/register",
		"/maintenance",
		"/search",
		"/business",
		"/pricing",
		"/about",
		"/contact",
		"/blog",
		"/faq",
	}

	protectedPrefixes = []string{
		"/dashboard",
		"/account",
		"/billing",
		"/business/dashboard",
		"/business/listings",
	}

	adminPrefix      = "/admin"
	superAdminPrefix = "/godmode"
)

// ClassifyRoute buckets a locale-stripped path by the access it requires.
func ClassifyRoute(path string) domain.RouteClass {
	if path == "" {
		path = "/"
	}

	best := domain.RoutePublic
	bestLen := 0

	consider := func(prefix string, class domain.RouteClass) {
		if !prefixMatches(path, prefix) {
			return
		}
		// strictly longer wins; at equal length the earlier call
		// (public is considered first) keeps the bucket
		if len(prefix) > bestLen {
			best = class
			bestLen = len(prefix)
		}
	}

	for _, prefix := range publicPrefixes {
		consider(prefix, domain.RoutePublic)
	}
	for _, prefix := range protectedPrefixes {
		consider(prefix, domain.RouteProtected)
	}
	consider(adminPrefix, domain.RouteAdmin)
	consider(superAdminPrefix, domain.RouteSuperAdmin)

	return best
}

func prefixMatches(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

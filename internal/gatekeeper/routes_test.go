package gatekeeper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
)

func TestClassifyRoute(t *testing.T) {
	tests := []struct {
		path string
		want domain.RouteClass
	}{
		{path: "/", want: domain.RoutePublic},
		{path: "", want: domain.RoutePublic},
		{path: "/login", want: domain.RoutePublic},
		{path: "/search", want: domain.RoutePublic},
		{path: "/maintenance", want: domain.RoutePublic},
		{path: "/blog/some-post", want: domain.RoutePublic},

		// public business-profile view stays public even though it sits
		// next to protected business paths
		{path: "/business", want: domain.RoutePublic},
		{path: "/business/acme-plumbing", want: domain.RoutePublic},
		{path: "/business/dashboard", want: domain.RouteProtected},
		{path: "/business/dashboard/settings", want: domain.RouteProtected},
		{path: "/business/listings", want: domain.RouteProtected},

		{path: "/dashboard", want: domain.RouteProtected},
		{path: "/account/profile", want: domain.RouteProtected},
		{path: "/billing", want: domain.RouteProtected},

		{path: "/admin", want: domain.RouteAdmin},
		{path: "/admin/businesses", want: domain.RouteAdmin},

		{path: "/godmode", want: domain.RouteSuperAdmin},
		{path: "/godmode/settings", want: domain.RouteSuperAdmin},

		// prefix match requires a segment boundary
		{path: "/administrivia", want: domain.RoutePublic},
		{path: "/dashboards", want: domain.RoutePublic},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyRoute(tt.path), "path %q", tt.path)
	}
}

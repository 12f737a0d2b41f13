package domain

// RouteClass buckets a locale-stripped path by the access it requires.
type RouteClass string

const (
	RoutePublic     RouteClass = "PUBLIC"
	RouteProtected  RouteClass = "PROTECTED"
	RouteAdmin      RouteClass = "ADMIN"
	RouteSuperAdmin RouteClass = "SUPER_ADMIN"
)

// DecisionKind enumerates gatekeeper outcomes.
type DecisionKind string

const (
	DecisionAllow               DecisionKind = "ALLOW"
	DecisionRedirectLocale      DecisionKind = "REDIRECT_LOCALE"
	DecisionRedirectLogin       DecisionKind = "REDIRECT_LOGIN"
	DecisionRedirectMaintenance DecisionKind = "REDIRECT_MAINTENANCE"
	DecisionRedirectForbidden   DecisionKind = "REDIRECT_FORBIDDEN"
)

// ForbiddenScope distinguishes which privilege check failed.
type ForbiddenScope string

const (
	ForbiddenScopeAdmin ForbiddenScope = "admin"
	ForbiddenScopeSuper ForbiddenScope = "super"
)

// Decision is the gatekeeper's verdict for one request. Location is set for
// every redirect kind; Cookies must be applied to the response regardless of
// kind.
type Decision struct {
	Kind     DecisionKind
	Location string
	Scope    ForbiddenScope
	Cookies  []CookieMutation
}

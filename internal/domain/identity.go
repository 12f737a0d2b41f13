package domain

// Identity is the authenticated subject resolved from session cookies.
// It is created by the external auth provider and read-only here; the
// metadata bags carry provider-shaped role fields the Role Resolver
// normalizes into a RoleSet.
type Identity struct {
	SubjectID    string
	Email        string
	AppMetadata  map[string]any
	UserMetadata map[string]any
}

// CookieMutation is a Set-Cookie directive the gatekeeper wants applied to
// whichever response is ultimately returned. Cookie writes are an explicit
// return value rather than a side effect on a shared response object, so a
// redirect never drops a freshly refreshed session cookie.
type CookieMutation struct {
	Name     string
	Value    string
	Path     string
	MaxAge   int
	HTTPOnly bool
	Secure   bool
	SameSite string
}

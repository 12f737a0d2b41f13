package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	supabase "github.com/nedpals/supabase-go"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-gatekeeper/internal/config"
	"github.com/spec-kit/directory-gatekeeper/internal/domain"
)

// Session cookie names used by the auth provider's browser SDK.
const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"
)

const refreshCookieMaxAge = 60 * 60 * 24 * 30

// RefreshResult carries the rotated token pair from the auth provider.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// TokenRefresher exchanges an expired access token for a fresh pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, accessToken, refreshToken string) (*RefreshResult, error)
}

type supabaseRefresher struct {
	client *supabase.Client
}

// NewSupabaseRefresher wraps the Supabase client as a TokenRefresher.
func NewSupabaseRefresher(client *supabase.Client) TokenRefresher {
	return &supabaseRefresher{client: client}
}

func (s *supabaseRefresher) Refresh(ctx context.Context, accessToken, refreshToken string) (*RefreshResult, error) {
	details, err := s.client.Auth.RefreshUser(ctx, accessToken, refreshToken)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{
		AccessToken:  details.AccessToken,
		RefreshToken: details.RefreshToken,
		ExpiresIn:    details.ExpiresIn,
	}, nil
}

// SessionBridge exchanges request cookies for an authenticated identity.
// Access tokens are validated locally against the provider's JWT secret;
// only an expired token triggers a network call, and any provider failure
// degrades to "not authenticated" instead of an error so the identity
// provider's availability never takes public pages down with it.
type SessionBridge struct {
	jwtSecret     []byte
	refresher     TokenRefresher
	timeout       time.Duration
	secureCookies bool
	logger        *zap.Logger
}

// NewSessionBridge constructs the bridge.
func NewSessionBridge(cfg config.SupabaseConfig, refresher TokenRefresher, secureCookies bool, logger *zap.Logger) *SessionBridge {
	return &SessionBridge{
		jwtSecret:     []byte(cfg.JWTSecret),
		refresher:     refresher,
		timeout:       cfg.IdentityTimeout(),
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type sessionClaims struct {
	Email        string         `json:"email"`
	AppMetadata  map[string]any `json:"app_metadata"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Resolve turns the session cookie pair into an identity plus the cookie
// mutations the caller must apply to whichever response it returns. A nil
// identity with no error means "anonymous": the bridge never fails a request
// on its own.
func (b *SessionBridge) Resolve(ctx context.Context, accessToken, refreshToken string) (*domain.Identity, []domain.CookieMutation) {
	if accessToken == "" && refreshToken == "" {
		return nil, nil
	}

	if accessToken != "" {
		identity, err := b.parseAccessToken(accessToken)
		if err == nil {
			return identity, nil
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			b.logger.Debug("rejecting session token", zap.Error(err))
			return nil, nil
		}
	}

	// Expired or missing access token: attempt a refresh so the session
	// survives. The rotated cookies MUST reach the response or the user is
	// silently logged out.
	if refreshToken == "" || b.refresher == nil {
		return nil, nil
	}

	refreshCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	result, err := b.refresher.Refresh(refreshCtx, accessToken, refreshToken)
	if err != nil {
		b.logger.Warn("session refresh failed; treating as anonymous", zap.Error(err))
		return nil, nil
	}

	identity, err := b.parseAccessToken(result.AccessToken)
	if err != nil {
		b.logger.Warn("refreshed token failed validation", zap.Error(err))
		return nil, nil
	}

	return identity, b.cookieMutations(result)
}

func (b *SessionBridge) parseAccessToken(token string) (*domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return b.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}

	return &domain.Identity{
		SubjectID:    claims.Subject,
		Email:        claims.Email,
		AppMetadata:  claims.AppMetadata,
		UserMetadata: claims.UserMetadata,
	}, nil
}

func (b *SessionBridge) cookieMutations(result *RefreshResult) []domain.CookieMutation {
	accessMaxAge := result.ExpiresIn
	if accessMaxAge <= 0 {
		accessMaxAge = 3600
	}
	return []domain.CookieMutation{
		{
			Name:     AccessTokenCookie,
			Value:    result.AccessToken,
			Path:     "/",
			MaxAge:   accessMaxAge,
			HTTPOnly: true,
			Secure:   b.secureCookies,
			SameSite: "Lax",
		},
		{
			Name:     RefreshTokenCookie,
			Value:    result.RefreshToken,
			Path:     "/",
			MaxAge:   refreshCookieMaxAge,
			HTTPOnly: true,
			Secure:   b.secureCookies,
			SameSite: "Lax",
		},
	}
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-gatekeeper/internal/config"
)

const testSecret = "unit-test-jwt-secret"

func signToken(t *testing.T, secret string, ttl time.Duration, meta map[string]any) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   "user-123",
		"email": "owner@example.com",
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Add(-time.Minute).Unix(),
	}
	if meta != nil {
		claims["app_metadata"] = meta
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

type fakeRefresher struct {
	result *RefreshResult
	err    error
	block  bool
	calls  int
}

func (f *fakeRefresher) Refresh(ctx context.Context, accessToken, refreshToken string) (*RefreshResult, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.err
}

func newBridge(refresher TokenRefresher) *SessionBridge {
	return NewSessionBridge(config.SupabaseConfig{
		JWTSecret:             testSecret,
		IdentityTimeoutMillis: 100,
	}, refresher, true, zap.NewNop())
}

func TestResolveAnonymous(t *testing.T) {
	bridge := newBridge(&fakeRefresher{})
	identity, mutations := bridge.Resolve(context.Background(), "", "")
	assert.Nil(t, identity)
	assert.Empty(t, mutations)
}

func TestResolveValidToken(t *testing.T) {
	refresher := &fakeRefresher{}
	bridge := newBridge(refresher)

	token := signToken(t, testSecret, time.Hour, map[string]any{"roles": []any{"admin"}})
	identity, mutations := bridge.Resolve(context.Background(), token, "refresh-token")

	require.NotNil(t, identity)
	assert.Equal(t, "user-123", identity.SubjectID)
	assert.Equal(t, "owner@example.com", identity.Email)
	assert.NotNil(t, identity.AppMetadata)
	assert.Empty(t, mutations, "a valid token must not rotate cookies")
	assert.Zero(t, refresher.calls, "a valid token must not hit the provider")
}

func TestResolveForgedTokenRejected(t *testing.T) {
	bridge := newBridge(&fakeRefresher{})
	forged := signToken(t, "wrong-secret", time.Hour, nil)

	identity, mutations := bridge.Resolve(context.Background(), forged, "")
	assert.Nil(t, identity)
	assert.Empty(t, mutations)
}

func TestResolveExpiredTokenRefreshes(t *testing.T) {
	rotated := signToken(t, testSecret, time.Hour, nil)
	refresher := &fakeRefresher{result: &RefreshResult{
		AccessToken:  rotated,
		RefreshToken: "rotated-refresh",
		ExpiresIn:    3600,
	}}
	bridge := newBridge(refresher)

	expired := signToken(t, testSecret, -time.Hour, nil)
	identity, mutations := bridge.Resolve(context.Background(), expired, "old-refresh")

	require.NotNil(t, identity)
	assert.Equal(t, "user-123", identity.SubjectID)
	assert.Equal(t, 1, refresher.calls)

	require.Len(t, mutations, 2)
	assert.Equal(t, AccessTokenCookie, mutations[0].Name)
	assert.Equal(t, rotated, mutations[0].Value)
	assert.Equal(t, RefreshTokenCookie, mutations[1].Name)
	assert.Equal(t, "rotated-refresh", mutations[1].Value)
	for _, m := range mutations {
		assert.True(t, m.HTTPOnly)
		assert.True(t, m.Secure)
		assert.Equal(t, "Lax", m.SameSite)
	}
}

// Provider unavailability degrades to anonymous rather than erroring, so an
// identity-provider outage cannot take public pages down.
func TestResolveRefreshFailureIsAnonymous(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("provider unreachable")}
	bridge := newBridge(refresher)

	expired := signToken(t, testSecret, -time.Hour, nil)
	identity, mutations := bridge.Resolve(context.Background(), expired, "refresh")
	assert.Nil(t, identity)
	assert.Empty(t, mutations)
}

func TestResolveRefreshTimeout(t *testing.T) {
	refresher := &fakeRefresher{block: true}
	bridge := newBridge(refresher)

	expired := signToken(t, testSecret, -time.Hour, nil)
	start := time.Now()
	identity, _ := bridge.Resolve(context.Background(), expired, "refresh")
	assert.Nil(t, identity)
	assert.Less(t, time.Since(start), time.Second, "timeout must bound the provider call")
}

func TestResolveExpiredTokenWithoutRefreshToken(t *testing.T) {
	refresher := &fakeRefresher{}
	bridge := newBridge(refresher)

	expired := signToken(t, testSecret, -time.Hour, nil)
	identity, _ := bridge.Resolve(context.Background(), expired, "")
	assert.Nil(t, identity)
	assert.Zero(t, refresher.calls)
}

package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionWithoutTokenMakesNoCall(t *testing.T) {
	backend := newFakeBackend()
	session := NewSession(&memTokens{}, backend, &recordingCache{}, nil)
	assert.Equal(t, domain.SessionLoading, session.State())

	require.NoError(t, session.Init(context.Background()))

	assert.Equal(t, domain.SessionAnonymous, session.State())
	assert.Equal(t, 0, backend.meCalls)
	select {
	case <-session.Ready():
	default:
		t.Fatal("ready must be closed after init")
	}
}

func TestSessionInvalidTokenIsCleared(t *testing.T) {
	backend := newFakeBackend()
	tokens := &memTokens{token: "expired"}
	session := NewSession(tokens, backend, &recordingCache{}, nil)

	require.NoError(t, session.Init(context.Background()))

	assert.Equal(t, domain.SessionAnonymous, session.State())
	assert.Equal(t, 1, backend.meCalls)
	assert.Empty(t, tokens.token)
	_, err := session.RequireUser()
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSessionTransportFailureDowngrades(t *testing.T) {
	backend := newFakeBackend()
	backend.meErr = errors.New("connection refused")
	tokens := &memTokens{token: "t"}
	session := NewSession(tokens, backend, &recordingCache{}, nil)

	require.NoError(t, session.Init(context.Background()))
	assert.Equal(t, domain.SessionAnonymous, session.State())
	assert.Empty(t, tokens.token)
}

func TestSessionLoginDuringInitSurvivesRejectedToken(t *testing.T) {
	backend := newFakeBackend()
	backend.meErr = errors.New("connection reset")
	backend.meStarted = make(chan struct{})
	backend.meRelease = make(chan struct{})
	tokens := &memTokens{token: "stale"}
	session := NewSession(tokens, backend, &recordingCache{}, nil)

	done := make(chan error, 1)
	go func() { done <- session.Init(context.Background()) }()
	<-backend.meStarted

	fresh := domain.User{ID: 7, FullName: "Ann"}
	require.NoError(t, session.Login(context.Background(), fresh, "fresh"))
	close(backend.meRelease)
	require.NoError(t, <-done)

	assert.Equal(t, "fresh", tokens.token)
	assert.Equal(t, domain.SessionAuthenticated, session.State())
	user, err := session.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
}

func TestSessionLogoutDuringInitWins(t *testing.T) {
	backend := newFakeBackend()
	backend.me = &domain.User{ID: 3, FullName: "Ann"}
	backend.meStarted = make(chan struct{})
	backend.meRelease = make(chan struct{})
	tokens := &memTokens{token: "good"}
	session := NewSession(tokens, backend, &recordingCache{}, nil)

	done := make(chan error, 1)
	go func() { done <- session.Init(context.Background()) }()
	<-backend.meStarted

	require.NoError(t, session.Logout(context.Background()))
	close(backend.meRelease)
	require.NoError(t, <-done)

	assert.Equal(t, domain.SessionAnonymous, session.State())
	assert.Empty(t, tokens.token)
}

func TestSessionRestoresValidToken(t *testing.T) {
	backend := newFakeBackend()
	backend.me = &domain.User{ID: 3, FullName: "Ann", Role: domain.RoleAdmin}
	session := NewSession(&memTokens{token: "good"}, backend, &recordingCache{}, nil)

	require.NoError(t, session.Init(context.Background()))

	snap, err := session.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAuthenticated, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "Ann", snap.User.FullName)
	_, err = session.RequireAdmin()
	assert.NoError(t, err)
}

func TestSessionWaitHonoursContext(t *testing.T) {
	session := NewSession(&memTokens{}, newFakeBackend(), &recordingCache{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	snap, err := session.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.SessionLoading, snap.State)
}

func TestSessionLoginLogoutClearCache(t *testing.T) {
	ctx := context.Background()
	tokens := &memTokens{}
	cache := &recordingCache{}
	session := NewSession(tokens, newFakeBackend(), cache, nil)
	require.NoError(t, session.Init(ctx))

	require.NoError(t, session.Login(ctx, domain.User{ID: 5, Role: domain.RoleUser}, "tok"))
	assert.Equal(t, domain.SessionAuthenticated, session.State())
	assert.Equal(t, "tok", tokens.token)
	_, err := session.RequireAdmin()
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, session.Logout(ctx))
	assert.Equal(t, domain.SessionAnonymous, session.State())
	assert.Empty(t, tokens.token)
	assert.Equal(t, []string{"", ""}, cache.calls())
}

func TestSessionSyncFollowsExternalTokenChange(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	backend.me = &domain.User{ID: 8, FullName: "Bo"}
	tokens := &memTokens{}
	session := NewSession(tokens, backend, &recordingCache{}, nil)
	require.NoError(t, session.Init(ctx))

	require.NoError(t, session.Sync(ctx))
	assert.Equal(t, 0, backend.meCalls)

	tokens.token = "from-cli"
	require.NoError(t, session.Sync(ctx))
	assert.Equal(t, domain.SessionAuthenticated, session.State())
	assert.Equal(t, 1, backend.meCalls)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7", "exp": exp.Unix()}).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, ok, err := TokenExpiry(signed)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, _, err = TokenExpiry("not-a-jwt")
	assert.Error(t, err)
}

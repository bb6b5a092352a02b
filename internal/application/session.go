package application

import (
	"context"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SessionSnapshot is the read-only view handed to views and the RPC layer.
type SessionSnapshot struct {
	State domain.SessionState `json:"state"`
	User  *domain.User        `json:"user,omitempty"`
}

// Session tracks who is signed in. It starts in the loading state and settles
// on authenticated or anonymous once Init has run; Ready is closed from then on.
type Session struct {
	tokens domain.TokenStore
	auth   domain.AuthAPI
	cache  domain.CacheInvalidator
	log    *zap.Logger

	mu        sync.RWMutex
	state     domain.SessionState
	user      *domain.User
	token     string
	gen       uint64
	ready     chan struct{}
	readyOnce sync.Once
}

func NewSession(tokens domain.TokenStore, auth domain.AuthAPI, cache domain.CacheInvalidator, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		tokens: tokens,
		auth:   auth,
		cache:  cache,
		log:    log.Named("session"),
		state:  domain.SessionLoading,
		ready:  make(chan struct{}),
	}
}

// Init restores the session from the persisted token. Without a token no
// request is made. A token the backend rejects is discarded. A Login or
// Logout that lands while Init is waiting on the backend wins: Init then
// leaves both the stored token and the session alone.
func (s *Session) Init(ctx context.Context) error {
	gen := s.generation()
	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.settleIf(gen, domain.SessionAnonymous, nil, "")
		return err
	}
	if token == "" {
		s.settleIf(gen, domain.SessionAnonymous, nil, "")
		return nil
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.log.Debug("stored token rejected", zap.Error(err))
		s.discardToken(ctx, gen, token)
		s.settleIf(gen, domain.SessionAnonymous, nil, "")
		return nil
	}
	s.settleIf(gen, domain.SessionAuthenticated, &user, token)
	return nil
}

// discardToken clears the stored token only while it is still the one Init
// checked and no sign-in or sign-out happened in between.
func (s *Session) discardToken(ctx context.Context, gen uint64, token string) {
	if s.generation() != gen {
		return
	}
	current, err := s.tokens.Token(ctx)
	if err != nil || current != token {
		return
	}
	if err := s.tokens.ClearToken(ctx); err != nil {
		s.log.Warn("clear stored token", zap.Error(err))
	}
}

// Sync re-runs Init when another process changed the persisted token.
func (s *Session) Sync(ctx context.Context) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}
	s.mu.RLock()
	unchanged := s.state != domain.SessionLoading && token == s.token
	s.mu.RUnlock()
	if unchanged {
		return nil
	}
	s.cache.InvalidatePrefix("")
	return s.Init(ctx)
}

func (s *Session) Login(ctx context.Context, user domain.User, token string) error {
	if err := s.tokens.SetToken(ctx, token); err != nil {
		return err
	}
	s.cache.InvalidatePrefix("")
	s.settle(domain.SessionAuthenticated, &user, token)
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	err := s.tokens.ClearToken(ctx)
	s.cache.InvalidatePrefix("")
	s.settle(domain.SessionAnonymous, nil, "")
	return err
}

func (s *Session) settle(state domain.SessionState, user *domain.User, token string) {
	s.mu.Lock()
	s.gen++
	s.state = state
	s.user = user
	s.token = token
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

// settleIf settles only when nothing else settled since gen was read.
func (s *Session) settleIf(gen uint64, state domain.SessionState, user *domain.User, token string) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.state = state
	s.user = user
	s.token = token
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Session) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Session) Ready() <-chan struct{} { return s.ready }

// Wait blocks until the session has left the loading state.
func (s *Session) Wait(ctx context.Context) (SessionSnapshot, error) {
	select {
	case <-s.ready:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return SessionSnapshot{State: domain.SessionLoading}, ctx.Err()
	}
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := SessionSnapshot{State: s.state}
	if s.user != nil {
		user := *s.user
		snap.User = &user
	}
	return snap
}

func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// RequireUser returns the signed-in user or ErrUnauthenticated.
func (s *Session) RequireUser() (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != domain.SessionAuthenticated || s.user == nil {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return *s.user, nil
}

func (s *Session) RequireAdmin() (domain.User, error) {
	user, err := s.RequireUser()
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsAdmin() {
		return domain.User{}, domain.ErrForbidden
	}
	return user, nil
}

// TokenExpiry reads the exp claim of the stored token without verifying the
// signature. ok is false when there is no token or it carries no expiry.
func (s *Session) TokenExpiry(ctx context.Context) (time.Time, bool, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil || token == "" {
		return time.Time{}, false, err
	}
	return TokenExpiry(token)
}

func TokenExpiry(token string) (time.Time, bool, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, err
	}
	if exp == nil {
		return time.Time{}, false, nil
	}
	return exp.Time, true, nil
}

package application

import (
	"context"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
)

type AuthService struct {
	auth    domain.AuthAPI
	session *Session
	log     *zap.Logger
}

func NewAuthService(auth domain.AuthAPI, session *Session, log *zap.Logger) *AuthService {
	return &AuthService{auth: auth, session: session, log: log.Named("auth")}
}

func (s *AuthService) Register(ctx context.Context, form RegisterForm) (domain.User, error) {
	form.Email = strings.TrimSpace(form.Email)
	form.FullName = strings.TrimSpace(form.FullName)
	if err := Validate(form); err != nil {
		return domain.User{}, err
	}
	return s.auth.Register(ctx, domain.RegisterInput{
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
	})
}

// SignIn logs in against the backend and starts the local session.
func (s *AuthService) SignIn(ctx context.Context, form LoginForm) (domain.User, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := Validate(form); err != nil {
		return domain.User{}, err
	}
	result, err := s.auth.Login(ctx, form.Email, form.Password)
	if err != nil {
		return domain.User{}, err
	}
	if result.Token == "" {
		return domain.User{}, &domain.APIError{Status: 200, Message: "login response carried no token"}
	}
	if err := s.session.Login(ctx, result.User, result.Token); err != nil {
		return domain.User{}, err
	}
	return result.User, nil
}

// SignOut tells the backend, ignoring its answer, then ends the local session.
func (s *AuthService) SignOut(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		s.log.Debug("backend logout failed", zap.Error(err))
	}
	return s.session.Logout(ctx)
}

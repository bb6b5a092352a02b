package api

import (
	"context"
	"net/http"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

type Auth struct{ r domain.Requester }

func (a *Auth) Register(ctx context.Context, in domain.RegisterInput) (domain.User, error) {
	req, err := send(http.MethodPost, "/api/auth/register", in)
	if err != nil {
		return domain.User{}, err
	}
	return call[domain.User](ctx, a.r, req)
}

func (a *Auth) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	req, err := send(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return domain.LoginResult{}, err
	}
	return call[domain.LoginResult](ctx, a.r, req)
}

func (a *Auth) Logout(ctx context.Context) error {
	req, _ := send(http.MethodPost, "/api/auth/logout", nil)
	return exec(ctx, a.r, req)
}

func (a *Auth) Me(ctx context.Context) (domain.User, error) {
	return call[domain.User](ctx, a.r, get("/api/auth/me", nil))
}

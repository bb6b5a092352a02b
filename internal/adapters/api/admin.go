package api

import (
	"context"
	"net/http"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

type Admin struct{ r domain.Requester }

func (a *Admin) Users(ctx context.Context) ([]domain.User, error) {
	return call[[]domain.User](ctx, a.r, get("/api/admin/users", nil))
}

func (a *Admin) DeleteUser(ctx context.Context, userID int64) error {
	req, _ := send(http.MethodDelete, "/api/admin/users/"+id(userID), nil)
	return exec(ctx, a.r, req)
}

func (a *Admin) UpdateRole(ctx context.Context, userID int64, role domain.Role) error {
	req, err := send(http.MethodPut, "/api/admin/users/"+id(userID)+"/role", map[string]domain.Role{"role": role})
	if err != nil {
		return err
	}
	return exec(ctx, a.r, req)
}

func (a *Admin) Comments(ctx context.Context) ([]domain.Comment, error) {
	return call[[]domain.Comment](ctx, a.r, get("/api/admin/comments", nil))
}

func (a *Admin) DeleteComment(ctx context.Context, commentID int64) error {
	req, _ := send(http.MethodDelete, "/api/admin/comments/"+id(commentID), nil)
	return exec(ctx, a.r, req)
}

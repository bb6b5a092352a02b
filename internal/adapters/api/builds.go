package api

import (
	"context"
	"net/http"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

type Builds struct{ r domain.Requester }

func (b *Builds) Check(ctx context.Context, partIDs []int64) (domain.CompatibilityResult, error) {
	req, err := send(http.MethodPost, "/api/builds/check", map[string][]int64{"partIds": partIDs})
	if err != nil {
		return domain.CompatibilityResult{}, err
	}
	return call[domain.CompatibilityResult](ctx, b.r, req)
}

func (b *Builds) Save(ctx context.Context, in domain.BuildInput) (domain.Build, error) {
	req, err := send(http.MethodPost, "/api/builds", in)
	if err != nil {
		return domain.Build{}, err
	}
	return call[domain.Build](ctx, b.r, req)
}

func (b *Builds) ListByUser(ctx context.Context, userID int64) ([]domain.Build, error) {
	return call[[]domain.Build](ctx, b.r, get("/api/builds/user/"+id(userID), nil))
}

func (b *Builds) Get(ctx context.Context, buildID int64) (domain.Build, error) {
	return call[domain.Build](ctx, b.r, get("/api/builds/"+id(buildID), nil))
}

func (b *Builds) Delete(ctx context.Context, buildID int64) error {
	req, _ := send(http.MethodDelete, "/api/builds/"+id(buildID), nil)
	return exec(ctx, b.r, req)
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

type Posts struct{ r domain.Requester }

func PostQuery(f domain.PostFilter) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}
	if f.UserID > 0 {
		q.Set("userId", id(f.UserID))
	}
	return q
}

func (p *Posts) List(ctx context.Context, f domain.PostFilter) (domain.Page[domain.Post], error) {
	return call[domain.Page[domain.Post]](ctx, p.r, get("/api/posts", PostQuery(f)))
}

func (p *Posts) Get(ctx context.Context, postID int64) (domain.Post, error) {
	return call[domain.Post](ctx, p.r, get("/api/posts/"+id(postID), nil))
}

func (p *Posts) Create(ctx context.Context, in domain.PostInput) (domain.Post, error) {
	req, err := send(http.MethodPost, "/api/posts", in)
	if err != nil {
		return domain.Post{}, err
	}
	return call[domain.Post](ctx, p.r, req)
}

func (p *Posts) Update(ctx context.Context, postID int64, in domain.PostInput) (domain.Post, error) {
	req, err := send(http.MethodPut, "/api/posts/"+id(postID), in)
	if err != nil {
		return domain.Post{}, err
	}
	return call[domain.Post](ctx, p.r, req)
}

func (p *Posts) Delete(ctx context.Context, postID int64) error {
	req, _ := send(http.MethodDelete, "/api/posts/"+id(postID), nil)
	return exec(ctx, p.r, req)
}

func (p *Posts) AddComment(ctx context.Context, postID int64, in domain.CommentInput) (domain.Comment, error) {
	req, err := send(http.MethodPost, "/api/posts/"+id(postID)+"/comments", in)
	if err != nil {
		return domain.Comment{}, err
	}
	return call[domain.Comment](ctx, p.r, req)
}

func (p *Posts) DeleteComment(ctx context.Context, postID, commentID int64) error {
	req, _ := send(http.MethodDelete, "/api/posts/"+id(postID)+"/comments/"+id(commentID), nil)
	return exec(ctx, p.r, req)
}

func (p *Posts) React(ctx context.Context, postID int64, in domain.ReactionInput) error {
	req, err := send(http.MethodPost, "/api/posts/"+id(postID)+"/reactions", in)
	if err != nil {
		return err
	}
	return exec(ctx, p.r, req)
}

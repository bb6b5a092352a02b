package application

import (
	"context"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
)

type AdminService struct {
	admin   domain.AdminAPI
	posts   domain.PostsAPI
	session *Session
	cache   domain.CacheInvalidator
	log     *zap.Logger
}

func NewAdminService(admin domain.AdminAPI, posts domain.PostsAPI, session *Session, cache domain.CacheInvalidator, log *zap.Logger) *AdminService {
	return &AdminService{admin: admin, posts: posts, session: session, cache: cache, log: log.Named("admin")}
}

func (s *AdminService) Users(ctx context.Context) ([]domain.User, error) {
	if _, err := s.session.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.admin.Users(ctx)
}

func (s *AdminService) SetRole(ctx context.Context, userID int64, role domain.Role) error {
	if _, err := s.session.RequireAdmin(); err != nil {
		return err
	}
	role = domain.Role(strings.ToUpper(string(role)))
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return domain.ValidationError("role must be USER or ADMIN")
	}
	if err := s.admin.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.cache.InvalidatePrefix("/api/admin/users")
	return nil
}

func (s *AdminService) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := s.session.RequireAdmin(); err != nil {
		return err
	}
	if err := s.admin.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.cache.InvalidatePrefix("/api/admin")
	s.cache.InvalidatePrefix("/api/posts")
	return nil
}

func (s *AdminService) Comments(ctx context.Context) ([]domain.Comment, error) {
	if _, err := s.session.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.admin.Comments(ctx)
}

func (s *AdminService) DeleteComment(ctx context.Context, commentID int64) error {
	if _, err := s.session.RequireAdmin(); err != nil {
		return err
	}
	if err := s.admin.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.cache.InvalidatePrefix("/api/admin/comments")
	s.cache.InvalidatePrefix("/api/posts")
	return nil
}

func (s *AdminService) Posts(ctx context.Context, page int) (domain.Page[domain.Post], error) {
	if _, err := s.session.RequireAdmin(); err != nil {
		return domain.Page[domain.Post]{}, err
	}
	return s.posts.List(ctx, domain.PostFilter{Page: page, Size: DefaultPostsPageSize})
}

func (s *AdminService) DeletePost(ctx context.Context, postID int64) error {
	if _, err := s.session.RequireAdmin(); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	s.cache.InvalidatePrefix("/api/posts")
	return nil
}

package application

import (
	"context"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ProfileService struct {
	posts   domain.PostsAPI
	builds  domain.BuildsAPI
	session *Session
	cache   domain.CacheInvalidator
	log     *zap.Logger
}

func NewProfileService(posts domain.PostsAPI, builds domain.BuildsAPI, session *Session, cache domain.CacheInvalidator, log *zap.Logger) *ProfileService {
	return &ProfileService{posts: posts, builds: builds, session: session, cache: cache, log: log.Named("profile")}
}

type Profile struct {
	UserID   int64          `json:"user_id"`
	FullName string         `json:"full_name"`
	Email    string         `json:"email,omitempty"`
	Own      bool           `json:"own"`
	Posts    []domain.Post  `json:"posts"`
	Builds   []domain.Build `json:"builds"`
}

// Load fetches a user's first page of posts and their builds in parallel.
// The display name comes from the posts, or the session for one's own
// profile.
func (s *ProfileService) Load(ctx context.Context, userID int64) (Profile, error) {
	profile := Profile{UserID: userID, FullName: "User", Posts: []domain.Post{}, Builds: []domain.Build{}}
	me, meErr := s.session.RequireUser()
	profile.Own = meErr == nil && me.ID == userID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.posts.List(gctx, domain.PostFilter{Page: 0, Size: DefaultPostsPageSize, UserID: userID})
		if err != nil {
			return err
		}
		if page.Content != nil {
			profile.Posts = page.Content
		}
		return nil
	})
	g.Go(func() error {
		builds, err := s.builds.ListByUser(gctx, userID)
		if err != nil {
			return err
		}
		if builds != nil {
			profile.Builds = builds
		}
		return nil
	})
	err := g.Wait()

	switch {
	case len(profile.Posts) > 0 && profile.Posts[0].UserName != "":
		profile.FullName = profile.Posts[0].UserName
	case profile.Own:
		profile.FullName = me.FullName
		profile.Email = me.Email
	}
	if err != nil && !profile.Own {
		return profile, err
	}
	if err != nil {
		s.log.Warn("load own profile", zap.Error(err))
	}
	return profile, nil
}

func (s *ProfileService) DeleteBuild(ctx context.Context, buildID int64) error {
	if _, err := s.session.RequireUser(); err != nil {
		return err
	}
	if err := s.builds.Delete(ctx, buildID); err != nil {
		return err
	}
	s.cache.InvalidatePrefix("/api/builds")
	s.cache.InvalidatePrefix("/api/posts")
	return nil
}

func (s *ProfileService) Build(ctx context.Context, buildID int64) (domain.Build, error) {
	return s.builds.Get(ctx, buildID)
}

package application

import (
	"context"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
)

const DefaultPostsPageSize = 20

type ForumService struct {
	posts   domain.PostsAPI
	builds  domain.BuildsAPI
	session *Session
	cache   domain.CacheInvalidator
	log     *zap.Logger
}

func NewForumService(posts domain.PostsAPI, builds domain.BuildsAPI, session *Session, cache domain.CacheInvalidator, log *zap.Logger) *ForumService {
	return &ForumService{posts: posts, builds: builds, session: session, cache: cache, log: log.Named("forum")}
}

func (s *ForumService) ListPosts(ctx context.Context, page int) (domain.Page[domain.Post], error) {
	if page < 0 {
		page = 0
	}
	return s.posts.List(ctx, domain.PostFilter{Page: page, Size: DefaultPostsPageSize})
}

type PostDetail struct {
	Post     domain.Post           `json:"post"`
	Comments []*domain.CommentNode `json:"comments"`
}

func (s *ForumService) PostDetail(ctx context.Context, postID int64) (PostDetail, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return PostDetail{}, err
	}
	return PostDetail{Post: post, Comments: BuildCommentTree(post.Comments)}, nil
}

// CreatePost publishes a post. When shareBuildID is set and the content is
// empty, the content is generated from that build.
func (s *ForumService) CreatePost(ctx context.Context, form PostForm) (domain.Post, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return domain.Post{}, err
	}
	if form.BuildID != nil && strings.TrimSpace(form.Content) == "" {
		build, err := s.builds.Get(ctx, *form.BuildID)
		if err != nil {
			return domain.Post{}, err
		}
		if strings.TrimSpace(form.Title) == "" {
			form.Title = build.Title
		}
		form.Content = ShareContent(ShareFromBuild(build))
	}
	if err := Validate(form); err != nil {
		return domain.Post{}, err
	}
	if form.ImageURLs == nil {
		form.ImageURLs = []string{}
	}
	post, err := s.posts.Create(ctx, domain.PostInput{
		UserID:    user.ID,
		Title:     strings.TrimSpace(form.Title),
		Content:   form.Content,
		ImageURLs: form.ImageURLs,
	})
	if err != nil {
		return domain.Post{}, err
	}
	s.cache.InvalidatePrefix("/api/posts")
	return post, nil
}

// EditPost keeps the existing images unless the form carries new ones.
func (s *ForumService) EditPost(ctx context.Context, postID int64, form PostForm) (domain.Post, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return domain.Post{}, err
	}
	if err := Validate(form); err != nil {
		return domain.Post{}, err
	}
	images := form.ImageURLs
	if images == nil {
		current, err := s.posts.Get(ctx, postID)
		if err != nil {
			return domain.Post{}, err
		}
		images = current.ImageURLs
	}
	if images == nil {
		images = []string{}
	}
	post, err := s.posts.Update(ctx, postID, domain.PostInput{
		UserID:    user.ID,
		Title:     strings.TrimSpace(form.Title),
		Content:   form.Content,
		ImageURLs: images,
	})
	if err != nil {
		return domain.Post{}, err
	}
	s.cache.InvalidatePrefix("/api/posts")
	return post, nil
}

func (s *ForumService) DeletePost(ctx context.Context, postID int64) error {
	if _, err := s.session.RequireUser(); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	s.cache.InvalidatePrefix("/api/posts")
	return nil
}

func (s *ForumService) AddComment(ctx context.Context, postID int64, form CommentForm) (domain.Comment, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return domain.Comment{}, err
	}
	if err := Validate(form); err != nil {
		return domain.Comment{}, err
	}
	comment, err := s.posts.AddComment(ctx, postID, domain.CommentInput{UserID: user.ID, Content: form.Content, ParentID: form.ParentID})
	if err != nil {
		return domain.Comment{}, err
	}
	s.cache.InvalidatePrefix("/api/posts")
	return comment, nil
}

func (s *ForumService) DeleteComment(ctx context.Context, postID, commentID int64) error {
	if _, err := s.session.RequireUser(); err != nil {
		return err
	}
	if err := s.posts.DeleteComment(ctx, postID, commentID); err != nil {
		return err
	}
	s.cache.InvalidatePrefix("/api/posts")
	return nil
}

func (s *ForumService) React(ctx context.Context, postID int64, reaction domain.ReactionType) error {
	user, err := s.session.RequireUser()
	if err != nil {
		return err
	}
	reaction = domain.ReactionType(strings.ToUpper(string(reaction)))
	if reaction != domain.ReactionLike && reaction != domain.ReactionDislike {
		return domain.ValidationError("reaction must be LIKE or DISLIKE")
	}
	if err := s.posts.React(ctx, postID, domain.ReactionInput{UserID: user.ID, Type: reaction}); err != nil {
		return err
	}
	s.cache.InvalidatePrefix("/api/posts")
	return nil
}

package application

import (
	"context"
	"sync"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *memTokens) ClearToken(context.Context) error {
	return m.SetToken(context.Background(), "")
}

type memDrafts struct {
	mu    sync.Mutex
	parts []domain.DraftPart
	title string
}

func (m *memDrafts) DraftParts(context.Context) ([]domain.DraftPart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.DraftPart(nil), m.parts...), nil
}

func (m *memDrafts) PutDraftPart(_ context.Context, category domain.Category, partID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.parts {
		if m.parts[i].Category == category {
			m.parts[i].PartID = partID
			return nil
		}
	}
	m.parts = append(m.parts, domain.DraftPart{Category: category, PartID: partID})
	return nil
}

func (m *memDrafts) RemoveDraftPart(_ context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.parts[:0]
	for _, p := range m.parts {
		if p.Category != category {
			out = append(out, p)
		}
	}
	m.parts = out
	return nil
}

func (m *memDrafts) DraftTitle(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title, nil
}

func (m *memDrafts) SetDraftTitle(_ context.Context, title string) error {
	m.mu.Lock()
	m.title = title
	m.mu.Unlock()
	return nil
}

func (m *memDrafts) ClearDraft(context.Context) error {
	m.mu.Lock()
	m.parts = nil
	m.title = ""
	m.mu.Unlock()
	return nil
}

type recordingCache struct {
	mu       sync.Mutex
	prefixes []string
}

func (c *recordingCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	c.prefixes = append(c.prefixes, prefix)
	c.mu.Unlock()
}

func (c *recordingCache) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prefixes...)
}

// fakeBackend serves every REST port from in-memory fixtures.
type fakeBackend struct {
	mu sync.Mutex

	me      *domain.User
	meErr   error
	meCalls int
	// meStarted and meRelease, when set, hold Me until the test lets it go.
	meStarted chan struct{}
	meRelease chan struct{}
	login   domain.LoginResult

	parts     map[int64]domain.Part
	ratings   []domain.Rating
	ratingErr error
	priceErr  error
	crawlErr  map[int64]error

	compat     domain.CompatibilityResult
	checkCalls [][]int64
	saved      []domain.BuildInput
	builds     map[int64]domain.Build

	posts    map[int64]domain.Post
	created  []domain.PostInput
	comments []domain.CommentInput
	reacts   []domain.ReactionInput

	users []domain.User
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		parts:    make(map[int64]domain.Part),
		crawlErr: make(map[int64]error),
		builds:   make(map[int64]domain.Build),
		posts:    make(map[int64]domain.Post),
	}
}

func (f *fakeBackend) backend() Backend {
	return Backend{Auth: f, Parts: fakeParts{f}, Builds: fakeBuilds{f}, Posts: fakePosts{f}, Admin: f, Files: f}
}

var errNotFound = &domain.APIError{Status: 404, Message: "not found"}

func (f *fakeBackend) Register(_ context.Context, in domain.RegisterInput) (domain.User, error) {
	return domain.User{ID: 99, Email: in.Email, FullName: in.FullName, Role: domain.RoleUser}, nil
}

func (f *fakeBackend) Login(context.Context, string, string) (domain.LoginResult, error) {
	return f.login, nil
}

func (f *fakeBackend) Logout(context.Context) error { return nil }

func (f *fakeBackend) Me(context.Context) (domain.User, error) {
	if f.meStarted != nil {
		close(f.meStarted)
		<-f.meRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return domain.User{}, f.meErr
	}
	if f.me == nil {
		return domain.User{}, &domain.APIError{Status: 401, Message: "Unauthorized"}
	}
	return *f.me, nil
}

func (f *fakeBackend) Users(context.Context) ([]domain.User, error) { return f.users, nil }

func (f *fakeBackend) DeleteUser(context.Context, int64) error { return nil }

func (f *fakeBackend) UpdateRole(context.Context, int64, domain.Role) error { return nil }

func (f *fakeBackend) Comments(context.Context) ([]domain.Comment, error) { return nil, nil }

func (f *fakeBackend) DeleteComment(context.Context, int64) error { return nil }

func (f *fakeBackend) Upload(_ context.Context, fileName, _ string, _ []byte) (string, error) {
	return "/uploads/" + fileName, nil
}

type fakeParts struct{ f *fakeBackend }

func (p fakeParts) List(_ context.Context, filter domain.PartFilter) (domain.Page[domain.Part], error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	out := make([]domain.Part, 0)
	for id := int64(1); id <= int64(len(p.f.parts))+100; id++ {
		part, ok := p.f.parts[id]
		if !ok {
			continue
		}
		if filter.Category != "" && part.Category != filter.Category {
			continue
		}
		out = append(out, part)
	}
	return domain.Page[domain.Part]{Content: out, TotalPages: 1, TotalElements: int64(len(out)), Size: filter.Size}, nil
}

func (p fakeParts) Get(_ context.Context, partID int64) (domain.Part, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	part, ok := p.f.parts[partID]
	if !ok {
		return domain.Part{}, errNotFound
	}
	return part, nil
}

func (p fakeParts) Prices(_ context.Context, partID int64) ([]domain.PricePoint, error) {
	if p.f.priceErr != nil {
		return nil, p.f.priceErr
	}
	return p.f.parts[partID].PriceHistory, nil
}

func (p fakeParts) Create(_ context.Context, in domain.PartInput) (domain.Part, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	part := domain.Part{ID: int64(len(p.f.parts) + 1000), Name: in.Name, Category: in.Category, Price: in.Price, SpecJSON: in.SpecJSON}
	p.f.parts[part.ID] = part
	return part, nil
}

func (p fakeParts) Update(_ context.Context, partID int64, in domain.PartInput) (domain.Part, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	part := domain.Part{ID: partID, Name: in.Name, Category: in.Category, Price: in.Price, SpecJSON: in.SpecJSON}
	p.f.parts[partID] = part
	return part, nil
}

func (p fakeParts) Delete(_ context.Context, partID int64) error {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	delete(p.f.parts, partID)
	return nil
}

func (p fakeParts) CrawlPrice(_ context.Context, partID int64) (domain.Part, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	if err := p.f.crawlErr[partID]; err != nil {
		return domain.Part{}, err
	}
	part := p.f.parts[partID]
	part.Price -= 10
	return part, nil
}

func (p fakeParts) Ratings(context.Context, int64) ([]domain.Rating, error) {
	return p.f.ratings, p.f.ratingErr
}

func (p fakeParts) Rate(_ context.Context, partID int64, in domain.RatingInput) (domain.Rating, error) {
	return domain.Rating{PartID: partID, UserID: in.UserID, Score: in.Score, Content: in.Content}, nil
}

type fakeBuilds struct{ f *fakeBackend }

func (b fakeBuilds) Check(_ context.Context, partIDs []int64) (domain.CompatibilityResult, error) {
	b.f.mu.Lock()
	defer b.f.mu.Unlock()
	b.f.checkCalls = append(b.f.checkCalls, partIDs)
	return b.f.compat, nil
}

func (b fakeBuilds) Save(_ context.Context, in domain.BuildInput) (domain.Build, error) {
	b.f.mu.Lock()
	defer b.f.mu.Unlock()
	b.f.saved = append(b.f.saved, in)
	return domain.Build{ID: 500, UserID: in.UserID, Title: in.Title, PartIDs: in.PartIDs}, nil
}

func (b fakeBuilds) ListByUser(_ context.Context, userID int64) ([]domain.Build, error) {
	out := make([]domain.Build, 0)
	for _, build := range b.f.builds {
		if build.UserID == userID {
			out = append(out, build)
		}
	}
	return out, nil
}

func (b fakeBuilds) Get(_ context.Context, buildID int64) (domain.Build, error) {
	build, ok := b.f.builds[buildID]
	if !ok {
		return domain.Build{}, errNotFound
	}
	return build, nil
}

func (b fakeBuilds) Delete(context.Context, int64) error { return nil }

type fakePosts struct{ f *fakeBackend }

func (p fakePosts) List(_ context.Context, filter domain.PostFilter) (domain.Page[domain.Post], error) {
	out := make([]domain.Post, 0)
	for _, post := range p.f.posts {
		if filter.UserID == 0 || post.UserID == filter.UserID {
			out = append(out, post)
		}
	}
	return domain.Page[domain.Post]{Content: out, TotalPages: 1, Size: filter.Size}, nil
}

func (p fakePosts) Get(_ context.Context, postID int64) (domain.Post, error) {
	post, ok := p.f.posts[postID]
	if !ok {
		return domain.Post{}, errNotFound
	}
	return post, nil
}

func (p fakePosts) Create(_ context.Context, in domain.PostInput) (domain.Post, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	p.f.created = append(p.f.created, in)
	return domain.Post{ID: 77, UserID: in.UserID, Title: in.Title, Content: in.Content, ImageURLs: in.ImageURLs}, nil
}

func (p fakePosts) Update(_ context.Context, postID int64, in domain.PostInput) (domain.Post, error) {
	return domain.Post{ID: postID, UserID: in.UserID, Title: in.Title, Content: in.Content, ImageURLs: in.ImageURLs}, nil
}

func (p fakePosts) Delete(context.Context, int64) error { return nil }

func (p fakePosts) AddComment(_ context.Context, postID int64, in domain.CommentInput) (domain.Comment, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	p.f.comments = append(p.f.comments, in)
	return domain.Comment{ID: 1, PostID: postID, UserID: in.UserID, Content: in.Content, ParentID: in.ParentID}, nil
}

func (p fakePosts) DeleteComment(context.Context, int64, int64) error { return nil }

func (p fakePosts) React(_ context.Context, _ int64, in domain.ReactionInput) error {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	p.f.reacts = append(p.f.reacts, in)
	return nil
}

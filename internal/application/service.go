package application

import (
	"sort"
	"strconv"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
)

// Backend is the set of REST modules the services call.
type Backend struct {
	Auth   domain.AuthAPI
	Parts  domain.PartsAPI
	Builds domain.BuildsAPI
	Posts  domain.PostsAPI
	Admin  domain.AdminAPI
	Files  domain.FilesAPI
}

// App is one application root: a session plus the page services sharing it.
type App struct {
	Session *Session
	Auth    *AuthService
	Catalog *CatalogService
	Builder *BuilderService
	Forum   *ForumService
	Profile *ProfileService
	Admin   *AdminService
	Files   *FileService
}

func NewApp(backend Backend, tokens domain.TokenStore, drafts domain.DraftRepository, cache domain.CacheInvalidator, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	session := NewSession(tokens, backend.Auth, cache, log)
	return &App{
		Session: session,
		Auth:    NewAuthService(backend.Auth, session, log),
		Catalog: NewCatalogService(backend.Parts, session, cache, log),
		Builder: NewBuilderService(backend.Parts, backend.Builds, drafts, session, cache, log),
		Forum:   NewForumService(backend.Posts, backend.Builds, session, cache, log),
		Profile: NewProfileService(backend.Posts, backend.Builds, session, cache, log),
		Admin:   NewAdminService(backend.Admin, backend.Posts, session, cache, log),
		Files:   NewFileService(backend.Files, log),
	}
}

func id64(v int64) string { return strconv.FormatInt(v, 10) }

// sortPricePoints orders history oldest first.
func sortPricePoints(points []domain.PricePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].CrawledAt.Before(points[j].CrawledAt)
	})
}

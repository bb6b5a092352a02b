package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/atvirokodosprendimai/pcforge/internal/adapters/api"
	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/atvirokodosprendimai/pcforge/internal/ui"
	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
)

type contextKey string

const userKey contextKey = "user"

type Handler struct {
	app    *application.App
	apiURL string
	log    *zap.Logger
}

// NewRouter serves the web console. apiURL is the marketplace backend that
// image paths are resolved against.
func NewRouter(app *application.App, apiURL string, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{app: app, apiURL: apiURL, log: log.Named("web")}
	r := chi.NewRouter()
	r.Use(h.images)

	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Group(func(pages chi.Router) {
		pages.Use(h.settled)

		pages.Get("/", h.handleHomeRedirect)
		pages.Get("/logout", h.handleLogoutPage)
		pages.Get("/parts", h.handleParts)
		pages.Get("/parts/{id}", h.handlePart)
		pages.Get("/compare", h.handleCompare)
		pages.Get("/builder", h.handleBuilder)
		pages.Post("/builder/select", h.handleBuilderSelect)
		pages.Post("/builder/remove", h.handleBuilderRemove)
		pages.Get("/forum", h.handleForum)
		pages.Get("/forum/{id}", h.handlePost)
		pages.Get("/profile/{userID}", h.handleProfile)

		pages.With(h.requireUser).Post("/builder/save", h.handleBuilderSave)
		pages.With(h.requireUser).Post("/forum/{id}/comments", h.handleComment)
		pages.With(h.requireUser).Post("/forum/{id}/reactions", h.handleReaction)
		pages.With(h.requireUser, h.requireAdmin).Get("/admin", h.handleAdmin)
	})

	return r
}

func (h *Handler) images(next http.Handler) http.Handler {
	resolve := func(path string) string { return api.ImageURL(h.apiURL, path) }
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(ui.WithImageResolver(r.Context(), resolve)))
	})
}

// settled holds every page behind the loading page until the session has
// resolved, then follows token changes made by other processes.
func (h *Handler) settled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.app.Session.State() == domain.SessionLoading {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_ = ui.LoadingPage().Render(r.Context(), w)
			return
		}
		if err := h.app.Session.Sync(r.Context()); err != nil {
			h.log.Warn("session sync", zap.Error(err))
		}
		snap := h.app.Session.Snapshot()
		ctx := context.WithValue(r.Context(), userKey, snap.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodGet {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.renderFlash(r.Context(), w, http.StatusUnauthorized, "Please sign in first")
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		if user == nil || !user.IsAdmin() {
			h.renderPage(w, r, http.StatusForbidden, ui.ErrorPage(user, http.StatusForbidden, "Administrators only"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if err := ui.LoginPage("").Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := application.LoginForm{
		Email:    strings.TrimSpace(r.Form.Get("email")),
		Password: r.Form.Get("password"),
	}
	if _, err := h.app.Auth.SignIn(r.Context(), form); err != nil {
		w.WriteHeader(statusFor(err))
		_ = ui.LoginPage(err.Error()).Render(r.Context(), w)
		return
	}
	http.Redirect(w, r, "/parts", http.StatusSeeOther)
}

// handleLogoutPage asks for confirmation; only the POST signs out.
func (h *Handler) handleLogoutPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.LogoutPage(user))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Auth.SignOut(r.Context()); err != nil {
		h.log.Warn("sign out", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleHomeRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/parts", http.StatusSeeOther)
}

func (h *Handler) handleParts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort := q.Get("sort")
	sortBy, sortDir := application.ParseSort(sort)
	filter := domain.PartFilter{
		Page:     queryInt(q, "page"),
		Category: domain.Category(q.Get("category")),
		Brand:    q.Get("brand"),
		MinPrice: q.Get("minPrice"),
		MaxPrice: q.Get("maxPrice"),
		Query:    q.Get("q"),
		SortBy:   sortBy,
		SortDir:  sortDir,
	}
	page, err := h.app.Catalog.ListParts(r.Context(), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	q.Del("page")
	h.renderPage(w, r, http.StatusOK, ui.PartsPage(ui.PartsView{
		User:   currentUser(r.Context()),
		Filter: filter,
		Sort:   sortBy + "-" + sortDir,
		Query:  q,
		Page:   page,
		Window: application.NewPageWindow(page.Number, page.TotalPages),
	}))
}

func (h *Handler) handlePart(w http.ResponseWriter, r *http.Request) {
	partID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.app.Catalog.PartDetail(r.Context(), partID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.PartPage(currentUser(r.Context()), detail))
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	leftID := queryInt64(q, "left")
	if leftID == 0 {
		http.Redirect(w, r, "/parts", http.StatusSeeOther)
		return
	}
	cmp, err := h.app.Catalog.Compare(r.Context(), leftID, queryInt64(q, "right"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.ComparePage(currentUser(r.Context()), cmp))
}

func (h *Handler) handleBuilder(w http.ResponseWriter, r *http.Request) {
	draft, err := h.app.Builder.Draft(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.BuilderPage(currentUser(r.Context()), draft))
}

type builderSignals struct {
	BuilderPartID   string `json:"builderPartId"`
	BuilderCategory string `json:"builderCategory"`
	BuilderTitle    string `json:"builderTitle"`
}

func (h *Handler) handleBuilderSelect(w http.ResponseWriter, r *http.Request) {
	var sig builderSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	partID, err := parseRequiredID(sig.BuilderPartID, "Part ID")
	if err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}
	part, err := h.app.Builder.SelectPart(r.Context(), partID)
	if err != nil {
		h.renderFlash(r.Context(), w, statusFor(err), err.Error())
		return
	}
	h.renderDraft(w, r, fmt.Sprintf("Added %s to the %s slot", part.Name, part.Category.Label()))
}

func (h *Handler) handleBuilderRemove(w http.ResponseWriter, r *http.Request) {
	var sig builderSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	category := domain.Category(strings.ToUpper(strings.TrimSpace(sig.BuilderCategory)))
	if !category.Valid() {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "unknown category")
		return
	}
	if err := h.app.Builder.RemoveCategory(r.Context(), category); err != nil {
		h.renderFlash(r.Context(), w, statusFor(err), err.Error())
		return
	}
	h.renderDraft(w, r, category.Label()+" removed")
}

func (h *Handler) handleBuilderSave(w http.ResponseWriter, r *http.Request) {
	var sig builderSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	build, err := h.app.Builder.Save(r.Context(), sig.BuilderTitle)
	if err != nil {
		h.renderFlash(r.Context(), w, statusFor(err), err.Error())
		return
	}
	h.renderDraft(w, r, fmt.Sprintf("Saved build #%d (%s)", build.ID, build.Title))
}

func (h *Handler) renderDraft(w http.ResponseWriter, r *http.Request, message string) {
	draft, err := h.app.Builder.Draft(r.Context())
	if err != nil {
		h.renderFlash(r.Context(), w, statusFor(err), err.Error())
		return
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK,
		ui.Flash(message, "info"),
		ui.BuilderSlots(draft),
	)
}

func (h *Handler) handleForum(w http.ResponseWriter, r *http.Request) {
	page, err := h.app.Forum.ListPosts(r.Context(), queryInt(r.URL.Query(), "page"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.ForumPage(currentUser(r.Context()), page, application.NewPageWindow(page.Number, page.TotalPages)))
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.app.Forum.PostDetail(r.Context(), postID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.PostPage(currentUser(r.Context()), detail))
}

type commentSignals struct {
	CommentContent  string `json:"commentContent"`
	CommentParentID string `json:"commentParentId"`
}

func (h *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var sig commentSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	parentID, err := parseOptionalID(sig.CommentParentID, "Parent comment")
	if err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.app.Forum.AddComment(r.Context(), postID, application.CommentForm{Content: sig.CommentContent, ParentID: parentID}); err != nil {
		h.renderFlash(r.Context(), w, statusFor(err), err.Error())
		return
	}
	detail, err := h.app.Forum.PostDetail(r.Context(), postID)
	if err != nil {
		h.renderFlash(r.Context(), w, statusFor(err), err.Error())
		return
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK,
		ui.Flash("Comment posted", "info"),
		ui.CommentSection(postID, detail.Comments, true),
	)
}

type reactionSignals struct {
	Reaction string `json:"reaction"`
}

func (h *Handler) handleReaction(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var sig reactionSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	if err := h.app.Forum.React(r.Context(), postID, domain.ReactionType(sig.Reaction)); err != nil {
		h.renderFlash(r.Context(), w, statusFor(err), err.Error())
		return
	}
	detail, err := h.app.Forum.PostDetail(r.Context(), postID)
	if err != nil {
		h.renderFlash(r.Context(), w, statusFor(err), err.Error())
		return
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK, ui.Reactions(detail.Post, true))
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	profile, err := h.app.Profile.Load(r.Context(), userID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.ProfilePage(currentUser(r.Context()), profile))
}

func (h *Handler) handleAdmin(w http.ResponseWriter, r *http.Request) {
	users, err := h.app.Admin.Users(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	comments, err := h.app.Admin.Comments(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	posts, err := h.app.Admin.Posts(r.Context(), 0)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.AdminPage(ui.AdminView{
		User:     currentUser(r.Context()),
		Users:    users,
		Comments: comments,
		Posts:    posts.Content,
	}))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		h.renderPage(w, r, http.StatusNotFound, ui.ErrorPage(currentUser(r.Context()), http.StatusNotFound, "Not found"))
		return 0, false
	}
	return v, true
}

func queryInt(q url.Values, key string) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func queryInt64(q url.Values, key string) int64 {
	v, err := strconv.ParseInt(q.Get(key), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseRequiredID(raw string, field string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", field)
	}
	return v, nil
}

func parseOptionalID(raw string, field string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := parseRequiredID(raw, field)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(r.Context(), w); err != nil {
		h.log.Warn("render page", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusUnauthorized {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if status >= 500 {
		h.log.Warn("backend call failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	h.renderPage(w, r, status, ui.ErrorPage(currentUser(r.Context()), status, err.Error()))
}

func renderHTMLFragments(ctx context.Context, w http.ResponseWriter, status int, fragments ...templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	for _, fragment := range fragments {
		if fragment == nil {
			continue
		}
		_ = fragment.Render(ctx, w)
	}
}

func (h *Handler) renderFlash(ctx context.Context, w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if status >= 400 {
		_ = ui.Flash(message, "error").Render(ctx, w)
		return
	}
	_ = ui.Flash(message, "info").Render(ctx, w)
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atvirokodosprendimai/pcforge/internal/adapters/api"
	"github.com/atvirokodosprendimai/pcforge/internal/adapters/db/sqlite"
	"github.com/atvirokodosprendimai/pcforge/internal/adapters/httpclient"
	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(raw)})
}

func marketplace() http.Handler {
	mux := http.NewServeMux()
	parts := map[string]domain.Part{
		"1": {ID: 1, Name: "Ryzen 5 7600", Category: domain.CategoryCPU, Price: 5000000, Wattage: 65, ImageURL: "/uploads/cpu.png"},
		"2": {ID: 2, Name: "RTX 4060", Category: domain.CategoryGPU, Price: 8000000, Wattage: 115},
	}
	mux.HandleFunc("GET /api/parts", func(w http.ResponseWriter, r *http.Request) {
		ok(w, domain.Page[domain.Part]{Content: []domain.Part{parts["1"], parts["2"]}, TotalPages: 1, TotalElements: 2, Size: 12})
	})
	mux.HandleFunc("GET /api/parts/{id}", func(w http.ResponseWriter, r *http.Request) {
		p, found := parts[r.PathValue("id")]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"Part not found"}`))
			return
		}
		ok(w, p)
	})
	mux.HandleFunc("GET /api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		ok(w, domain.Post{ID: 5, UserID: 2, UserName: "Ann", Title: "First build", Content: "pics",
			ImageURLs: []string{"/uploads/case.png", "https://cdn.example.com/desk.jpg"}})
	})
	mux.HandleFunc("POST /api/builds/check", func(w http.ResponseWriter, r *http.Request) {
		ok(w, domain.CompatibilityResult{Compatible: false, Warnings: []string{"PSU missing"}})
	})
	return mux
}

func newTestHandler(t *testing.T) (http.Handler, *application.App) {
	handler, app, _ := newTestServer(t)
	return handler, app
}

func newTestServer(t *testing.T) (http.Handler, *application.App, string) {
	t.Helper()
	backend := httptest.NewServer(marketplace())
	t.Cleanup(backend.Close)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.RunMigrations(context.Background(), db))
	store := sqlite.NewLocalStore(db)

	client := httpclient.New(store, httpclient.Options{BaseURL: backend.URL})
	rest := api.New(client)
	app := application.NewApp(application.Backend{
		Auth:   rest.Auth,
		Parts:  rest.Parts,
		Builds: rest.Builds,
		Posts:  rest.Posts,
		Admin:  rest.Admin,
		Files:  rest.Files,
	}, store, store, client, nil)
	return NewRouter(app, backend.URL, nil), app, backend.URL
}

func TestLoadingPageUntilSessionSettles(t *testing.T) {
	handler, app := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="loading"`)
	assert.NotContains(t, rec.Body.String(), "Ryzen")

	require.NoError(t, app.Session.Init(context.Background()))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ryzen 5 7600")
	assert.Contains(t, rec.Body.String(), "5.000.000 ₫")
}

func TestAnonymousIsRedirectedFromAdmin(t *testing.T) {
	handler, app := newTestHandler(t)
	require.NoError(t, app.Session.Init(context.Background()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestAnonymousCannotComment(t *testing.T) {
	handler, app := newTestHandler(t)
	require.NoError(t, app.Session.Init(context.Background()))

	req := httptest.NewRequest(http.MethodPost, "/forum/1/comments", strings.NewReader(`{"commentContent":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please sign in first")
}

func TestBuilderSelectRendersSlots(t *testing.T) {
	handler, app := newTestHandler(t)
	require.NoError(t, app.Session.Init(context.Background()))

	for _, id := range []string{"1", "2"} {
		req := httptest.NewRequest(http.MethodPost, "/builder/select", strings.NewReader(`{"builderPartId":"`+id+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `id="builder-slots"`)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/builder", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "RTX 4060")
	assert.Contains(t, body, "13.000.000 ₫")
	assert.Contains(t, body, "PSU missing")
}

func TestBuilderSelectRejectsBadID(t *testing.T) {
	handler, app := newTestHandler(t)
	require.NoError(t, app.Session.Init(context.Background()))

	req := httptest.NewRequest(http.MethodPost, "/builder/select", strings.NewReader(`{"builderPartId":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Part ID must be a positive number")
}

func TestMissingPartIs404(t *testing.T) {
	handler, app := newTestHandler(t)
	require.NoError(t, app.Session.Init(context.Background()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parts/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Part not found")
}

func TestImagesResolveAgainstBackend(t *testing.T) {
	handler, app, backendURL := newTestServer(t)
	require.NoError(t, app.Session.Init(context.Background()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forum/5", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, `src="`+backendURL+`/uploads/case.png"`)
	assert.Contains(t, body, `src="https://cdn.example.com/desk.jpg"`)
	assert.NotContains(t, body, `src="/uploads/`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parts/1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `src="`+backendURL+`/uploads/cpu.png"`)
}

func TestSignOutAsksFirst(t *testing.T) {
	handler, app := newTestHandler(t)
	ctx := context.Background()
	require.NoError(t, app.Session.Init(ctx))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	require.NoError(t, app.Session.Login(ctx, domain.User{ID: 2, FullName: "Ann"}, "tok"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parts", nil))
	assert.Contains(t, rec.Body.String(), `href="/logout"`)
	assert.NotContains(t, rec.Body.String(), `<form method="post" action="/logout"`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<form id="logout" method="post" action="/logout">`)
	assert.Equal(t, domain.SessionAuthenticated, app.Session.State())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, domain.SessionAnonymous, app.Session.State())
}

func TestPageTextIsEscaped(t *testing.T) {
	handler, app := newTestHandler(t)
	ctx := context.Background()
	require.NoError(t, app.Session.Init(ctx))
	require.NoError(t, app.Session.Login(ctx, domain.User{ID: 2, FullName: "<b>Ann</b>"}, "tok"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/parts", nil))
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;Ann&lt;/b&gt;")
	assert.NotContains(t, rec.Body.String(), "<b>Ann</b>")
}

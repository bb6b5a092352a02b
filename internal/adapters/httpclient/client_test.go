package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{ token string }

func (s *staticTokens) Token(context.Context) (string, error) { return s.token, nil }
func (s *staticTokens) SetToken(_ context.Context, t string) error { s.token = t; return nil }
func (s *staticTokens) ClearToken(context.Context) error { s.token = ""; return nil }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func countingServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `{"success":true,"data":%q}`, r.URL.RequestURI())
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestCacheKeyIsCanonical(t *testing.T) {
	a := CacheKey("/api/parts", url.Values{"size": {"12"}, "page": {"0"}})
	b := CacheKey("/api/parts", url.Values{"page": {"0"}, "size": {"12"}})
	assert.Equal(t, "/api/parts?page=0&size=12", a)
	assert.Equal(t, a, b)
	assert.Equal(t, "/api/auth/me?", CacheKey("/api/auth/me", nil))
}

func TestGetServedFromCacheUntilTTL(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	client := New(nil, Options{BaseURL: srv.URL, Now: clock.Now})
	ctx := context.Background()
	req := domain.Request{Method: http.MethodGet, Path: "/api/parts", Query: url.Values{"page": {"0"}}}

	first, err := client.Do(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	clock.Advance(4*time.Minute + 59*time.Second)
	second, err := client.Do(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, http.StatusOK, second.Status)
	assert.Equal(t, first.Body, second.Body)
	assert.EqualValues(t, 1, hits.Load())

	clock.Advance(time.Second)
	_, err = client.Do(ctx, req)
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestConcurrentGetsShareOneRequest(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = io.WriteString(w, `{"success":true,"data":[]}`)
	}))
	t.Cleanup(srv.Close)

	client := New(nil, Options{BaseURL: srv.URL})
	req := domain.Request{Method: http.MethodGet, Path: "/api/posts", Query: url.Values{"page": {"0"}, "size": {"20"}}}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]domain.Response, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.Do(context.Background(), req)
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, hits.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, `{"success":true,"data":[]}`, string(results[i].Body))
	}
}

func TestEvictsOldestInsertedEntry(t *testing.T) {
	srv, _ := countingServer(t, http.StatusOK)
	client := New(nil, Options{BaseURL: srv.URL})
	ctx := context.Background()

	for i := 0; i <= DefaultMaxEntries; i++ {
		_, err := client.Do(ctx, domain.Request{Path: fmt.Sprintf("/api/parts/%d", i)})
		require.NoError(t, err)
	}

	keys := client.CachedKeys()
	require.Len(t, keys, DefaultMaxEntries)
	assert.Equal(t, "/api/parts/1?", keys[0])
	assert.NotContains(t, keys, "/api/parts/0?")
}

func TestRefreshKeepsInsertionPosition(t *testing.T) {
	cache := newResponseCache(DefaultTTL, 2)
	now := time.Now()

	cache.put("/a?", []byte("1"), now)
	cache.put("/b?", []byte("2"), now)
	cache.put("/a?", []byte("3"), now.Add(time.Second))
	evicted := cache.put("/c?", []byte("4"), now.Add(time.Second))

	assert.Equal(t, []string{"/a?"}, evicted)
	assert.Equal(t, []string{"/b?", "/c?"}, cache.keys())
}

func TestExpiredEntryDroppedOnRead(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK)
	clock := &fakeClock{now: time.Now()}
	client := New(nil, Options{BaseURL: srv.URL, MaxEntries: 2, Now: clock.Now})
	ctx := context.Background()

	_, _ = client.Do(ctx, domain.Request{Path: "/a"})
	_, _ = client.Do(ctx, domain.Request{Path: "/b"})
	clock.Advance(DefaultTTL)

	_, ok := client.cache.get("/a?", clock.Now())
	assert.False(t, ok)
	assert.Equal(t, []string{"/b?"}, client.CachedKeys())

	_, _ = client.Do(ctx, domain.Request{Path: "/a"})
	assert.EqualValues(t, 3, hits.Load())
	assert.Equal(t, []string{"/b?", "/a?"}, client.CachedKeys())
}

func TestStatusPolicy(t *testing.T) {
	ctx := context.Background()

	srv, _ := countingServer(t, http.StatusServiceUnavailable)
	_, err := New(nil, Options{BaseURL: srv.URL}).Do(ctx, domain.Request{Path: "/api/parts"})
	var statusErr *domain.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Status)

	notFound, hits := countingServer(t, http.StatusNotFound)
	client := New(nil, Options{BaseURL: notFound.URL})
	resp, err := client.Do(ctx, domain.Request{Path: "/api/parts/9"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	_, _ = client.Do(ctx, domain.Request{Path: "/api/parts/9"})
	assert.EqualValues(t, 2, hits.Load(), "non-2xx responses are not cached")
}

func TestInvalidatePrefix(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK)
	client := New(nil, Options{BaseURL: srv.URL})
	ctx := context.Background()

	for _, path := range []string{"/api/parts", "/api/parts/1", "/api/posts"} {
		_, err := client.Do(ctx, domain.Request{Path: path})
		require.NoError(t, err)
	}

	client.InvalidatePrefix("/api/parts")
	assert.Equal(t, []string{"/api/posts?"}, client.CachedKeys())

	_, _ = client.Do(ctx, domain.Request{Path: "/api/parts"})
	assert.EqualValues(t, 4, hits.Load())

	client.InvalidatePrefix("")
	assert.Empty(t, client.CachedKeys())
}

func TestMutationsAreNeverCached(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK)
	client := New(nil, Options{BaseURL: srv.URL})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Do(ctx, domain.Request{Method: http.MethodPost, Path: "/api/builds/check", Body: []byte(`{"partIds":[1,2]}`)})
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, hits.Load())
	assert.Empty(t, client.CachedKeys())
}

func TestBearerTokenAttached(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	tokens := &staticTokens{}
	client := New(tokens, Options{BaseURL: srv.URL})
	ctx := context.Background()

	_, err := client.Do(ctx, domain.Request{Method: http.MethodPost, Path: "/api/auth/logout"})
	require.NoError(t, err)
	tokens.token = "abc.def.ghi"
	_, err = client.Do(ctx, domain.Request{Method: http.MethodPost, Path: "/api/auth/logout"})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer abc.def.ghi"}, seen)
}

func TestUploadIsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()
		data, _ := io.ReadAll(file)
		_, _ = fmt.Fprintf(w, `{"success":true,"data":"/uploads/%s:%d"}`, header.Filename, len(data))
	}))
	t.Cleanup(srv.Close)

	client := New(nil, Options{BaseURL: srv.URL})
	resp, err := client.Do(context.Background(), domain.Request{
		Method: http.MethodPost,
		Path:   "/api/files",
		Upload: &domain.FileUpload{FileName: "rig.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"success":true,"data":"/uploads/rig.png:9"}`, string(resp.Body))
}

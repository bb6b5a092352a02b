package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 100
	DefaultTimeout    = 20 * time.Second
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	TTL        time.Duration
	MaxEntries int
	HTTPClient *http.Client
	Now        func() time.Time
	Logger     *zap.Logger
}

// Client talks to the marketplace backend. GET responses are cached per path
// and query, and identical GETs in flight share one network call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     domain.TokenStore
	cache      *responseCache
	group      singleflight.Group
	generation atomic.Uint64
	now        func() time.Time
	log        *zap.Logger
}

func New(tokens domain.TokenStore, opts Options) *Client {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     tokens,
		cache:      newResponseCache(opts.TTL, opts.MaxEntries),
		now:        opts.Now,
		log:        opts.Logger.Named("httpclient"),
	}
}

func (c *Client) Do(ctx context.Context, req domain.Request) (domain.Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if req.Method != http.MethodGet || req.Upload != nil {
		return c.send(ctx, req)
	}

	key := CacheKey(req.Path, req.Query)
	if body, ok := c.cache.get(key, c.now()); ok {
		c.log.Debug("cache hit", zap.String("key", key))
		return domain.Response{Status: http.StatusOK, Body: body, Cached: true}, nil
	}

	gen := c.generation.Load()
	flightKey := key + "#" + strconv.FormatUint(gen, 10)
	v, err, shared := c.group.Do(flightKey, func() (any, error) {
		c.log.Debug("cache miss", zap.String("key", key))
		resp, err := c.send(ctx, req)
		if err != nil {
			return domain.Response{}, err
		}
		if resp.Status >= 200 && resp.Status < 300 && c.generation.Load() == gen {
			for _, evicted := range c.cache.put(key, resp.Body, c.now()) {
				c.log.Debug("cache evict", zap.String("key", evicted))
			}
		}
		return resp, nil
	})
	if shared {
		c.log.Debug("shared in-flight request", zap.String("key", key))
	}
	if err != nil {
		return domain.Response{}, err
	}
	return v.(domain.Response), nil
}

// InvalidatePrefix drops cached GETs whose key starts with prefix; an empty
// prefix clears the cache. Requests already in flight are not stored.
func (c *Client) InvalidatePrefix(prefix string) {
	c.generation.Add(1)
	n := c.cache.invalidatePrefix(prefix)
	c.log.Debug("cache invalidated", zap.String("prefix", prefix), zap.Int("removed", n))
}

// CachedKeys lists the cached keys from oldest to newest.
func (c *Client) CachedKeys() []string {
	return c.cache.keys()
}

func (c *Client) send(ctx context.Context, req domain.Request) (domain.Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return domain.Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return domain.Response{}, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return domain.Response{}, fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.Response{}, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Response{}, fmt.Errorf("%s %s: read body: %w", req.Method, req.Path, err)
	}
	if resp.StatusCode >= 500 {
		return domain.Response{}, &domain.StatusError{Status: resp.StatusCode, Body: string(payload)}
	}
	return domain.Response{Status: resp.StatusCode, Body: payload}, nil
}

func encodeBody(req domain.Request) (io.Reader, string, error) {
	if req.Upload != nil {
		return encodeMultipart(req.Upload)
	}
	if len(req.Body) == 0 {
		return nil, "", nil
	}
	return bytes.NewReader(req.Body), "application/json", nil
}

func encodeMultipart(upload *domain.FileUpload) (io.Reader, string, error) {
	field := upload.FieldName
	if field == "" {
		field = "file"
	}
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, upload.FileName))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

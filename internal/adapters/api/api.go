// Package api wraps the marketplace REST endpoints over a domain.Requester.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

// API groups the per-resource modules around one requester.
type API struct {
	Auth   *Auth
	Parts  *Parts
	Builds *Builds
	Posts  *Posts
	Admin  *Admin
	Files  *Files
}

func New(r domain.Requester) *API {
	return &API{
		Auth:   &Auth{r: r},
		Parts:  &Parts{r: r},
		Builds: &Builds{r: r},
		Posts:  &Posts{r: r},
		Admin:  &Admin{r: r},
		Files:  &Files{r: r},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func call[T any](ctx context.Context, r domain.Requester, req domain.Request) (T, error) {
	var out T
	data, err := do(ctx, r, req)
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%s %s: decode data: %w", req.Method, req.Path, err)
	}
	return out, nil
}

func exec(ctx context.Context, r domain.Requester, req domain.Request) error {
	_, err := do(ctx, r, req)
	return err
}

// do sends req and unwraps the {success, data, message} envelope.
func do(ctx context.Context, r domain.Requester, req domain.Request) (json.RawMessage, error) {
	resp, err := r.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var env envelope
	decodeErr := json.Unmarshal(resp.Body, &env)
	if resp.Status >= http.StatusBadRequest {
		msg := env.Message
		if decodeErr != nil {
			msg = strings.TrimSpace(string(resp.Body))
		}
		return nil, &domain.APIError{Status: resp.Status, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%s %s: decode envelope: %w", req.Method, req.Path, decodeErr)
	}
	if !env.Success {
		return nil, &domain.APIError{Status: resp.Status, Message: env.Message}
	}
	return env.Data, nil
}

func get(path string, query url.Values) domain.Request {
	return domain.Request{Method: http.MethodGet, Path: path, Query: query}
}

func send(method, path string, body any) (domain.Request, error) {
	req := domain.Request{Method: method, Path: path}
	if body == nil {
		return req, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return req, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	req.Body = raw
	return req, nil
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func setIfNotEmpty(q url.Values, key, value string) {
	if strings.TrimSpace(value) != "" {
		q.Set(key, value)
	}
}

// ImageURL resolves a stored image path against the backend base URL.
// Absolute http(s) and data: URLs are returned as is.
func ImageURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") || strings.HasPrefix(path, "data:") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + path
}

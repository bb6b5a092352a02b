package ui

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/atvirokodosprendimai/pcforge/internal/application"
)

type imageResolverKey struct{}

// WithImageResolver makes the pages rendered with ctx pass every image path
// through resolve.
func WithImageResolver(ctx context.Context, resolve func(string) string) context.Context {
	return context.WithValue(ctx, imageResolverKey{}, resolve)
}

func imageURL(ctx context.Context, path string) string {
	if resolve, ok := ctx.Value(imageResolverKey{}).(func(string) string); ok {
		return resolve(path)
	}
	return path
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// pageHref keeps query on the link and sets page.
func pageHref(path string, query url.Values, page int) string {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("page", strconv.Itoa(page))
	return withQuery(path, q)
}

// signals encodes the initial datastar signals of an element.
func signals(v map[string]any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func post(path string) string { return "@post('" + path + "')" }

func rating(avg float64, count int) string {
	return strconv.FormatFloat(avg, 'f', 1, 64) + " (" + strconv.Itoa(count) + ")"
}

func watts(w int) string { return strconv.Itoa(w) + "W" }

func verdictClass(row application.SpecDiffRow, left bool) string {
	switch {
	case left && row.Verdict == application.VerdictLeft:
		return "better"
	case !left && row.Verdict == application.VerdictRight:
		return "better"
	}
	return ""
}

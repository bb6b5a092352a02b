package ui

import (
	"bytes"
	"context"
	"net/url"
	"testing"

	"github.com/a-h/templ"
	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func TestFlashEscapesMessage(t *testing.T) {
	html := render(t, context.Background(), Flash(`<script>alert("x")</script>`, "error"))
	assert.Equal(t, `<div id="flash"><div class="flash flash-error">&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</div></div>`, html)
}

func TestPagerKeepsQuery(t *testing.T) {
	w := application.NewPageWindow(1, 3)
	html := render(t, context.Background(), Pager("/parts", url.Values{"category": {"GPU"}}, w))

	assert.Contains(t, html, `<nav class="pager">`)
	assert.Contains(t, html, `href="/parts?category=GPU&amp;page=0"`)
	assert.Contains(t, html, `href="/parts?category=GPU&amp;page=2"`)
	assert.Contains(t, html, `<span><strong>2</strong></span>`)
}

func TestPagerHiddenForSinglePage(t *testing.T) {
	html := render(t, context.Background(), Pager("/parts", nil, application.NewPageWindow(0, 1)))
	assert.Empty(t, html)
}

func TestPostImagesUseResolver(t *testing.T) {
	d := application.PostDetail{Post: domain.Post{ID: 5, Title: "Desk", ImageURLs: []string{"/uploads/a.png"}}}

	html := render(t, context.Background(), PostPage(nil, d))
	assert.Contains(t, html, `src="/uploads/a.png"`)

	ctx := WithImageResolver(context.Background(), func(p string) string { return "http://api:8080" + p })
	html = render(t, ctx, PostPage(nil, d))
	assert.Contains(t, html, `src="http://api:8080/uploads/a.png"`)
}

func TestBuilderSlotsRemoveAction(t *testing.T) {
	part := domain.Part{ID: 3, Name: "RTX 4060", Category: domain.CategoryGPU, Price: 8000000}
	d := application.Draft{Slots: []application.DraftSlot{{Category: domain.CategoryGPU, Part: &part}}}

	html := render(t, context.Background(), BuilderSlots(d))
	assert.Contains(t, html, `id="builder-slots"`)
	assert.Contains(t, html, `data-on:click="$builderCategory=&#39;GPU&#39;; @post(&#39;/builder/remove&#39;)"`)
	assert.Contains(t, html, `href="/parts/3"`)
}

func TestCompareMarksBetterSide(t *testing.T) {
	left := domain.Part{ID: 1, Name: "A"}
	right := domain.Part{ID: 2, Name: "B"}
	c := application.Comparison{
		Left:  left,
		Right: &right,
		Rows:  []application.SpecDiffRow{{Key: "cores", Left: "8", Right: "6", Verdict: application.VerdictLeft}},
	}

	html := render(t, context.Background(), ComparePage(nil, c))
	assert.Contains(t, html, `<td class="better">8</td>`)
	assert.NotContains(t, html, `class="better">6`)
}

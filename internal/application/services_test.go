package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, user *domain.User) (*App, *fakeBackend, *memDrafts, *recordingCache) {
	t.Helper()
	backend := newFakeBackend()
	backend.me = user
	tokens := &memTokens{}
	if user != nil {
		tokens.token = "tok"
	}
	drafts := &memDrafts{}
	cache := &recordingCache{}
	app := NewApp(backend.backend(), tokens, drafts, cache, nil)
	require.NoError(t, app.Session.Init(context.Background()))
	return app, backend, drafts, cache
}

func TestParseSort(t *testing.T) {
	by, dir := ParseSort("price-asc")
	assert.Equal(t, "price", by)
	assert.Equal(t, "asc", dir)
	by, dir = ParseSort("garbage")
	assert.Equal(t, "createdAt", by)
	assert.Equal(t, "desc", dir)
}

func TestPartDetailDegradesOptionalLoads(t *testing.T) {
	app, backend, _, _ := newTestApp(t, nil)
	backend.parts[1] = domain.Part{ID: 1, Name: "Ryzen", Category: domain.CategoryCPU, SpecJSON: `{"socket":"AM5"}`, PriceHistory: []domain.PricePoint{
		{Price: 9, CrawledAt: time.Unix(200, 0)},
		{Price: 10, CrawledAt: time.Unix(100, 0)},
	}}
	backend.ratingErr = errors.New("ratings down")
	backend.priceErr = errors.New("prices down")

	detail, err := app.Catalog.PartDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ryzen", detail.Part.Name)
	assert.Empty(t, detail.Ratings)
	require.Len(t, detail.Prices, 2)
	assert.Equal(t, 10.0, detail.Prices[0].Price)
	assert.Equal(t, []domain.SpecEntry{{Key: "socket", Value: domain.StringValue("AM5")}}, detail.Specs)

	_, err = app.Catalog.PartDetail(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRatePartRequiresLoginAndValidScore(t *testing.T) {
	anon, _, _, _ := newTestApp(t, nil)
	_, err := anon.Catalog.RatePart(context.Background(), 1, RatingForm{Score: 5})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	app, _, _, cache := newTestApp(t, &domain.User{ID: 4})
	_, err = app.Catalog.RatePart(context.Background(), 1, RatingForm{Score: 6})
	assert.ErrorIs(t, err, domain.ErrValidation)

	rating, err := app.Catalog.RatePart(context.Background(), 1, RatingForm{Score: 4, Content: "solid"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), rating.UserID)
	assert.Contains(t, cache.calls(), "/api/parts/1")
}

func TestAdminPartMutationsPatchLocalList(t *testing.T) {
	ctx := context.Background()
	app, backend, _, cache := newTestApp(t, &domain.User{ID: 1, Role: domain.RoleAdmin})
	backend.parts[1] = domain.Part{ID: 1, Name: "Old", Category: domain.CategoryGPU}
	list := &PartList{Items: []domain.Part{backend.parts[1]}}

	created, err := app.Catalog.CreatePart(ctx, list, PartForm{Name: "New", Category: domain.CategoryCPU, Price: 100})
	require.NoError(t, err)
	assert.Equal(t, created.ID, list.Items[0].ID)

	_, err = app.Catalog.UpdatePart(ctx, list, 1, PartForm{Name: "Renamed", Category: domain.CategoryGPU})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", list.Items[1].Name)

	require.NoError(t, app.Catalog.DeletePart(ctx, list, created.ID))
	require.Len(t, list.Items, 1)
	assert.Equal(t, []string{"/api/parts", "/api/parts", "/api/parts"}, cache.calls())

	_, err = app.Catalog.CreatePart(ctx, list, PartForm{Name: "x", Category: "FAN"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdminPartMutationsWithoutList(t *testing.T) {
	ctx := context.Background()
	app, backend, _, cache := newTestApp(t, &domain.User{ID: 1, Role: domain.RoleAdmin})
	backend.parts[1] = domain.Part{ID: 1, Name: "Old", Category: domain.CategoryGPU}

	created, err := app.Catalog.CreatePart(ctx, nil, PartForm{Name: "New", Category: domain.CategoryCPU, Price: 100})
	require.NoError(t, err)
	updated, err := app.Catalog.UpdatePart(ctx, nil, 1, PartForm{Name: "Renamed", Category: domain.CategoryGPU})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NoError(t, app.Catalog.DeletePart(ctx, nil, created.ID))

	assert.Equal(t, []string{"/api/parts", "/api/parts", "/api/parts"}, cache.calls())
}

func TestAdminOnlyActionsRejectUsers(t *testing.T) {
	app, _, _, _ := newTestApp(t, &domain.User{ID: 2, Role: domain.RoleUser})
	ctx := context.Background()

	_, err := app.Catalog.CreatePart(ctx, nil, PartForm{Name: "x", Category: domain.CategoryCPU})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = app.Admin.Users(ctx)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, app.Admin.SetRole(ctx, 3, domain.RoleAdmin), domain.ErrForbidden)
}

func TestRefreshAllPricesCollectsFailures(t *testing.T) {
	app, backend, _, _ := newTestApp(t, &domain.User{ID: 1, Role: domain.RoleAdmin})
	for i := int64(1); i <= 5; i++ {
		backend.parts[i] = domain.Part{ID: i, Price: 100}
	}
	backend.crawlErr[3] = errors.New("shop offline")

	parts := make([]domain.Part, 0)
	for i := int64(1); i <= 5; i++ {
		parts = append(parts, backend.parts[i])
	}
	report, err := app.Catalog.RefreshAllPrices(context.Background(), parts)
	require.NoError(t, err)
	assert.Len(t, report.Updated, 4)
	assert.Equal(t, map[int64]string{3: "shop offline"}, report.Failed)
	assert.Equal(t, 90.0, report.Updated[0].Price)
}

func TestCompareRejectsDifferentCategories(t *testing.T) {
	app, backend, _, _ := newTestApp(t, nil)
	backend.parts[1] = domain.Part{ID: 1, Name: "A", Category: domain.CategoryRAM, SpecJSON: `{"capacity":"16GB"}`}
	backend.parts[2] = domain.Part{ID: 2, Name: "B", Category: domain.CategoryRAM, SpecJSON: `{"capacity":"32GB"}`}
	backend.parts[3] = domain.Part{ID: 3, Name: "C", Category: domain.CategoryGPU}

	cmp, err := app.Catalog.Compare(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, cmp.Candidates, 1)
	require.Len(t, cmp.Rows, 1)
	assert.Equal(t, VerdictRight, cmp.Rows[0].Verdict)

	_, err = app.Catalog.Compare(context.Background(), 1, 3)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuilderDraftChecksCompatibilityFromTwoParts(t *testing.T) {
	ctx := context.Background()
	app, backend, drafts, _ := newTestApp(t, nil)
	backend.parts[1] = domain.Part{ID: 1, Category: domain.CategoryCPU, Price: 300, Wattage: 105}
	backend.parts[2] = domain.Part{ID: 2, Category: domain.CategoryGPU, Price: 600, Wattage: 220}
	backend.parts[3] = domain.Part{ID: 3, Category: domain.CategoryCPU, Price: 250, Wattage: 65}
	backend.compat = domain.CompatibilityResult{Compatible: true}

	_, err := app.Builder.SelectPart(ctx, 1)
	require.NoError(t, err)
	draft, err := app.Builder.Draft(ctx)
	require.NoError(t, err)
	assert.Nil(t, draft.Compatibility)
	assert.Empty(t, backend.checkCalls)

	_, err = app.Builder.SelectPart(ctx, 2)
	require.NoError(t, err)
	_, err = app.Builder.SelectPart(ctx, 3)
	require.NoError(t, err)
	require.Len(t, drafts.parts, 2)

	draft, err = app.Builder.Draft(ctx)
	require.NoError(t, err)
	require.NotNil(t, draft.Compatibility)
	assert.Equal(t, []int64{3, 2}, draft.PartIDs())
	assert.Equal(t, 850.0, draft.TotalPrice)
	assert.Equal(t, 285, draft.TotalWattage)
	assert.Len(t, draft.Slots, len(domain.Categories))
}

func TestBuilderSave(t *testing.T) {
	ctx := context.Background()

	anon, _, _, _ := newTestApp(t, nil)
	_, err := anon.Builder.Save(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	app, backend, drafts, cache := newTestApp(t, &domain.User{ID: 9})
	backend.parts[1] = domain.Part{ID: 1, Category: domain.CategoryCPU}
	backend.parts[2] = domain.Part{ID: 2, Category: domain.CategoryMain}

	_, err = app.Builder.Save(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _ = app.Builder.SelectPart(ctx, 1)
	_, _ = app.Builder.SelectPart(ctx, 2)
	backend.compat = domain.CompatibilityResult{Compatible: false, Warnings: []string{"socket mismatch"}}
	_, err = app.Builder.Save(ctx, "Mismatch")
	assert.ErrorIs(t, err, domain.ErrValidation)

	backend.compat = domain.CompatibilityResult{Compatible: true}
	build, err := app.Builder.Save(ctx, "Desk rig")
	require.NoError(t, err)
	assert.Equal(t, "Desk rig", build.Title)
	require.Len(t, backend.saved, 1)
	assert.Equal(t, int64(9), backend.saved[0].UserID)
	assert.Equal(t, []int64{1, 2}, backend.saved[0].PartIDs)
	assert.Contains(t, cache.calls(), "/api/builds")
	assert.Empty(t, drafts.parts)
}

func TestBuilderLoadBuild(t *testing.T) {
	ctx := context.Background()
	app, backend, drafts, _ := newTestApp(t, nil)
	backend.parts[1] = domain.Part{ID: 1, Category: domain.CategoryCPU}
	backend.parts[2] = domain.Part{ID: 2, Category: domain.CategoryPSU}
	backend.builds[7] = domain.Build{ID: 7, Title: "Saved", PartIDs: []int64{1, 2}}

	draft, err := app.Builder.LoadBuild(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Saved", draft.Title)
	assert.ElementsMatch(t, []int64{1, 2}, draft.PartIDs())
	assert.Equal(t, "Saved", drafts.title)
}

func TestShareContent(t *testing.T) {
	content := ShareContent(ShareSource{
		Title:        "Budget",
		TotalPrice:   12500000,
		TotalWattage: 350,
		Compatible:   false,
		Warnings:     []string{"PSU too small"},
		Parts:        []domain.Part{{Name: "R5 7600", Category: domain.CategoryCPU, Brand: "AMD", Price: 5000000, Wattage: 65}},
	})
	assert.True(t, strings.HasPrefix(content, "# Budget\n\n"))
	assert.Contains(t, content, "**Total price:** 12.500.000 ₫\n")
	assert.Contains(t, content, "⚠ Has warnings")
	assert.Contains(t, content, "- PSU too small\n")
	assert.Contains(t, content, "### CPU\n**R5 7600**\n- Brand: AMD\n- Price: 5.000.000 ₫\n- Power: 65W\n")
}

func TestForumFlow(t *testing.T) {
	ctx := context.Background()
	app, backend, _, cache := newTestApp(t, &domain.User{ID: 3})
	backend.posts[1] = domain.Post{ID: 1, Title: "Hello", Comments: []domain.Comment{
		{ID: 1},
		{ID: 2, ParentID: ptr(1)},
	}}
	backend.builds[4] = domain.Build{ID: 4, Title: "Shared", TotalPrice: 1000}

	detail, err := app.Forum.PostDetail(ctx, 1)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Len(t, detail.Comments[0].Replies, 1)

	_, err = app.Forum.AddComment(ctx, 1, CommentForm{Content: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = app.Forum.AddComment(ctx, 1, CommentForm{Content: "reply", ParentID: ptr(2)})
	require.NoError(t, err)
	require.NoError(t, app.Forum.React(ctx, 1, "like"))
	assert.Error(t, app.Forum.React(ctx, 1, "love"))

	buildID := int64(4)
	post, err := app.Forum.CreatePost(ctx, PostForm{BuildID: &buildID})
	require.NoError(t, err)
	assert.Equal(t, "Shared", post.Title)
	assert.True(t, strings.HasPrefix(post.Content, "# Shared"))

	assert.Equal(t, domain.ReactionLike, backend.reacts[0].Type)
	assert.Equal(t, int64(3), backend.comments[0].UserID)
	assert.Equal(t, []string{"/api/posts", "/api/posts", "/api/posts"}, cache.calls()[0:3])
}

func TestProfileLoadUsesSessionForOwnEmptyProfile(t *testing.T) {
	app, backend, _, _ := newTestApp(t, &domain.User{ID: 5, FullName: "Me", Email: "me@x.io"})
	backend.builds[1] = domain.Build{ID: 1, UserID: 5}

	profile, err := app.Profile.Load(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, profile.Own)
	assert.Equal(t, "Me", profile.FullName)
	assert.Len(t, profile.Builds, 1)
	assert.Empty(t, profile.Posts)

	backend.posts[9] = domain.Post{ID: 9, UserID: 6, UserName: "Other"}
	other, err := app.Profile.Load(context.Background(), 6)
	require.NoError(t, err)
	assert.False(t, other.Own)
	assert.Equal(t, "Other", other.FullName)
}

func TestAuthServiceRegisterAndSignIn(t *testing.T) {
	ctx := context.Background()
	app, backend, _, _ := newTestApp(t, nil)

	_, err := app.Auth.Register(ctx, RegisterForm{Email: "bad", Password: "123", ConfirmPassword: "321", FullName: "A"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "passwords do not match")
	assert.Contains(t, err.Error(), "password must be at least 6 characters")

	user, err := app.Auth.Register(ctx, RegisterForm{Email: "a@b.io", Password: "secret", ConfirmPassword: "secret", FullName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.FullName)

	backend.login = domain.LoginResult{Token: "jwt", User: domain.User{ID: 1, FullName: "Ann"}}
	_, err = app.Auth.SignIn(ctx, LoginForm{Email: "a@b.io", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAuthenticated, app.Session.State())

	require.NoError(t, app.Auth.SignOut(ctx))
	assert.Equal(t, domain.SessionAnonymous, app.Session.State())
}

func TestUploadImagesKeepsSuccessfulURLs(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "rig.png")
	require.NoError(t, os.WriteFile(good, []byte("\x89PNG"), 0o600))

	app, _, _, _ := newTestApp(t, nil)
	result, err := app.Files.UploadImages(context.Background(), []string{good, filepath.Join(dir, "missing.png")})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/rig.png"}, result.URLs)
	assert.Len(t, result.Failed, 1)
}

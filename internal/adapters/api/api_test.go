package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRequester struct {
	requests    []domain.Request
	status      int
	body        string
	err         error
	invalidated []string
}

func (r *recordingRequester) Do(_ context.Context, req domain.Request) (domain.Response, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return domain.Response{}, r.err
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	return domain.Response{Status: status, Body: []byte(r.body)}, nil
}

func (r *recordingRequester) InvalidatePrefix(prefix string) {
	r.invalidated = append(r.invalidated, prefix)
}

func TestEnvelopeDecodesData(t *testing.T) {
	rec := &recordingRequester{body: `{"success":true,"data":{"token":"t0k","user":{"id":7,"email":"a@b.c","fullName":"Ann","role":"ADMIN"}}}`}
	result, err := New(rec).Auth.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	assert.Equal(t, "t0k", result.Token)
	assert.Equal(t, int64(7), result.User.ID)
	assert.True(t, result.User.IsAdmin())
	require.Len(t, rec.requests, 1)
	assert.Equal(t, http.MethodPost, rec.requests[0].Method)
	assert.Equal(t, "/api/auth/login", rec.requests[0].Path)
	assert.JSONEq(t, `{"email":"a@b.c","password":"secret"}`, string(rec.requests[0].Body))
}

func TestUnsuccessfulEnvelopeIsAPIError(t *testing.T) {
	rec := &recordingRequester{body: `{"success":false,"message":"Email already exists"}`}
	_, err := New(rec).Auth.Register(context.Background(), domain.RegisterInput{Email: "a@b.c", Password: "secret", FullName: "Ann"})

	var target *domain.APIError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "Email already exists", target.Message)
	assert.Equal(t, "Email already exists", err.Error())
}

func TestClientErrorWithoutEnvelope(t *testing.T) {
	rec := &recordingRequester{status: http.StatusUnauthorized, body: "Unauthorized"}
	_, err := New(rec).Auth.Me(context.Background())

	var target *domain.APIError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, http.StatusUnauthorized, target.Status)
	assert.Equal(t, "Unauthorized", target.Message)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTransportErrorPassesThrough(t *testing.T) {
	boom := &domain.StatusError{Status: http.StatusBadGateway}
	rec := &recordingRequester{err: boom}
	_, err := New(rec).Parts.Get(context.Background(), 3)
	assert.Same(t, boom, err)
}

func TestPartQueryOmitsEmptyValues(t *testing.T) {
	q := PartQuery(domain.PartFilter{Page: 2, Size: 12, Category: domain.CategoryGPU, Brand: " ", SortBy: "price", SortDir: "asc"})
	assert.Equal(t, "category=GPU&page=2&size=12&sortBy=price&sortDir=asc", q.Encode())

	rec := &recordingRequester{body: `{"success":true,"data":{"content":[{"id":1,"name":"RTX","category":"GPU","specJson":"{\"memory\":\"12GB\"}"}],"totalPages":3,"totalElements":25,"number":2,"size":12}}`}
	page, err := New(rec).Parts.List(context.Background(), domain.PartFilter{Page: 2, Size: 12})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 1)
	specs, err := page.Content[0].Specs()
	require.NoError(t, err)
	assert.Equal(t, "12GB", specs.(*domain.GPUSpecs).Memory)
}

func TestPostQueryCarriesUser(t *testing.T) {
	assert.Equal(t, "page=0&size=20&userId=5", PostQuery(domain.PostFilter{Size: 20, UserID: 5}).Encode())
}

func TestMutationPayloads(t *testing.T) {
	ctx := context.Background()
	rec := &recordingRequester{body: `{"success":true,"data":null}`}
	client := New(rec)

	parent := int64(4)
	_, err := client.Posts.AddComment(ctx, 9, domain.CommentInput{UserID: 1, Content: "nice", ParentID: &parent})
	require.NoError(t, err)
	require.NoError(t, client.Posts.React(ctx, 9, domain.ReactionInput{UserID: 1, Type: domain.ReactionLike}))
	require.NoError(t, client.Posts.DeleteComment(ctx, 9, 4))
	require.NoError(t, client.Admin.UpdateRole(ctx, 3, domain.RoleAdmin))
	_, err = client.Builds.Check(ctx, []int64{1, 2})
	require.NoError(t, err)

	got := make([]string, 0, len(rec.requests))
	for _, req := range rec.requests {
		got = append(got, req.Method+" "+req.Path+" "+string(req.Body))
	}
	assert.Equal(t, []string{
		`POST /api/posts/9/comments {"userId":1,"content":"nice","parentId":4}`,
		`POST /api/posts/9/reactions {"userId":1,"type":"LIKE"}`,
		`DELETE /api/posts/9/comments/4 `,
		`PUT /api/admin/users/3/role {"role":"ADMIN"}`,
		`POST /api/builds/check {"partIds":[1,2]}`,
	}, got)
}

func TestUploadReturnsURL(t *testing.T) {
	rec := &recordingRequester{body: `{"success":true,"data":"/uploads/a.png"}`}
	url, err := New(rec).Files.Upload(context.Background(), "a.png", "image/png", []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.png", url)
	require.NotNil(t, rec.requests[0].Upload)
	assert.Equal(t, "file", rec.requests[0].Upload.FieldName)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "http://api:8080/uploads/a.png", ImageURL("http://api:8080/", "/uploads/a.png"))
	assert.Equal(t, "https://cdn/x.png", ImageURL("http://api:8080", "https://cdn/x.png"))
	assert.Equal(t, "", ImageURL("http://api:8080", ""))
}

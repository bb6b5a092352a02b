package api

import (
	"context"
	"net/http"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

type Files struct{ r domain.Requester }

// Upload posts one file as multipart field "file" and returns its URL.
func (f *Files) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	return call[string](ctx, f.r, domain.Request{
		Method: http.MethodPost,
		Path:   "/api/files",
		Upload: &domain.FileUpload{FieldName: "file", FileName: fileName, ContentType: contentType, Data: data},
	})
}

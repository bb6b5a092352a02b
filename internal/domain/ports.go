package domain

import (
	"context"
	"encoding/json"
	"net/url"
)

// Request is one outbound backend call. Body is pre-encoded JSON; Upload, when
// set, turns the call into a multipart form post.
type Request struct {
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Query  url.Values      `json:"query,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
	Upload *FileUpload     `json:"upload,omitempty"`
}

type FileUpload struct {
	FieldName   string `json:"field_name"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type Response struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
	Cached bool   `json:"cached,omitempty"`
}

type CacheInvalidator interface {
	InvalidatePrefix(prefix string)
}

// Requester sends backend calls. Implementations return a Response for every
// status below 500 and an error otherwise.
type Requester interface {
	CacheInvalidator
	Do(ctx context.Context, req Request) (Response, error)
}

type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

type DraftPart struct {
	Category Category
	PartID   int64
}

type DraftRepository interface {
	DraftParts(ctx context.Context) ([]DraftPart, error)
	PutDraftPart(ctx context.Context, category Category, partID int64) error
	RemoveDraftPart(ctx context.Context, category Category) error
	DraftTitle(ctx context.Context) (string, error)
	SetDraftTitle(ctx context.Context, title string) error
	ClearDraft(ctx context.Context) error
}

// Backend resources, one port per REST module.

type AuthAPI interface {
	Register(ctx context.Context, in RegisterInput) (User, error)
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (User, error)
}

type PartsAPI interface {
	List(ctx context.Context, f PartFilter) (Page[Part], error)
	Get(ctx context.Context, partID int64) (Part, error)
	Prices(ctx context.Context, partID int64) ([]PricePoint, error)
	Create(ctx context.Context, in PartInput) (Part, error)
	Update(ctx context.Context, partID int64, in PartInput) (Part, error)
	Delete(ctx context.Context, partID int64) error
	CrawlPrice(ctx context.Context, partID int64) (Part, error)
	Ratings(ctx context.Context, partID int64) ([]Rating, error)
	Rate(ctx context.Context, partID int64, in RatingInput) (Rating, error)
}

type BuildsAPI interface {
	Check(ctx context.Context, partIDs []int64) (CompatibilityResult, error)
	Save(ctx context.Context, in BuildInput) (Build, error)
	ListByUser(ctx context.Context, userID int64) ([]Build, error)
	Get(ctx context.Context, buildID int64) (Build, error)
	Delete(ctx context.Context, buildID int64) error
}

type PostsAPI interface {
	List(ctx context.Context, f PostFilter) (Page[Post], error)
	Get(ctx context.Context, postID int64) (Post, error)
	Create(ctx context.Context, in PostInput) (Post, error)
	Update(ctx context.Context, postID int64, in PostInput) (Post, error)
	Delete(ctx context.Context, postID int64) error
	AddComment(ctx context.Context, postID int64, in CommentInput) (Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int64) error
	React(ctx context.Context, postID int64, in ReactionInput) error
}

type AdminAPI interface {
	Users(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, userID int64) error
	UpdateRole(ctx context.Context, userID int64, role Role) error
	Comments(ctx context.Context) ([]Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}

type FilesAPI interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

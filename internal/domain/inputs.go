package domain

// Payloads sent to the backend on writes.

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type PartInput struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Brand    string   `json:"brand"`
	Price    float64  `json:"price"`
	Wattage  int      `json:"wattage"`
	ImageURL string   `json:"imageUrl"`
	SpecJSON string   `json:"specJson"`
	CrawlURL string   `json:"crawlUrl"`
}

type RatingInput struct {
	UserID  int64  `json:"userId"`
	Score   int    `json:"score"`
	Content string `json:"content"`
}

type BuildInput struct {
	UserID  int64   `json:"userId"`
	Title   string  `json:"title"`
	PartIDs []int64 `json:"partIds"`
}

type PostInput struct {
	UserID    int64    `json:"userId"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"imageUrls"`
	BuildID   *int64   `json:"buildId"`
}

type CommentInput struct {
	UserID   int64  `json:"userId"`
	Content  string `json:"content"`
	ParentID *int64 `json:"parentId"`
}

type ReactionInput struct {
	UserID int64        `json:"userId"`
	Type   ReactionType `json:"type"`
}

package domain

import "time"

type Category string

const (
	CategoryCPU     Category = "CPU"
	CategoryGPU     Category = "GPU"
	CategoryRAM     Category = "RAM"
	CategoryMain    Category = "MAIN"
	CategoryPSU     Category = "PSU"
	CategoryCase    Category = "CASE"
	CategoryStorage Category = "STORAGE"
	CategoryCooler  Category = "COOLER"
)

// Categories is the display order used by the builder and the parts filter.
var Categories = []Category{
	CategoryCPU,
	CategoryMain,
	CategoryRAM,
	CategoryGPU,
	CategoryStorage,
	CategoryPSU,
	CategoryCase,
	CategoryCooler,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) Label() string {
	switch c {
	case CategoryMain:
		return "Mainboard"
	case CategoryCase:
		return "Case"
	case CategoryStorage:
		return "Storage"
	case CategoryCooler:
		return "Cooler"
	default:
		return string(c)
	}
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type PricePoint struct {
	Price     float64   `json:"price"`
	CrawledAt time.Time `json:"crawledAt"`
	Source    string    `json:"source"`
}

type Part struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Category     Category     `json:"category"`
	Brand        string       `json:"brand"`
	Price        float64      `json:"price"`
	Wattage      int          `json:"wattage"`
	ImageURL     string       `json:"imageUrl"`
	SpecJSON     string       `json:"specJson"`
	CrawlURL     string       `json:"crawlUrl,omitempty"`
	RatingAvg    float64      `json:"ratingAvg"`
	RatingCount  int          `json:"ratingCount"`
	PriceHistory []PricePoint `json:"priceHistory,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Specs decodes SpecJSON into the variant for the part's category.
func (p Part) Specs() (SpecVariant, error) {
	return ParseSpecs(p.Category, p.SpecJSON)
}

type Rating struct {
	ID        int64     `json:"id,omitempty"`
	PartID    int64     `json:"partId"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Score     int       `json:"score"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Build struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Title        string    `json:"title"`
	PartIDs      []int64   `json:"partIds"`
	Parts        []Part    `json:"parts,omitempty"`
	TotalPrice   float64   `json:"totalPrice"`
	WattageTotal int       `json:"wattageTotal"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CompatibilityResult struct {
	Compatible   bool     `json:"compatible"`
	Warnings     []string `json:"warnings"`
	TotalPrice   float64  `json:"totalPrice,omitempty"`
	TotalWattage int      `json:"totalWattage,omitempty"`
}

type ReactionType string

const (
	ReactionLike    ReactionType = "LIKE"
	ReactionDislike ReactionType = "DISLIKE"
)

type Post struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	UserName     string    `json:"userName,omitempty"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ImageURLs    []string  `json:"imageUrls"`
	LikeCount    int       `json:"likeCount"`
	DislikeCount int       `json:"dislikeCount"`
	CommentCount int       `json:"commentCount"`
	Comments     []Comment `json:"comments,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	ParentID  *int64    `json:"parentId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

type PartFilter struct {
	Page     int
	Size     int
	Category Category
	Brand    string
	MinPrice string
	MaxPrice string
	Query    string
	SortBy   string
	SortDir  string
}

type PostFilter struct {
	Page   int
	Size   int
	UserID int64
}

type SessionState string

const (
	SessionLoading       SessionState = "loading"
	SessionAuthenticated SessionState = "authenticated"
	SessionAnonymous     SessionState = "anonymous"
)

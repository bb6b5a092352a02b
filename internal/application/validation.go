package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type RegisterForm struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	FullName        string `json:"fullName" validate:"notblank"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RatingForm struct {
	Score   int    `json:"score" validate:"min=1,max=5"`
	Content string `json:"content" validate:"max=2000"`
}

type PostForm struct {
	Title     string   `json:"title" validate:"notblank,max=200"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"imageUrls" validate:"dive,notblank"`
	BuildID   *int64   `json:"buildId"`
}

type CommentForm struct {
	Content  string `json:"content" validate:"notblank"`
	ParentID *int64 `json:"parentId"`
}

type PartForm struct {
	Name     string          `json:"name" validate:"notblank"`
	Category domain.Category `json:"category" validate:"category"`
	Brand    string          `json:"brand"`
	Price    float64         `json:"price" validate:"gte=0"`
	Wattage  int             `json:"wattage" validate:"gte=0"`
	ImageURL string          `json:"imageUrl"`
	SpecJSON string          `json:"specJson" validate:"omitempty,json"`
	CrawlURL string          `json:"crawlUrl" validate:"omitempty,url"`
}

type BuildForm struct {
	Title string `json:"title" validate:"notblank,max=200"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		c, ok := fl.Field().Interface().(domain.Category)
		return ok && c.Valid()
	})
	return v
}

// Validate checks a form's tags and reports every failure as one
// ErrValidation-wrapped message.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return domain.ValidationError(messages...)
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "eqfield":
		return "passwords do not match"
	case "category":
		return fmt.Sprintf("%s must be one of %s", field, categoryList())
	case "json":
		return field + " must be a JSON object"
	case "url":
		return field + " must be a URL"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func categoryList() string {
	names := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

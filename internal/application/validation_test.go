package application

import (
	"testing"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMessages(t *testing.T) {
	tests := []struct {
		name string
		form any
		want []string
	}{
		{"blank comment", CommentForm{Content: "   "}, []string{"content is required"}},
		{"score out of range", RatingForm{Score: 0}, []string{"score must be at least 1"}},
		{"bad login", LoginForm{Email: "nope"}, []string{"email must be a valid email", "password is required"}},
		{"unknown category", PartForm{Name: "Fan", Category: "FAN"}, []string{"category must be one of CPU, MAIN, RAM, GPU, STORAGE, PSU, CASE, COOLER"}},
		{"bad spec json", PartForm{Name: "X", Category: domain.CategoryCPU, SpecJSON: "{"}, []string{"specJSON must be a JSON object"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			require.ErrorIs(t, err, domain.ErrValidation)
			for _, msg := range tt.want {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestValidateAcceptsGoodForms(t *testing.T) {
	assert.NoError(t, Validate(PartForm{Name: "R5", Category: domain.CategoryCPU, SpecJSON: `{"socket":"AM5"}`}))
	assert.NoError(t, Validate(RegisterForm{Email: "a@b.io", Password: "secret", ConfirmPassword: "secret", FullName: "Ann"}))
	assert.NoError(t, Validate(PostForm{Title: "Hi", ImageURLs: []string{"/uploads/a.png"}}))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0 ₫", FormatPrice(0))
	assert.Equal(t, "999 ₫", FormatPrice(999))
	assert.Equal(t, "1.000 ₫", FormatPrice(1000))
	assert.Equal(t, "12.345.678 ₫", FormatPrice(12345677.6))
	assert.Equal(t, "-4.500 ₫", FormatPrice(-4500))
}

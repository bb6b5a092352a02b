package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindowHiddenForSinglePage(t *testing.T) {
	assert.False(t, NewPageWindow(0, 1).Visible)
	assert.False(t, NewPageWindow(0, 0).Visible)
}

func TestPageWindowCentresOnCurrentPage(t *testing.T) {
	w := NewPageWindow(5, 10)
	assert.True(t, w.Visible)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, w.Pages)
	assert.True(t, w.ShowFirst)
	assert.True(t, w.LeadingGap)
	assert.True(t, w.ShowLast)
	assert.True(t, w.TrailingGap)
	assert.True(t, w.HasPrev)
	assert.True(t, w.HasNext)
}

func TestPageWindowAtEdges(t *testing.T) {
	first := NewPageWindow(0, 10)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, first.Pages)
	assert.False(t, first.ShowFirst)
	assert.False(t, first.HasPrev)

	last := NewPageWindow(9, 10)
	assert.Equal(t, []int{5, 6, 7, 8, 9}, last.Pages)
	assert.True(t, last.ShowFirst)
	assert.False(t, last.ShowLast)
	assert.False(t, last.HasNext)

	short := NewPageWindow(1, 3)
	assert.Equal(t, []int{0, 1, 2}, short.Pages)
	assert.False(t, short.ShowFirst)
	assert.False(t, short.ShowLast)
}

func TestPageWindowGapOnlyWhenPagesAreSkipped(t *testing.T) {
	w := NewPageWindow(3, 7)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, w.Pages)
	assert.True(t, w.ShowFirst)
	assert.False(t, w.LeadingGap)
	assert.True(t, w.ShowLast)
	assert.False(t, w.TrailingGap)
}

package application

import (
	"testing"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func ids(nodes []*domain.CommentNode) []int64 {
	out := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildCommentTreeDanglingParentBecomesRoot(t *testing.T) {
	roots := BuildCommentTree([]domain.Comment{
		{ID: 1},
		{ID: 2, ParentID: ptr(1)},
		{ID: 3, ParentID: ptr(99)},
	})

	assert.Equal(t, []int64{1, 3}, ids(roots))
	assert.Equal(t, []int64{2}, ids(roots[0].Replies))
	assert.Empty(t, roots[1].Replies)
	assert.Equal(t, 3, CountNodes(roots))
}

func TestBuildCommentTreeKeepsInputOrder(t *testing.T) {
	input := []domain.Comment{
		{ID: 10},
		{ID: 13, ParentID: ptr(10)},
		{ID: 11, ParentID: ptr(10)},
		{ID: 12, ParentID: ptr(11)},
		{ID: 14},
	}
	roots := BuildCommentTree(input)

	require.Equal(t, []int64{10, 14}, ids(roots))
	assert.Equal(t, []int64{13, 11}, ids(roots[0].Replies))
	assert.Equal(t, []int64{12}, ids(roots[0].Replies[1].Replies))
	assert.Equal(t, len(input), CountNodes(roots))
}

func TestBuildCommentTreeChildBeforeParent(t *testing.T) {
	roots := BuildCommentTree([]domain.Comment{
		{ID: 2, ParentID: ptr(1)},
		{ID: 1},
	})
	require.Equal(t, []int64{1}, ids(roots))
	assert.Equal(t, []int64{2}, ids(roots[0].Replies))
}

func TestBuildCommentTreeIsTotal(t *testing.T) {
	input := []domain.Comment{
		{ID: 1, ParentID: ptr(1)},
		{ID: 2, ParentID: ptr(3)},
		{ID: 3, ParentID: ptr(2)},
		{ID: 4, ParentID: ptr(3)},
	}
	roots := BuildCommentTree(input)
	assert.Equal(t, len(input), CountNodes(roots))
	assert.Contains(t, ids(roots), int64(1))
	assert.Empty(t, BuildCommentTree(nil))
}

func TestBuildCommentTreeCycleMembersBecomeRoots(t *testing.T) {
	roots := BuildCommentTree([]domain.Comment{
		{ID: 1, ParentID: ptr(3)},
		{ID: 2, ParentID: ptr(1)},
		{ID: 3, ParentID: ptr(2)},
		{ID: 4, ParentID: ptr(2)},
		{ID: 5, ParentID: ptr(5)},
	})

	assert.Equal(t, []int64{1, 2, 3, 5}, ids(roots))
	assert.Equal(t, []int64{4}, ids(roots[1].Replies))
	assert.Equal(t, 5, CountNodes(roots))
}

func TestBuildCommentTreeDeepChainIsLinear(t *testing.T) {
	const depth = 20000
	comments := make([]domain.Comment, depth)
	for i := range comments {
		comments[i] = domain.Comment{ID: int64(i + 1)}
		if i > 0 {
			comments[i].ParentID = ptr(int64(i))
		}
	}

	start := time.Now()
	roots := BuildCommentTree(comments)
	elapsed := time.Since(start)

	require.Len(t, roots, 1)
	assert.Equal(t, depth, CountNodes(roots))
	assert.Less(t, elapsed, 2*time.Second)
}

package application

import "github.com/atvirokodosprendimai/pcforge/internal/domain"

// BuildCommentTree nests comments under their parents. Comments without a
// parent, or whose parent is not in the list, become roots, as does any
// comment whose parent chain loops back to itself. Input order is kept at
// every level.
func BuildCommentTree(comments []domain.Comment) []*domain.CommentNode {
	nodes := make([]*domain.CommentNode, len(comments))
	byID := make(map[int64]*domain.CommentNode, len(comments))
	for i, c := range comments {
		node := &domain.CommentNode{Comment: c, Replies: []*domain.CommentNode{}}
		nodes[i] = node
		byID[c.ID] = node
	}

	cyclic := onParentCycle(byID)
	roots := make([]*domain.CommentNode, 0)
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := byID[*node.ParentID]; ok && !cyclic[node] {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// onParentCycle marks the nodes whose parent chain leads back to themselves.
// Each node is walked once.
func onParentCycle(byID map[int64]*domain.CommentNode) map[*domain.CommentNode]bool {
	const (
		walking = 1
		walked  = 2
	)
	state := make(map[*domain.CommentNode]int, len(byID))
	cyclic := make(map[*domain.CommentNode]bool)
	var path []*domain.CommentNode
	for _, start := range byID {
		path = path[:0]
		node := start
		for node != nil && state[node] == 0 {
			state[node] = walking
			path = append(path, node)
			var parent *domain.CommentNode
			if node.ParentID != nil {
				parent = byID[*node.ParentID]
			}
			node = parent
		}
		if node != nil && state[node] == walking {
			for i := len(path) - 1; i >= 0; i-- {
				cyclic[path[i]] = true
				if path[i] == node {
					break
				}
			}
		}
		for _, n := range path {
			state[n] = walked
		}
	}
	return cyclic
}

// CountNodes counts every node of the forest.
func CountNodes(forest []*domain.CommentNode) int {
	count := 0
	stack := append([]*domain.CommentNode(nil), forest...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, node.Replies...)
	}
	return count
}

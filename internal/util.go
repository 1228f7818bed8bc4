package internal

import "errors"

var (
	// ErrBrokenChain means a node other than start has no predecessor.
	ErrBrokenChain = errors.New("predecessor chain ends before start")
	// ErrChainTooLong means the walk exceeded its link budget, which only a
	// cycle can cause.
	ErrChainTooLong = errors.New("predecessor chain exceeds limit")
)

// ReconstructPath follows predecessor links from goal back to start and
// returns the path ordered start to goal. At most limit links are followed.
func ReconstructPath[NodeType comparable](
	predecessor func(NodeType) (NodeType, bool),
	goal NodeType,
	start NodeType,
	limit int,
) ([]NodeType, error) {
	path := []NodeType{goal}
	current := goal
	for links := 0; current != start; links++ {
		if links >= limit {
			return nil, ErrChainTooLong
		}
		previousNode, exists := predecessor(current)
		if !exists {
			return nil, ErrBrokenChain
		}
		path = append(path, previousNode)
		current = previousNode
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

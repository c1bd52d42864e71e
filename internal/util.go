package internal

import "errors"

var (
	// ErrBrokenChain is returned when a node on the way back has no predecessor.
	ErrBrokenChain = errors.New("parent chain is broken")
	// ErrChainTooLong is returned when the walk exceeds its step limit, which
	// only happens when the parent links contain a cycle.
	ErrChainTooLong = errors.New("parent chain exceeds step limit")
)

// ReconstructPath rebuilds the path from the cameFrom map, ordered from start
// to current. At most maxSteps links are followed.
func ReconstructPath[NodeType comparable](
	cameFrom map[NodeType]NodeType,
	current NodeType,
	start NodeType,
	maxSteps int,
) ([]NodeType, error) {
	path := []NodeType{current}
	for steps := 0; current != start; steps++ {
		if steps >= maxSteps {
			return nil, ErrChainTooLong
		}
		previousNode, exists := cameFrom[current]
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

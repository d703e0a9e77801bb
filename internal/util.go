package internal

// ReconstructPath rebuilds the path from the cameFrom map. The returned
// sequence runs from the node after start up to and including current;
// start itself is excluded. A current equal to start yields an empty,
// non-nil slice.
func ReconstructPath[NodeType comparable](
	cameFrom map[NodeType]NodeType,
	current NodeType,
	start NodeType,
) []NodeType {
	path := make([]NodeType, 0)
	for current != start {
		path = append(path, current)
		previousNode, exists := cameFrom[current]
		if !exists {
			break
		}
		current = previousNode
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

package semantics

import (
	"sort"

	"archgraph/pkg/domain"
)

// Cycle is one closed path of element ids, rotated so the lexicographically
// smallest id comes first. The first id is not repeated at the end.
type Cycle struct {
	ElementIDs []string
}

// Key returns a stable identity for deduplication.
func (c Cycle) Key() string {
	key := ""
	for i, id := range c.ElementIDs {
		if i > 0 {
			key += "\x00"
		}
		key += id
	}
	return key
}

// DetectCycles reports every distinct directed cycle reachable through the
// supplied relationships. Only explicit edges are followed; no reverse edges
// are inferred. Detection uses an iterative depth-first search with an
// explicit stack so that deep graphs cannot overflow the call stack.
func DetectCycles(relationships []domain.Relationship) []Cycle {
	adjacency := make(map[string][]string)
	nodes := make(map[string]struct{})
	for _, rel := range relationships {
		adjacency[rel.SourceID] = append(adjacency[rel.SourceID], rel.TargetID)
		nodes[rel.SourceID] = struct{}{}
		nodes[rel.TargetID] = struct{}{}
	}
	for id := range adjacency {
		sort.Strings(adjacency[id])
	}

	order := make([]string, 0, len(nodes))
	for id := range nodes {
		order = append(order, id)
	}
	sort.Strings(order)

	const (
		colorWhite = 0
		colorGray  = 1
		colorBlack = 2
	)
	color := make(map[string]int, len(nodes))
	seen := make(map[string]struct{})
	var cycles []Cycle

	type frame struct {
		node string
		next int
	}

	for _, start := range order {
		if color[start] != colorWhite {
			continue
		}
		stack := []frame{{node: start}}
		path := []string{start}
		onPath := map[string]int{start: 0}
		color[start] = colorGray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := adjacency[top.node]
			if top.next < len(neighbors) {
				next := neighbors[top.next]
				top.next++
				if idx, ok := onPath[next]; ok {
					cycle := canonicalize(path[idx:])
					if _, dup := seen[cycle.Key()]; !dup {
						seen[cycle.Key()] = struct{}{}
						cycles = append(cycles, cycle)
					}
					continue
				}
				if color[next] != colorWhite {
					continue
				}
				color[next] = colorGray
				onPath[next] = len(path)
				path = append(path, next)
				stack = append(stack, frame{node: next})
				continue
			}
			color[top.node] = colorBlack
			delete(onPath, top.node)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return cycles
}

// canonicalize rotates the cycle so its smallest id leads.
func canonicalize(path []string) Cycle {
	if len(path) == 0 {
		return Cycle{}
	}
	smallest := 0
	for i := 1; i < len(path); i++ {
		if path[i] < path[smallest] {
			smallest = i
		}
	}
	rotated := make([]string, 0, len(path))
	rotated = append(rotated, path[smallest:]...)
	rotated = append(rotated, path[:smallest]...)
	return Cycle{ElementIDs: rotated}
}

// Package cluster extracts connected components under radius adjacency and
// decides whether they span the domain.
package cluster

import "github.com/talgya/defector-percolation/internal/world"

// Components partitions points into maximal groups connected by chains of
// within-radius links. Each expansion is O(n²); fine for hundreds of points.
// Component and member order follow seed discovery and are not part of the
// contract.
func Components(points []world.Position, radius float64) [][]world.Position {
	visited := make([]bool, len(points))
	var out [][]world.Position

	for seed := range points {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		component := []world.Position{points[seed]}
		frontier := []int{seed}

		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			for j := range points {
				if visited[j] {
					continue
				}
				if points[cur].IsWithinRadius(points[j], radius) {
					visited[j] = true
					component = append(component, points[j])
					frontier = append(frontier, j)
				}
			}
		}
		out = append(out, component)
	}
	return out
}

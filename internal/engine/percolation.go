package engine

import "github.com/talgya/defector-percolation/internal/cluster"

// AnalyzeDefectorPercolation runs the percolation engine over the
// non-compliant agents only.
func AnalyzeDefectorPercolation(w World) cluster.Result {
	return cluster.Analyze(w.DefectorPositions(), w.domain, w.neighborhood.Radius, w.tolerance)
}

// AnalyzeGeometricPercolation runs the percolation engine over every agent.
func AnalyzeGeometricPercolation(w World) cluster.Result {
	return cluster.Analyze(w.Positions(), w.domain, w.neighborhood.Radius, w.tolerance)
}

// GeometricPercolates reports whether the whole population spans the domain.
func GeometricPercolates(w World) bool {
	return AnalyzeGeometricPercolation(w).HasAny
}

package sweep

// Aggregate summarizes all repetitions at one parameter point.
type Aggregate struct {
	ParamIndex int `json:"-" db:"param_index"`
	Params
	AgentCount int `json:"agentCount" db:"agent_count"`
	Runs       int `json:"runs" db:"runs"`

	AvgCompliance                   float64 `json:"avgCompliance" db:"avg_compliance"`
	DefectorPercolationProbability  float64 `json:"defectorPercolationProbability" db:"defector_percolation_probability"`
	GeometricPercolationProbability float64 `json:"geometricPercolationProbability" db:"geometric_percolation_probability"`
	AvgLargestClusterFraction       float64 `json:"avgLargestClusterFraction" db:"avg_largest_cluster_fraction"`
}

// Aggregated groups records by ParamIndex and averages each group. Output
// follows grid order; points with no records are omitted.
func Aggregated(grid []Params, records []RunRecord) []Aggregate {
	groups := make([][]RunRecord, len(grid))
	for _, r := range records {
		if r.ParamIndex >= 0 && r.ParamIndex < len(grid) {
			groups[r.ParamIndex] = append(groups[r.ParamIndex], r)
		}
	}

	out := make([]Aggregate, 0, len(grid))
	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		a := Aggregate{ParamIndex: i, Params: grid[i], AgentCount: group[0].AgentCount, Runs: len(group)}
		for _, r := range group {
			a.AvgCompliance += r.FinalCompliance
			a.AvgLargestClusterFraction += r.LargestClusterFraction
			if r.DefectorPercolation {
				a.DefectorPercolationProbability++
			}
			if r.GeometricPercolation {
				a.GeometricPercolationProbability++
			}
		}
		n := float64(len(group))
		a.AvgCompliance /= n
		a.AvgLargestClusterFraction /= n
		a.DefectorPercolationProbability /= n
		a.GeometricPercolationProbability /= n
		out = append(out, a)
	}
	return out
}

// Package report writes sweep results as CSV and JSON for plotting.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/talgya/defector-percolation/internal/sweep"
)

// CSVHeader is the column order of WriteCSV.
var CSVHeader = []string{
	"density",
	"temptation",
	"defectorRatio",
	"agentCount",
	"avgCompliance",
	"defectorPercolationProbability",
	"geometricPercolationProbability",
	"avgLargestClusterFraction",
}

// WriteCSV writes one row per aggregate in the given order.
func WriteCSV(w io.Writer, aggs []sweep.Aggregate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range aggs {
		row := []string{
			ftoa(a.Density),
			ftoa(a.Temptation),
			ftoa(a.DefectorRatio),
			strconv.Itoa(a.AgentCount),
			ftoa(a.AvgCompliance),
			ftoa(a.DefectorPercolationProbability),
			ftoa(a.GeometricPercolationProbability),
			ftoa(a.AvgLargestClusterFraction),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", a.ParamIndex, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

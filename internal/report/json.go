package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/talgya/defector-percolation/internal/sweep"
)

// WriteJSON writes res as an indented document with "results" and "runs".
func WriteJSON(w io.Writer, res sweep.Results) error {
	if res.Aggregates == nil {
		res.Aggregates = []sweep.Aggregate{}
	}
	if res.Runs == nil {
		res.Runs = []sweep.RunRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteFiles writes the CSV and JSON reports to the given paths. Empty
// paths are skipped.
func WriteFiles(csvPath, jsonPath string, res sweep.Results) error {
	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return WriteCSV(w, res.Aggregates) }); err != nil {
			return err
		}
	}
	if jsonPath != "" {
		if err := writeFile(jsonPath, func(w io.Writer) error { return WriteJSON(w, res) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

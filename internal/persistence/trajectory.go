package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/defector-percolation/internal/agents"
	"github.com/talgya/defector-percolation/internal/engine"
)

// TrajectoryEntry is one line of a trajectory file.
type TrajectoryEntry struct {
	Step       uint64  `json:"step"`
	Compliance float64 `json:"compliance"`
	Defectors  int     `json:"defectors"`
	engine.StepStats
	Agents []agents.Agent `json:"agents,omitempty"` // Only on snapshot steps
}

// EntryFromWorld summarizes w; withAgents includes the full population.
func EntryFromWorld(w engine.World, withAgents bool) TrajectoryEntry {
	e := TrajectoryEntry{
		Step:       w.StepIndex(),
		Compliance: w.ComplianceRate(),
		Defectors:  w.DefectorCount(),
		StepStats:  w.LastStep(),
	}
	if withAgents {
		e.Agents = w.Agents()
	}
	return e
}

// TrajectoryWriter writes zstd-compressed JSONL, one entry per line.
type TrajectoryWriter struct {
	path string
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
}

// NewTrajectoryWriter creates (or truncates) path.
func NewTrajectoryWriter(path string) (*TrajectoryWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &TrajectoryWriter{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Write appends one entry.
func (t *TrajectoryWriter) Write(e TrajectoryEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

// Close flushes and closes the file.
func (t *TrajectoryWriter) Close() error {
	var err1, err2 error
	if t.w != nil {
		err1 = t.w.Flush()
	}
	if t.enc != nil {
		err2 = t.enc.Close()
	}
	if err := t.f.Close(); err != nil && err1 == nil && err2 == nil {
		return err
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// ReadTrajectory decodes every entry of a trajectory file.
func ReadTrajectory(path string) ([]TrajectoryEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []TrajectoryEntry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		var e TrajectoryEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("line %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

package engine

import (
	"fmt"
	"log/slog"
	"time"
)

// Engine drives a world through a fixed number of steps. Keeping history is
// up to the callbacks; the engine holds only the current world.
type Engine struct {
	SnapshotEvery int // Fire OnSnapshot every N steps (0 = never)

	// Callbacks, populated during setup.
	OnStep     func(w World) // After every step
	OnSnapshot func(w World) // Every SnapshotEvery steps, and after the last step
}

// NewEngine creates an engine with no callbacks.
func NewEngine() *Engine {
	return &Engine{}
}

// Run steps w n times. A negative n is rejected before any step runs.
func (e *Engine) Run(w World, n int) (World, error) {
	if n < 0 {
		return w, fmt.Errorf("%w: %d", ErrNegativeSteps, n)
	}
	start := time.Now()

	for i := 0; i < n; i++ {
		w = w.Step()

		if e.OnStep != nil {
			e.OnStep(w)
		}
		if e.OnSnapshot != nil && e.SnapshotEvery > 0 && (w.StepIndex()%uint64(e.SnapshotEvery) == 0 || i == n-1) {
			e.OnSnapshot(w)
		}
	}

	slog.Debug("run finished",
		"steps", n,
		"agents", w.Len(),
		"compliance", fmt.Sprintf("%.3f", w.ComplianceRate()),
		"elapsed", time.Since(start),
	)
	return w, nil
}

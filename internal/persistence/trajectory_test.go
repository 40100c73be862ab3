package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/defector-percolation/internal/agents"
	"github.com/talgya/defector-percolation/internal/engine"
	"github.com/talgya/defector-percolation/internal/world"
)

func TestTrajectory_WriteRead(t *testing.T) {
	w, err := engine.NewWorld(engine.WorldConfig{
		Domain:            world.Domain{Width: 10, Height: 10},
		InteractionRadius: 2,
		Seed:              5,
	}, []agents.Agent{
		{ID: 1, Strategy: agents.NonCompliant, Position: world.Position{X: 4, Y: 5}, PhysicalRadius: 0.3, Mobile: true},
		{ID: 2, Strategy: agents.Compliant, Position: world.Position{X: 5, Y: 5}, PhysicalRadius: 0.3, Mobile: true},
	})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}

	path := filepath.Join(t.TempDir(), "traj", "run.jsonl.zst")
	tw, err := NewTrajectoryWriter(path)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	var want []TrajectoryEntry
	for i := 0; i < 5; i++ {
		w = w.Step()
		e := EntryFromWorld(w, i == 4)
		want = append(want, e)
		if err := tw.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadTrajectory(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("entries=%d want 5", len(got))
	}
	for i := range want {
		if got[i].Step != want[i].Step || got[i].Compliance != want[i].Compliance ||
			got[i].Defectors != want[i].Defectors || got[i].StepStats != want[i].StepStats {
			t.Fatalf("entry %d = %+v want %+v", i, got[i], want[i])
		}
	}
	if len(got[3].Agents) != 0 || len(got[4].Agents) != 2 {
		t.Fatalf("snapshot agents: %d %d", len(got[3].Agents), len(got[4].Agents))
	}
	if got[4].Agents[0] != want[4].Agents[0] {
		t.Fatalf("agent round trip: %+v want %+v", got[4].Agents[0], want[4].Agents[0])
	}
}

package engine

import (
	"testing"

	"github.com/talgya/defector-percolation/internal/agents"
)

func TestSwitchProbability(t *testing.T) {
	cases := []struct {
		name             string
		diff             float64
		my, best         int
		temptation, want float64
	}{
		{"proportional", 4, 2, 4, 4, 0.25},
		{"uses larger neighborhood", 4, 4, 2, 4, 0.25},
		{"negative clamps to zero", -3, 1, 1, 4, 0},
		{"large clamps to one", 30, 1, 1, 4, 1},
		{"no neighbors", 5, 0, 3, 4, 0},
		{"best has no neighbors", 5, 3, 0, 4, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := switchProbability(tc.diff, tc.my, tc.best, tc.temptation); got != tc.want {
				t.Fatalf("p=%v want %v", got, tc.want)
			}
		})
	}
}

func TestStep_CooperatorImitatesRicherDefector(t *testing.T) {
	cfg := testConfig()
	cfg.Temptation = 0.5 // diff 3 / 1 / 0.5 clamps to certainty
	w, err := NewWorld(cfg, []agents.Agent{
		agentAt(1, 4, 5, agents.NonCompliant),
		agentAt(2, 5, 5, agents.Compliant),
		agentAt(3, 9, 9, agents.Compliant), // isolated
	})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}

	next := w.Step()
	d, _ := next.Agent(1)
	c, _ := next.Agent(2)
	iso, _ := next.Agent(3)
	if d.Payoff != 4 || c.Payoff != 1 || iso.Payoff != 0 {
		t.Fatalf("payoffs=%v %v %v want 4 1 0", d.Payoff, c.Payoff, iso.Payoff)
	}
	if d.Strategy != agents.NonCompliant {
		t.Fatalf("richer defector switched")
	}
	if c.Strategy != agents.NonCompliant {
		t.Fatalf("cooperator did not imitate")
	}
	if iso.Strategy != agents.Compliant {
		t.Fatalf("isolated agent switched")
	}
	if next.LastStep().Flipped != 1 {
		t.Fatalf("flipped=%d want 1", next.LastStep().Flipped)
	}
}

func TestStep_EqualPayoffsNeverSwitch(t *testing.T) {
	w, err := NewWorld(testConfig(), []agents.Agent{
		agentAt(1, 4, 5, agents.Compliant),
		agentAt(2, 5, 5, agents.Compliant),
	})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	for i := 0; i < 20; i++ {
		w = w.Step()
	}
	if w.ComplianceRate() != 1 {
		t.Fatalf("uniform cooperators drifted: %v", w.ComplianceRate())
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/talgya/defector-percolation/internal/config"
	"github.com/talgya/defector-percolation/internal/persistence"
	"github.com/talgya/defector-percolation/internal/sweep"
)

func newTestServer(t *testing.T, withSweep bool) (*httptest.Server, string) {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var id string
	if withSweep {
		cfg, err := config.Default()
		if err != nil {
			t.Fatalf("defaults: %v", err)
		}
		p := sweep.Params{Density: 0.2, DefectorRatio: 0.5, Temptation: 1.5}
		runs := []sweep.RunRecord{
			{ParamIndex: 0, Repetition: 0, Seed: 1, Params: p, AgentCount: 10, FinalCompliance: 0.8},
			{ParamIndex: 0, Repetition: 1, Seed: 2, Params: p, AgentCount: 10, FinalCompliance: 0.6, DefectorPercolation: true},
		}
		res := sweep.Results{BaseSeed: 9, Workers: 1, Runs: runs, Aggregates: sweep.Aggregated([]sweep.Params{p}, runs)}
		id, err = db.SaveSweep(context.Background(), res, cfg)
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	srv := httptest.NewServer((&Server{Store: db, Version: "test"}).Handler())
	t.Cleanup(srv.Close)
	return srv, id
}

func getJSON(t *testing.T, url string, wantStatus int, into any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d want %d", url, resp.StatusCode, wantStatus)
	}
	if into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestStatus_EmptyStore(t *testing.T) {
	srv, _ := newTestServer(t, false)
	var status map[string]any
	getJSON(t, srv.URL+"/api/v1/status", http.StatusOK, &status)
	if status["latest_sweep"] != nil {
		t.Fatalf("latest_sweep=%v want null", status["latest_sweep"])
	}

	var list []persistence.SweepHeader
	getJSON(t, srv.URL+"/api/v1/sweeps", http.StatusOK, &list)
	if len(list) != 0 {
		t.Fatalf("list=%v", list)
	}
}

func TestSweepEndpoints(t *testing.T) {
	srv, id := newTestServer(t, true)

	var list []persistence.SweepHeader
	getJSON(t, srv.URL+"/api/v1/sweeps", http.StatusOK, &list)
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("list=%+v", list)
	}

	var detail struct {
		Sweep   persistence.SweepHeader `json:"sweep"`
		Results []sweep.Aggregate       `json:"results"`
	}
	getJSON(t, srv.URL+"/api/v1/sweeps/"+id, http.StatusOK, &detail)
	if detail.Sweep.ID != id || len(detail.Results) != 1 {
		t.Fatalf("detail=%+v", detail)
	}
	if got := detail.Results[0].DefectorPercolationProbability; got != 0.5 {
		t.Fatalf("defector percolation probability=%v want 0.5", got)
	}

	var runs struct {
		Runs []sweep.RunRecord `json:"runs"`
	}
	getJSON(t, srv.URL+"/api/v1/sweeps/"+id+"/runs", http.StatusOK, &runs)
	if len(runs.Runs) != 2 || runs.Runs[1].Repetition != 1 {
		t.Fatalf("runs=%+v", runs.Runs)
	}

	getJSON(t, srv.URL+"/api/v1/sweeps/nope", http.StatusNotFound, nil)
	getJSON(t, srv.URL+"/api/v1/sweeps/"+id+"/other", http.StatusNotFound, nil)
}

func TestReadOnly(t *testing.T) {
	srv, _ := newTestServer(t, false)
	resp, err := http.Post(srv.URL+"/api/v1/sweeps", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d want 405", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, false)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status=%d want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin=%q", got)
	}
}

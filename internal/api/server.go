// Package api serves stored sweep results over HTTP.
// All endpoints are GET and read-only.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/talgya/defector-percolation/internal/persistence"
	"github.com/talgya/defector-percolation/internal/sweep"
)

// Store is the read side of the results database.
type Store interface {
	ListSweeps(ctx context.Context) ([]persistence.SweepHeader, error)
	GetSweep(ctx context.Context, id string) (persistence.SweepHeader, error)
	LatestSweep(ctx context.Context) (persistence.SweepHeader, error)
	Aggregates(ctx context.Context, sweepID string) ([]sweep.Aggregate, error)
	Runs(ctx context.Context, sweepID string) ([]sweep.RunRecord, error)
}

// Server serves sweep results over HTTP.
type Server struct {
	Store   Store
	Port    int
	Version string

	started time.Time
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", getOnly(s.handleStatus))
	mux.HandleFunc("/api/v1/sweeps", getOnly(s.handleSweeps))
	mux.HandleFunc("/api/v1/sweeps/", getOnly(s.handleSweepRoutes))
	return corsMiddleware(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("HTTP API stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
		"http://localhost:8888": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":           "defector-percolation",
		"version":        s.Version,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	}

	latest, err := s.Store.LatestSweep(r.Context())
	switch {
	case err == nil:
		status["latest_sweep"] = latest
	case errors.Is(err, persistence.ErrNotFound):
		status["latest_sweep"] = nil
	default:
		s.internalError(w, "latest sweep", err)
		return
	}
	writeJSON(w, status)
}

func (s *Server) handleSweeps(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.ListSweeps(r.Context())
	if err != nil {
		s.internalError(w, "list sweeps", err)
		return
	}
	if list == nil {
		list = []persistence.SweepHeader{}
	}
	writeJSON(w, list)
}

// handleSweepRoutes dispatches /api/v1/sweeps/:id and /api/v1/sweeps/:id/runs.
func (s *Server) handleSweepRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/sweeps/"), "/")
	parts := strings.Split(path, "/")
	if path == "" || len(parts) > 2 || (len(parts) == 2 && parts[1] != "runs") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	id := parts[0]

	header, err := s.Store.GetSweep(r.Context(), id)
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "sweep not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "get sweep", err)
		return
	}

	if len(parts) == 2 {
		runs, err := s.Store.Runs(r.Context(), id)
		if err != nil {
			s.internalError(w, "runs", err)
			return
		}
		if runs == nil {
			runs = []sweep.RunRecord{}
		}
		writeJSON(w, map[string]any{"sweep": header, "runs": runs})
		return
	}

	aggs, err := s.Store.Aggregates(r.Context(), id)
	if err != nil {
		s.internalError(w, "aggregates", err)
		return
	}
	if aggs == nil {
		aggs = []sweep.Aggregate{}
	}
	writeJSON(w, map[string]any{"sweep": header, "results": aggs})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	slog.Error("api query failed", "op", op, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

package main

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brensch/gridsearch/levels"
	"github.com/brensch/gridsearch/store"
	"github.com/brensch/gridsearch/stream"
)

// Server holds shared state for HTTP handlers.
type Server struct {
	levelDir string
	results  *store.Results

	mu     sync.Mutex
	levels map[string]levels.Level
	loaded time.Time
}

// NewServer serves levels from levelDir and run results from roots.
func NewServer(levelDir string, roots []string) *Server {
	return &Server{
		levelDir: levelDir,
		results:  store.OpenResults(roots, 30*time.Second),
	}
}

func (s *Server) Close() error {
	return s.results.Close()
}

// RegisterRoutes sets up all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/levels", s.handleLevels)
	mux.HandleFunc("/api/levels/", s.handleLevel)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/ws/search", s.handleSearchStream)
}

// loadLevels rereads the level directory at most once every few seconds.
func (s *Server) loadLevels() (map[string]levels.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.levels != nil && time.Since(s.loaded) < 5*time.Second {
		return s.levels, nil
	}
	lvls, err := levels.LoadDir(s.levelDir)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]levels.Level, len(lvls))
	for _, l := range lvls {
		byName[l.Name] = l
	}
	s.levels = byName
	s.loaded = time.Now()
	return byName, nil
}

func (s *Server) level(name string) (levels.Level, error) {
	lvls, err := s.loadLevels()
	if err != nil {
		return levels.Level{}, err
	}
	lvl, ok := lvls[name]
	if !ok {
		return levels.Level{}, fmt.Errorf("unknown level %q", name)
	}
	return lvl, nil
}

func levelInfo(lvl levels.Level, withRows bool) stream.LevelInfo {
	return stream.NewLevelInfo(lvl.Name, lvl.Layout, withRows)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	lvls, err := s.loadLevels()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	names := make([]string, 0, len(lvls))
	for name := range lvls {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := LevelsResponse{Levels: make([]stream.LevelInfo, 0, len(names))}
	for _, name := range names {
		resp.Levels = append(resp.Levels, levelInfo(lvls[name], false))
	}
	writeJSON(w, resp)
}

// handleLevel serves /api/levels/{name}.
func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	name, err := url.PathUnescape(strings.TrimPrefix(r.URL.Path, "/api/levels/"))
	if err != nil || name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}
	lvl, err := s.level(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, levelInfo(lvl, true))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	if err := s.results.Refresh(); err != nil {
		http.Error(w, fmt.Sprintf("failed to refresh db: %v", err), http.StatusInternalServerError)
		return
	}
	rows, err := s.results.Summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []store.SummaryRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("level"))
	if name == "" {
		http.Error(w, "level is required", http.StatusBadRequest)
		return
	}
	runs, err := s.results.LevelRuns(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	limit := parseIntQuery(r, "limit", 100)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	if runs == nil {
		runs = []store.RunRow{}
	}
	writeJSON(w, runs)
}

// Package dashboard serves the web overview of the revision plan: an HTML
// page plus a small JSON API the TUI and external tools can reuse. The server
// reads the exported plan and concept map per request, so a replan shows up
// on the next refresh without restarting.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/planner"
	"github.com/gabvrl/revisor/internal/progress"
)

// Logger is the subset of the project logger the server reports through.
type Logger interface {
	Printf(format string, args ...any)
}

// Paths tells the server where the exported artifacts and progress state live.
type Paths struct {
	PlanJSON   string
	ConceptMap string
	Progress   string
}

// Server wraps the HTTP listener and handlers backing the dashboard.
type Server struct {
	settings Settings
	paths    Paths
	logger   Logger
	clock    func() time.Time
	stale    atomic.Bool

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a dashboard server.
func NewServer(settings Settings, paths Paths, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		paths:    paths,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// MarkStale flags the analysis as out of date; the watcher calls this when a
// course document changes on disk.
func (s *Server) MarkStale() {
	s.stale.Store(true)
}

// Handler builds the route table. Exposed so tests can drive the handlers
// through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleOverview)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/plan", s.handlePlan)
	mux.HandleFunc("/api/concepts", s.handleConcepts)
	mux.HandleFunc("/api/progress", s.handleProgress)
	mux.HandleFunc("/api/sessions/", s.handleSessionComplete)
	return mux
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("dashboard: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("dashboard: listen %s: %w", addr, err)
	}
	s.listener = listener
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("dashboard: serve error: %v", err)
		}
	}()
	s.logger.Printf("dashboard: listening on http://%s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("dashboard: shutdown: %w", err)
	}
	s.server = nil
	s.listener = nil
	return nil
}

// Addr returns the bound address, empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   s.clock().Format(time.RFC3339),
		"stale":  s.stale.Load(),
	})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	plan, err := s.loadPlan()
	if err != nil {
		writeError(w, http.StatusNotFound, "no plan has been generated yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": plan, "stale": s.stale.Load()})
}

func (s *Server) handleConcepts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	doc, err := exports.LoadConceptMapJSON(s.paths.ConceptMap)
	if err != nil {
		writeError(w, http.StatusNotFound, "no concept map has been generated yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"concepts":       doc.Concepts,
		"categories":     doc.Categories,
		"learning_order": doc.LearningOrder,
		"coverage":       doc.Coverage,
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	plan, err := s.loadPlan()
	if err != nil {
		writeError(w, http.StatusNotFound, "no plan has been generated yet")
		return
	}
	tracker, err := progress.Load(s.paths.Progress)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tracker.Summarize(plan))
}

// handleSessionComplete serves POST /api/sessions/{id}/complete.
func (s *Server) handleSessionComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, action, found := strings.Cut(rest, "/")
	if !found || action != "complete" || id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	plan, err := s.loadPlan()
	if err != nil {
		writeError(w, http.StatusNotFound, "no plan has been generated yet")
		return
	}
	var session *planner.Session
	for i := range plan.Sessions {
		if plan.Sessions[i].ID == id {
			session = &plan.Sessions[i]
			break
		}
	}
	if session == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown session %q", id))
		return
	}
	tracker, err := progress.Load(s.paths.Progress)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	changed := tracker.CompleteSession(id, session.DurationMinutes)
	if changed {
		if session.Concept != "" && session.Kind == planner.KindLearning {
			tracker.MasterConcept(session.Concept)
		}
		if err := tracker.Save(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.logger.Printf("dashboard: session %s marked complete", id)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"completed":  true,
		"changed":    changed,
	})
}

// loadPlan reads the exported plan and overlays completion state.
func (s *Server) loadPlan() (*planner.Plan, error) {
	doc, err := exports.LoadPlanJSON(s.paths.PlanJSON)
	if err != nil {
		return nil, err
	}
	if tracker, err := progress.Load(s.paths.Progress); err == nil {
		tracker.Apply(doc.Plan)
	}
	return doc.Plan, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

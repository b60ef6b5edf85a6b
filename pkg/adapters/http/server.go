package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxPromptBytes bounds the request body of POST /explore.
const maxPromptBytes = 64 << 10

// ExploreResponse is the body of POST /explore.
// A failed run that produced a tree carries both the snapshot and the error.
type ExploreResponse struct {
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// RunSummary is one entry of GET /runs.
type RunSummary struct {
	RunID     string            `json:"run_id"`
	CreatedAt string            `json:"created_at"`
	Reason    domain.StopReason `json:"reason"`
	Nodes     int               `json:"nodes"`
	BestScore float64           `json:"best_score"`
}

// BestResponse is the body of GET /runs/{id}/best.
type BestResponse struct {
	Node domain.Node   `json:"node"`
	Path []domain.Node `json:"path"`
}

// Server exposes explorations and archived runs over HTTP.
type Server struct {
	Explorer ports.Explorer
	Archive  ports.Archive
	Streams  *StreamManager
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	// Defaults fill the config fields a POST /explore body leaves out.
	Defaults domain.Config
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer sets the registry served on /metrics (default: prometheus.DefaultGatherer).
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithDefaults sets the exploration settings that request configs are merged onto
// (default: domain.DefaultConfig).
func WithDefaults(cfg domain.Config) Option {
	return func(s *Server) {
		s.Defaults = cfg
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// NewHandler creates the HTTP handler. A nil archive keeps runs in memory.
func NewHandler(explorer ports.Explorer, archive ports.Archive, opts ...Option) http.Handler {
	return NewServer(explorer, archive, opts...).Routes()
}

// NewServer creates a Server with defaults applied.
func NewServer(explorer ports.Explorer, archive ports.Archive, opts ...Option) *Server {
	s := &Server{
		Explorer: explorer,
		Archive:  archive,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Defaults: domain.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Archive == nil {
		s.Archive = memory.NewStore()
	}
	s.Streams = NewStreamManager(s.Logger)
	return s
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))

	r.Post("/explore", s.Explore)
	r.Get("/runs", s.ListRuns)
	r.Route("/runs/{id}", func(r chi.Router) {
		r.Get("/", s.GetRun)
		r.Get("/graph", s.GetGraph)
		r.Get("/best", s.GetBest)
		r.Get("/events", s.SubscribeEvents)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Explore handles the POST /explore request. It runs the exploration to
// completion before answering; progress is streamed on /runs/{id}/events.
func (s *Server) Explore(w http.ResponseWriter, r *http.Request) {
	// A present "config" object is decoded over the defaults, so omitted fields keep them.
	defaults := s.Defaults
	req := ports.ExploreRequest{Config: &defaults}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPromptBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Explore: invalid request body", "err", err)
		return
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	snap, err := s.Explorer.Run(r.Context(), req, s.streamHooks(req.RunID))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrInvalidConfig):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrRunInProgress):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrEvaluator), errors.Is(err, domain.ErrScoreOutOfRange):
			status = http.StatusBadGateway
		}
		s.Logger.Error("Explore failed", "run_id", req.RunID, "err", err)
		s.writeJSON(w, status, ExploreResponse{Snapshot: snap, Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, ExploreResponse{Snapshot: snap})
}

// streamHooks forwards progress of runID to its SSE subscribers.
func (s *Server) streamHooks(runID string) domain.LifecycleHooks {
	format := func(event string, v any) (string, bool) {
		if s.Streams.Subscribers(runID) == 0 {
			return "", false
		}
		data, err := json.Marshal(v)
		if err != nil {
			s.Logger.Warn("SSE: failed to encode event", "run_id", runID, "event", event, "err", err)
			data = []byte("{}")
		}
		return fmt.Sprintf("event: %s\ndata: %s", event, data), true
	}
	broadcast := func(event string, v any) {
		if msg, ok := format(event, v); ok {
			s.Streams.Broadcast(runID, msg)
		}
	}
	return domain.LifecycleHooks{
		OnNodeCreated: func(_ context.Context, e *domain.NodeEvent) { broadcast(string(e.Type), e) },
		OnIteration:   func(_ context.Context, e *domain.IterationEvent) { broadcast(string(e.Type), e) },
		// Subscribers disconnect on stop, so it must always get through.
		OnStop: func(_ context.Context, e *domain.StopEvent) {
			if msg, ok := format(string(e.Type), e); ok {
				s.Streams.BroadcastLast(runID, msg)
			}
		},
	}
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Archive.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("ListRuns failed", "err", err)
		return
	}

	runs := make([]RunSummary, 0, len(ids))
	for _, id := range ids {
		snap, err := s.Archive.Load(r.Context(), id)
		if err != nil {
			// Expired between List and Load.
			continue
		}
		runs = append(runs, RunSummary{
			RunID:     snap.RunID,
			CreatedAt: snap.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Reason:    snap.Outcome.Reason,
			Nodes:     len(snap.Nodes),
			BestScore: snap.Outcome.BestScore,
		})
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// GetRun handles the GET /runs/{id} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// GetGraph handles the GET /runs/{id}/graph request (Mermaid text).
// ?overlay=false disables best-path and frontier highlighting.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	var overlay *graph.GraphOverlay
	if r.URL.Query().Get("overlay") != "false" {
		overlay = graph.OverlayFor(*snap)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(*snap, overlay))
}

// GetBest handles the GET /runs/{id}/best request.
func (s *Server) GetBest(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	best, found := snap.Best()
	if !found {
		http.Error(w, "Run has no best node", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, BestResponse{Node: best, Path: snap.PathTo(best.ID)})
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, bool) {
	id := chi.URLParam(r, "id")
	snap, err := s.Archive.Load(r.Context(), id)
	if errors.Is(err, domain.ErrRunNotFound) {
		http.Error(w, fmt.Sprintf("Run %s not found", id), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Load failed", "run_id", id, "err", err)
		return nil, false
	}
	return snap, true
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(arbor.Version),
	})
}

// SubscribeEvents handles the GET /runs/{id}/events request (SSE).
// Subscribe before posting the run to receive all of its events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	runID := chi.URLParam(r, "id")
	ch, cancel := s.Streams.Subscribe(runID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "%s\n\n", msg)
			flusher.Flush()
			if strings.HasPrefix(msg, "event: "+string(domain.EventStop)+"\n") {
				return
			}
		}
	}
}

// writeJSON encodes v before committing the status. Encoding failures answer 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.Logger.Error("failed to encode response", "status", status, "err", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.Logger.Warn("failed to write response", "err", err)
	}
}

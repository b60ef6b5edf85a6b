package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/evaluator/evaluatortest"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(archive ports.Archive) *arbor.Runner {
	runner := arbor.NewRunner(func() (ports.Evaluator, error) {
		return evaluatortest.NewScripted(
			map[string]float64{"P": 5, "P1": 7, "P2": 5.5},
			map[string][]string{"P": {"P1", "P2"}},
		), nil
	})
	runner.Archive = archive
	return runner
}

// exploreBody requests the P/P1/P2 scenario with threshold 1, 3 iterations and 2 children.
func exploreBody(t *testing.T, runID string) string {
	t.Helper()
	cfg := domain.DefaultConfig()
	cfg.MinImprovementThreshold = 1
	cfg.MaxIterations = 3
	cfg.MaxChildrenPerNode = 2
	data, err := json.Marshal(ports.ExploreRequest{InitialPrompt: "P", Config: &cfg, RunID: runID})
	require.NoError(t, err)
	return string(data)
}

func postExplore(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/explore", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_ExploreAndFetch(t *testing.T) {
	archive := memory.NewStore()
	h := NewHandler(newTestRunner(archive), archive)

	w := postExplore(t, h, exploreBody(t, "run-1"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ExploreResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Snapshot)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "run-1", resp.Snapshot.RunID)
	assert.Len(t, resp.Snapshot.Nodes, 3)
	assert.Equal(t, 7.0, resp.Snapshot.Outcome.BestScore)

	t.Run("ListRuns", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var runs []RunSummary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&runs))
		require.Len(t, runs, 1)
		assert.Equal(t, "run-1", runs[0].RunID)
		assert.Equal(t, 3, runs[0].Nodes)
		assert.Equal(t, 7.0, runs[0].BestScore)
	})

	t.Run("GetRun", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/run-1", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var snap domain.Snapshot
		require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
		assert.Equal(t, resp.Snapshot.Outcome, snap.Outcome)
	})

	t.Run("GetBest", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/run-1/best", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var best BestResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&best))
		assert.Equal(t, "P1", best.Node.Prompt)
		require.Len(t, best.Path, 2)
		assert.Equal(t, "P", best.Path[0].Prompt)
	})

	t.Run("GetGraph", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/run-1/graph", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, w.Body.String(), "graph TD")
		assert.Contains(t, w.Body.String(), "classDef best")

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/run-1/graph?overlay=false", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "classDef best")
	})

	t.Run("NotFound", func(t *testing.T) {
		for _, path := range []string{"/runs/missing", "/runs/missing/graph", "/runs/missing/best"} {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotFound, w.Code, path)
		}
	})
}

func TestServer_Explore_GeneratesRunID(t *testing.T) {
	var got string
	explorer := ports.ExplorerFunc(func(ctx context.Context, req ports.ExploreRequest, hooks domain.LifecycleHooks) (*domain.Snapshot, error) {
		got = req.RunID
		return &domain.Snapshot{RunID: req.RunID}, nil
	})
	h := NewHandler(explorer, nil)

	w := postExplore(t, h, `{"initial_prompt":"P"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, got)
}

func TestServer_Explore_PartialConfigKeepsDefaults(t *testing.T) {
	t.Run("ServerDefaults", func(t *testing.T) {
		archive := memory.NewStore()
		h := NewHandler(newTestRunner(archive), archive)

		w := postExplore(t, h, `{"initial_prompt":"P","config":{"max_iterations":3}}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp ExploreResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Snapshot)
		want := domain.DefaultConfig()
		want.MaxIterations = 3
		assert.Equal(t, want, resp.Snapshot.Config)
	})

	t.Run("CustomDefaults", func(t *testing.T) {
		var got *domain.Config
		explorer := ports.ExplorerFunc(func(ctx context.Context, req ports.ExploreRequest, hooks domain.LifecycleHooks) (*domain.Snapshot, error) {
			got = req.Config
			return &domain.Snapshot{RunID: req.RunID}, nil
		})
		defaults := domain.DefaultConfig()
		defaults.MinImprovementThreshold = 0.2
		defaults.MaxChildrenPerNode = 2
		h := NewHandler(explorer, nil, WithDefaults(defaults))

		w := postExplore(t, h, `{"initial_prompt":"P","config":{"max_iterations":7}}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, 7, got.MaxIterations)
		assert.Equal(t, 0.2, got.MinImprovementThreshold)
		assert.Equal(t, 2, got.MaxChildrenPerNode)

		w = postExplore(t, h, `{"initial_prompt":"P"}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, defaults, *got)
	})
}

func TestServer_Explore_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		snap       *domain.Snapshot
		err        error
		wantStatus int
		wantSnap   bool
	}{
		{name: "InvalidBody", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "InvalidConfig", body: `{"initial_prompt":""}`, err: domain.ErrInvalidConfig, wantStatus: http.StatusBadRequest},
		{
			name:       "EvaluatorFailureKeepsPartialTree",
			body:       `{"initial_prompt":"P"}`,
			snap:       &domain.Snapshot{RunID: "r", Nodes: []domain.Node{{ID: "root", Prompt: "P", Score: 5}}},
			err:        errors.Join(domain.ErrEvaluator, errors.New("upstream down")),
			wantStatus: http.StatusBadGateway,
			wantSnap:   true,
		},
		{name: "RunInProgress", body: `{"initial_prompt":"P","run_id":"busy"}`, err: domain.ErrRunInProgress, wantStatus: http.StatusConflict},
		{name: "Internal", body: `{"initial_prompt":"P"}`, err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			explorer := ports.ExplorerFunc(func(ctx context.Context, req ports.ExploreRequest, hooks domain.LifecycleHooks) (*domain.Snapshot, error) {
				return tt.snap, tt.err
			})
			w := postExplore(t, NewHandler(explorer, nil), tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.err == nil {
				return
			}

			var resp ExploreResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantSnap, resp.Snapshot != nil)
		})
	}
}

func TestServer_Explore_UnencodableSnapshot(t *testing.T) {
	explorer := ports.ExplorerFunc(func(ctx context.Context, req ports.ExploreRequest, hooks domain.LifecycleHooks) (*domain.Snapshot, error) {
		return &domain.Snapshot{RunID: req.RunID, Nodes: []domain.Node{{ID: "root", Prompt: "P", Score: math.NaN()}}}, nil
	})
	var logs bytes.Buffer
	h := NewHandler(explorer, nil, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	w := postExplore(t, h, `{"initial_prompt":"P"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to encode response")
	assert.Contains(t, logs.String(), "failed to encode response")
}

func TestServer_HealthInfoAndCORS(t *testing.T) {
	h := NewHandler(newTestRunner(nil), nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	var info map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&info))
	assert.Equal(t, "arbor-http", info["app"])
	assert.Equal(t, strings.TrimSpace(arbor.Version), info["version"])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/explore", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	runner := newTestRunner(nil)
	runner.Hooks = metrics.Hooks()
	h := NewHandler(runner, nil, WithGatherer(reg))

	w := postExplore(t, h, exploreBody(t, ""))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arbor_iterations_total")
}

func TestServer_SubscribeEvents(t *testing.T) {
	srv := httptest.NewServer(NewHandler(newTestRunner(nil), nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs/run-sse/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	body := exploreBody(t, "run-sse")
	post, err := http.Post(srv.URL+"/explore", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusOK, post.StatusCode)

	var events []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if name, ok := strings.CutPrefix(strings.TrimSpace(line), "event: "); ok {
			events = append(events, name)
		}
	}

	require.NotEmpty(t, events)
	assert.Contains(t, events, string(domain.EventNodeCreated))
	assert.Contains(t, events, string(domain.EventIteration))
	assert.Equal(t, string(domain.EventStop), events[len(events)-1])
}

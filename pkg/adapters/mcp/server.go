package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RunsURI is the resource listing archived run IDs.
const RunsURI = "arbor://runs"

// ExploreResponse is the structured result of explore_prompt.
type ExploreResponse struct {
	RunID      string            `json:"run_id" jsonschema_description:"The ID of the run"`
	Reason     domain.StopReason `json:"reason" jsonschema_description:"Why the exploration stopped"`
	BestPrompt string            `json:"best_prompt" jsonschema_description:"The highest-scoring prompt found"`
	BestScore  float64           `json:"best_score" jsonschema_description:"The score of the best prompt"`
	Path       []string          `json:"path" jsonschema_description:"Prompts from the initial prompt to the best one"`
	Nodes      int               `json:"nodes" jsonschema_description:"Number of prompts evaluated"`
	Iterations int               `json:"iterations" jsonschema_description:"Number of expansions performed"`
	Error      string            `json:"error,omitempty" jsonschema_description:"Failure that ended the run early, if any"`
}

// Server exposes prompt exploration as an MCP Server.
type Server struct {
	explorer  ports.Explorer
	archive   ports.Archive
	defaults  domain.Config
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. archive may be nil, in which
// case get_run and the runs resource are not registered.
func NewServer(explorer ports.Explorer, archive ports.Archive, defaults domain.Config) *Server {
	s := &Server{
		explorer:  explorer,
		archive:   archive,
		defaults:  defaults,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: explore_prompt
	exploreTool := mcp.NewTool("explore_prompt",
		mcp.WithDescription("Search for an improved version of a prompt by greedy best-first tree exploration."),
		mcp.WithString("initial_prompt", mcp.Required(), mcp.Description("The prompt to improve")),
		mcp.WithNumber("max_iterations", mcp.Description("Maximum number of expansions (optional)")),
		mcp.WithNumber("threshold", mcp.Description("Minimum score gain for a rewrite to be explored further (optional)")),
		mcp.WithNumber("max_children", mcp.Description("Rewrites requested per expansion (optional)")),
		mcp.WithString("run_id", mcp.Description("ID to archive the run under (optional)")),
		mcp.WithOutputSchema[ExploreResponse](),
	)
	s.mcpServer.AddTool(exploreTool, mcp.NewStructuredToolHandler(s.handleExplore))

	if s.archive == nil {
		return
	}

	// TOOL: get_run
	s.mcpServer.AddTool(mcp.NewTool("get_run",
		mcp.WithDescription("Get the full tree of an archived run."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("The ID of the run")),
	), s.handleGetRun)
}

func (s *Server) handleExplore(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ExploreResponse, error) {
	prompt, _ := args["initial_prompt"].(string)
	if strings.TrimSpace(prompt) == "" {
		return ExploreResponse{}, errors.New("initial_prompt is required")
	}

	cfg := s.defaults
	if v, ok := args["max_iterations"].(float64); ok {
		cfg.MaxIterations = int(v)
	}
	if v, ok := args["threshold"].(float64); ok {
		cfg.MinImprovementThreshold = v
	}
	if v, ok := args["max_children"].(float64); ok {
		cfg.MaxChildrenPerNode = int(v)
	}
	runID, _ := args["run_id"].(string)

	snap, err := s.explorer.Run(ctx, ports.ExploreRequest{
		InitialPrompt: prompt,
		Config:        &cfg,
		RunID:         runID,
	}, domain.LifecycleHooks{})
	if err != nil && snap == nil {
		return ExploreResponse{}, fmt.Errorf("explore failed: %w", err)
	}

	resp := summarize(snap)
	if err != nil {
		slog.Error("MCP Explore: run ended early", "run_id", snap.RunID, "error", err)
		resp.Error = err.Error()
	}
	return resp, nil
}

func summarize(snap *domain.Snapshot) ExploreResponse {
	resp := ExploreResponse{
		RunID:      snap.RunID,
		Reason:     snap.Outcome.Reason,
		BestScore:  snap.Outcome.BestScore,
		Nodes:      len(snap.Nodes),
		Iterations: snap.Outcome.Iterations,
		Path:       []string{},
	}
	if best, ok := snap.Best(); ok {
		resp.BestPrompt = best.Prompt
		for _, n := range snap.PathTo(best.ID) {
			resp.Path = append(resp.Path, n.Prompt)
		}
	}
	return resp
}

func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.archive.Load(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(snap)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	if s.archive == nil {
		return
	}

	// EXPOSE: arbor://runs
	s.mcpServer.AddResource(mcp.NewResource(RunsURI, "Archived Runs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.archive.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      RunsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

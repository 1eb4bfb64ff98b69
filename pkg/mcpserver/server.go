// Package mcpserver serves the assistant's tools over the MCP streamable
// HTTP transport, alongside health and metrics endpoints.
package mcpserver

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/config"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/dispatch"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/telemetry"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/tools"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/versions"
)

const (
	serverName = "location-weather"

	endpointPath = "/mcp"

	readHeaderTimeout = 10 * time.Second // Prevent Slowloris attacks
	middlewareTimeout = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server exposes the registered tools over MCP streamable HTTP.
type Server struct {
	cfg        config.ServerConfig
	mcpServer  *server.MCPServer
	httpServer *http.Server
	dispatcher *dispatch.Manager
}

// New creates an MCP server that dispatches every registered tool through
// the given dispatch manager. The metrics argument may be nil; when set, a
// Prometheus /metrics endpoint is mounted.
func New(cfg config.ServerConfig, dispatcher *dispatch.Manager, metrics *telemetry.Metrics) *Server {
	versionInfo := versions.GetVersionInfo()
	mcpServer := server.NewMCPServer(
		serverName,
		versionInfo.Version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	for _, tool := range dispatcher.Tools() {
		mcpServer.AddTool(toMCPTool(tool), toolHandler(dispatcher, tool.Name))
	}

	streamableServer := server.NewStreamableHTTPServer(
		mcpServer,
		server.WithEndpointPath(endpointPath),
	)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Timeout(middlewareTimeout),
	)
	r.Get("/health", handleHealth)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}
	r.Handle(endpointPath, streamableServer)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		cfg:        cfg,
		mcpServer:  mcpServer,
		dispatcher: dispatcher,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Start serves until the context is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	logger.Infof("Starting MCP server on http://%s%s", s.httpServer.Addr, endpointPath)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down MCP server")
		return s.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Address returns the MCP endpoint URL.
func (s *Server) Address() string {
	return fmt.Sprintf("http://%s%s", s.httpServer.Addr, endpointPath)
}

// toolHandler adapts a registered tool into an MCP tool handler. Failures
// are rendered through the dispatcher's JSON-RPC error formatter.
func toolHandler(dispatcher *dispatch.Manager, toolName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := dispatcher.Dispatch(ctx, toolName, request.GetArguments())
		if err != nil {
			payload, marshalErr := json.Marshal(dispatcher.FormatError(err))
			if marshalErr != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultError(string(payload)), nil
		}

		text, err := json.Marshal(result.Value)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(text)), nil
	}
}

// toMCPTool converts a registry tool definition into the SDK tool shape.
func toMCPTool(tool *tools.Tool) mcp.Tool {
	schema := mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}}
	if properties, ok := tool.InputSchema["properties"].(map[string]any); ok {
		schema.Properties = properties
	}
	schema.Required = requiredFields(tool.InputSchema["required"])

	return mcp.Tool{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: schema,
	}
}

func requiredFields(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		fields := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				fields = append(fields, s)
			}
		}
		return fields
	default:
		return nil
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

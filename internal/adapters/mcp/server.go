// Package mcp exposes the commands of a tether host as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tether"
	"github.com/aretw0/tether/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	CommandsURI = "tether://commands"
	HistoryURI  = "tether://history"
)

// historyResourceLimit caps the records returned by the history resource.
const historyResourceLimit = 50

// Host is the part of tether.Host the MCP surface depends on.
type Host interface {
	Commands() []domain.Descriptor
	Invoke(ctx context.Context, name string) (*domain.Result, error)
	History(ctx context.Context, limit int) ([]domain.Record, error)
}

var _ Host = (*tether.Host)(nil)

// Server wraps a Host and exposes it as an MCP Server.
type Server struct {
	host      Host
	logger    *slog.Logger
	mcpServer *server.MCPServer

	mu    sync.Mutex
	tools []string
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance with one tool per registered command.
func NewServer(host Host, opts ...Option) *Server {
	s := &Server{
		host:   host,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("tether-mcp", strings.TrimSpace(tether.Version),
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Sync()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tools returns the names of the exposed tools.
func (s *Server) Tools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tools...)
}

// Sync replaces the tool set with the host's current commands.
func (s *Server) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tools) > 0 {
		s.mcpServer.DeleteTools(s.tools...)
	}

	cmds := s.host.Commands()
	s.tools = s.tools[:0]
	for _, c := range cmds {
		desc := c.Description
		if desc == "" {
			desc = fmt.Sprintf("Run the %q command and return its output.", c.Name)
		}
		tool := mcp.NewTool(c.Name, mcp.WithDescription(desc))
		s.mcpServer.AddTool(tool, s.invokeHandler(c.Name))
		s.tools = append(s.tools, c.Name)
	}
	s.logger.Debug("mcp tools synced", "count", len(s.tools))
}

// invokeHandler builds the tool handler for one command. Invocation failures
// become tool errors so the client sees them as results.
func (s *Server) invokeHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := s.host.Invoke(ctx, name)
		if err != nil {
			s.logger.Warn("mcp invoke failed", "command", name, "err", err)
			msg := err.Error()
			var exitErr *domain.ExitError
			if errors.As(err, &exitErr) && exitErr.Stderr != "" {
				msg += "\n" + exitErr.Stderr
			}
			return mcp.NewToolResultError(msg), nil
		}
		return mcp.NewToolResultText(res.Output), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CommandsURI, "Registered Commands",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(CommandsURI, s.host.Commands())
	})

	s.mcpServer.AddResource(mcp.NewResource(HistoryURI, "Recent Invocations",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		recs, err := s.host.History(ctx, historyResourceLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		return jsonResource(HistoryURI, recs)
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
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
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Package http exposes a tether host as a JSON API a webview frontend can call.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/tether"
	"github.com/aretw0/tether/api"
	"github.com/aretw0/tether/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
)

// DefaultHistoryLimit is used when /history is called without a limit.
const DefaultHistoryLimit = 50

// Host is the part of tether.Host the HTTP surface depends on.
type Host interface {
	Commands() []domain.Descriptor
	Describe(name string) (domain.Descriptor, bool)
	Invoke(ctx context.Context, name string) (*domain.Result, error)
	History(ctx context.Context, limit int) ([]domain.Record, error)
}

var _ Host = (*tether.Host)(nil)

// Server holds the request handlers.
type Server struct {
	Host     Host
	logger   *slog.Logger
	metrics  http.Handler
	frontend string
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithFrontend serves the static files in dir at /.
func WithFrontend(dir string) Option {
	return func(s *Server) {
		s.frontend = dir
	}
}

// NewHandler creates the HTTP handler for host.
func NewHandler(host Host, opts ...Option) http.Handler {
	s := &Server{
		Host:   host,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(api.Raw())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/commands", s.ListCommands)
	r.Get("/commands/{name}", s.GetCommand)
	r.Post("/commands/{name}/invoke", s.InvokeCommand)
	r.Get("/history", s.GetHistory)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	if s.frontend != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.frontend)))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Tether API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	ExitCode *int   `json:"exit_code,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := api.Load(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "tether-http",
		"version":     strings.TrimSpace(tether.Version),
		"api_version": apiVersion,
	})
}

// ListCommands handles GET /commands.
func (s *Server) ListCommands(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Host.Commands())
}

// GetCommand handles GET /commands/{name}.
func (s *Server) GetCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	desc, ok := s.Host.Describe(name)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: "command not found: " + name,
			Code:  "not_found",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, desc)
}

// InvokeCommand handles POST /commands/{name}/invoke.
func (s *Server) InvokeCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	res, err := s.Host.Invoke(r.Context(), name)
	if err != nil {
		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("invoke failed", "command", name, "err", err)
		} else {
			s.logger.Warn("invoke rejected", "command", name, "code", body.Code, "err", err)
		}
		s.writeJSON(w, status, body)
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

// GetHistory handles GET /history?limit=N.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "bad_request"})
		return
	}

	n := DefaultHistoryLimit
	if limit != nil {
		if *limit < 0 {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must not be negative", Code: "bad_request"})
			return
		}
		n = *limit
	}

	recs, err := s.Host.History(r.Context(), n)
	if err != nil {
		s.logger.Error("history failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "internal"})
		return
	}
	if recs == nil {
		recs = []domain.Record{}
	}
	s.writeJSON(w, http.StatusOK, recs)
}

// classify maps an invocation error to a status code and body.
func classify(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error()}

	var exitErr *domain.ExitError
	switch {
	case errors.As(err, &exitErr):
		code := exitErr.Code
		body.Code, body.ExitCode, body.Stderr = "nonzero_exit", &code, exitErr.Stderr
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, domain.ErrCommandNotFound):
		body.Code = "not_found"
		return http.StatusNotFound, body
	case errors.Is(err, domain.ErrBusy):
		body.Code = "busy"
		return http.StatusServiceUnavailable, body
	case errors.Is(err, domain.ErrTimeout):
		body.Code = "timeout"
		return http.StatusGatewayTimeout, body
	case errors.Is(err, domain.ErrInterpreterNotFound):
		body.Code = "interpreter_not_found"
		return http.StatusFailedDependency, body
	case errors.Is(err, domain.ErrScriptNotFound):
		body.Code = "script_not_found"
		return http.StatusFailedDependency, body
	case errors.Is(err, domain.ErrInvalidEncoding):
		body.Code = "invalid_encoding"
	case errors.Is(err, context.Canceled):
		body.Code = "canceled"
	default:
		body.Code = "internal"
	}
	return http.StatusInternalServerError, body
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

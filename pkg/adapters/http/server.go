package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/qtree/internal/compiler"
	"github.com/aretw0/qtree/internal/presentation/graph"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// FunctionLister lists the functions a RemoteCaller serves.
type FunctionLister interface {
	Names() []string
}

// CallRequest is the body of POST /rpc/{namespace}/{method}.
type CallRequest struct {
	Params  any            `json:"params,omitempty"`
	Answers domain.Answers `json:"answers,omitempty"`
}

// CallResponse is the body of a successful call.
type CallResponse struct {
	Result any `json:"result"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server exposes a RemoteCaller, and optionally a tree loader, over HTTP.
type Server struct {
	Caller    ports.RemoteCaller
	Functions FunctionLister
	Loader    ports.TreeLoader
	Logger    *slog.Logger

	mounts map[string]http.Handler
}

// Option configures the server.
type Option func(*Server)

// WithFunctionLister publishes the function names on GET /functions.
func WithFunctionLister(l FunctionLister) Option {
	return func(s *Server) { s.Functions = l }
}

// WithTreeLoader serves trees on GET /trees.
func WithTreeLoader(l ports.TreeLoader) Option {
	return func(s *Server) { s.Loader = l }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// WithMount serves an extra handler (e.g. /metrics) outside the OpenAPI document.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) { s.mounts[pattern] = h }
}

// NewHandler creates the HTTP handler for the caller.
// Requests matching the embedded OpenAPI document are validated against it.
func NewHandler(ctx context.Context, caller ports.RemoteCaller, opts ...Option) (http.Handler, error) {
	s := &Server{
		Caller: caller,
		Logger: slog.New(slog.DiscardHandler),
		mounts: make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Functions == nil {
		if l, ok := caller.(FunctionLister); ok {
			s.Functions = l
		}
	}

	doc, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	router, err := newRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI router: %w", err)
	}

	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Use(validateRequests(router))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/functions", s.ListFunctions)
	r.Get("/trees", s.ListTrees)
	r.Get("/trees/{id}", s.GetTree)
	r.Get("/trees/{id}/graph", s.GetTreeGraph)
	r.Post("/rpc/{namespace}/{method}", s.CallFunction)
	for pattern, h := range s.mounts {
		r.Handle(pattern, h)
	}

	return r, nil
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

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>qtree API Documentation</title>
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

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListFunctions handles GET /functions.
func (s *Server) ListFunctions(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if s.Functions != nil {
		names = append(names, s.Functions.Names()...)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"functions": names})
}

// ListTrees handles GET /trees.
func (s *Server) ListTrees(w http.ResponseWriter, r *http.Request) {
	if s.Loader == nil {
		writeError(w, http.StatusNotFound, errors.New("no tree source configured"))
		return
	}
	ids, err := s.Loader.ListTrees(r.Context())
	if err != nil {
		s.Logger.Error("ListTrees failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"trees": ids})
}

// GetTree handles GET /trees/{id}.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	root, ok := s.loadTree(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, compiler.Export(root))
}

// GetTreeGraph handles GET /trees/{id}/graph.
func (s *Server) GetTreeGraph(w http.ResponseWriter, r *http.Request) {
	root, ok := s.loadTree(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(graph.GenerateMermaid(root, nil)))
}

func (s *Server) loadTree(w http.ResponseWriter, r *http.Request) (*domain.QTreeNode, bool) {
	if s.Loader == nil {
		writeError(w, http.StatusNotFound, errors.New("no tree source configured"))
		return nil, false
	}

	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	raw, err := s.Loader.GetTree(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	root, err := compiler.Load(raw)
	if err != nil {
		s.Logger.Warn("Tree failed to compile", "tree", id, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return nil, false
	}
	return root, true
}

// CallFunction handles POST /rpc/{namespace}/{method}.
func (s *Server) CallFunction(w http.ResponseWriter, r *http.Request) {
	var namespace, method string
	opts := runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true}
	if err := runtime.BindStyledParameterWithOptions("simple", "namespace", chi.URLParam(r, "namespace"), &namespace, opts); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := runtime.BindStyledParameterWithOptions("simple", "method", chi.URLParam(r, "method"), &method, opts); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var body CallRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.Logger.Warn("CallFunction: Invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	fn := domain.Func{Namespace: namespace, Method: method, Params: body.Params}
	result, err := s.Caller.Call(r.Context(), fn, body.Answers)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnknownFunction) {
			status = http.StatusNotFound
		}
		s.Logger.Error("Remote function failed", "function", fn.String(), "error", err)
		writeError(w, status, err)
		return
	}

	s.Logger.Debug("Remote function served", "function", fn.String())
	writeJSON(w, http.StatusOK, CallResponse{Result: result})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

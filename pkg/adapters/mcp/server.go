package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/qtree"
	"github.com/aretw0/qtree/internal/presentation/graph"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
	"github.com/aretw0/qtree/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const treeURIPrefix = "qtree://trees/"

// NextResponse is the outcome of answering a tree headlessly.
// Status is "pending" while a question still needs an answer.
type NextResponse struct {
	Status  string         `json:"status" jsonschema_description:"pending, completed or cancelled"`
	Prompt  *runner.Prompt `json:"prompt,omitempty" jsonschema_description:"The next question to answer when status is pending"`
	Answers domain.Answers `json:"answers,omitempty" jsonschema_description:"Every collected answer when status is completed"`
}

// TreesResponse lists the trees a loader serves.
type TreesResponse struct {
	Trees []string `json:"trees" jsonschema_description:"IDs of the available trees"`
}

// FunctionsResponse lists the remote functions a host serves.
type FunctionsResponse struct {
	Functions []string `json:"functions" jsonschema_description:"namespace.method names"`
}

// GraphResponse carries a Mermaid flowchart of a tree.
type GraphResponse struct {
	ID      string `json:"id"`
	Mermaid string `json:"mermaid" jsonschema_description:"Mermaid flowchart source"`
}

// CallResponse wraps the result of a remote function.
type CallResponse struct {
	Result any `json:"result"`
}

// StatusPending marks a headless run stopped at an unanswered question.
const StatusPending = "pending"

// FunctionLister reports the remote functions a caller can serve.
type FunctionLister interface {
	Names() []string
}

// Server exposes qtree trees and functions as an MCP Server.
type Server struct {
	loader     ports.TreeLoader
	caller     ports.RemoteCaller
	functions  FunctionLister
	engineOpts []qtree.Option
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithRemoteCaller serves call_function and the func questions of headless runs.
func WithRemoteCaller(caller ports.RemoteCaller) Option {
	return func(s *Server) { s.caller = caller }
}

// WithFunctionLister serves list_functions.
func WithFunctionLister(l FunctionLister) Option {
	return func(s *Server) { s.functions = l }
}

// WithEngineOptions configures the engine used by next_question.
func WithEngineOptions(opts ...qtree.Option) Option {
	return func(s *Server) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance over the trees of loader.
func NewServer(loader ports.TreeLoader, opts ...Option) *Server {
	s := &Server{
		loader:    loader,
		logger:    slog.New(slog.DiscardHandler),
		mcpServer: server.NewMCPServer("qtree-mcp", strings.TrimSpace(qtree.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
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
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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

func (s *Server) registerTools() {
	// TOOL: list_trees
	s.mcpServer.AddTool(mcp.NewTool("list_trees",
		mcp.WithDescription("List the question trees that can be answered."),
		mcp.WithOutputSchema[TreesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListTrees))

	// TOOL: list_functions
	s.mcpServer.AddTool(mcp.NewTool("list_functions",
		mcp.WithDescription("List the remote functions trees may call."),
		mcp.WithOutputSchema[FunctionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListFunctions))

	// TOOL: inspect_tree
	s.mcpServer.AddTool(mcp.NewTool("inspect_tree",
		mcp.WithDescription("Get the full definition of a tree for introspection."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("ID of the tree")),
	), s.handleInspectTree)

	// TOOL: graph_tree
	s.mcpServer.AddTool(mcp.NewTool("graph_tree",
		mcp.WithDescription("Render a tree as a Mermaid flowchart, highlighting answered questions."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("ID of the tree")),
		mcp.WithString("answers", mcp.Description("JSON object of answers collected so far (optional)")),
		mcp.WithString("current", mcp.Description("Name of the question being answered (optional)")),
		mcp.WithOutputSchema[GraphResponse](),
	), mcp.NewStructuredToolHandler(s.handleGraphTree))

	// TOOL: next_question
	s.mcpServer.AddTool(mcp.NewTool("next_question",
		mcp.WithDescription("Replay the given answers through a tree and return the next question to ask, or the final answers."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("ID of the tree")),
		mcp.WithString("answers", mcp.Description("JSON object of answers collected so far (optional)")),
		mcp.WithOutputSchema[NextResponse](),
	), mcp.NewStructuredToolHandler(s.handleNextQuestion))

	// TOOL: call_function
	s.mcpServer.AddTool(mcp.NewTool("call_function",
		mcp.WithDescription("Invoke a remote function by namespace and method."),
		mcp.WithString("namespace", mcp.Required(), mcp.Description("Function namespace")),
		mcp.WithString("method", mcp.Required(), mcp.Description("Function method")),
		mcp.WithString("params", mcp.Description("JSON value passed as params (optional)")),
		mcp.WithString("answers", mcp.Description("JSON object of answers (optional)")),
		mcp.WithOutputSchema[CallResponse](),
	), mcp.NewStructuredToolHandler(s.handleCallFunction))
}

// Handler methods for structured tools

func (s *Server) handleListTrees(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TreesResponse, error) {
	ids, err := s.loader.ListTrees(ctx)
	if err != nil {
		return TreesResponse{}, fmt.Errorf("list trees failed: %w", err)
	}
	sort.Strings(ids)
	return TreesResponse{Trees: ids}, nil
}

func (s *Server) handleListFunctions(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FunctionsResponse, error) {
	if s.functions == nil {
		return FunctionsResponse{Functions: []string{}}, nil
	}
	return FunctionsResponse{Functions: s.functions.Names()}, nil
}

func (s *Server) handleInspectTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("tree_id", "")
	data, err := s.exportTree(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGraphTree(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GraphResponse, error) {
	id, _ := args["tree_id"].(string)
	root, err := qtree.LoadTree(ctx, s.loader, id)
	if err != nil {
		return GraphResponse{}, err
	}

	answers, err := parseAnswers(args)
	if err != nil {
		return GraphResponse{}, err
	}
	current, _ := args["current"].(string)

	var overlay *graph.GraphOverlay
	if len(answers) > 0 || current != "" {
		overlay = &graph.GraphOverlay{CurrentNode: current}
		for name := range answers {
			overlay.Answered = append(overlay.Answered, name)
		}
		sort.Strings(overlay.Answered)
	}
	return GraphResponse{ID: id, Mermaid: graph.GenerateMermaid(root, overlay)}, nil
}

func (s *Server) handleNextQuestion(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (NextResponse, error) {
	id, _ := args["tree_id"].(string)
	root, err := qtree.LoadTree(ctx, s.loader, id)
	if err != nil {
		return NextResponse{}, err
	}
	answers, err := parseAnswers(args)
	if err != nil {
		return NextResponse{}, err
	}
	return s.next(ctx, root, answers)
}

// next runs root with answers seeded and stops at the first question that
// still needs input. Seeded answers that fail validation come back as the
// pending question with LastFailure set.
func (s *Server) next(ctx context.Context, root *domain.QTreeNode, answers domain.Answers) (NextResponse, error) {
	var pending *runner.Prompt
	asker := ports.AskerFunc(func(ctx context.Context, req ports.AskRequest) (ports.Answer, error) {
		p := runner.Describe(req)
		pending = &p
		return ports.Cancel(), nil
	})

	opts := []qtree.Option{qtree.WithLogger(s.logger)}
	if s.caller != nil {
		opts = append(opts, qtree.WithRemoteCaller(s.caller))
	}
	opts = append(opts, s.engineOpts...)

	res, err := qtree.New(asker, opts...).Run(ctx, root, answers)
	if err != nil {
		return NextResponse{}, fmt.Errorf("run failed: %w", err)
	}
	if pending != nil {
		return NextResponse{Status: StatusPending, Prompt: pending}, nil
	}
	return NextResponse{Status: string(res.Status), Answers: res.Answers}, nil
}

func (s *Server) handleCallFunction(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CallResponse, error) {
	if s.caller == nil {
		return CallResponse{}, errors.New("no remote caller configured")
	}
	ns, _ := args["namespace"].(string)
	method, _ := args["method"].(string)

	fn := domain.Func{Namespace: ns, Method: method}
	if raw, ok := args["params"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &fn.Params); err != nil {
			return CallResponse{}, fmt.Errorf("invalid params: %w", err)
		}
	}
	answers, err := parseAnswers(args)
	if err != nil {
		return CallResponse{}, err
	}

	result, err := s.caller.Call(ctx, fn, answers)
	if err != nil {
		s.logger.Warn("MCP call_function failed", "function", fn.String(), "error", err)
		return CallResponse{}, fmt.Errorf("call %s failed: %w", fn, err)
	}
	return CallResponse{Result: result}, nil
}

func parseAnswers(args map[string]interface{}) (domain.Answers, error) {
	answers := domain.Answers{}
	raw, ok := args["answers"].(string)
	if !ok || raw == "" {
		return answers, nil
	}
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return nil, fmt.Errorf("invalid answers: %w", err)
	}
	for name, v := range answers {
		clean, err := runner.SanitizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("answer %q rejected: %w", name, err)
		}
		answers[name] = clean
	}
	return answers, nil
}

func (s *Server) exportTree(ctx context.Context, id string) ([]byte, error) {
	root, err := qtree.LoadTree(ctx, s.loader, id)
	if err != nil {
		return nil, err
	}
	return qtree.Export(root)
}

func (s *Server) registerResources() {
	// EXPOSE: qtree://trees/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(treeURIPrefix+"{id}", "Question Tree Definition",
		mcp.WithTemplateMIMEType("application/json"),
	), s.readTree)
}

func (s *Server) readTree(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimPrefix(uri, treeURIPrefix)
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid tree URI: %s", uri)
	}

	data, err := s.exportTree(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

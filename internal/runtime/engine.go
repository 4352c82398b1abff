package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
	"github.com/aretw0/qtree/pkg/validation"
)

// errCancelled unwinds the recursion when the asker reports a cancellation.
var errCancelled = errors.New("traversal cancelled")

// ErrUnknownSelectionHandler is wrapped in a LocalCallError when a multi-select
// names a handler that is not registered.
var ErrUnknownSelectionHandler = errors.New("selection handler is not registered")

// Engine walks question trees. It keeps no state between runs, so one Engine
// can serve many traversals as long as each gets its own answer map.
type Engine struct {
	asker       ports.Asker
	remote      ports.RemoteCaller
	fs          ports.FileSystem
	locals      ports.LocalValidators
	selections  ports.SelectionHandlers
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	maxAttempts int

	evaluator *validation.Evaluator
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithRemoteCaller sets the collaborator for dynamic options, defaults,
// remote validations and func questions.
func WithRemoteCaller(rc ports.RemoteCaller) EngineOption {
	return func(e *Engine) { e.remote = rc }
}

// WithFileSystem sets the collaborator for file validations.
func WithFileSystem(fs ports.FileSystem) EngineOption {
	return func(e *Engine) { e.fs = fs }
}

// WithLocalValidators sets the registry for localFunc validations.
func WithLocalValidators(lv ports.LocalValidators) EngineOption {
	return func(e *Engine) { e.locals = lv }
}

// WithSelectionHandlers sets the registry for multi-select change handlers.
func WithSelectionHandlers(sh ports.SelectionHandlers) EngineOption {
	return func(e *Engine) { e.selections = sh }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) { e.hooks = hooks }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxAttempts caps how many times one question is asked before the
// traversal fails with domain.ErrTooManyAttempts. Zero means unlimited.
func WithMaxAttempts(n int) EngineOption {
	return func(e *Engine) { e.maxAttempts = n }
}

// NewEngine creates an engine that prompts through asker.
func NewEngine(asker ports.Asker, opts ...EngineOption) *Engine {
	e := &Engine{
		asker:  asker,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	evalOpts := []validation.Option{
		validation.WithFileSystem(e.fs),
		validation.WithLocalValidators(e.locals),
		validation.WithLogger(e.logger),
	}
	if e.remote != nil {
		evalOpts = append(evalOpts, validation.WithRemoteCaller(ports.RemoteCallerFunc(e.call)))
	}
	e.evaluator = validation.New(evalOpts...)
	return e
}

// Run traverses root depth-first over a copy of answers, so the caller's map
// is never modified. Keys present in answers count as pre-seeded answers:
// their questions are not asked unless the value fails validation.
//
// Run returns a completed Result with the answers, a cancelled Result without
// answers, or an error. Structural problems are reported before anything is asked.
func (e *Engine) Run(ctx context.Context, root *domain.QTreeNode, answers domain.Answers) (domain.Result, error) {
	if root == nil {
		return domain.Result{}, &domain.StructuralError{Reason: "tree is empty"}
	}
	if err := root.Validate(); err != nil {
		return domain.Result{}, err
	}
	if e.asker == nil {
		return domain.Result{}, errors.New("engine has no asker")
	}
	answers = answers.Clone()

	w := &walk{engine: e, answers: answers}
	if _, err := w.visit(ctx, root, parentValue{}); err != nil {
		if errors.Is(err, errCancelled) {
			e.logger.Info("traversal cancelled")
			return domain.Result{Status: domain.StatusCancelled}, nil
		}
		return domain.Result{}, err
	}
	return domain.Result{Status: domain.StatusCompleted, Answers: answers}, nil
}

// call invokes the remote caller with hooks and error wrapping.
func (e *Engine) call(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
	if e.remote == nil {
		return nil, &domain.RemoteCallError{Namespace: fn.Namespace, Method: fn.Method, Err: errors.New("no remote caller configured")}
	}
	start := time.Now()
	e.emitRemote(ctx, e.hooks.OnRemoteCall, domain.EventRemoteCall, fn, 0, false)
	e.logger.Debug("remote call", "func", fn.String())

	res, err := e.remote.Call(ctx, fn, answers.Clone())

	e.emitRemote(ctx, e.hooks.OnRemoteReturn, domain.EventRemoteReturn, fn, time.Since(start), err != nil)
	if err != nil {
		var rce *domain.RemoteCallError
		if errors.As(err, &rce) {
			return nil, err
		}
		return nil, &domain.RemoteCallError{Namespace: fn.Namespace, Method: fn.Method, Err: err}
	}
	return res, nil
}

func (e *Engine) selectionHandler(name string) (ports.SelectionHandler, error) {
	if name == "" {
		return nil, nil
	}
	if e.selections != nil {
		if h, ok := e.selections.SelectionHandler(name); ok {
			return h, nil
		}
	}
	return nil, &domain.LocalCallError{Validator: name, Err: ErrUnknownSelectionHandler}
}

func questionError(name string, err error) error {
	return fmt.Errorf("question %q: %w", name, err)
}

package qtree

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/qtree/internal/compiler"
	"github.com/aretw0/qtree/internal/runtime"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
	"github.com/aretw0/qtree/pkg/registry"
)

// DefaultLockTTL bounds how long a run may hold its task lock.
const DefaultLockTTL = 10 * time.Minute

// Engine is the high-level entry point for the qtree library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger

	locker  ports.Locker
	lockKey string
	lockTTL time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRemoteCaller sets the collaborator for dynamic options, dynamic
// defaults, func questions and remote validation.
func WithRemoteCaller(rc ports.RemoteCaller) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRemoteCaller(rc))
	}
}

// WithFileSystem sets the collaborator for file existence rules.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithFileSystem(fs))
	}
}

// WithLocalValidators sets the lookup for named local validators.
func WithLocalValidators(lv ports.LocalValidators) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLocalValidators(lv))
	}
}

// WithSelectionHandlers sets the lookup for multi-select selection handlers.
func WithSelectionHandlers(sh ports.SelectionHandlers) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithSelectionHandlers(sh))
	}
}

// WithRegistry serves remote functions, local validators and selection
// handlers from one registry.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts,
			runtime.WithRemoteCaller(r),
			runtime.WithLocalValidators(r),
			runtime.WithSelectionHandlers(r),
		)
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxAttempts aborts a question after n rejected answers. Zero means no limit.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxAttempts(n))
	}
}

// WithLocker guards every run with a task lock on key. A run that finds the
// key held fails with domain.ErrConcurrentTask. A zero ttl means DefaultLockTTL.
func WithLocker(locker ports.Locker, key string, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockKey = key
		e.lockTTL = ttl
	}
}

// New initializes a new Engine that prompts through asker.
func New(asker ports.Asker, opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}
	if eng.lockTTL == 0 {
		eng.lockTTL = DefaultLockTTL
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(asker, runtimeOpts...)
	return eng
}

// Run traverses the tree rooted at root. Seeded answers are visible to
// conditions and remote functions and are validated instead of prompted.
// The seed map itself is never modified, so it can be shared between runs.
// The returned Result is either completed with every collected answer or
// cancelled with no answers.
func (e *Engine) Run(ctx context.Context, root *domain.QTreeNode, answers domain.Answers) (domain.Result, error) {
	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, e.lockKey, e.lockTTL)
		if err != nil {
			return domain.Result{}, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("Failed to release task lock", "key", e.lockKey, "error", err)
			}
		}()
	}
	return e.runtime.Run(ctx, root, answers)
}

// Load compiles a YAML or JSON tree definition.
func Load(data []byte) (*domain.QTreeNode, error) {
	return compiler.Load(data)
}

// LoadFile compiles the tree definition stored at path.
func LoadFile(path string) (*domain.QTreeNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}
	root, err := compiler.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// LoadTree fetches tree id from loader and compiles it.
func LoadTree(ctx context.Context, loader ports.TreeLoader, id string) (*domain.QTreeNode, error) {
	data, err := loader.GetTree(ctx, id)
	if err != nil {
		return nil, err
	}
	root, err := compiler.Load(data)
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", id, err)
	}
	return root, nil
}

// Export serializes a tree in the JSON document format Load accepts.
func Export(root *domain.QTreeNode) ([]byte, error) {
	return json.MarshalIndent(compiler.Export(root), "", "  ")
}

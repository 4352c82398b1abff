package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/qtree"
	"github.com/aretw0/qtree/pkg/adapters/file"
	httpadapter "github.com/aretw0/qtree/pkg/adapters/http"
	"github.com/aretw0/qtree/pkg/adapters/process"
	redisadapter "github.com/aretw0/qtree/pkg/adapters/redis"
	"github.com/aretw0/qtree/pkg/observability"
	"github.com/aretw0/qtree/pkg/ports"
	"github.com/aretw0/qtree/pkg/registry"
	"github.com/aretw0/qtree/pkg/runner"
)

// DefaultCallTimeout bounds remote and process calls that set no timeout.
const DefaultCallTimeout = 30 * time.Second

// Functions is the set of remote functions and validators a command can serve.
type Functions struct {
	Registry *registry.Registry
	Process  *process.Runner
	Caller   ports.RemoteCaller
}

// Names lists every function the set can serve, without validators.
func (f *Functions) Names() []string {
	names := f.Registry.Names()
	if f.Process != nil {
		names = append(names, f.Process.Names()...)
	}
	return names
}

// Validators lists every validator name served by the process runner.
func (f *Functions) Validators() []string {
	if f.Process == nil {
		return nil
	}
	var names []string
	for _, fn := range f.Process.Functions() {
		if fn.Validator != "" {
			names = append(names, fn.Validator)
		}
	}
	return names
}

// LocalValidators returns the validator lookup for the engine.
func (f *Functions) LocalValidators() ports.LocalValidators {
	if f.Process == nil {
		return f.Registry
	}
	return registry.ValidatorLookups{f.Registry, f.Process}
}

// loadFunctions builds the function set: in-process registry first, then
// the allow-listed commands of the functions file, then the remote server.
// A missing default functions file is not an error.
func loadFunctions(opts Options) (*Functions, error) {
	fns := &Functions{Registry: registry.NewRegistry()}
	timeout := opts.CallTimeout
	if timeout == 0 {
		timeout = DefaultCallTimeout
	}

	path := opts.FunctionsPath
	if path == "" && opts.Tree != "" {
		path = filepath.Join(treeDir(opts), DefaultFunctionsFile)
	}
	if path != "" {
		if opts.FunctionsPath != "" {
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("functions file: %w", err)
			}
		}
		configs, err := process.LoadFunctions(path)
		if err != nil {
			return nil, err
		}
		if len(configs) > 0 {
			fns.Process = process.NewRunner(
				process.WithRegistry(configs),
				process.WithBaseDir(filepath.Dir(path)),
				process.WithDefaultTimeout(timeout),
			)
		}
	}

	var fallbacks []ports.RemoteCaller
	if fns.Process != nil {
		fallbacks = append(fallbacks, fns.Process)
	}
	if opts.RemoteURL != "" {
		fallbacks = append(fallbacks, httpadapter.NewClient(opts.RemoteURL, httpadapter.WithTimeout(timeout)))
	}
	if len(fallbacks) > 0 {
		fns.Registry.SetFallback(registry.FirstOf(fallbacks...))
	}
	fns.Caller = fns.Registry
	return fns, nil
}

// createEngine initializes a qtree engine with standard CLI conventions.
// confirmer may be nil; a text asker on Stdin is used when confirmations are requested.
func createEngine(ctx context.Context, opts Options, asker ports.Asker, confirmer runner.Confirmer, fns *Functions, logger *slog.Logger) (*qtree.Engine, error) {
	caller := fns.Caller
	if opts.ConfirmFunctions {
		if confirmer == nil {
			if opts.JSON {
				return nil, errors.New("--confirm-functions cannot be used with --json")
			}
			confirmer = runner.NewTextAsker(opts.Stdin, opts.Stderr)
		}
		caller = runner.ConfirmingCaller(caller, confirmer)
	}

	engineOpts := []qtree.Option{
		qtree.WithLogger(logger),
		qtree.WithRemoteCaller(caller),
		qtree.WithLocalValidators(fns.LocalValidators()),
		qtree.WithSelectionHandlers(fns.Registry),
		qtree.WithFileSystem(file.NewFS("")),
		qtree.WithMaxAttempts(opts.MaxAttempts),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, qtree.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}

	if opts.LockKey != "" {
		locker, err := createLocker(ctx, opts)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, qtree.WithLocker(locker, opts.LockKey, opts.LockTTL))
	}

	return qtree.New(asker, engineOpts...), nil
}

// createLocker returns a Redis locker when an address is configured, and a
// lock-file locker in the temp directory otherwise.
func createLocker(ctx context.Context, opts Options) (ports.Locker, error) {
	if opts.RedisAddr != "" {
		locker, err := redisadapter.Dial(ctx, opts.RedisAddr, os.Getenv(EnvRedisPass), 0)
		if err != nil {
			return nil, fmt.Errorf("error initializing lock: %w", err)
		}
		return locker, nil
	}
	return file.NewLocker(filepath.Join(os.TempDir(), "qtree-locks")), nil
}

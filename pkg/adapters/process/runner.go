package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// ErrNotRegistered is returned when a function has no registered command.
var ErrNotRegistered = domain.ErrUnknownFunction

// Runner executes local processes on behalf of remote functions and local
// validators. It follows a strict registry pattern: only registered
// commands run.
//
// The process receives a JSON request on stdin and answers on stdout.
// Output that parses as JSON is returned decoded; anything else is returned
// as a trimmed string. A non-zero exit status is an error carrying stderr.
type Runner struct {
	registry map[string]FunctionConfig
	baseDir  string
	timeout  time.Duration
}

// Request is the JSON document written to the process's stdin.
type Request struct {
	Namespace string         `json:"namespace,omitempty"`
	Method    string         `json:"method,omitempty"`
	Validator string         `json:"validator,omitempty"`
	Params    any            `json:"params,omitempty"`
	Value     any            `json:"value,omitempty"`
	Answers   domain.Answers `json:"answers,omitempty"`
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(functions map[string]FunctionConfig) RunnerOption {
	return func(r *Runner) {
		for _, fn := range functions {
			r.registry[fn.Key()] = fn
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithDefaultTimeout bounds every execution that has no timeout of its own.
func WithDefaultTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]FunctionConfig),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command for namespace.method to the allow-list.
func (r *Runner) Register(namespace, method, command string, args ...string) {
	fn := FunctionConfig{Namespace: namespace, Method: method, Command: command, Args: args}
	r.registry[fn.Key()] = fn
}

// RegisterValidator adds a trusted command serving the named local validator.
func (r *Runner) RegisterValidator(name, command string, args ...string) {
	r.registry[name] = FunctionConfig{Validator: name, Command: command, Args: args}
}

// Functions lists the registered functions sorted by key.
func (r *Runner) Functions() []FunctionConfig {
	out := make([]FunctionConfig, 0, len(r.registry))
	for _, fn := range r.registry {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Names lists the registered remote functions, sorted.
func (r *Runner) Names() []string {
	var names []string
	for _, fn := range r.Functions() {
		if fn.Validator == "" {
			names = append(names, fn.Key())
		}
	}
	return names
}

// Call implements ports.RemoteCaller.
func (r *Runner) Call(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
	cfg, ok := r.registry[fn.String()]
	if !ok || cfg.Validator != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, fn)
	}
	return r.execute(ctx, cfg, Request{
		Namespace: fn.Namespace,
		Method:    fn.Method,
		Params:    fn.Params,
		Answers:   answers,
	})
}

// LocalValidator implements ports.LocalValidators for validator entries.
func (r *Runner) LocalValidator(name string) (ports.LocalValidator, bool) {
	cfg, ok := r.registry[name]
	if !ok || cfg.Validator == "" {
		return nil, false
	}
	return ports.LocalValidatorFunc(func(ctx context.Context, value any) (string, error) {
		out, err := r.execute(ctx, cfg, Request{Validator: name, Value: value})
		if err != nil {
			return "", err
		}
		if out == nil {
			return "", nil
		}
		if s, ok := out.(string); ok {
			return s, nil
		}
		return fmt.Sprint(out), nil
	}), true
}

func (r *Runner) execute(ctx context.Context, cfg FunctionConfig, req Request) (any, error) {
	timeout := time.Duration(cfg.Timeout)
	if timeout == 0 {
		timeout = r.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = r.baseDir
	cmd.Stdin = bytes.NewReader(input)
	cmd.Env = append(cmd.Environ(), environment(cfg, req)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("execution of %s interrupted: %w", cfg.Key(), ctx.Err())
		}
		return nil, fmt.Errorf("execution of %s failed: %w. Stderr: %s", cfg.Key(), err, strings.TrimSpace(stderr.String()))
	}

	trimmed := strings.TrimSpace(stdout.String())
	if trimmed == "" {
		return nil, nil
	}

	// Output that looks like JSON is decoded; plain text is returned as is.
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, `"`) {
		var decoded any
		if jsonErr := json.Unmarshal([]byte(trimmed), &decoded); jsonErr == nil {
			return decoded, nil
		}
	}
	return trimmed, nil
}

// environment exposes the configured env plus top-level params as
// QTREE_PARAM_<NAME> variables for scripts that do not read stdin.
func environment(cfg FunctionConfig, req Request) []string {
	env := []string{}
	for k, v := range cfg.Environment {
		env = append(env, k+"="+v)
	}
	if req.Namespace != "" {
		env = append(env, "QTREE_NAMESPACE="+req.Namespace, "QTREE_METHOD="+req.Method)
	}

	params, _ := req.Params.(map[string]any)
	for k, v := range params {
		var val string
		switch v.(type) {
		case string, int, int64, float64, bool:
			val = fmt.Sprintf("%v", v)
		case nil:
			val = ""
		default:
			if encoded, err := json.Marshal(v); err == nil {
				val = string(encoded)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, fmt.Sprintf("QTREE_PARAM_%s=%s", strings.ToUpper(k), val))
	}
	return env
}

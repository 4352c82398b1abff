package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/qtree"
	"github.com/aretw0/qtree/internal/logging"
	"github.com/aretw0/qtree/pkg/adapters/file"
	loamadapter "github.com/aretw0/qtree/pkg/adapters/loam"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
	stop   sync.Once
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}
	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() { signal.Stop(sc.sigCh) })
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger on Stderr.
// Without --debug or a log level it discards everything.
func createLogger(opts Options) (*slog.Logger, error) {
	if opts.Debug {
		return logging.NewWithOptions(opts.Stderr, slog.LevelDebug, logging.Format(opts.LogFormat)), nil
	}
	if opts.LogLevel == "" {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithOptions(opts.Stderr, level, logging.Format(opts.LogFormat)), nil
}

// OpenLoader returns the tree loader for dir: a Loam repository of Markdown
// documents when useLoam is set, a directory of YAML and JSON files otherwise.
func OpenLoader(dir string, useLoam bool) (ports.TreeLoader, error) {
	if dir == "" {
		dir = "."
	}
	if useLoam {
		return loamadapter.Open(dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("tree directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tree directory: %s is not a directory", dir)
	}
	return file.NewLoader(dir), nil
}

// loadTree compiles the tree named by opts: a file path, or an ID within Dir.
func loadTree(ctx context.Context, opts Options) (*domain.QTreeNode, error) {
	if opts.Tree == "" {
		return nil, errors.New("no tree given")
	}
	if opts.Dir == "" {
		return qtree.LoadFile(opts.Tree)
	}
	loader, err := OpenLoader(opts.Dir, opts.Loam)
	if err != nil {
		return nil, err
	}
	return qtree.LoadTree(ctx, loader, opts.Tree)
}

// treeDir is where functions.yaml is looked up by default.
func treeDir(opts Options) string {
	if opts.Dir != "" {
		return opts.Dir
	}
	return filepath.Dir(opts.Tree)
}

// loadAnswers reads pre-seeded answers from a YAML or JSON file.
func loadAnswers(path string) (domain.Answers, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}
	answers := domain.Answers{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &answers)
	} else {
		err = yaml.Unmarshal(data, &answers)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid answers file %s: %w", path, err)
	}
	return answers, nil
}

// writeAnswers prints answers as indented JSON to path, or to Stdout when path is empty.
func writeAnswers(opts Options, answers domain.Answers) error {
	data, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	data = append(data, '\n')
	if opts.OutPath == "" {
		_, err = opts.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.OutPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write answers: %w", err)
	}
	return nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(opts Options, format string, args ...any) {
	fmt.Fprintf(opts.Stderr, ">>> %s\n", fmt.Sprintf(format, args...))
}

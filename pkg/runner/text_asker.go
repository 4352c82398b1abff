package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// ContentRenderer transforms markdown descriptions before they are printed.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// TextAsker implements ports.Asker over a line-oriented terminal.
//
// Select options are numbered; an answer may be the number or the option ID.
// Multi-select answers are comma separated. An empty line takes the default.
// End of input (Ctrl+D) cancels the run.
type TextAsker struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	out          *termenv.Output
	readPassword func() (string, error)

	requests  chan struct{}
	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextAskerOption defines configuration for TextAsker.
type TextAskerOption func(*TextAsker)

// WithRenderer configures the description renderer.
func WithRenderer(renderer ContentRenderer) TextAskerOption {
	return func(a *TextAsker) {
		a.Renderer = renderer
	}
}

// WithPasswordReader replaces the echo-off reader used for password questions.
func WithPasswordReader(read func() (string, error)) TextAskerOption {
	return func(a *TextAsker) {
		a.readPassword = read
	}
}

// NewTextAsker creates an asker for standard text IO.
// When r is a terminal, password answers are read with echo disabled.
func NewTextAsker(r io.Reader, w io.Writer, opts ...TextAskerOption) *TextAsker {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	a := &TextAsker{
		Reader: bufio.NewReader(r),
		Writer: w,
		out:    termenv.NewOutput(w),
	}
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		a.readPassword = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(a.Writer)
			return string(b), err
		}
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// initPump starts the reader goroutine. It reads one line per request so
// that nothing is buffered while a password is read from the terminal.
func (a *TextAsker) initPump() {
	a.startOnce.Do(func() {
		a.requests = make(chan struct{})
		a.inputChan = make(chan inputResult)
		go func() {
			for range a.requests {
				text, err := a.Reader.ReadString('\n')
				if text != "" && err == io.EOF {
					err = nil
				}
				a.inputChan <- inputResult{text: text, err: err}
			}
		}()
	})
}

func (a *TextAsker) readLine(ctx context.Context) (string, error) {
	a.initPump()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a.requests <- struct{}{}:
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-a.inputChan:
		return res.text, res.err
	}
}

// Ask implements ports.Asker.
func (a *TextAsker) Ask(ctx context.Context, req ports.AskRequest) (ports.Answer, error) {
	p := Describe(req)
	a.render(p)

	for {
		a.prompt(p)

		var line string
		var err error
		if p.Type == domain.NodeTypePassword && a.readPassword != nil {
			line, err = a.readPassword()
		} else {
			line, err = a.readLine(ctx)
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.Writer)
			return ports.Cancel(), nil
		}
		if err != nil {
			return ports.Answer{}, err
		}

		clean, err := SanitizeInput(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(a.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return a.interpret(ctx, req, clean)
	}
}

func (a *TextAsker) interpret(ctx context.Context, req ports.AskRequest, text string) (ports.Answer, error) {
	if text == "" && req.Default != nil {
		return ports.Value(req.Default), nil
	}

	switch req.Question.(type) {
	case *domain.SingleSelectQuestion:
		return ports.Value(optionID(req.Options, text)), nil
	case *domain.MultiSelectQuestion:
		ids := []string{}
		for _, tok := range strings.Split(text, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				ids = append(ids, optionID(req.Options, tok))
			}
		}
		adjusted, err := applySelection(ctx, req, ids)
		if err != nil {
			return ports.Answer{}, err
		}
		if strings.Join(adjusted, ",") != strings.Join(ids, ",") {
			fmt.Fprintf(a.Writer, "%s %s\n", a.out.String("Selection adjusted:").Faint(), strings.Join(adjusted, ", "))
		}
		return ports.Value(adjusted), nil
	}
	return ports.Value(text), nil
}

// optionID resolves a token to an option ID: an exact ID first, then a
// 1-based option number. Anything else is passed through as an ID.
func optionID(items []domain.OptionItem, tok string) string {
	for _, item := range items {
		if item.ID == tok {
			return tok
		}
	}
	if n, err := strconv.Atoi(tok); err == nil && n >= 1 && n <= len(items) {
		return items[n-1].ID
	}
	return tok
}

func (a *TextAsker) render(p Prompt) {
	if p.LastFailure != "" {
		fmt.Fprintf(a.Writer, "%s %s\n", a.out.String("✗").Foreground(a.out.Color("1")), p.LastFailure)
	} else {
		fmt.Fprintln(a.Writer)
	}

	fmt.Fprintln(a.Writer, a.out.String("? "+p.Title).Bold())
	if p.Description != "" && p.Attempt <= 1 {
		desc := p.Description
		if a.Renderer != nil {
			if rendered, err := a.Renderer(desc); err == nil {
				desc = rendered
			}
		}
		fmt.Fprintln(a.Writer, strings.TrimSpace(desc))
	}

	for i, item := range p.Options {
		line := fmt.Sprintf("  %d) %s", i+1, item.Label)
		if item.Description != "" {
			line += " - " + item.Description
		}
		fmt.Fprintln(a.Writer, line)
	}

	if hint := strings.TrimSpace(p.Prompt + " " + p.Placeholder); hint != "" {
		fmt.Fprintln(a.Writer, a.out.String(hint).Faint())
	}
	if p.Type == domain.NodeTypeMultiSelect {
		fmt.Fprintln(a.Writer, a.out.String("(comma separated)").Faint())
	}
}

func (a *TextAsker) prompt(p Prompt) {
	if p.Default != nil {
		fmt.Fprintf(a.Writer, "[%s] > ", formatDefault(p.Default))
		return
	}
	fmt.Fprint(a.Writer, "> ")
}

// Confirm asks a yes/no question; anything but "y" or "yes" is a no.
func (a *TextAsker) Confirm(ctx context.Context, message string) (bool, error) {
	fmt.Fprintf(a.Writer, "%s [y/N] ", message)
	line, err := a.readLine(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	input := strings.TrimSpace(strings.ToLower(line))
	return input == "y" || input == "yes", nil
}

func formatDefault(v any) string {
	switch d := v.(type) {
	case []string:
		return strings.Join(d, ",")
	case domain.OptionItem:
		return d.ID
	case []domain.OptionItem:
		ids := make([]string, len(d))
		for i, item := range d {
			ids[i] = item.ID
		}
		return strings.Join(ids, ",")
	}
	return fmt.Sprint(v)
}

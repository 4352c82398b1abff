package validator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/qtree/internal/compiler"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// Catalog names what a host can serve. A nil list disables the matching check.
type Catalog struct {
	Functions  []string // namespace.method
	Validators []string
	Handlers   []string
}

// Issue is one finding about a tree.
type Issue struct {
	Node    string
	Message string
	Warning bool
}

func (i Issue) String() string {
	prefix := "error"
	if i.Warning {
		prefix = "warning"
	}
	if i.Node == "" {
		return fmt.Sprintf("%s: %s", prefix, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", prefix, i.Node, i.Message)
}

// Lint inspects a compiled tree for references the catalog cannot serve and
// for conditions that can only ever see an undefined value.
func Lint(root *domain.QTreeNode, cat *Catalog) []Issue {
	if cat == nil {
		cat = &Catalog{}
	}
	l := &linter{cat: cat}
	if err := root.Validate(); err != nil {
		l.errorf("", "%v", err)
		return l.issues
	}
	l.visit(root, false)
	return l.issues
}

// ValidateTree runs Lint and fails when any issue is an error.
func ValidateTree(root *domain.QTreeNode, cat *Catalog) error {
	return asError(Lint(root, cat))
}

// ValidateLoader compiles and lints every tree the loader serves.
func ValidateLoader(ctx context.Context, loader ports.TreeLoader, cat *Catalog) error {
	ids, err := loader.ListTrees(ctx)
	if err != nil {
		return fmt.Errorf("failed to list trees: %w", err)
	}

	var errs []string
	for _, id := range ids {
		raw, err := loader.GetTree(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: load error: %v", id, err))
			continue
		}
		root, err := compiler.Load(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		for _, issue := range Lint(root, cat) {
			if !issue.Warning {
				errs = append(errs, fmt.Sprintf("%s: %s", id, issue))
			}
		}
	}
	return joinErrors(errs)
}

func asError(issues []Issue) error {
	var errs []string
	for _, issue := range issues {
		if !issue.Warning {
			errs = append(errs, issue.String())
		}
	}
	return joinErrors(errs)
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
}

type linter struct {
	cat    *Catalog
	issues []Issue
}

func (l *linter) errorf(node, format string, args ...any) {
	l.issues = append(l.issues, Issue{Node: node, Message: fmt.Sprintf(format, args...)})
}

func (l *linter) warnf(node, format string, args ...any) {
	l.issues = append(l.issues, Issue{Node: node, Message: fmt.Sprintf(format, args...), Warning: true})
}

// visit walks the tree. hasParent reports whether a parent answer can
// exist when node's condition is evaluated.
func (l *linter) visit(node *domain.QTreeNode, hasParent bool) {
	name := node.Name()
	if c := node.Condition; c != nil {
		switch {
		case c.Target.Kind == domain.TargetUnknown:
			l.warnf(name, "condition target %q is not $parent or $parent.<prop>; it always sees an undefined value", c.Target.Expr)
		case !hasParent:
			l.warnf(name, "condition has no parent answer to test; it always sees an undefined value")
		}
		l.checkValidation(name, c.Validation)
	}

	if q := node.Question(); q != nil {
		l.checkQuestion(name, q)
		for _, child := range node.Children {
			l.visit(child, true)
		}
		return
	}

	available := hasParent
	for _, child := range node.Children {
		l.visit(child, available)
		if child.Question() != nil {
			available = true
		}
	}
}

func (l *linter) checkQuestion(name string, q domain.Question) {
	if opt, ok := domain.OptionOf(q).(domain.DynamicOption); ok {
		l.checkFunc(name, "option source", opt.Func)
	}
	switch d := q.Base().Default.(type) {
	case *domain.Func:
		l.checkFunc(name, "default", *d)
	case domain.Func:
		l.checkFunc(name, "default", d)
	}
	if f, ok := q.(*domain.FuncQuestion); ok {
		l.checkFunc(name, "func", f.Func)
	}
	if m, ok := q.(*domain.MultiSelectQuestion); ok && m.SelectionHandler != "" && l.cat.Handlers != nil {
		if !slices.Contains(l.cat.Handlers, m.SelectionHandler) {
			l.errorf(name, "selection handler %q is not registered", m.SelectionHandler)
		}
	}
	l.checkValidation(name, domain.ValidationOf(q))
}

func (l *linter) checkValidation(name string, v domain.Validation) {
	switch t := v.(type) {
	case *domain.RemoteFuncValidation:
		l.checkFunc(name, "validation", t.Func)
	case *domain.LocalFuncValidation:
		if l.cat.Validators != nil && !slices.Contains(l.cat.Validators, t.Validator) {
			l.errorf(name, "validator %q is not registered", t.Validator)
		}
	}
}

func (l *linter) checkFunc(name, role string, fn domain.Func) {
	if l.cat.Functions == nil {
		return
	}
	if !slices.Contains(l.cat.Functions, fn.String()) {
		l.errorf(name, "%s function %s is not registered", role, fn)
	}
}

package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
	"github.com/aretw0/qtree/pkg/validation"
)

// parentValue is what "$parent" resolves to for a node. set is false at the
// root and for groups that have not seen an answered child yet.
type parentValue struct {
	value any
	set   bool
}

// walk is the state of one traversal. It is never shared between runs.
type walk struct {
	engine  *Engine
	answers domain.Answers
}

// visit processes node and its subtree. It returns the node's committed
// answer so that a group can expose it as "$parent" to the following siblings.
func (w *walk) visit(ctx context.Context, node *domain.QTreeNode, parent parentValue) (parentValue, error) {
	if err := ctx.Err(); err != nil {
		return parentValue{}, err
	}
	e := w.engine

	active, err := w.isActive(ctx, node, parent)
	if err != nil {
		return parentValue{}, err
	}
	if !active {
		e.logger.Debug("node skipped", "node", node.Name())
		e.emitNode(ctx, e.hooks.OnNodeSkip, domain.EventNodeSkip, node, nil, "")
		return parentValue{}, nil
	}
	e.emitNode(ctx, e.hooks.OnNodeEnter, domain.EventNodeEnter, node, nil, "")

	var value any
	switch data := node.Data.(type) {
	case *domain.Group:
		current := parent
		for _, child := range node.Children {
			v, err := w.visit(ctx, child, current)
			if err != nil {
				return parentValue{}, err
			}
			if v.set {
				current = v
			}
		}
		return parentValue{}, nil
	case *domain.FuncQuestion:
		value, err = w.runFunc(ctx, data)
	case domain.Question:
		value, err = w.ask(ctx, node, data)
	default:
		return parentValue{}, &domain.UnsupportedTypeError{Node: node.Name(), Type: fmt.Sprintf("%T", node.Data)}
	}
	if err != nil {
		return parentValue{}, err
	}

	name := node.Name()
	w.answers[name] = value
	e.logger.Debug("answer stored", "node", name, "type", node.Data.Type())
	e.emitNode(ctx, e.hooks.OnNodeAnswer, domain.EventNodeAnswer, node, value, "")

	self := parentValue{value: value, set: true}
	for _, child := range node.Children {
		if _, err := w.visit(ctx, child, self); err != nil {
			return parentValue{}, err
		}
	}
	return self, nil
}

func (w *walk) isActive(ctx context.Context, node *domain.QTreeNode, parent parentValue) (bool, error) {
	c := node.Condition
	if c == nil {
		return true, nil
	}
	var target any
	if parent.set {
		switch c.Target.Kind {
		case domain.TargetParent:
			target = parent.value
		case domain.TargetParentProperty:
			target = project(parent.value, c.Target.Property)
		}
	}
	out, err := w.engine.evaluator.Evaluate(ctx, target, c.Validation, w.answers)
	if err != nil {
		return false, fmt.Errorf("condition of %q: %w", node.Name(), err)
	}
	return out.Passed, nil
}

// preset returns the pre-seeded answer of q, if any.
func (w *walk) preset(q domain.Question) (any, bool) {
	v, ok := w.answers[q.Base().Name]
	return v, ok
}

func (w *walk) runFunc(ctx context.Context, q *domain.FuncQuestion) (any, error) {
	if v, ok := w.preset(q); ok {
		return v, nil
	}
	return w.engine.call(ctx, q.Func, w.answers)
}

func (w *walk) ask(ctx context.Context, node *domain.QTreeNode, q domain.Question) (any, error) {
	e := w.engine
	name := q.Base().Name

	var items []domain.OptionItem
	if opt := domain.OptionOf(q); opt != nil {
		var err error
		items, err = w.resolveOptions(ctx, opt)
		if err != nil {
			return nil, questionError(name, err)
		}
		if len(items) == 0 {
			return nil, questionError(name, domain.ErrNoOptions)
		}
		if skipSingleOption(q) && len(items) == 1 {
			e.logger.Debug("single option selected", "node", name, "option", items[0].ID)
			return selectValue(q, items[:1]), nil
		}
	}

	var lastFailure string
	if preset, ok := w.preset(q); ok {
		value, reason, err := w.accept(ctx, q, items, preset)
		if err != nil {
			return nil, err
		}
		if reason == "" {
			return value, nil
		}
		lastFailure = reason
	}

	def, err := w.resolveDefault(ctx, q)
	if err != nil {
		return nil, questionError(name, err)
	}
	var handler ports.SelectionHandler
	if ms, ok := q.(*domain.MultiSelectQuestion); ok {
		if handler, err = e.selectionHandler(ms.SelectionHandler); err != nil {
			return nil, questionError(name, err)
		}
	}

	for attempt := 1; ; attempt++ {
		if e.maxAttempts > 0 && attempt > e.maxAttempts {
			return nil, questionError(name, domain.ErrTooManyAttempts)
		}
		ans, err := e.asker.Ask(ctx, ports.AskRequest{
			Node:             node,
			Question:         q,
			Options:          items,
			Default:          def,
			Answers:          w.answers.Clone(),
			Attempt:          attempt,
			LastFailure:      lastFailure,
			SelectionHandler: handler,
		})
		if err != nil {
			return nil, questionError(name, err)
		}
		if ans.Kind == ports.Cancelled {
			return nil, errCancelled
		}

		value, reason, err := w.accept(ctx, q, items, ans.Value)
		if err != nil {
			return nil, err
		}
		if reason == "" {
			return value, nil
		}
		e.logger.Debug("answer rejected", "node", name, "attempt", attempt, "reason", reason)
		e.emitNode(ctx, e.hooks.OnValidationFailed, domain.EventValidationFailed, node, ans.Value, reason)
		lastFailure = reason
	}
}

// accept turns a raw answer into the value to store. A non-empty reason means
// the answer was rejected and the question must be asked again.
func (w *walk) accept(ctx context.Context, q domain.Question, items []domain.OptionItem, raw any) (stored any, reason string, err error) {
	var check any
	switch q.(type) {
	case *domain.SingleSelectQuestion:
		if !validation.IsEmpty(raw) {
			picked, reason := pick(items, []any{raw})
			if reason != "" {
				return nil, reason, nil
			}
			stored = selectValue(q, picked)
			check = picked[0].ID
		}
	case *domain.MultiSelectQuestion:
		picked, reason := pick(items, asList(raw))
		if reason != "" {
			return nil, reason, nil
		}
		stored = selectValue(q, picked)
		check = ids(picked)
	case *domain.NumberInputQuestion:
		if !validation.IsEmpty(raw) {
			n, ok := validation.ToFloat(raw)
			if !ok {
				return nil, "value must be a number", nil
			}
			stored, check = n, n
		}
	default:
		s := asText(raw)
		stored, check = s, s
	}

	out, err := w.engine.evaluator.Evaluate(ctx, check, effectiveValidation(q), w.answers)
	if err != nil {
		return nil, "", questionError(q.Base().Name, err)
	}
	if !out.Passed {
		return nil, out.Reason, nil
	}
	return stored, "", nil
}

func (w *walk) resolveDefault(ctx context.Context, q domain.Question) (any, error) {
	switch d := q.Base().Default.(type) {
	case *domain.Func:
		return w.engine.call(ctx, *d, w.answers)
	case domain.Func:
		return w.engine.call(ctx, d, w.answers)
	default:
		return d, nil
	}
}

// effectiveValidation adds an implicit required rule to single selects and
// numbers that declare no validation, so an empty answer is never stored for them.
func effectiveValidation(q domain.Question) domain.Validation {
	v := domain.ValidationOf(q)
	if v != nil {
		return v
	}
	switch q.(type) {
	case *domain.SingleSelectQuestion, *domain.NumberInputQuestion:
		return &domain.AnyValidation{}
	}
	return nil
}

func skipSingleOption(q domain.Question) bool {
	switch t := q.(type) {
	case *domain.SingleSelectQuestion:
		return t.SkipSingleOption
	case *domain.MultiSelectQuestion:
		return t.SkipSingleOption
	}
	return false
}

// selectValue stores picked items as IDs or whole items per returnObject.
func selectValue(q domain.Question, picked []domain.OptionItem) any {
	switch t := q.(type) {
	case *domain.SingleSelectQuestion:
		if t.ReturnObject {
			return picked[0]
		}
		return picked[0].ID
	case *domain.MultiSelectQuestion:
		if t.ReturnObject {
			return picked
		}
		return ids(picked)
	}
	return nil
}

func asText(raw any) string {
	switch t := raw.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	return fmt.Sprint(raw)
}

package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

func (w *walk) resolveOptions(ctx context.Context, opt domain.Option) ([]domain.OptionItem, error) {
	switch o := opt.(type) {
	case domain.StaticOption:
		items, err := NormalizeOptions([]domain.OptionItem(o))
		if err != nil {
			return nil, &domain.StructuralError{Reason: err.Error()}
		}
		return items, nil
	case domain.DynamicOption:
		res, err := w.engine.call(ctx, o.Func, w.answers)
		if err != nil {
			return nil, err
		}
		items, err := NormalizeOptions(res)
		if err != nil {
			return nil, &domain.RemoteCallError{
				Namespace: o.Namespace,
				Method:    o.Method,
				Err:       fmt.Errorf("result is not an option list: %w", err),
			}
		}
		return items, nil
	}
	return nil, &domain.UnsupportedTypeError{Type: fmt.Sprintf("%T", opt)}
}

// NormalizeOptions reinterprets raw as an option list. It accepts strings,
// option items, and maps or structs carrying id/label keys, alone or mixed in
// a list. Plain strings become items whose ID and Label are the string; a
// missing label falls back to the ID. When IDs repeat, the first occurrence wins.
func NormalizeOptions(raw any) ([]domain.OptionItem, error) {
	var elems []any
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case domain.StaticOption:
		return NormalizeOptions([]domain.OptionItem(t))
	case []domain.OptionItem:
		elems = make([]any, len(t))
		for i, item := range t {
			elems[i] = item
		}
	case []string:
		elems = make([]any, len(t))
		for i, s := range t {
			elems[i] = s
		}
	case []any:
		elems = t
	default:
		return nil, fmt.Errorf("unexpected %T", raw)
	}

	items := make([]domain.OptionItem, 0, len(elems))
	seen := make(map[string]bool, len(elems))
	for i, e := range elems {
		item, err := toItem(e)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	return items, nil
}

func toItem(e any) (domain.OptionItem, error) {
	var item domain.OptionItem
	switch t := e.(type) {
	case string:
		return domain.OptionItem{ID: t, Label: t}, nil
	case domain.OptionItem:
		item = t
	case *domain.OptionItem:
		item = *t
	default:
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &item,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return item, err
		}
		if err := dec.Decode(e); err != nil {
			return item, err
		}
	}
	if item.ID == "" {
		item.ID = item.Label
	}
	if item.ID == "" {
		return item, errors.New("option has no id")
	}
	if item.Label == "" {
		item.Label = item.ID
	}
	return item, nil
}

// project reads one property off a parent answer. Missing properties and
// values that are not objects yield nil.
func project(value any, prop string) any {
	switch t := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return t[prop]
	case domain.Answers:
		return t[prop]
	}
	var m map[string]any
	if err := mapstructure.Decode(value, &m); err != nil {
		return nil
	}
	return m[prop]
}

// pick maps raw selections to items. Each selection may be an ID or an item.
func pick(items []domain.OptionItem, raw []any) ([]domain.OptionItem, string) {
	picked := make([]domain.OptionItem, 0, len(raw))
	for _, r := range raw {
		id := asText(r)
		switch t := r.(type) {
		case domain.OptionItem:
			id = t.ID
		case map[string]any:
			if v, ok := t["id"]; ok {
				id = asText(v)
			}
		}
		found := false
		for _, item := range items {
			if item.ID == id {
				picked = append(picked, item)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Sprintf("%q is not one of the options", id)
		}
	}
	return picked, ""
}

func asList(raw any) []any {
	switch t := raw.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []domain.OptionItem:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	}
	return []any{raw}
}

func ids(items []domain.OptionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

package compiler

import (
	"encoding/json"

	"github.com/aretw0/qtree/internal/dto"
	"github.com/aretw0/qtree/pkg/domain"
)

// Export converts a tree back to its serialized form. Compile(Export(t))
// yields a tree equivalent to t.
func Export(root *domain.QTreeNode) dto.Node {
	n := dto.Node{Type: string(root.Data.Type())}

	switch d := root.Data.(type) {
	case *domain.Group:
		n.Name = d.Name
		n.Description = d.Description
	case domain.Question:
		b := d.Base()
		n.Name = b.Name
		n.Title = b.Title
		n.Description = b.Description
		n.Default = exportDefault(b.Default)
		n.Validation = validationMap(domain.ValidationOf(d))
	}

	switch d := root.Data.(type) {
	case *domain.SingleSelectQuestion:
		n.Option = exportOption(d.Option)
		n.ReturnObject = d.ReturnObject
		n.SkipSingleOption = d.SkipSingleOption
		n.Placeholder = d.Placeholder
		n.Prompt = d.Prompt
	case *domain.MultiSelectQuestion:
		n.Option = exportOption(d.Option)
		n.ReturnObject = d.ReturnObject
		n.SkipSingleOption = d.SkipSingleOption
		n.Placeholder = d.Placeholder
		n.Prompt = d.Prompt
		n.OnDidChangeSelection = d.SelectionHandler
	case *domain.TextInputQuestion:
		n.Placeholder = d.Placeholder
		n.Prompt = d.Prompt
	case *domain.NumberInputQuestion:
		n.Placeholder = d.Placeholder
		n.Prompt = d.Prompt
	case *domain.FuncQuestion:
		n.Namespace = d.Func.Namespace
		n.Method = d.Func.Method
		n.Params = d.Func.Params
	}

	if c := root.Condition; c != nil {
		m := validationMap(c.Validation)
		if m == nil {
			m = map[string]any{}
		}
		m["target"] = c.Target.String()
		n.Condition = m
	}

	for _, child := range root.Children {
		n.Children = append(n.Children, Export(child))
	}
	return n
}

func exportDefault(d any) any {
	switch f := d.(type) {
	case *domain.Func:
		return funcMap(*f)
	case domain.Func:
		return funcMap(f)
	}
	return d
}

func exportOption(opt domain.Option) any {
	switch o := opt.(type) {
	case domain.StaticOption:
		return []domain.OptionItem(o)
	case domain.DynamicOption:
		return funcMap(o.Func)
	}
	return nil
}

func funcMap(f domain.Func) map[string]any {
	m := map[string]any{"namespace": f.Namespace, "method": f.Method}
	if f.Params != nil {
		m["params"] = f.Params
	}
	return m
}

// validationMap flattens a validation into its serialized keys, adding "kind"
// so that the shape survives a round trip even when only common rules are set.
func validationMap(v domain.Validation) map[string]any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	if m == nil {
		m = map[string]any{}
	}
	m["kind"] = string(v.Kind())
	return m
}

package compiler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/qtree/internal/dto"
	"github.com/aretw0/qtree/internal/runtime"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Compile turns a parsed document into a validated tree.
func Compile(doc *dto.Document) (*domain.QTreeNode, error) {
	if doc == nil {
		return nil, &domain.StructuralError{Reason: "document is empty"}
	}
	root, err := compileNode(doc.Node, "")
	if err != nil {
		return nil, err
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}

// Load parses and compiles raw YAML or JSON.
func Load(data []byte) (*domain.QTreeNode, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Compile(doc)
}

// compileNode builds children first so groups are never empty while attached.
// parentType is the type of the enclosing node and guides condition inference.
func compileNode(n dto.Node, parentType domain.NodeType) (*domain.QTreeNode, error) {
	data, err := compileData(n)
	if err != nil {
		return nil, err
	}
	node := domain.NewNode(data)

	if n.Condition != nil {
		cond, err := compileCondition(n.Name, n.Condition, parentType)
		if err != nil {
			return nil, err
		}
		node.Condition = cond
	}

	for _, c := range n.Children {
		child, err := compileNode(c, data.Type())
		if err != nil {
			return nil, err
		}
		if err := node.AddChild(child); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func compileData(n dto.Node) (domain.NodeData, error) {
	base := domain.BaseQuestion{
		Name:        n.Name,
		Title:       n.Title,
		Description: n.Description,
		Default:     compileDefault(n.Default),
	}
	typ := domain.NodeType(n.Type)

	var validation domain.Validation
	if n.Validation != nil {
		v, err := inferValidation(n.Name, n.Validation, typ)
		if err != nil {
			return nil, err
		}
		validation = v
	}

	switch typ {
	case domain.NodeTypeGroup:
		return &domain.Group{Name: n.Name, Description: n.Description}, nil
	case domain.NodeTypeText, domain.NodeTypePassword:
		return &domain.TextInputQuestion{
			BaseQuestion: base,
			Secret:       typ == domain.NodeTypePassword,
			Placeholder:  n.Placeholder,
			Prompt:       n.Prompt,
			Validation:   validation,
		}, nil
	case domain.NodeTypeNumber:
		return &domain.NumberInputQuestion{
			BaseQuestion: base,
			Placeholder:  n.Placeholder,
			Prompt:       n.Prompt,
			Validation:   validation,
		}, nil
	case domain.NodeTypeFile, domain.NodeTypeFolder:
		return &domain.FileQuestion{
			BaseQuestion: base,
			Folder:       typ == domain.NodeTypeFolder,
			Validation:   validation,
		}, nil
	case domain.NodeTypeSingleSelect, domain.NodeTypeMultiSelect:
		opt, err := compileOption(n.Name, n.Option)
		if err != nil {
			return nil, err
		}
		if typ == domain.NodeTypeSingleSelect {
			return &domain.SingleSelectQuestion{
				BaseQuestion:     base,
				Option:           opt,
				ReturnObject:     n.ReturnObject,
				SkipSingleOption: n.SkipSingleOption,
				Placeholder:      n.Placeholder,
				Prompt:           n.Prompt,
				Validation:       validation,
			}, nil
		}
		return &domain.MultiSelectQuestion{
			BaseQuestion:     base,
			Option:           opt,
			ReturnObject:     n.ReturnObject,
			SkipSingleOption: n.SkipSingleOption,
			Placeholder:      n.Placeholder,
			Prompt:           n.Prompt,
			SelectionHandler: n.OnDidChangeSelection,
			Validation:       validation,
		}, nil
	case domain.NodeTypeFunc:
		return &domain.FuncQuestion{
			BaseQuestion: base,
			Func:         domain.Func{Namespace: n.Namespace, Method: n.Method, Params: n.Params},
		}, nil
	}
	return nil, &domain.UnsupportedTypeError{Node: n.Name, Type: n.Type}
}

// asFunc recognises a {namespace, method, params} mapping.
func asFunc(raw any) (*domain.Func, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	ns, _ := m["namespace"].(string)
	method, _ := m["method"].(string)
	if ns == "" || method == "" {
		return nil, false
	}
	return &domain.Func{Namespace: ns, Method: method, Params: m["params"]}, true
}

func compileDefault(raw any) any {
	if fn, ok := asFunc(raw); ok {
		return fn
	}
	return raw
}

func compileOption(name string, raw any) (domain.Option, error) {
	if raw == nil {
		return nil, nil
	}
	if fn, ok := asFunc(raw); ok {
		return domain.DynamicOption{Func: *fn}, nil
	}
	items, err := runtime.NormalizeOptions(raw)
	if err != nil {
		return nil, &domain.StructuralError{Node: name, Reason: fmt.Sprintf("invalid option list: %v", err)}
	}
	return domain.StaticOption(items), nil
}

func compileCondition(name string, raw map[string]any, parentType domain.NodeType) (*domain.Condition, error) {
	spec := make(map[string]any, len(raw))
	target := ""
	for k, v := range raw {
		if k == "target" {
			s, ok := v.(string)
			if !ok {
				return nil, &domain.StructuralError{Node: name, Reason: "condition target must be a string"}
			}
			target = s
			continue
		}
		spec[k] = v
	}
	v, err := inferValidation(name, spec, parentType)
	if err != nil {
		return nil, err
	}
	return domain.NewCondition(target, v), nil
}

var families = map[string]domain.ValidationKind{
	"multipleOf":       domain.ValidationNumber,
	"maximum":          domain.ValidationNumber,
	"exclusiveMaximum": domain.ValidationNumber,
	"minimum":          domain.ValidationNumber,
	"exclusiveMinimum": domain.ValidationNumber,
	"maxLength":        domain.ValidationString,
	"minLength":        domain.ValidationString,
	"pattern":          domain.ValidationString,
	"startsWith":       domain.ValidationString,
	"endsWith":         domain.ValidationString,
	"includes":         domain.ValidationString,
	"maxItems":         domain.ValidationStringArray,
	"minItems":         domain.ValidationStringArray,
	"uniqueItems":      domain.ValidationStringArray,
	"contains":         domain.ValidationStringArray,
	"containsAll":      domain.ValidationStringArray,
	"containsAny":      domain.ValidationStringArray,
	"exists":           domain.ValidationFile,
	"notExist":         domain.ValidationFile,
	"namespace":        domain.ValidationRemoteFunc,
	"method":           domain.ValidationRemoteFunc,
	"params":           domain.ValidationRemoteFunc,
	"validFunc":        domain.ValidationLocalFunc,
}

var commonKeys = map[string]bool{"required": true, "equals": true, "enum": true, "kind": true}

// inferValidation picks the validation shape from the keys present. An
// explicit "kind" wins; otherwise enum alone is resolved from its values and
// the question type.
func inferValidation(name string, raw map[string]any, hint domain.NodeType) (domain.Validation, error) {
	kind := domain.ValidationKind("")
	if k, ok := raw["kind"].(string); ok {
		kind = domain.ValidationKind(k)
	}

	if kind == "" {
		var found []string
		for key := range raw {
			if fam, ok := families[key]; ok {
				if kind != "" && kind != fam {
					sort.Strings(found)
					return nil, &domain.StructuralError{
						Node:   name,
						Reason: fmt.Sprintf("validation mixes %s and %s rules (%s, %s)", kind, fam, strings.Join(found, ", "), key),
					}
				}
				kind = fam
				found = append(found, key)
			} else if !commonKeys[key] {
				return nil, &domain.StructuralError{Node: name, Reason: fmt.Sprintf("unknown validation rule %q", key)}
			}
		}
	}
	if kind == "" {
		kind = kindFromEnum(raw["enum"], hint)
	}

	var target domain.Validation
	switch kind {
	case domain.ValidationAny:
		target = &domain.AnyValidation{}
	case domain.ValidationNumber:
		target = &domain.NumberValidation{}
	case domain.ValidationString:
		target = &domain.StringValidation{}
	case domain.ValidationStringArray:
		target = &domain.StringArrayValidation{}
	case domain.ValidationFile:
		target = &domain.FileValidation{}
	case domain.ValidationRemoteFunc:
		target = &domain.RemoteFuncValidation{}
	case domain.ValidationLocalFunc:
		target = &domain.LocalFuncValidation{}
	default:
		return nil, &domain.StructuralError{Node: name, Reason: fmt.Sprintf("unknown validation kind %q", kind)}
	}

	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != "kind" {
			fields[k] = v
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		Squash:           true,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, &domain.StructuralError{Node: name, Reason: fmt.Sprintf("invalid %s validation: %v", kind, err)}
	}

	if s, ok := target.(*domain.StringValidation); ok && s.Pattern != "" {
		if _, err := regexp.Compile(s.Pattern); err != nil {
			return nil, &domain.StructuralError{Node: name, Reason: fmt.Sprintf("invalid pattern %q: %v", s.Pattern, err)}
		}
	}
	return target, nil
}

func kindFromEnum(enum any, hint domain.NodeType) domain.ValidationKind {
	if enum == nil {
		return domain.ValidationAny
	}
	list, _ := enum.([]any)
	numeric := len(list) > 0
	for _, e := range list {
		switch e.(type) {
		case int, int64, uint64, float64:
		default:
			numeric = false
		}
	}
	switch {
	case numeric || hint == domain.NodeTypeNumber:
		return domain.ValidationNumber
	case hint == domain.NodeTypeMultiSelect:
		return domain.ValidationStringArray
	}
	return domain.ValidationString
}

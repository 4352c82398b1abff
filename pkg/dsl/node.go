package dsl

import (
	"fmt"

	"github.com/aretw0/qtree/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
// Misused setters are recorded and reported by Build.
type NodeBuilder struct {
	data      domain.NodeData
	condition *domain.Condition
	children  []*NodeBuilder
	errs      []error
}

func newNode(data domain.NodeData) *NodeBuilder {
	return &NodeBuilder{data: data}
}

// Group starts a group node.
func Group(name string) *NodeBuilder {
	return newNode(&domain.Group{Name: name})
}

// Text starts a text input question.
func Text(name string) *NodeBuilder {
	return newNode(&domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: name}})
}

// Password starts a masked text input question.
func Password(name string) *NodeBuilder {
	return newNode(&domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: name}, Secret: true})
}

// Number starts a number input question.
func Number(name string) *NodeBuilder {
	return newNode(&domain.NumberInputQuestion{BaseQuestion: domain.BaseQuestion{Name: name}})
}

// File starts a file path question.
func File(name string) *NodeBuilder {
	return newNode(&domain.FileQuestion{BaseQuestion: domain.BaseQuestion{Name: name}})
}

// Folder starts a folder path question.
func Folder(name string) *NodeBuilder {
	return newNode(&domain.FileQuestion{BaseQuestion: domain.BaseQuestion{Name: name}, Folder: true})
}

// SingleSelect starts a single-choice question.
func SingleSelect(name string) *NodeBuilder {
	return newNode(&domain.SingleSelectQuestion{BaseQuestion: domain.BaseQuestion{Name: name}})
}

// MultiSelect starts a multiple-choice question.
func MultiSelect(name string) *NodeBuilder {
	return newNode(&domain.MultiSelectQuestion{BaseQuestion: domain.BaseQuestion{Name: name}})
}

// Func starts a silent question whose answer is computed by namespace.method.
func Func(name, namespace, method string, params any) *NodeBuilder {
	return newNode(&domain.FuncQuestion{
		BaseQuestion: domain.BaseQuestion{Name: name},
		Func:         domain.Func{Namespace: namespace, Method: method, Params: params},
	})
}

func (n *NodeBuilder) fail(format string, args ...any) *NodeBuilder {
	n.errs = append(n.errs, fmt.Errorf("%s: %s", n.label(), fmt.Sprintf(format, args...)))
	return n
}

func (n *NodeBuilder) label() string {
	switch d := n.data.(type) {
	case domain.Question:
		return d.Base().Name
	case *domain.Group:
		if d.Name != "" {
			return d.Name
		}
	}
	return string(n.data.Type())
}

func (n *NodeBuilder) base() *domain.BaseQuestion {
	if q, ok := n.data.(domain.Question); ok {
		return q.Base()
	}
	return nil
}

// Title sets the display title of a question.
func (n *NodeBuilder) Title(title string) *NodeBuilder {
	if b := n.base(); b != nil {
		b.Title = title
		return n
	}
	return n.fail("groups have no title")
}

// Description sets the description of a question or group.
func (n *NodeBuilder) Description(desc string) *NodeBuilder {
	switch d := n.data.(type) {
	case domain.Question:
		d.Base().Description = desc
	case *domain.Group:
		d.Description = desc
	}
	return n
}

// Default sets a static default.
func (n *NodeBuilder) Default(value any) *NodeBuilder {
	if b := n.base(); b != nil {
		b.Default = value
		return n
	}
	return n.fail("groups have no default")
}

// DefaultFrom resolves the default by calling namespace.method when the question is asked.
func (n *NodeBuilder) DefaultFrom(namespace, method string, params any) *NodeBuilder {
	return n.Default(&domain.Func{Namespace: namespace, Method: method, Params: params})
}

// Placeholder sets the input placeholder.
func (n *NodeBuilder) Placeholder(text string) *NodeBuilder {
	switch d := n.data.(type) {
	case *domain.SingleSelectQuestion:
		d.Placeholder = text
	case *domain.MultiSelectQuestion:
		d.Placeholder = text
	case *domain.TextInputQuestion:
		d.Placeholder = text
	case *domain.NumberInputQuestion:
		d.Placeholder = text
	default:
		return n.fail("%s questions have no placeholder", n.data.Type())
	}
	return n
}

// Prompt sets the helper text shown under the input.
func (n *NodeBuilder) Prompt(text string) *NodeBuilder {
	switch d := n.data.(type) {
	case *domain.SingleSelectQuestion:
		d.Prompt = text
	case *domain.MultiSelectQuestion:
		d.Prompt = text
	case *domain.TextInputQuestion:
		d.Prompt = text
	case *domain.NumberInputQuestion:
		d.Prompt = text
	default:
		return n.fail("%s questions have no prompt", n.data.Type())
	}
	return n
}

// Options sets a static option list of plain strings.
func (n *NodeBuilder) Options(values ...string) *NodeBuilder {
	return n.setOption(domain.Strings(values...))
}

// Items sets a static option list of full items.
func (n *NodeBuilder) Items(items ...domain.OptionItem) *NodeBuilder {
	return n.setOption(domain.Items(items...))
}

// OptionsFrom resolves the option list by calling namespace.method when the question is asked.
func (n *NodeBuilder) OptionsFrom(namespace, method string, params any) *NodeBuilder {
	return n.setOption(domain.Dynamic(namespace, method, params))
}

func (n *NodeBuilder) setOption(opt domain.Option) *NodeBuilder {
	switch d := n.data.(type) {
	case *domain.SingleSelectQuestion:
		d.Option = opt
	case *domain.MultiSelectQuestion:
		d.Option = opt
	default:
		return n.fail("%s questions have no options", n.data.Type())
	}
	return n
}

// ReturnObject stores whole option items instead of their IDs.
func (n *NodeBuilder) ReturnObject() *NodeBuilder {
	switch d := n.data.(type) {
	case *domain.SingleSelectQuestion:
		d.ReturnObject = true
	case *domain.MultiSelectQuestion:
		d.ReturnObject = true
	default:
		return n.fail("returnObject only applies to select questions")
	}
	return n
}

// SkipSingleOption answers the question automatically when only one option resolves.
func (n *NodeBuilder) SkipSingleOption() *NodeBuilder {
	switch d := n.data.(type) {
	case *domain.SingleSelectQuestion:
		d.SkipSingleOption = true
	case *domain.MultiSelectQuestion:
		d.SkipSingleOption = true
	default:
		return n.fail("skipSingleOption only applies to select questions")
	}
	return n
}

// OnSelectionChange names the registered handler consulted when a multi-select changes.
func (n *NodeBuilder) OnSelectionChange(handler string) *NodeBuilder {
	if d, ok := n.data.(*domain.MultiSelectQuestion); ok {
		d.SelectionHandler = handler
		return n
	}
	return n.fail("selection handlers only apply to multi-select questions")
}

// Validate attaches a validation to the question.
func (n *NodeBuilder) Validate(v domain.Validation) *NodeBuilder {
	switch d := n.data.(type) {
	case *domain.SingleSelectQuestion:
		d.Validation = v
	case *domain.MultiSelectQuestion:
		d.Validation = v
	case *domain.TextInputQuestion:
		d.Validation = v
	case *domain.NumberInputQuestion:
		d.Validation = v
	case *domain.FileQuestion:
		d.Validation = v
	default:
		return n.fail("%s nodes cannot be validated", n.data.Type())
	}
	return n
}

// When sets the activation condition.
func (n *NodeBuilder) When(target string, v domain.Validation) *NodeBuilder {
	n.condition = domain.NewCondition(target, v)
	return n
}

// Children appends child nodes in traversal order.
func (n *NodeBuilder) Children(children ...*NodeBuilder) *NodeBuilder {
	n.children = append(n.children, children...)
	return n
}

// Build assembles the subtree and checks every structural rule.
func (n *NodeBuilder) Build() (*domain.QTreeNode, error) {
	node, err := n.build()
	if err != nil {
		return nil, err
	}
	if err := node.Validate(); err != nil {
		return nil, err
	}
	return node, nil
}

func (n *NodeBuilder) build() (*domain.QTreeNode, error) {
	if len(n.errs) > 0 {
		return nil, n.errs[0]
	}
	node := domain.NewNode(n.data)
	node.Condition = n.condition
	for _, c := range n.children {
		child, err := c.build()
		if err != nil {
			return nil, err
		}
		if err := node.AddChild(child); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// MustBuild is like Build but panics on error. Intended for tests and static trees.
func (n *NodeBuilder) MustBuild() *domain.QTreeNode {
	node, err := n.Build()
	if err != nil {
		panic(err)
	}
	return node
}

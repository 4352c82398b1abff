package domain

import (
	"fmt"
)

// QTreeNode is a node of the question tree. A node owns its children;
// a child belongs to exactly one parent.
type QTreeNode struct {
	Data      NodeData
	Condition *Condition
	Children  []*QTreeNode

	parent *QTreeNode
}

// NewNode wraps data into a detached node.
func NewNode(data NodeData) *QTreeNode {
	return &QTreeNode{Data: data}
}

// When sets the activation condition and returns the node for chaining.
func (n *QTreeNode) When(target string, v Validation) *QTreeNode {
	n.Condition = NewCondition(target, v)
	return n
}

// Parent returns the owning node, or nil for a root.
func (n *QTreeNode) Parent() *QTreeNode { return n.parent }

// Name is the question or group name. Unnamed groups return "".
func (n *QTreeNode) Name() string {
	switch d := n.Data.(type) {
	case Question:
		return d.Base().Name
	case *Group:
		return d.Name
	}
	return ""
}

// Question returns the node's question, or nil for groups.
func (n *QTreeNode) Question() Question {
	q, _ := n.Data.(Question)
	return q
}

// IsGroup reports whether the node is a Group.
func (n *QTreeNode) IsGroup() bool {
	_, ok := n.Data.(*Group)
	return ok
}

// AddChild attaches child under n. It rejects a child already owned by another
// node, a child that would close a cycle, a subtree with an empty group, and a
// question name that repeats along any root-to-leaf path. On error the tree is
// left unchanged.
func (n *QTreeNode) AddChild(child *QTreeNode) error {
	if child == nil {
		return &StructuralError{Node: n.Name(), Reason: "child is nil"}
	}
	if child.parent != nil {
		return &StructuralError{Node: child.Name(), Reason: "node already has a parent"}
	}
	for a := n; a != nil; a = a.parent {
		if a == child {
			return &StructuralError{Node: child.Name(), Reason: "adding the node would create a cycle"}
		}
	}

	seen := map[string]bool{}
	for a := n; a != nil; a = a.parent {
		if q := a.Question(); q != nil {
			seen[q.Base().Name] = true
		}
	}
	if err := child.validate(seen, map[*QTreeNode]bool{}); err != nil {
		return err
	}

	child.parent = n
	n.Children = append(n.Children, child)
	return nil
}

// RemoveChild detaches child from n. Removing the last child of a group is refused.
func (n *QTreeNode) RemoveChild(child *QTreeNode) error {
	idx := -1
	for i, c := range n.Children {
		if c == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &StructuralError{Node: n.Name(), Reason: "node is not a child"}
	}
	if n.IsGroup() && len(n.Children) == 1 {
		return &StructuralError{Node: n.Name(), Reason: "group must keep at least one child"}
	}
	n.Children = append(n.Children[:idx:idx], n.Children[idx+1:]...)
	child.parent = nil
	return nil
}

// Validate checks the whole subtree rooted at n.
func (n *QTreeNode) Validate() error {
	return n.validate(map[string]bool{}, map[*QTreeNode]bool{})
}

func (n *QTreeNode) validate(path map[string]bool, visiting map[*QTreeNode]bool) error {
	if visiting[n] {
		return &StructuralError{Node: n.Name(), Reason: "cycle detected"}
	}
	if n.Data == nil {
		return &StructuralError{Reason: "node has no data"}
	}
	visiting[n] = true
	defer delete(visiting, n)

	switch d := n.Data.(type) {
	case *Group:
		if len(n.Children) == 0 {
			return &StructuralError{Node: d.Name, Reason: "group has no children"}
		}
	case Question:
		name := d.Base().Name
		if name == "" {
			return &StructuralError{Reason: fmt.Sprintf("%s question has no name", d.Type())}
		}
		if path[name] {
			return &StructuralError{Node: name, Reason: "name repeats along the path"}
		}
		if err := checkQuestion(d); err != nil {
			return err
		}
		path[name] = true
		defer delete(path, name)
	default:
		return &UnsupportedTypeError{Node: n.Name(), Type: fmt.Sprintf("%T", n.Data)}
	}

	if n.Condition != nil && n.Condition.Validation == nil {
		return &StructuralError{Node: n.Name(), Reason: "condition has no validation"}
	}

	for _, c := range n.Children {
		if c == nil {
			return &StructuralError{Node: n.Name(), Reason: "child is nil"}
		}
		if err := c.validate(path, visiting); err != nil {
			return err
		}
	}
	return nil
}

// checkQuestion enforces the per-type shape rules: select questions need an
// option source and validations must fit the kind of value the question produces.
func checkQuestion(q Question) error {
	name := q.Base().Name
	if opt := OptionOf(q); q.Type() == NodeTypeSingleSelect || q.Type() == NodeTypeMultiSelect {
		if opt == nil {
			return &StructuralError{Node: name, Reason: "select question has no option source"}
		}
	}
	if f, ok := q.(*FuncQuestion); ok && (f.Func.Namespace == "" || f.Func.Method == "") {
		return &StructuralError{Node: name, Reason: "func question needs namespace and method"}
	}

	v := ValidationOf(q)
	if v == nil {
		return nil
	}
	allowed := map[ValidationKind]bool{
		ValidationAny:        true,
		ValidationRemoteFunc: true,
		ValidationLocalFunc:  true,
	}
	switch q.Type() {
	case NodeTypeText, NodeTypePassword, NodeTypeSingleSelect:
		allowed[ValidationString] = true
	case NodeTypeNumber:
		allowed[ValidationNumber] = true
	case NodeTypeMultiSelect:
		allowed[ValidationStringArray] = true
	case NodeTypeFile, NodeTypeFolder:
		allowed[ValidationFile] = true
		allowed[ValidationString] = true
	}
	if !allowed[v.Kind()] {
		return &StructuralError{
			Node:   name,
			Reason: fmt.Sprintf("%s validation is not allowed on a %s question", v.Kind(), q.Type()),
		}
	}
	return nil
}

// Walk visits the subtree in depth-first pre-order.
// Returning an error from fn stops the walk.
func (n *QTreeNode) Walk(fn func(node *QTreeNode, depth int) error) error {
	return n.walk(fn, 0)
}

func (n *QTreeNode) walk(fn func(*QTreeNode, int) error, depth int) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

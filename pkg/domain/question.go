package domain

// NodeType is the tag carried by every node's data.
type NodeType string

const (
	NodeTypeText         NodeType = "text"
	NodeTypeNumber       NodeType = "number"
	NodeTypePassword     NodeType = "password"
	NodeTypeSingleSelect NodeType = "singleSelect"
	NodeTypeMultiSelect  NodeType = "multiSelect"
	NodeTypeFile         NodeType = "file"
	NodeTypeFolder       NodeType = "folder"
	NodeTypeGroup        NodeType = "group"
	NodeTypeFunc         NodeType = "func"
)

// NodeData is the payload of a QTreeNode: a Question or a Group.
type NodeData interface {
	Type() NodeType
	nodeData()
}

// Question is any prompting or computing node payload.
type Question interface {
	NodeData
	Base() *BaseQuestion
}

// BaseQuestion holds the fields every question shares. The resolved answer
// is never stored on the question: it lives in the Answers of the run.
//
// Default is either a static value or a *Func resolved through the remote caller.
type BaseQuestion struct {
	Name        string `json:"name" yaml:"name"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
}

func (b *BaseQuestion) Base() *BaseQuestion { return b }

// DisplayTitle is the title, falling back to the name.
func (b *BaseQuestion) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	return b.Name
}

// SingleSelectQuestion picks one option.
// The answer is the item ID, or the whole item when ReturnObject is set.
type SingleSelectQuestion struct {
	BaseQuestion
	Option           Option     `json:"option"`
	ReturnObject     bool       `json:"returnObject,omitempty"`
	SkipSingleOption bool       `json:"skipSingleOption,omitempty"`
	Placeholder      string     `json:"placeholder,omitempty"`
	Prompt           string     `json:"prompt,omitempty"`
	Validation       Validation `json:"validation,omitempty"`
}

func (*SingleSelectQuestion) Type() NodeType { return NodeTypeSingleSelect }
func (*SingleSelectQuestion) nodeData()      {}

// MultiSelectQuestion picks zero or more options.
// SelectionHandler names a registered handler consulted whenever the selection changes.
type MultiSelectQuestion struct {
	BaseQuestion
	Option           Option     `json:"option"`
	ReturnObject     bool       `json:"returnObject,omitempty"`
	SkipSingleOption bool       `json:"skipSingleOption,omitempty"`
	Placeholder      string     `json:"placeholder,omitempty"`
	Prompt           string     `json:"prompt,omitempty"`
	SelectionHandler string     `json:"onDidChangeSelection,omitempty"`
	Validation       Validation `json:"validation,omitempty"`
}

func (*MultiSelectQuestion) Type() NodeType { return NodeTypeMultiSelect }
func (*MultiSelectQuestion) nodeData()      {}

// TextInputQuestion asks for free text. Secret switches it to a password prompt.
type TextInputQuestion struct {
	BaseQuestion
	Secret      bool       `json:"-"`
	Placeholder string     `json:"placeholder,omitempty"`
	Prompt      string     `json:"prompt,omitempty"`
	Validation  Validation `json:"validation,omitempty"`
}

func (q *TextInputQuestion) Type() NodeType {
	if q.Secret {
		return NodeTypePassword
	}
	return NodeTypeText
}
func (*TextInputQuestion) nodeData() {}

// NumberInputQuestion asks for a number.
type NumberInputQuestion struct {
	BaseQuestion
	Placeholder string     `json:"placeholder,omitempty"`
	Prompt      string     `json:"prompt,omitempty"`
	Validation  Validation `json:"validation,omitempty"`
}

func (*NumberInputQuestion) Type() NodeType { return NodeTypeNumber }
func (*NumberInputQuestion) nodeData()      {}

// FileQuestion asks for a path. Folder switches it to a directory prompt.
type FileQuestion struct {
	BaseQuestion
	Folder     bool       `json:"-"`
	Validation Validation `json:"validation,omitempty"`
}

func (q *FileQuestion) Type() NodeType {
	if q.Folder {
		return NodeTypeFolder
	}
	return NodeTypeFile
}
func (*FileQuestion) nodeData() {}

// FuncQuestion never prompts. Its answer is the result of calling Func.
type FuncQuestion struct {
	BaseQuestion
	Func Func `json:"func"`
}

func (*FuncQuestion) Type() NodeType { return NodeTypeFunc }
func (*FuncQuestion) nodeData()      {}

// Group is a non-prompting container. It contributes no answer.
type Group struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

func (*Group) Type() NodeType { return NodeTypeGroup }
func (*Group) nodeData()      {}

// ValidationOf returns the validation attached to a question, or nil.
func ValidationOf(q Question) Validation {
	switch t := q.(type) {
	case *SingleSelectQuestion:
		return t.Validation
	case *MultiSelectQuestion:
		return t.Validation
	case *TextInputQuestion:
		return t.Validation
	case *NumberInputQuestion:
		return t.Validation
	case *FileQuestion:
		return t.Validation
	}
	return nil
}

// OptionOf returns the option source of a select question, or nil.
func OptionOf(q Question) Option {
	switch t := q.(type) {
	case *SingleSelectQuestion:
		return t.Option
	case *MultiSelectQuestion:
		return t.Option
	}
	return nil
}

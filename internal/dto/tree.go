package dto

// Document is a question tree as written in YAML or JSON files. The root
// node's fields sit at the top level next to the document ID.
type Document struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Node `yaml:",inline" mapstructure:",squash"`
}

// Node represents one tree node in its serialized form.
// Validation and Condition stay untyped here; the compiler infers their shape.
type Node struct {
	Type        string `json:"type" yaml:"type" mapstructure:"type"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty" mapstructure:"placeholder"`
	Prompt      string `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`

	// Select questions
	Option               any    `json:"option,omitempty" yaml:"option,omitempty" mapstructure:"option"`
	ReturnObject         bool   `json:"returnObject,omitempty" yaml:"returnObject,omitempty" mapstructure:"returnObject"`
	SkipSingleOption     bool   `json:"skipSingleOption,omitempty" yaml:"skipSingleOption,omitempty" mapstructure:"skipSingleOption"`
	OnDidChangeSelection string `json:"onDidChangeSelection,omitempty" yaml:"onDidChangeSelection,omitempty" mapstructure:"onDidChangeSelection"`

	// Func questions
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" mapstructure:"namespace"`
	Method    string `json:"method,omitempty" yaml:"method,omitempty" mapstructure:"method"`
	Params    any    `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`

	Validation map[string]any `json:"validation,omitempty" yaml:"validation,omitempty" mapstructure:"validation"`
	Condition  map[string]any `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
	Children   []Node         `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}

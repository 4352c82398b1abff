package domain

// Func routes a call to a named remote procedure.
type Func struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Method    string `json:"method" yaml:"method"`
	Params    any    `json:"params,omitempty" yaml:"params,omitempty"`
}

// String returns the "namespace.method" form used in logs and registries.
func (f Func) String() string {
	return f.Namespace + "." + f.Method
}

// OptionItem is one selectable entry. ID is its identity; Label, Description
// and Detail are presentation only; Data is carried through untouched.
type OptionItem struct {
	ID          string `json:"id" yaml:"id" mapstructure:"id"`
	Label       string `json:"label" yaml:"label" mapstructure:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Detail      string `json:"detail,omitempty" yaml:"detail,omitempty" mapstructure:"detail"`
	Data        any    `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
}

// Option is either a StaticOption or a DynamicOption.
type Option interface {
	isOption()
}

// StaticOption is a fixed list of items.
type StaticOption []OptionItem

func (StaticOption) isOption() {}

// DynamicOption is resolved by calling a remote procedure at prompt time.
type DynamicOption struct {
	Func
}

func (DynamicOption) isOption() {}

// Strings lifts plain strings into items whose ID and Label are both the string.
func Strings(values ...string) StaticOption {
	items := make(StaticOption, 0, len(values))
	for _, v := range values {
		items = append(items, OptionItem{ID: v, Label: v})
	}
	return items
}

// Items builds a StaticOption from explicit items.
func Items(items ...OptionItem) StaticOption {
	return StaticOption(items)
}

// Dynamic builds a DynamicOption for namespace.method.
func Dynamic(namespace, method string, params any) DynamicOption {
	return DynamicOption{Func{Namespace: namespace, Method: method, Params: params}}
}

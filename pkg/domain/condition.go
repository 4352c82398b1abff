package domain

import "strings"

// TargetKind classifies a condition target expression.
type TargetKind int

const (
	// TargetParent evaluates against the parent's answer.
	TargetParent TargetKind = iota
	// TargetParentProperty evaluates against one property of the parent's answer.
	TargetParentProperty
	// TargetUnknown always evaluates against an undefined value.
	TargetUnknown
)

// Target is a parsed condition target.
type Target struct {
	Kind     TargetKind
	Property string
	Expr     string
}

// ParseTarget parses "$parent" or "$parent.<prop>". An empty expression means
// "$parent". Anything else yields a TargetUnknown.
func ParseTarget(expr string) Target {
	trimmed := strings.TrimSpace(expr)
	switch {
	case trimmed == "" || trimmed == "$parent":
		return Target{Kind: TargetParent, Expr: "$parent"}
	case strings.HasPrefix(trimmed, "$parent."):
		prop := strings.TrimPrefix(trimmed, "$parent.")
		if prop == "" || strings.Contains(prop, ".") {
			return Target{Kind: TargetUnknown, Expr: trimmed}
		}
		return Target{Kind: TargetParentProperty, Property: prop, Expr: trimmed}
	}
	return Target{Kind: TargetUnknown, Expr: trimmed}
}

func (t Target) String() string {
	if t.Expr == "" {
		return "$parent"
	}
	return t.Expr
}

// Condition gates a node on a validation of its target value.
type Condition struct {
	Target     Target
	Validation Validation
}

// NewCondition parses target and attaches v.
func NewCondition(target string, v Validation) *Condition {
	return &Condition{Target: ParseTarget(target), Validation: v}
}

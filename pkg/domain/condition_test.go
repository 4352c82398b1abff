package domain

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		expr string
		want Target
	}{
		{"", Target{Kind: TargetParent, Expr: "$parent"}},
		{"$parent", Target{Kind: TargetParent, Expr: "$parent"}},
		{" $parent ", Target{Kind: TargetParent, Expr: "$parent"}},
		{"$parent.id", Target{Kind: TargetParentProperty, Property: "id", Expr: "$parent.id"}},
		{"$parent.", Target{Kind: TargetUnknown, Expr: "$parent."}},
		{"$parent.a.b", Target{Kind: TargetUnknown, Expr: "$parent.a.b"}},
		{"$root", Target{Kind: TargetUnknown, Expr: "$root"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := ParseTarget(tt.expr); got != tt.want {
				t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestAnyValidation_IsRequired(t *testing.T) {
	if !(AnyValidation{}).IsRequired() {
		t.Error("required must default to true")
	}
	if (AnyValidation{Required: Bool(false)}).IsRequired() {
		t.Error("explicit required:false ignored")
	}
}

func TestAnswersClone(t *testing.T) {
	var nilAnswers Answers
	if c := nilAnswers.Clone(); c == nil {
		t.Fatal("clone of nil answers must be usable")
	}
	a := Answers{"env": "dev"}
	c := a.Clone()
	c["env"] = "prod"
	if a["env"] != "dev" {
		t.Error("clone shares storage with the original")
	}
}

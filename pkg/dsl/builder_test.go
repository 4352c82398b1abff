package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SetupTree(t *testing.T) {
	tree, err := Group("setup").Children(
		SingleSelect("env").Title("Environment").Options("dev", "prod"),
		Text("url").
			When("$parent", Equals("prod")).
			Validate(&domain.StringValidation{Pattern: "^https://"}),
	).Build()
	require.NoError(t, err)

	require.Len(t, tree.Children, 2)
	env := tree.Children[0].Question().(*domain.SingleSelectQuestion)
	assert.Equal(t, "Environment", env.Title)
	assert.Equal(t, domain.Strings("dev", "prod"), env.Option)

	url := tree.Children[1]
	require.NotNil(t, url.Condition)
	assert.Equal(t, domain.TargetParent, url.Condition.Target.Kind)
	assert.Same(t, tree, url.Parent())
}

func TestBuilder_AllVariants(t *testing.T) {
	tree, err := Func("project", "fx", "detect", nil).Children(
		Password("secret").Placeholder("token").Prompt("never shared"),
		Number("replicas").Default(1).Validate(&domain.NumberValidation{Minimum: domain.Float(1)}),
		Folder("dir").Validate(&domain.FileValidation{Exists: true}),
		File("cert").Validate(Optional(&domain.StringValidation{EndsWith: ".pem"})),
		MultiSelect("caps").
			OptionsFrom("fx", "capabilities", map[string]any{"kind": "tab"}).
			ReturnObject().
			SkipSingleOption().
			OnSelectionChange("exclusiveBot").
			Validate(&domain.StringArrayValidation{MinItems: domain.Int(1)}),
		Text("name").DefaultFrom("fx", "suggestName", nil).When("$parent.kind", OneOf("tab", "bot")),
	).Build()
	require.NoError(t, err)
	require.Len(t, tree.Children, 6)

	caps := tree.Children[4].Question().(*domain.MultiSelectQuestion)
	assert.Equal(t, "exclusiveBot", caps.SelectionHandler)
	assert.True(t, caps.ReturnObject)
	assert.Equal(t, domain.Dynamic("fx", "capabilities", map[string]any{"kind": "tab"}), caps.Option)

	cert := tree.Children[3].Question().(*domain.FileQuestion)
	assert.False(t, cert.Validation.Common().IsRequired())

	name := tree.Children[5]
	assert.Equal(t, domain.TargetParentProperty, name.Condition.Target.Kind)
	assert.Equal(t, "kind", name.Condition.Target.Property)
	assert.Equal(t, &domain.Func{Namespace: "fx", Method: "suggestName"}, name.Question().Base().Default)
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    *NodeBuilder
	}{
		{"empty group", Group("g")},
		{"nested empty group", Group("g").Children(Group("inner"))},
		{"options on text", Text("t").Options("a")},
		{"title on group", Group("g").Title("x").Children(Text("t"))},
		{"duplicate on path", Text("a").Children(Group("g").Children(Text("a")))},
		{"bad validation shape", Number("n").Validate(&domain.StringValidation{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			assert.Error(t, err)
		})
	}
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() { Group("empty").MustBuild() })

	var se *domain.StructuralError
	_, err := Group("empty").Build()
	assert.True(t, errors.As(err, &se))
}

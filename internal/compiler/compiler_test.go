package compiler

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const setupYAML = `
id: setup
type: group
name: setup
children:
  - type: singleSelect
    name: env
    title: Environment
    option: [dev, prod]
  - type: text
    name: url
    condition:
      target: $parent
      equals: prod
    validation:
      required: true
      pattern: ^https://
`

func TestLoad_SetupTree(t *testing.T) {
	root, err := Load([]byte(setupYAML))
	require.NoError(t, err)

	require.Len(t, root.Children, 2)
	env := root.Children[0].Question().(*domain.SingleSelectQuestion)
	assert.Equal(t, domain.Strings("dev", "prod"), env.Option)

	url := root.Children[1]
	require.NotNil(t, url.Condition)
	assert.Equal(t, domain.TargetParent, url.Condition.Target.Kind)
	assert.Equal(t, &domain.AnyValidation{Equals: "prod"}, url.Condition.Validation)

	v := url.Question().(*domain.TextInputQuestion).Validation.(*domain.StringValidation)
	assert.Equal(t, "^https://", v.Pattern)
	assert.True(t, v.IsRequired())
}

func TestLoad_JSON(t *testing.T) {
	root, err := Load([]byte(`{"type":"number","name":"n","validation":{"minimum":1,"maximum":5}}`))
	require.NoError(t, err)
	v := root.Question().(*domain.NumberInputQuestion).Validation.(*domain.NumberValidation)
	assert.Equal(t, 1.0, *v.Minimum)
	assert.Equal(t, 5.0, *v.Maximum)
}

func TestLoad_DynamicOptionAndDefault(t *testing.T) {
	root, err := Load([]byte(`
type: multiSelect
name: caps
onDidChangeSelection: exclusiveBot
option:
  namespace: fx
  method: capabilities
  params: {kind: tab}
default:
  namespace: fx
  method: defaultCaps
`))
	require.NoError(t, err)
	q := root.Question().(*domain.MultiSelectQuestion)
	assert.Equal(t, domain.Dynamic("fx", "capabilities", map[string]any{"kind": "tab"}), q.Option)
	assert.Equal(t, &domain.Func{Namespace: "fx", Method: "defaultCaps"}, q.Default)
	assert.Equal(t, "exclusiveBot", q.SelectionHandler)
}

func TestInferValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		hint domain.NodeType
		want domain.Validation
	}{
		{"common only", map[string]any{"required": false}, domain.NodeTypeText, &domain.AnyValidation{Required: domain.Bool(false)}},
		{"string enum", map[string]any{"enum": []any{"a"}}, domain.NodeTypeText, &domain.StringValidation{Enum: []string{"a"}}},
		{"array enum", map[string]any{"enum": []any{"a"}}, domain.NodeTypeMultiSelect, &domain.StringArrayValidation{Enum: []string{"a"}}},
		{"numeric enum", map[string]any{"enum": []any{1, 2}}, domain.NodeTypeText, &domain.NumberValidation{Enum: []float64{1, 2}}},
		{"file", map[string]any{"exists": true}, domain.NodeTypeFile, &domain.FileValidation{Exists: true}},
		{"local", map[string]any{"validFunc": "lower"}, domain.NodeTypeText, &domain.LocalFuncValidation{Validator: "lower"}},
		{"remote", map[string]any{"namespace": "fx", "method": "check", "required": true}, domain.NodeTypeText,
			&domain.RemoteFuncValidation{AnyValidation: domain.AnyValidation{Required: domain.Bool(true)}, Func: domain.Func{Namespace: "fx", Method: "check"}}},
		{"explicit kind", map[string]any{"kind": "stringArray", "equals": []any{"x"}}, domain.NodeTypeText,
			&domain.StringArrayValidation{AnyValidation: domain.AnyValidation{Equals: []any{"x"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inferValidation("q", tt.raw, tt.hint)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("inferValidation mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInferValidation_Errors(t *testing.T) {
	for name, raw := range map[string]map[string]any{
		"mixed families": {"minimum": 1, "pattern": "x"},
		"unknown key":    {"minimun": 1},
		"bad pattern":    {"pattern": "("},
		"unknown kind":   {"kind": "date"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := inferValidation("q", raw, domain.NodeTypeText)
			var se *domain.StructuralError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"unsupported type": `{"type":"date","name":"d"}`,
		"empty group":      `{"type":"group","name":"g"}`,
		"duplicate names":  `{"type":"text","name":"a","children":[{"type":"text","name":"a"}]}`,
		"bad option":       `{"type":"singleSelect","name":"s","option":[{"detail":"x"}]}`,
		"empty":            `  `,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(src))
			assert.Error(t, err)
		})
	}

	_, err := Load([]byte(`{"type":"date","name":"d"}`))
	var ute *domain.UnsupportedTypeError
	assert.ErrorAs(t, err, &ute)
}

func TestExport_RoundTrip(t *testing.T) {
	root, err := Load([]byte(setupYAML))
	require.NoError(t, err)

	raw, err := json.Marshal(Export(root))
	require.NoError(t, err)
	again, err := Load(raw)
	require.NoError(t, err)

	assert.Equal(t, Export(root), Export(again))
}

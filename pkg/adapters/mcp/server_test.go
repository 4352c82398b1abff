package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtree/pkg/adapters/memory"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/registry"
)

const setupYAML = `
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
      pattern: ^https://
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := registry.NewRegistry()
	reg.Register("math", "double", func(ctx context.Context, params any, answers domain.Answers) (any, error) {
		n, _ := params.(float64)
		return n * 2, nil
	})
	loader := memory.NewLoader(map[string]string{"setup": setupYAML, "broken": "type: nope"})
	return NewServer(loader, WithRemoteCaller(reg), WithFunctionLister(reg))
}

func TestServer_Listing(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	trees, err := s.handleListTrees(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "setup"}, trees.Trees)

	fns, err := s.handleListFunctions(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"math.double"}, fns.Functions)
}

func TestServer_NextQuestion(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		answers     string
		wantStatus  string
		wantPrompt  string
		wantFailure string
		wantAnswers domain.Answers
	}{
		{name: "First question", answers: "", wantStatus: StatusPending, wantPrompt: "env"},
		{name: "Conditional question", answers: `{"env":"prod"}`, wantStatus: StatusPending, wantPrompt: "url"},
		{name: "Rejected seed", answers: `{"env":"prod","url":"http://x"}`, wantStatus: StatusPending, wantPrompt: "url", wantFailure: "value must match pattern ^https://"},
		{name: "Completed", answers: `{"env":"dev"}`, wantStatus: "completed", wantAnswers: domain.Answers{"env": "dev"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleNextQuestion(ctx, mcp.CallToolRequest{}, map[string]interface{}{
				"tree_id": "setup",
				"answers": tt.answers,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantPrompt != "" {
				require.NotNil(t, res.Prompt)
				assert.Equal(t, tt.wantPrompt, res.Prompt.Name)
				assert.Equal(t, tt.wantFailure, res.Prompt.LastFailure)
			} else {
				assert.Nil(t, res.Prompt)
				assert.Equal(t, tt.wantAnswers, res.Answers)
			}
		})
	}

	t.Run("Invalid answers", func(t *testing.T) {
		_, err := s.handleNextQuestion(ctx, mcp.CallToolRequest{}, map[string]interface{}{
			"tree_id": "setup",
			"answers": "[1,2]",
		})
		assert.Error(t, err)
	})

	t.Run("Unknown tree", func(t *testing.T) {
		_, err := s.handleNextQuestion(ctx, mcp.CallToolRequest{}, map[string]interface{}{"tree_id": "missing"})
		assert.Error(t, err)
	})

	t.Run("Broken tree", func(t *testing.T) {
		_, err := s.handleNextQuestion(ctx, mcp.CallToolRequest{}, map[string]interface{}{"tree_id": "broken"})
		assert.Error(t, err)
	})
}

func TestServer_GraphTree(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleGraphTree(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"tree_id": "setup",
		"answers": `{"env":"prod"}`,
		"current": "url",
	})
	require.NoError(t, err)
	assert.Equal(t, "setup", res.ID)
	assert.Contains(t, res.Mermaid, "graph TD")
	assert.Contains(t, res.Mermaid, "class env answered")
	assert.Contains(t, res.Mermaid, "class url current")
}

func TestServer_CallFunction(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleCallFunction(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"namespace": "math",
		"method":    "double",
		"params":    "21",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(42), res.Result)

	_, err = s.handleCallFunction(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"namespace": "math",
		"method":    "triple",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownFunction)

	_, err = s.handleCallFunction(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"namespace": "math",
		"method":    "double",
		"params":    "{not json",
	})
	assert.Error(t, err)

	bare := NewServer(memory.NewLoader(nil))
	_, err = bare.handleCallFunction(ctx, mcp.CallToolRequest{}, map[string]interface{}{"namespace": "a", "method": "b"})
	assert.Error(t, err)
}

func TestServer_ReadTreeResource(t *testing.T) {
	s := newTestServer(t)

	var req mcp.ReadResourceRequest
	req.Params.URI = "qtree://trees/setup"

	contents, err := s.readTree(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
	assert.Equal(t, "setup", doc["name"])

	req.Params.URI = "other://setup"
	_, err = s.readTree(context.Background(), req)
	assert.Error(t, err)
}

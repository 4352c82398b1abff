package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/qtree/internal/runtime"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAsker replies with queued answers per question name and records every request.
type scriptedAsker struct {
	replies  map[string][]ports.Answer
	requests []ports.AskRequest
}

func newScriptedAsker() *scriptedAsker {
	return &scriptedAsker{replies: map[string][]ports.Answer{}}
}

func (s *scriptedAsker) on(name string, answers ...ports.Answer) *scriptedAsker {
	s.replies[name] = append(s.replies[name], answers...)
	return s
}

func (s *scriptedAsker) Ask(_ context.Context, req ports.AskRequest) (ports.Answer, error) {
	s.requests = append(s.requests, req)
	name := req.Question.Base().Name
	queue := s.replies[name]
	if len(queue) == 0 {
		return ports.Answer{}, errors.New("unexpected question " + name)
	}
	s.replies[name] = queue[1:]
	return queue[0], nil
}

func (s *scriptedAsker) asked() []string {
	var names []string
	for _, r := range s.requests {
		names = append(names, r.Question.Base().Name)
	}
	return names
}

// recordingRemote answers remote calls from a table keyed by "namespace.method".
type recordingRemote struct {
	results map[string]any
	errs    map[string]error
	calls   []domain.Func
}

func (r *recordingRemote) Call(_ context.Context, fn domain.Func, _ domain.Answers) (any, error) {
	r.calls = append(r.calls, fn)
	if err := r.errs[fn.String()]; err != nil {
		return nil, err
	}
	return r.results[fn.String()], nil
}

func node(t *testing.T, data domain.NodeData, children ...*domain.QTreeNode) *domain.QTreeNode {
	t.Helper()
	n := domain.NewNode(data)
	for _, c := range children {
		require.NoError(t, n.AddChild(c))
	}
	return n
}

func textQ(name string) *domain.TextInputQuestion {
	return &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: name}}
}

// setupTree builds the "setup" group with env and a conditional url.
func setupTree(t *testing.T) *domain.QTreeNode {
	env := domain.NewNode(&domain.SingleSelectQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "env"},
		Option:       domain.Strings("dev", "prod"),
	})
	url := domain.NewNode(&domain.TextInputQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "url"},
		Validation:   &domain.StringValidation{Pattern: "^https://"},
	}).When("$parent", &domain.AnyValidation{Equals: "prod"})
	return node(t, &domain.Group{Name: "setup"}, env, url)
}

func TestRun_SetupScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("dev skips url", func(t *testing.T) {
		asker := newScriptedAsker().on("env", ports.Value("dev"))
		res, err := runtime.NewEngine(asker).Run(ctx, setupTree(t), nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, res.Status)
		assert.Equal(t, domain.Answers{"env": "dev"}, res.Answers)
	})

	t.Run("prod asks url", func(t *testing.T) {
		asker := newScriptedAsker().
			on("env", ports.Value("prod")).
			on("url", ports.Value("https://x.com"))
		res, err := runtime.NewEngine(asker).Run(ctx, setupTree(t), nil)
		require.NoError(t, err)
		assert.Equal(t, domain.Answers{"env": "prod", "url": "https://x.com"}, res.Answers)
	})

	t.Run("invalid url is asked again", func(t *testing.T) {
		asker := newScriptedAsker().
			on("env", ports.Value("prod")).
			on("url", ports.Value("http://x.com"), ports.Value("https://x.com"))
		res, err := runtime.NewEngine(asker).Run(ctx, setupTree(t), nil)
		require.NoError(t, err)
		assert.Equal(t, "https://x.com", res.Answers["url"])

		require.Len(t, asker.requests, 3)
		retry := asker.requests[2]
		assert.Equal(t, 2, retry.Attempt)
		assert.Equal(t, "value must match pattern ^https://", retry.LastFailure)
	})
}

func TestRun_VisitsEveryNodeInPreOrder(t *testing.T) {
	tree := node(t, textQ("a"),
		node(t, textQ("b"), node(t, textQ("c"))),
		node(t, &domain.Group{}, node(t, textQ("d")), node(t, textQ("e"))),
		node(t, textQ("f")),
	)
	asker := newScriptedAsker()
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		asker.on(n, ports.Value(n+"!"))
	}

	res, err := runtime.NewEngine(asker).Run(context.Background(), tree, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, asker.asked())
	assert.Len(t, res.Answers, 6)
}

func TestRun_SkipSingleOption(t *testing.T) {
	remote := &recordingRemote{results: map[string]any{"fx.regions": []any{"westus"}}}
	tree := domain.NewNode(&domain.SingleSelectQuestion{
		BaseQuestion:     domain.BaseQuestion{Name: "region"},
		Option:           domain.Dynamic("fx", "regions", nil),
		SkipSingleOption: true,
	})
	asker := newScriptedAsker()

	res, err := runtime.NewEngine(asker, runtime.WithRemoteCaller(remote)).Run(context.Background(), tree, nil)
	require.NoError(t, err)
	assert.Empty(t, asker.requests)
	assert.Equal(t, "westus", res.Answers["region"])
}

func TestRun_InactiveSubtreeMakesNoCalls(t *testing.T) {
	remote := &recordingRemote{}
	hidden := node(t, &domain.FuncQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "computed"},
		Func:         domain.Func{Namespace: "fx", Method: "compute"},
	}, domain.NewNode(&domain.SingleSelectQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "pick"},
		Option:       domain.Dynamic("fx", "options", nil),
	}))
	hidden.When("$parent", &domain.AnyValidation{Equals: "yes"})
	tree := node(t, textQ("confirm"), hidden)

	asker := newScriptedAsker().on("confirm", ports.Value("no"))
	res, err := runtime.NewEngine(asker, runtime.WithRemoteCaller(remote)).Run(context.Background(), tree, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Answers{"confirm": "no"}, res.Answers)
	assert.Empty(t, remote.calls)
}

func TestRun_ReturnObject(t *testing.T) {
	items := domain.Items(
		domain.OptionItem{ID: "a", Label: "Alpha", Data: 1},
		domain.OptionItem{ID: "b", Label: "Beta"},
	)
	tree := node(t, &domain.SingleSelectQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "one"},
		Option:       items,
		ReturnObject: true,
	}, domain.NewNode(&domain.MultiSelectQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "many"},
		Option:       items,
	}).When("$parent.id", &domain.StringValidation{Enum: []string{"a"}}))

	asker := newScriptedAsker().
		on("one", ports.Value("a")).
		on("many", ports.Value([]any{"b", "a"}))

	res, err := runtime.NewEngine(asker).Run(context.Background(), tree, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OptionItem{ID: "a", Label: "Alpha", Data: 1}, res.Answers["one"])
	assert.Equal(t, []string{"b", "a"}, res.Answers["many"])
}

func TestRun_UnknownOptionIsRejected(t *testing.T) {
	tree := domain.NewNode(&domain.SingleSelectQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "env"},
		Option:       domain.Strings("dev"),
	})
	asker := newScriptedAsker().on("env", ports.Value("qa"), ports.Value("dev"))

	res, err := runtime.NewEngine(asker).Run(context.Background(), tree, nil)
	require.NoError(t, err)
	assert.Equal(t, "dev", res.Answers["env"])
	assert.Equal(t, `"qa" is not one of the options`, asker.requests[1].LastFailure)
}

func TestRun_Cancel(t *testing.T) {
	tree := node(t, &domain.Group{},
		node(t, textQ("first")),
		node(t, textQ("second")),
		node(t, textQ("third")),
	)
	asker := newScriptedAsker().
		on("first", ports.Value("1")).
		on("second", ports.Cancel())
	answers := domain.Answers{}

	res, err := runtime.NewEngine(asker).Run(context.Background(), tree, answers)
	require.NoError(t, err)
	assert.True(t, res.Cancelled())
	assert.Nil(t, res.Answers)
	assert.Empty(t, answers, "a cancelled run leaves the seed untouched")
	assert.Equal(t, []string{"first", "second"}, asker.asked())
}

func TestRun_SeedIsNotShared(t *testing.T) {
	tree := node(t, &domain.Group{},
		node(t, textQ("first")),
		node(t, textQ("second")),
	)
	seed := domain.Answers{"env": "dev"}

	cancelled := newScriptedAsker().
		on("first", ports.Value("leaked")).
		on("second", ports.Cancel())
	res, err := runtime.NewEngine(cancelled).Run(context.Background(), tree, seed)
	require.NoError(t, err)
	require.True(t, res.Cancelled())
	assert.Equal(t, domain.Answers{"env": "dev"}, seed)

	asker := newScriptedAsker().
		on("first", ports.Value("a")).
		on("second", ports.Value("b"))
	res, err = runtime.NewEngine(asker).Run(context.Background(), tree, seed)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, asker.asked())
	assert.Equal(t, domain.Answers{"env": "dev", "first": "a", "second": "b"}, res.Answers)
	assert.Equal(t, domain.Answers{"env": "dev"}, seed, "completed runs do not write into the seed either")
}

func TestRun_NumberPreCheck(t *testing.T) {
	tree := domain.NewNode(&domain.NumberInputQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "replicas"},
		Validation:   &domain.NumberValidation{Minimum: domain.Float(1), Maximum: domain.Float(5)},
	})
	asker := newScriptedAsker().on("replicas",
		ports.Value("abc"), ports.Value("NaN"), ports.Value("Inf"), ports.Value("9"), ports.Value("3"))

	res, err := runtime.NewEngine(asker).Run(context.Background(), tree, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Answers["replicas"])
	require.Len(t, asker.requests, 5)
	assert.Equal(t, "value must be a number", asker.requests[1].LastFailure)
	assert.Equal(t, "value must be a number", asker.requests[2].LastFailure)
	assert.Equal(t, "value must be a number", asker.requests[3].LastFailure)
	assert.Equal(t, "value must be at most 5", asker.requests[4].LastFailure)
}

func TestRun_RemoteErrorAborts(t *testing.T) {
	remote := &recordingRemote{errs: map[string]error{"fx.list": errors.New("offline")}}
	tree := domain.NewNode(&domain.SingleSelectQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "sub"},
		Option:       domain.Dynamic("fx", "list", nil),
	})
	answers := domain.Answers{}

	_, err := runtime.NewEngine(newScriptedAsker(), runtime.WithRemoteCaller(remote)).Run(context.Background(), tree, answers)
	var rce *domain.RemoteCallError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "list", rce.Method)
	assert.Empty(t, answers)
}

func TestRun_NoOptions(t *testing.T) {
	remote := &recordingRemote{results: map[string]any{"fx.list": []any{}}}
	tree := domain.NewNode(&domain.SingleSelectQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "sub"},
		Option:       domain.Dynamic("fx", "list", nil),
	})
	_, err := runtime.NewEngine(newScriptedAsker(), runtime.WithRemoteCaller(remote)).Run(context.Background(), tree, nil)
	assert.ErrorIs(t, err, domain.ErrNoOptions)
}

func TestRun_FuncQuestionFeedsChildren(t *testing.T) {
	remote := &recordingRemote{results: map[string]any{
		"fx.detect":   map[string]any{"kind": "tab", "name": "app"},
		"fx.defaults": "my-app",
	}}
	name := domain.NewNode(&domain.TextInputQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "appName", Default: &domain.Func{Namespace: "fx", Method: "defaults"}},
	}).When("$parent.kind", &domain.AnyValidation{Equals: "tab"})
	tree := node(t, &domain.FuncQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "project"},
		Func:         domain.Func{Namespace: "fx", Method: "detect"},
	}, name)

	asker := newScriptedAsker().on("appName", ports.Value("chosen"))
	res, err := runtime.NewEngine(asker, runtime.WithRemoteCaller(remote)).Run(context.Background(), tree, nil)
	require.NoError(t, err)
	assert.Equal(t, "chosen", res.Answers["appName"])
	require.Len(t, asker.requests, 1)
	assert.Equal(t, "my-app", asker.requests[0].Default)
	assert.Equal(t, map[string]any{"kind": "tab", "name": "app"}, asker.requests[0].Answers["project"])
}

func TestRun_PreSeededAnswers(t *testing.T) {
	tree := node(t, &domain.Group{},
		node(t, textQ("stage")),
		domain.NewNode(&domain.TextInputQuestion{
			BaseQuestion: domain.BaseQuestion{Name: "url"},
			Validation:   &domain.StringValidation{StartsWith: "https://"},
		}),
	)
	asker := newScriptedAsker().on("url", ports.Value("https://ok"))
	answers := domain.Answers{"stage": "provision", "url": "ftp://bad"}

	res, err := runtime.NewEngine(asker).Run(context.Background(), tree, answers)
	require.NoError(t, err)
	assert.Equal(t, []string{"url"}, asker.asked())
	assert.Equal(t, `value must start with "https://"`, asker.requests[0].LastFailure)
	assert.Equal(t, "provision", res.Answers["stage"])
	assert.Equal(t, "https://ok", res.Answers["url"])
}

func TestRun_MaxAttempts(t *testing.T) {
	tree := domain.NewNode(&domain.TextInputQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "name"},
		Validation:   &domain.StringValidation{MinLength: domain.Int(10)},
	})
	asker := newScriptedAsker().on("name", ports.Value("a"), ports.Value("b"))

	_, err := runtime.NewEngine(asker, runtime.WithMaxAttempts(2)).Run(context.Background(), tree, nil)
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)
}

func TestRun_RootConditionIsInactive(t *testing.T) {
	tree := domain.NewNode(textQ("root")).When("$parent", &domain.AnyValidation{})
	res, err := runtime.NewEngine(newScriptedAsker()).Run(context.Background(), tree, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Answers)
}

func TestRun_StructuralErrorBeforeAsking(t *testing.T) {
	tree := domain.NewNode(&domain.Group{Name: "empty"})
	asker := newScriptedAsker()

	_, err := runtime.NewEngine(asker).Run(context.Background(), tree, nil)
	var se *domain.StructuralError
	assert.ErrorAs(t, err, &se)
	assert.Empty(t, asker.requests)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runtime.NewEngine(newScriptedAsker()).Run(ctx, domain.NewNode(textQ("x")), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

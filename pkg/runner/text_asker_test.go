package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

func selectRequest() ports.AskRequest {
	q := &domain.SingleSelectQuestion{
		BaseQuestion: domain.BaseQuestion{Name: "env", Title: "Environment", Description: "Where it **runs**"},
	}
	return ports.AskRequest{
		Question: q,
		Options:  domain.Items(domain.OptionItem{ID: "dev", Label: "Development"}, domain.OptionItem{ID: "prod", Label: "Production", Description: "careful"}),
		Attempt:  1,
	}
}

func TestTextAsker_Render(t *testing.T) {
	outBuf := &bytes.Buffer{}
	asker := NewTextAsker(strings.NewReader("2\n"), outBuf, WithRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	ans, err := asker.Ask(context.Background(), selectRequest())
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if ans != ports.Value("prod") {
		t.Errorf("Expected prod, got %#v", ans)
	}

	output := outBuf.String()
	for _, expected := range []string{"? Environment", "Rendered: Where it **runs**", "1) Development", "2) Production - careful", "> "} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q, got %q", expected, output)
		}
	}
}

func TestTextAsker_Answers(t *testing.T) {
	multi := &domain.MultiSelectQuestion{BaseQuestion: domain.BaseQuestion{Name: "caps"}}
	text := &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "name"}}
	items := domain.Items(domain.OptionItem{ID: "tab"}, domain.OptionItem{ID: "bot"}, domain.OptionItem{ID: "ext"})
	single := &domain.SingleSelectQuestion{BaseQuestion: domain.BaseQuestion{Name: "replicas"}}
	counts := domain.Items(domain.OptionItem{ID: "2"}, domain.OptionItem{ID: "1"})
	sizes := domain.Items(domain.OptionItem{ID: "5"}, domain.OptionItem{ID: "10"})

	tests := []struct {
		name  string
		input string
		req   ports.AskRequest
		want  ports.Answer
	}{
		{"Select By ID", "dev\n", selectRequest(), ports.Value("dev")},
		{"Unknown Option Passes Through", "9\n", selectRequest(), ports.Value("9")},
		{"Empty Takes Default", "\n", ports.AskRequest{Question: text, Default: "app"}, ports.Value("app")},
		{"Text Is Trimmed", "  my app \n", ports.AskRequest{Question: text}, ports.Value("my app")},
		{"Control Chars Stripped", "a\x07b\n", ports.AskRequest{Question: text}, ports.Value("ab")},
		{"Multi Mixed", "1, ext\n", ports.AskRequest{Question: multi, Options: items}, ports.Value([]string{"tab", "ext"})},
		{"Exact ID Before Index", "1\n", ports.AskRequest{Question: single, Options: counts}, ports.Value("1")},
		{"Index When No ID Matches", "1\n", ports.AskRequest{Question: single, Options: sizes}, ports.Value("5")},
		{"Multi Exact IDs", "1, 2\n", ports.AskRequest{Question: &domain.MultiSelectQuestion{BaseQuestion: domain.BaseQuestion{Name: "n"}}, Options: counts}, ports.Value([]string{"1", "2"})},
		{"Multi Empty", "\n", ports.AskRequest{Question: multi, Options: items}, ports.Value([]string{})},
		{"EOF Cancels", "", ports.AskRequest{Question: text}, ports.Cancel()},
		{"Last Line Without Newline", "last", ports.AskRequest{Question: text}, ports.Value("last")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := NewTextAsker(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := asker.Ask(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Ask failed: %v", err)
			}
			if got.Kind != tt.want.Kind || formatDefault(got.Value) != formatDefault(tt.want.Value) {
				t.Errorf("Expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestTextAsker_LastFailureAndSelectionHandler(t *testing.T) {
	outBuf := &bytes.Buffer{}
	q := &domain.MultiSelectQuestion{BaseQuestion: domain.BaseQuestion{Name: "caps"}}
	req := ports.AskRequest{
		Question:    q,
		Options:     domain.Items(domain.OptionItem{ID: "tab"}, domain.OptionItem{ID: "bot"}),
		Attempt:     2,
		LastFailure: "select at least 1 items",
		// "bot" excludes every other capability.
		SelectionHandler: ports.SelectionHandlerFunc(func(ctx context.Context, selected []domain.OptionItem) ([]string, error) {
			for _, item := range selected {
				if item.ID == "bot" {
					return []string{"bot"}, nil
				}
			}
			return nil, nil
		}),
	}

	asker := NewTextAsker(strings.NewReader("tab,bot\n"), outBuf)
	ans, err := asker.Ask(context.Background(), req)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if formatDefault(ans.Value) != "bot" {
		t.Errorf("Expected handler to narrow selection to bot, got %v", ans.Value)
	}

	output := outBuf.String()
	if !strings.Contains(output, "✗ select at least 1 items") {
		t.Errorf("Expected failure reason in output, got %q", output)
	}
	if !strings.Contains(output, "Selection adjusted: bot") {
		t.Errorf("Expected adjusted selection in output, got %q", output)
	}
}

func TestTextAsker_Password(t *testing.T) {
	q := &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "token"}, Secret: true}
	asker := NewTextAsker(strings.NewReader("visible\n"), &bytes.Buffer{}, WithPasswordReader(func() (string, error) {
		return "hidden", nil
	}))

	ans, err := asker.Ask(context.Background(), ports.AskRequest{Question: q})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if ans != ports.Value("hidden") {
		t.Errorf("Expected password reader answer, got %#v", ans)
	}
}

func TestTextAsker_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The pipe never yields a line, so only cancellation can end the wait.
	r, w := io.Pipe()
	defer w.Close()

	asker := NewTextAsker(r, &bytes.Buffer{})
	_, err := asker.Ask(ctx, ports.AskRequest{Question: &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "x"}}})
	if err == nil {
		t.Error("Expected context error")
	}
}

func TestTextAsker_Confirm(t *testing.T) {
	asker := NewTextAsker(strings.NewReader("yes\nno\n"), &bytes.Buffer{})
	for _, want := range []bool{true, false, false} {
		got, err := asker.Confirm(context.Background(), "Proceed?")
		if err != nil {
			t.Fatalf("Confirm failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}

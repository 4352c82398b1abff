package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// JSONAsker implements ports.Asker for structured JSON-Lines communication
// with a host process (editor extension, web backend, test harness).
//
// Every question is written as one line:
//
//	{"type":"ask","prompt":{...Prompt...}}
//
// and the host replies with one line holding either a bare JSON value, an
// object {"value": ...}, or {"cancel": true}. End of input cancels.
type JSONAsker struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// Message is one line written by JSONAsker.
type Message struct {
	Type   string   `json:"type"`
	Prompt *Prompt  `json:"prompt,omitempty"`
	IDs    []string `json:"ids,omitempty"`
	Result any      `json:"result,omitempty"`
}

// Reply is the object form of a host answer.
type Reply struct {
	Value  any  `json:"value"`
	Cancel bool `json:"cancel"`
}

// NewJSONAsker creates an asker for JSON IO.
func NewJSONAsker(r io.Reader, w io.Writer) *JSONAsker {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONAsker{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

// Ask implements ports.Asker.
func (h *JSONAsker) Ask(ctx context.Context, req ports.AskRequest) (ports.Answer, error) {
	if err := ctx.Err(); err != nil {
		return ports.Answer{}, err
	}
	p := Describe(req)
	if err := h.Encoder.Encode(Message{Type: "ask", Prompt: &p}); err != nil {
		return ports.Answer{}, err
	}

	text, err := h.Reader.ReadString('\n')
	if errors.Is(err, io.EOF) && strings.TrimSpace(text) == "" {
		return ports.Cancel(), nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return ports.Answer{}, err
	}

	ans, err := decodeReply(strings.TrimSpace(text))
	if err != nil {
		return ports.Answer{}, err
	}
	if ans.Kind == ports.Cancelled {
		return ans, nil
	}

	if _, ok := req.Question.(*domain.MultiSelectQuestion); ok && req.SelectionHandler != nil {
		adjusted, err := applySelection(ctx, req, stringList(ans.Value))
		if err != nil {
			return ports.Answer{}, err
		}
		if err := h.Encoder.Encode(Message{Type: "selection", IDs: adjusted}); err != nil {
			return ports.Answer{}, err
		}
		return ports.Value(adjusted), nil
	}
	return ans, nil
}

// Done writes the final result line.
func (h *JSONAsker) Done(res domain.Result) error {
	return h.Encoder.Encode(Message{Type: string(res.Status), Result: res.Answers})
}

func decodeReply(text string) (ports.Answer, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		// Plain text is taken as a string answer.
		clean, err := SanitizeInput(text)
		if err != nil {
			return ports.Answer{}, err
		}
		return ports.Value(clean), nil
	}

	if obj, ok := raw.(map[string]any); ok {
		_, hasValue := obj["value"]
		_, hasCancel := obj["cancel"]
		if hasValue || hasCancel {
			var reply Reply
			if err := json.Unmarshal([]byte(text), &reply); err != nil {
				return ports.Answer{}, fmt.Errorf("invalid reply: %w", err)
			}
			if reply.Cancel {
				return ports.Cancel(), nil
			}
			raw = reply.Value
		}
	}

	clean, err := SanitizeValue(raw)
	if err != nil {
		return ports.Answer{}, err
	}
	return ports.Value(clean), nil
}

func stringList(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, fmt.Sprint(e))
		}
		return out
	case string:
		return []string{x}
	}
	return nil
}

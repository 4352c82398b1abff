package runner

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// Prompt is a serializable view of one AskRequest for rich clients
// (JSON-Lines hosts, MCP tools, HTTP frontends).
type Prompt struct {
	Name        string              `json:"name"`
	Type        domain.NodeType     `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Placeholder string              `json:"placeholder,omitempty"`
	Prompt      string              `json:"prompt,omitempty"`
	Options     []domain.OptionItem `json:"options,omitempty"`
	Default     any                 `json:"default,omitempty"`
	Required    bool                `json:"required"`
	Attempt     int                 `json:"attempt"`
	LastFailure string              `json:"lastFailure,omitempty"`
}

// Describe builds the Prompt for req.
func Describe(req ports.AskRequest) Prompt {
	q := req.Question
	b := q.Base()
	placeholder, prompt := hints(q)

	required := false
	if v := domain.ValidationOf(q); v != nil {
		required = v.Common().IsRequired()
	} else {
		switch q.(type) {
		case *domain.SingleSelectQuestion, *domain.NumberInputQuestion:
			required = true
		}
	}

	return Prompt{
		Name:        b.Name,
		Type:        q.Type(),
		Title:       b.DisplayTitle(),
		Description: b.Description,
		Placeholder: placeholder,
		Prompt:      prompt,
		Options:     req.Options,
		Default:     req.Default,
		Required:    required,
		Attempt:     req.Attempt,
		LastFailure: req.LastFailure,
	}
}

func hints(q domain.Question) (placeholder, prompt string) {
	switch t := q.(type) {
	case *domain.TextInputQuestion:
		return t.Placeholder, t.Prompt
	case *domain.NumberInputQuestion:
		return t.Placeholder, t.Prompt
	case *domain.SingleSelectQuestion:
		return t.Placeholder, t.Prompt
	case *domain.MultiSelectQuestion:
		return t.Placeholder, t.Prompt
	}
	return "", ""
}

// applySelection runs the request's selection handler, if any, over the
// chosen IDs and returns the IDs the handler settles on.
func applySelection(ctx context.Context, req ports.AskRequest, ids []string) ([]string, error) {
	if req.SelectionHandler == nil {
		return ids, nil
	}
	selected := make([]domain.OptionItem, 0, len(ids))
	for _, item := range req.Options {
		if slices.Contains(ids, item.ID) {
			selected = append(selected, item)
		}
	}
	out, err := req.SelectionHandler.OnSelectionChange(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("selection handler failed: %w", err)
	}
	return out, nil
}

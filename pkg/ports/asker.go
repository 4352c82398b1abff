package ports

import (
	"context"

	"github.com/aretw0/qtree/pkg/domain"
)

// AnswerKind distinguishes a concrete answer from a cancellation.
type AnswerKind int

const (
	Answered AnswerKind = iota
	Cancelled
)

// Answer is what an Asker returns for one prompt.
type Answer struct {
	Kind  AnswerKind
	Value any
}

// Value builds an Answered answer.
func Value(v any) Answer { return Answer{Kind: Answered, Value: v} }

// Cancel builds a Cancelled answer.
func Cancel() Answer { return Answer{Kind: Cancelled} }

// AskRequest carries everything a prompting surface needs to render one question.
type AskRequest struct {
	Node     *domain.QTreeNode
	Question domain.Question
	// Options is the resolved option list for select questions.
	Options []domain.OptionItem
	// Default is the resolved default. Dynamic defaults are already called.
	Default any
	// Answers is a read-only snapshot of the answers collected so far.
	Answers domain.Answers
	// Attempt starts at 1 and grows on every re-prompt.
	Attempt int
	// LastFailure is the reason the previous answer was rejected.
	LastFailure string
	// SelectionHandler is set for multi-select questions that declare one.
	SelectionHandler SelectionHandler
}

// Asker obtains one raw answer from a user or a script.
//
// Select questions answer with the chosen item ID (or IDs for multi-select);
// the engine maps them back to items. Returning an error aborts the traversal.
type Asker interface {
	Ask(ctx context.Context, req AskRequest) (Answer, error)
}

// AskerFunc adapts a function to the Asker interface.
type AskerFunc func(ctx context.Context, req AskRequest) (Answer, error)

func (f AskerFunc) Ask(ctx context.Context, req AskRequest) (Answer, error) {
	return f(ctx, req)
}

package ports

import (
	"context"

	"github.com/aretw0/qtree/pkg/domain"
)

// LocalValidator checks an answer in-process. It returns "" when the value is
// acceptable and a failure reason otherwise. A non-nil error aborts the traversal.
type LocalValidator interface {
	Validate(ctx context.Context, value any) (string, error)
}

// LocalValidatorFunc adapts a function to the LocalValidator interface.
type LocalValidatorFunc func(ctx context.Context, value any) (string, error)

func (f LocalValidatorFunc) Validate(ctx context.Context, value any) (string, error) {
	return f(ctx, value)
}

// LocalValidators looks up validators by the name used in a tree's validFunc.
type LocalValidators interface {
	LocalValidator(name string) (LocalValidator, bool)
}

// SelectionHandler is consulted by multi-select prompts whenever the selection
// changes. It returns the IDs that should be selected afterwards.
type SelectionHandler interface {
	OnSelectionChange(ctx context.Context, selected []domain.OptionItem) ([]string, error)
}

// SelectionHandlerFunc adapts a function to the SelectionHandler interface.
type SelectionHandlerFunc func(ctx context.Context, selected []domain.OptionItem) ([]string, error)

func (f SelectionHandlerFunc) OnSelectionChange(ctx context.Context, selected []domain.OptionItem) ([]string, error) {
	return f(ctx, selected)
}

// SelectionHandlers looks up selection handlers by name.
type SelectionHandlers interface {
	SelectionHandler(name string) (SelectionHandler, bool)
}

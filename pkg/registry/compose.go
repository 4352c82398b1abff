package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// FirstOf tries each caller in order and returns the first answer from a
// caller that knows the function. The last unknown-function error is
// returned when none does.
func FirstOf(callers ...ports.RemoteCaller) ports.RemoteCaller {
	return ports.RemoteCallerFunc(func(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
		err := fmt.Errorf("%w: %s", ErrNotFound, fn)
		for _, c := range callers {
			if c == nil {
				continue
			}
			out, callErr := c.Call(ctx, fn, answers)
			if callErr == nil || !errors.Is(callErr, ErrNotFound) {
				return out, callErr
			}
			err = callErr
		}
		return nil, err
	})
}

// ValidatorLookups searches each lookup in order.
type ValidatorLookups []ports.LocalValidators

// LocalValidator implements ports.LocalValidators.
func (ls ValidatorLookups) LocalValidator(name string) (ports.LocalValidator, bool) {
	for _, l := range ls {
		if l == nil {
			continue
		}
		if v, ok := l.LocalValidator(name); ok {
			return v, true
		}
	}
	return nil, false
}

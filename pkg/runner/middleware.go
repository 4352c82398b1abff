package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// Middleware wraps an Asker with extra behavior.
type Middleware func(ports.Asker) ports.Asker

// Chain applies middlewares so that the first one is the outermost.
func Chain(asker ports.Asker, mws ...Middleware) ports.Asker {
	for i := len(mws) - 1; i >= 0; i-- {
		asker = mws[i](asker)
	}
	return asker
}

// LoggingMiddleware logs every prompt and its outcome at Debug level.
// Password answers are never logged.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.Asker) ports.Asker {
		return ports.AskerFunc(func(ctx context.Context, req ports.AskRequest) (ports.Answer, error) {
			name := req.Question.Base().Name
			logger.Debug("Prompting", "node", name, "attempt", req.Attempt, "last_failure", req.LastFailure)

			ans, err := next.Ask(ctx, req)
			switch {
			case err != nil:
				logger.Debug("Prompt failed", "node", name, "error", err)
			case ans.Kind == ports.Cancelled:
				logger.Debug("Prompt cancelled", "node", name)
			case req.Question.Type() == domain.NodeTypePassword:
				logger.Debug("Prompt answered", "node", name)
			default:
				logger.Debug("Prompt answered", "node", name, "value", ans.Value)
			}
			return ans, err
		})
	}
}

// SanitizingMiddleware cleans answers from askers that do not sanitize
// their own input (scripted or remote askers).
func SanitizingMiddleware() Middleware {
	return func(next ports.Asker) ports.Asker {
		return ports.AskerFunc(func(ctx context.Context, req ports.AskRequest) (ports.Answer, error) {
			ans, err := next.Ask(ctx, req)
			if err != nil || ans.Kind == ports.Cancelled {
				return ans, err
			}
			clean, err := SanitizeValue(ans.Value)
			if err != nil {
				return ports.Answer{}, err
			}
			return ports.Value(clean), nil
		})
	}
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmingCaller prompts before every remote call, so that a user
// running an untrusted tree sees each side-effect before it happens.
// A denied call fails with an error naming the function.
func ConfirmingCaller(next ports.RemoteCaller, confirmer Confirmer) ports.RemoteCaller {
	return ports.RemoteCallerFunc(func(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
		ok, err := confirmer.Confirm(ctx, fmt.Sprintf("Call %s with params %v?", fn, fn.Params))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("call to %s denied by user", fn)
		}
		return next.Call(ctx, fn, answers)
	})
}

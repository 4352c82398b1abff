package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/qtree/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log every event at Debug level.
// Answer values are not logged.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	node := func(ctx context.Context, e *domain.NodeEvent) {
		attrs := []any{"node", e.Name, "type", e.NodeType}
		if e.Reason != "" {
			attrs = append(attrs, "reason", e.Reason)
		}
		logger.DebugContext(ctx, string(e.Type), attrs...)
	}
	remote := func(ctx context.Context, e *domain.RemoteEvent) {
		attrs := []any{"namespace", e.Namespace, "method", e.Method}
		if e.Type == domain.EventRemoteReturn {
			attrs = append(attrs, "duration", e.Duration, "is_error", e.IsError)
		}
		logger.DebugContext(ctx, string(e.Type), attrs...)
	}
	return domain.LifecycleHooks{
		OnNodeEnter:        node,
		OnNodeSkip:         node,
		OnNodeAnswer:       node,
		OnValidationFailed: node,
		OnRemoteCall:       remote,
		OnRemoteReturn:     remote,
	}
}

// Chain combines hooks so that each event reaches every non-nil callback in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnNodeEnter = chainNode(out.OnNodeEnter, h.OnNodeEnter)
		out.OnNodeSkip = chainNode(out.OnNodeSkip, h.OnNodeSkip)
		out.OnNodeAnswer = chainNode(out.OnNodeAnswer, h.OnNodeAnswer)
		out.OnValidationFailed = chainNode(out.OnValidationFailed, h.OnValidationFailed)
		out.OnRemoteCall = chainRemote(out.OnRemoteCall, h.OnRemoteCall)
		out.OnRemoteReturn = chainRemote(out.OnRemoteReturn, h.OnRemoteReturn)
	}
	return out
}

func chainNode(a, b func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainRemote(a, b func(context.Context, *domain.RemoteEvent)) func(context.Context, *domain.RemoteEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.RemoteEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

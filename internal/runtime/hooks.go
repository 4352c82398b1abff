package runtime

import (
	"context"
	"time"

	"github.com/aretw0/qtree/pkg/domain"
)

func (e *Engine) emitNode(ctx context.Context, hook func(context.Context, *domain.NodeEvent), typ domain.EventType, node *domain.QTreeNode, value any, reason string) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Name:      node.Name(),
		NodeType:  node.Data.Type(),
		Value:     value,
		Reason:    reason,
	})
}

func (e *Engine) emitRemote(ctx context.Context, hook func(context.Context, *domain.RemoteEvent), typ domain.EventType, fn domain.Func, d time.Duration, isErr bool) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.RemoteEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Namespace: fn.Namespace,
		Method:    fn.Method,
		Duration:  d,
		IsError:   isErr,
	})
}

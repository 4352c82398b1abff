package ports

import (
	"context"

	"github.com/aretw0/qtree/pkg/domain"
)

// RemoteCaller invokes a named remote procedure.
//
// Answers is a snapshot of the answers collected so far, so procedures can
// compute options or defaults from earlier answers. Implementations must not
// retain it past the call.
type RemoteCaller interface {
	Call(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error)
}

// RemoteCallerFunc adapts a function to the RemoteCaller interface.
type RemoteCallerFunc func(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error)

func (f RemoteCallerFunc) Call(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
	return f(ctx, fn, answers)
}

// FileSystem answers path existence checks.
type FileSystem interface {
	Exists(ctx context.Context, path string) (bool, error)
}

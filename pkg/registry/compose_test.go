package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

func TestFirstOf(t *testing.T) {
	local := NewRegistry()
	local.Register("env", "list", func(ctx context.Context, params any, answers domain.Answers) (any, error) {
		return "local", nil
	})
	boom := errors.New("boom")
	remote := ports.RemoteCallerFunc(func(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
		if fn.Method == "fail" {
			return nil, boom
		}
		return "remote", nil
	})
	caller := FirstOf(local, nil, remote)
	ctx := context.Background()

	out, err := caller.Call(ctx, domain.Func{Namespace: "env", Method: "list"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", out)

	out, err = caller.Call(ctx, domain.Func{Namespace: "env", Method: "other"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "remote", out)

	_, err = caller.Call(ctx, domain.Func{Namespace: "env", Method: "fail"}, nil)
	assert.ErrorIs(t, err, boom)

	_, err = FirstOf(local).Call(ctx, domain.Func{Namespace: "x", Method: "y"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FirstOf().Call(ctx, domain.Func{Namespace: "x", Method: "y"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidatorLookups(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	b.RegisterValidator("slug", ports.LocalValidatorFunc(func(ctx context.Context, value any) (string, error) {
		return "", nil
	}))

	lookups := ValidatorLookups{a, nil, b}
	_, ok := lookups.LocalValidator("slug")
	assert.True(t, ok)
	_, ok = lookups.LocalValidator("missing")
	assert.False(t, ok)
}

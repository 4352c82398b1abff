package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

func fixedAsker(ans ports.Answer) ports.Asker {
	return ports.AskerFunc(func(ctx context.Context, req ports.AskRequest) (ports.Answer, error) {
		return ans, nil
	})
}

func TestChain_Order(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return func(next ports.Asker) ports.Asker {
			return ports.AskerFunc(func(ctx context.Context, req ports.AskRequest) (ports.Answer, error) {
				calls = append(calls, name)
				return next.Ask(ctx, req)
			})
		}
	}

	asker := Chain(fixedAsker(ports.Value("x")), mark("outer"), mark("inner"))
	_, err := asker.Ask(context.Background(), ports.AskRequest{Question: &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "q"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Run("Logs value", func(t *testing.T) {
		buf.Reset()
		asker := Chain(fixedAsker(ports.Value("dev")), LoggingMiddleware(logger))
		_, err := asker.Ask(context.Background(), ports.AskRequest{Question: &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "env"}}, Attempt: 1})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "node=env")
		assert.Contains(t, buf.String(), "value=dev")
	})

	t.Run("Hides passwords", func(t *testing.T) {
		buf.Reset()
		asker := Chain(fixedAsker(ports.Value("s3cret")), LoggingMiddleware(logger))
		_, err := asker.Ask(context.Background(), ports.AskRequest{Question: &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "token"}, Secret: true}})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Prompt answered")
		assert.NotContains(t, buf.String(), "s3cret")
	})

	t.Run("Logs cancel", func(t *testing.T) {
		buf.Reset()
		asker := Chain(fixedAsker(ports.Cancel()), LoggingMiddleware(logger))
		_, err := asker.Ask(context.Background(), ports.AskRequest{Question: &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "env"}}})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Prompt cancelled")
	})
}

func TestSanitizingMiddleware(t *testing.T) {
	q := &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "q"}}

	asker := Chain(fixedAsker(ports.Value([]string{"a\x1bb", "c"})), SanitizingMiddleware())
	got, err := asker.Ask(context.Background(), ports.AskRequest{Question: q})
	require.NoError(t, err)
	assert.Equal(t, ports.Value([]string{"ab", "c"}), got)

	asker = Chain(fixedAsker(ports.Value("\xff")), SanitizingMiddleware())
	_, err = asker.Ask(context.Background(), ports.AskRequest{Question: q})
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	asker = Chain(fixedAsker(ports.Cancel()), SanitizingMiddleware())
	got, err = asker.Ask(context.Background(), ports.AskRequest{Question: q})
	require.NoError(t, err)
	assert.Equal(t, ports.Cancelled, got.Kind)
}

type confirmFunc func(ctx context.Context, message string) (bool, error)

func (f confirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

func TestConfirmingCaller(t *testing.T) {
	called := false
	next := ports.RemoteCallerFunc(func(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
		called = true
		return "ok", nil
	})
	fn := domain.Func{Namespace: "fx", Method: "scaffold"}

	t.Run("Approved", func(t *testing.T) {
		called = false
		var asked string
		caller := ConfirmingCaller(next, confirmFunc(func(ctx context.Context, message string) (bool, error) {
			asked = message
			return true, nil
		}))
		got, err := caller.Call(context.Background(), fn, nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.True(t, called)
		assert.True(t, strings.HasPrefix(asked, "Call fx.scaffold"))
	})

	t.Run("Denied", func(t *testing.T) {
		called = false
		caller := ConfirmingCaller(next, confirmFunc(func(ctx context.Context, message string) (bool, error) {
			return false, nil
		}))
		_, err := caller.Call(context.Background(), fn, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "denied")
		assert.False(t, called)
	})

	t.Run("Confirm error", func(t *testing.T) {
		boom := errors.New("tty closed")
		caller := ConfirmingCaller(next, confirmFunc(func(ctx context.Context, message string) (bool, error) {
			return false, boom
		}))
		_, err := caller.Call(context.Background(), fn, nil)
		assert.ErrorIs(t, err, boom)
	})
}

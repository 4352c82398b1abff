package observability

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	Nodes              *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	RemoteCalls        *prometheus.CounterVec
	RemoteDuration     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors already registered by an earlier call are reused, so several
// engines in one process share the same series.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Nodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qtree_node_events_total",
				Help: "Total number of node events by kind",
			},
			[]string{"event", "node"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qtree_validation_failures_total",
				Help: "Total number of rejected answers",
			},
			[]string{"node"},
		),
		RemoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qtree_remote_calls_total",
				Help: "Total number of remote function calls by outcome",
			},
			[]string{"function", "outcome"},
		),
		RemoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qtree_remote_call_duration_seconds",
				Help:    "Duration of remote function calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"function"},
		),
	}

	var err error
	if m.Nodes, err = register(reg, m.Nodes); err != nil {
		return nil, err
	}
	if m.ValidationFailures, err = register(reg, m.ValidationFailures); err != nil {
		return nil, err
	}
	if m.RemoteCalls, err = register(reg, m.RemoteCalls); err != nil {
		return nil, err
	}
	if m.RemoteDuration, err = register(reg, m.RemoteDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.Nodes.WithLabelValues(string(domain.EventNodeEnter), e.Name).Inc()
		},
		OnNodeSkip: func(_ context.Context, e *domain.NodeEvent) {
			m.Nodes.WithLabelValues(string(domain.EventNodeSkip), e.Name).Inc()
		},
		OnNodeAnswer: func(_ context.Context, e *domain.NodeEvent) {
			m.Nodes.WithLabelValues(string(domain.EventNodeAnswer), e.Name).Inc()
		},
		OnValidationFailed: func(_ context.Context, e *domain.NodeEvent) {
			m.ValidationFailures.WithLabelValues(e.Name).Inc()
		},
		OnRemoteReturn: func(_ context.Context, e *domain.RemoteEvent) {
			m.observeCall(e.Namespace+"."+e.Method, e.Duration, e.IsError)
		},
	}
}

// Caller records every call made through next, for hosts that serve
// functions without running an engine.
func (m *Metrics) Caller(next ports.RemoteCaller) ports.RemoteCaller {
	return ports.RemoteCallerFunc(func(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
		start := time.Now()
		out, err := next.Call(ctx, fn, answers)
		m.observeCall(fn.String(), time.Since(start), err != nil)
		return out, err
	})
}

func (m *Metrics) observeCall(fn string, d time.Duration, isErr bool) {
	outcome := "ok"
	if isErr {
		outcome = "error"
	}
	m.RemoteCalls.WithLabelValues(fn, outcome).Inc()
	m.RemoteDuration.WithLabelValues(fn).Observe(d.Seconds())
}

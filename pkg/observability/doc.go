/*
Package observability provides tools for monitoring the qtree engine.

It builds domain.LifecycleHooks that record Prometheus metrics and structured
log lines for every node entered, skipped or answered, every rejected answer
and every remote call. Hooks from several sources are combined with Chain.

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	...
	hooks := observability.Chain(metrics.Hooks(), observability.LoggingHooks(logger))
	eng := qtree.New(asker, qtree.WithLifecycleHooks(hooks))
*/
package observability

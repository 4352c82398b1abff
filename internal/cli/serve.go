package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpadapter "github.com/aretw0/qtree/pkg/adapters/http"
	"github.com/aretw0/qtree/pkg/observability"
)

// Serve exposes the functions of opts over HTTP until ctx is done.
func Serve(ctx context.Context, opts Options, port string) error {
	opts.ResolveEnv()
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}

	handler, err := newHTTPHandler(ctx, opts, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(opts, "Starting qtree server on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		printSystemMessage(opts, "Start shutdown...")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		printSystemMessage(opts, "qtree server stopped gracefully")
		return nil
	}
}

// newHTTPHandler wires functions, trees and metrics into the HTTP adapter.
func newHTTPHandler(ctx context.Context, opts Options, logger *slog.Logger) (http.Handler, error) {
	fns, err := loadFunctions(opts)
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(promReg)
	if err != nil {
		return nil, err
	}

	handlerOpts := []httpadapter.Option{
		httpadapter.WithFunctionLister(fns),
		httpadapter.WithLogger(logger),
		httpadapter.WithMount("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})),
	}
	if opts.Dir != "" {
		loader, err := OpenLoader(opts.Dir, opts.Loam)
		if err != nil {
			return nil, err
		}
		handlerOpts = append(handlerOpts, httpadapter.WithTreeLoader(loader))
	}

	return httpadapter.NewHandler(ctx, metrics.Caller(fns.Caller), handlerOpts...)
}

// IsServerClosed reports whether err only says the server was shut down.
func IsServerClosed(err error) bool {
	return errors.Is(err, http.ErrServerClosed)
}

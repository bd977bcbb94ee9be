package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultShutdownTimeout bounds Stop when app.server.shutdown_timeout_seconds
// is unset.
const DefaultShutdownTimeout = 10 * time.Second

// ShutdownTimeout returns the drain budget for Stop. It is never shorter than
// the hash pool timeout, so requests admitted before the signal can finish.
func (a *App) ShutdownTimeout() time.Duration {
	d := a.config.GetSecond("app.server.shutdown_timeout_seconds")
	if d <= 0 {
		d = DefaultShutdownTimeout
	}
	return max(d, a.config.GetSecond("hash.pool.timeout_seconds"))
}

// Start listens on the configured address and returns a channel closed once a
// termination signal arrives. The caller is expected to call Stop afterwards.
func (a *App) Start() <-chan struct{} {
	done := make(chan struct{})
	sigCtx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr, "algorithm", a.algorithm)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		defer stop()
		<-sigCtx.Done()

		slog.Info("termination signal received, draining")
		close(done)
	}()

	return done
}

// Serve runs the HTTP server on the provided listener for tests.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// Stop drains the service. /health starts failing so load balancers stop
// routing here, in-flight requests finish, then abandoned hash computations
// are awaited before telemetry and config are closed. Every step is bounded by
// ctx.
func (a *App) Stop(ctx context.Context) {
	a.draining.Store(true)

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	if err := a.hasher.Wait(ctx); err != nil {
		slog.WarnContext(ctx, "hash computations still running at shutdown",
			"in_flight", a.hasher.InFlight(), "error", err)
	}

	a.cancel()

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}

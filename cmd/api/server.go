package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vitaee/books-api/pkg/container"
)

const shutdownTimeout = 10 * time.Second

// Serve builds the dependency graph, runs the HTTP server and drains
// in-flight requests on SIGINT/SIGTERM.
func Serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx)
	if err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	srv := &http.Server{
		Addr:         ":" + c.Config.App.Port,
		Handler:      SetupRouter(c),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		c.Log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	c.Log.Info().Msg("shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.Log.Error().Err(err).Msg("forced shutdown")
	}
	c.Log.Info().Msg("server stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"kafkaportal/internal/app"
	"kafkaportal/internal/platform/config"
	"kafkaportal/internal/platform/httpserver"
	"kafkaportal/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

// main wires configuration into the app and keeps the server lifecycle
// small. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	portal, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start portal", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := portal.Close(); err != nil {
			log.Error("failed to close portal", "error", err)
		}
	}()

	srv := httpserver.New(cfg.Addr, portal.Handler(), httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting kafka admin portal", "addr", cfg.Addr, "version", app.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return portal.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("portal stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("portal stopped")
}

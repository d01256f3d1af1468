package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/Leadpipe/leadpipe/config"
	"github.com/Leadpipe/leadpipe/internal/app"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err := runServer(cfg, log); err != nil {
		log.WithField("error", err.Error()).Fatal("server exited with error")
		os.Exit(1)
	}
}

func runServer(cfg *config.Config, log logger.Logger) error {
	instance := app.NewApp(cfg, app.WithLogger(log))
	if err := instance.Initialize(); err != nil {
		return err
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverError := make(chan error, 1)
	go func() {
		serverError <- instance.Start()
	}()

	select {
	case err := <-serverError:
		return err
	case sig := <-shutdown:
		log.WithField("signal", sig.String()).Info("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := instance.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/workplan/internal/buildinfo"
	"github.com/dmitrijs2005/workplan/internal/cli"
	"github.com/dmitrijs2005/workplan/internal/config"
	"github.com/dmitrijs2005/workplan/internal/logging"
)

// shutdownGrace bounds how long main waits for the REPL after a signal
// before the storage is closed.
const shutdownGrace = 2 * time.Second

// awaitShutdown blocks until done is closed, or until ctx is cancelled and
// then either done is closed or grace elapses. It reports whether done was
// closed.
func awaitShutdown(ctx context.Context, done <-chan struct{}, grace time.Duration) bool {
	select {
	case <-done:
		return true
	case <-ctx.Done():
	}

	t := time.NewTimer(grace)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	app, closer, err := cli.NewAppFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Run(ctx)
	}()

	// a REPL blocked on stdin never returns, so the wait after a signal is bounded
	if !awaitShutdown(ctx, done, shutdownGrace) {
		logger.Info(context.Background(), "interrupted, closing storage without waiting for input")
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"agora/internal/app/bootstrap"
)

func main() {
	app, err := bootstrap.BuildWorker()
	if err != nil {
		slog.Error("worker bootstrap failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		slog.Error("worker stopped", "error", err.Error())
		os.Exit(1)
	}
}

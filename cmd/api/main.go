package main

import (
	"context"
	"log/slog"
	"os"

	"agora/internal/app/bootstrap"
)

func main() {
	app, err := bootstrap.BuildAPI()
	if err != nil {
		slog.Error("api bootstrap failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	if err := app.Run(context.Background()); err != nil {
		slog.Error("api stopped", "error", err.Error())
		os.Exit(1)
	}
}

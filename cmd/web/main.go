package main

import (
	"context"
	"log/slog"
	"os"

	"nbadash/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		application.Logger.Error("application exited with error",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"

	"forest-cover-benchmark/internal/logger"

	"github.com/rs/zerolog"
)

const AppVersion = "1.0.0"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.root().ExecuteContext(context.Background()); err != nil {
		if !app.logged {
			logger.NewConsoleLogger(zerolog.ErrorLevel).Error("fcbm", err, nil)
		}
		os.Exit(1)
	}
}

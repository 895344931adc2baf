// Package main implements the bblevel level data tool
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/bblevel/internal/cli"
	"github.com/retroenv/bblevel/internal/config"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	if err := cli.New(version, commit, date).RunContext(ctx, os.Args); err != nil {
		logger := config.CreateLogger(false, false)
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Processing failed", log.Err(err))
		os.Exit(1)
	}
}

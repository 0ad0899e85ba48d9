package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/desertthunder/tracksync/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := runner.App().Run(ctx, os.Args)
	stop()

	if err != nil {
		logger.Fatal("application error", "error", err)
	}
}

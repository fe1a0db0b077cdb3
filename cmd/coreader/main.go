package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"coreader-client/internal/cli/commands"
)

func main() {
	// 1. Cancel on interrupt so streams close cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Run
	if err := commands.NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tableflip.dev/adhdo/pkg/commands"
	"tableflip.dev/adhdo/pkg/commands/options"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.New().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, options.ErrReported) {
			fmt.Fprintf(os.Stderr, "error during command execution: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

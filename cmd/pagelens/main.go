package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// main wires OS signals into the command context so that serve and the
// API commands shut down cleanly on Ctrl+C or SIGTERM.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errToolFailed) {
			fmt.Fprintf(os.Stderr, "seedctl: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/thepwagner/aptkeys/pkg/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := cli.Run(ctx); err != nil {
		os.Exit(1)
	}
}

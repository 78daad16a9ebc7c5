package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/drilltable/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version, commit, date)
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		// cobra has already printed the error.
		os.Exit(1)
	}
}

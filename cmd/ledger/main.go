package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/bootstrap"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/cli"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/config"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	bootstrap.SetupLogging(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svcs, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open ledger")
		return 1
	}
	defer svcs.Close()

	if err := cli.New(svcs, os.Stdout).Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/truora/dynamap/config"
	"github.com/truora/dynamap/diagnostics"
	"github.com/truora/dynamap/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := diagnostics.New(os.Stderr, cfg.Debug)

	if err := cli.NewRootCommand(ctx, cli.NewDynamoBackend(cfg), logger).Execute(); err != nil {
		log.Error("command failed", "err", err)
		cancel()
		os.Exit(1)
	}
}

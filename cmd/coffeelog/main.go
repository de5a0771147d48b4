package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/coffeelog/internal/client/cli"
	"github.com/dmitrijs2005/coffeelog/internal/client/config"
	"github.com/dmitrijs2005/coffeelog/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, rest, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	app, err := cli.NewApp(ctx, cfg, log, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer app.Close()

	root := cli.SetupCommands(app)
	root.SetArgs(rest)
	return root.ExecuteContext(ctx)
}

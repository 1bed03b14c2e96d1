package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "whiskr",
		Usage: "Recipe sharing API server",
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
		Action: serveAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		logrus.Fatalf("whiskr: %v", err)
	}
}

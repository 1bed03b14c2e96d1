package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"whiskr/internal/client"
)

type globals struct {
	server      string
	sessionPath string
	api         *client.Client
}

func main() {
	g := &globals{}

	app := &cli.App{
		Name:  "whiskr-cli",
		Usage: "Terminal client for the Whiskr recipe API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Aliases:     []string{"s"},
				Usage:       "Base URL of the API",
				Value:       "http://localhost:8080",
				EnvVars:     []string{"WHISKR_SERVER"},
				Destination: &g.server,
			},
			&cli.StringFlag{
				Name:        "session",
				Usage:       "Session file (defaults to the user config dir)",
				EnvVars:     []string{"WHISKR_SESSION"},
				Destination: &g.sessionPath,
			},
		},
		Before: g.setup,
		Commands: []*cli.Command{
			registerCmd(g),
			loginCmd(g),
			logoutCmd(g),
			whoamiCmd(g),
			recipesCmd(g),
			rateCmd(g),
			ratingsCmd(g),
			bookmarksCmd(g),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (g *globals) setup(*cli.Context) error {
	path := g.sessionPath
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return err
		}
		path = p
	}
	g.api = client.New(g.server, client.NewFileStore(path))
	return nil
}

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"whiskr/internal/config"
	"whiskr/internal/repository/sqlstore"
)

func migrateCmd() *cli.Command {
	var statusOnly bool
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "status",
				Usage:       "Only print the current schema version",
				Destination: &statusOnly,
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			store, err := openStore(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if !statusOnly {
				if err := migrate(c.Context, store, logger); err != nil {
					return err
				}
			}

			version, err := sqlstore.MigrationVersion(c.Context, store)
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			logger.Infof("schema version %d", version)
			return nil
		},
	}
}

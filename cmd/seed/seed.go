package seed

import (
	"context"

	"github.com/paularlott/cli"

	"github.com/hubspoke/hubd/cmd/server"
	"github.com/hubspoke/hubd/internal/log"
	"github.com/hubspoke/hubd/internal/storage"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:        "seed",
		Usage:       "Load the demo estate into the store",
		Description: "Populate the configured storage backend with the demo subscriptions, networks, policies and activities",
		Flags:       server.Flags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := server.LoadConfig(cmd)

			store, err := storage.New(cfg)
			if err != nil {
				log.Error("Failed to initialize storage", "error", err)
				return err
			}
			defer store.Close()

			if err := storage.SeedDemo(store); err != nil {
				log.Error("Failed to seed demo estate", "error", err)
				return err
			}

			log.Info("Demo estate seeded", "backend", cfg.StorageBackend, "data_dir", cfg.DataDir)
			return nil
		},
	}
}

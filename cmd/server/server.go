package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/paularlott/cli"

	"github.com/hubspoke/hubd/internal/api"
	"github.com/hubspoke/hubd/internal/config"
	"github.com/hubspoke/hubd/internal/log"
	"github.com/hubspoke/hubd/internal/mcp"
	"github.com/hubspoke/hubd/internal/storage"
	"github.com/hubspoke/hubd/internal/worker"
)

// Flags returns the CLI flags shared by commands that open the store.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "Data directory path",
			EnvVars: []string{"HUBD_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "Server listen address (e.g., :8080)",
			EnvVars: []string{"HUBD_LISTEN_ADDR"},
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Bearer token for API and MCP authentication",
			EnvVars: []string{"HUBD_BEARER_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "storage",
			Usage:   "Storage backend (memory or sqlite)",
			EnvVars: []string{"HUBD_STORAGE_BACKEND"},
		},
		&cli.StringFlag{
			Name:    "metrics-interval",
			Usage:   "Cron schedule for the metric recorder (e.g., @every 5m), empty disables it",
			EnvVars: []string{"HUBD_METRICS_INTERVAL"},
		},
		&cli.BoolFlag{
			Name:    "seed",
			Usage:   "Load the demo estate on startup when the store is empty",
			EnvVars: []string{"HUBD_SEED"},
		},
	}
}

// LoadConfig builds the configuration from flags, .env and environment.
func LoadConfig(cmd *cli.Command) *config.Config {
	return config.Load(&config.Config{
		DataDir:         cmd.GetString("data-dir"),
		ListenAddr:      cmd.GetString("addr"),
		BearerToken:     cmd.GetString("token"),
		StorageBackend:  cmd.GetString("storage"),
		MetricsInterval: cmd.GetString("metrics-interval"),
		Seed:            cmd.GetBool("seed"),
	})
}

// RunServer starts the hubd server on the given store.
func RunServer(cfg *config.Config, store storage.Store) error {
	mux := http.NewServeMux()

	apiHandler := api.NewHandler(store)
	apiHandler.RegisterRoutes(mux)

	mcpServer := mcp.NewServer(store, cfg.BearerToken)
	mux.HandleFunc("/mcp", mcpServer.GetHTTPHandler())

	// Apply middleware
	var handler http.Handler = mux
	if cfg.IsAuthEnabled() {
		handler = api.AuthMiddleware(cfg.BearerToken, handler)
	}
	handler = api.SecurityHeadersMiddleware(handler)
	handler = api.RequestIDMiddleware(handler)

	// Start the metric recorder when a schedule is configured
	if cfg.MetricsInterval != "" {
		recorder := worker.NewRecorder(store)
		if err := recorder.Start(cfg.MetricsInterval); err != nil {
			log.Error("Failed to start metric recorder", "schedule", cfg.MetricsInterval, "error", err)
			return err
		}
		defer recorder.Stop()
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("Shutting down server...")
		server.Close()
	}()

	log.Info("Starting hubd server", "addr", cfg.ListenAddr)
	log.Info("API available", "url", "http://localhost"+cfg.ListenAddr+"/api/")
	log.Info("MCP available", "url", "http://localhost"+cfg.ListenAddr+"/mcp")
	if cfg.IsAuthEnabled() {
		log.Info("API authentication enabled")
	}
	mcpServer.LogStartup()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the hubd server",
		Description: "Start the HTTP server with the REST API and MCP endpoint",
		Flags:       Flags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig(cmd)

			log.Info("Configuration loaded",
				"source", cfg.String(),
				"data_dir", cfg.DataDir,
				"listen_addr", cfg.ListenAddr,
				"storage_backend", cfg.StorageBackend)

			store, err := storage.New(cfg)
			if err != nil {
				log.Error("Failed to initialize storage", "error", err)
				return err
			}
			defer store.Close()
			log.Info("Storage initialized", "backend", cfg.StorageBackend, "path", cfg.DataDir)

			if cfg.Seed {
				if err := seedIfEmpty(store); err != nil {
					log.Error("Failed to seed demo estate", "error", err)
					return err
				}
			}

			return RunServer(cfg, store)
		},
	}
}

// seedIfEmpty loads the demo estate unless the store already has data.
func seedIfEmpty(store storage.Store) error {
	subs, err := store.ListSubscriptions()
	if err != nil {
		return err
	}
	if len(subs) > 0 {
		log.Info("Store already has data, skipping demo seed")
		return nil
	}
	if err := storage.SeedDemo(store); err != nil {
		return err
	}
	log.Info("Demo estate seeded")
	return nil
}

package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Config holds the application configuration
type Config struct {
	DataDir         string
	ListenAddr      string
	BearerToken     string
	StorageBackend  string // "memory" or "sqlite" (default: "sqlite")
	MetricsInterval string // cron spec for the metric recorder, empty disables it
	Seed            bool   // load the demo estate on startup when the store is empty
	ConfigFile      string // Path to .env file (if loaded)
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Command-line parameters (passed as opts)
// 2. .env file (if exists)
// 3. Environment variables
// 4. Default values
func Load(opts *Config) *Config {
	cfg := &Config{
		DataDir:        "./data",
		ListenAddr:     ":8080",
		StorageBackend: "sqlite",
	}

	// Environment variables first, then .env on top of them
	setIfPresent(&cfg.DataDir, os.Getenv("HUBD_DATA_DIR"))
	setIfPresent(&cfg.ListenAddr, os.Getenv("HUBD_LISTEN_ADDR"))
	setIfPresent(&cfg.BearerToken, os.Getenv("HUBD_BEARER_TOKEN"))
	setIfPresent(&cfg.StorageBackend, os.Getenv("HUBD_STORAGE_BACKEND"))
	setIfPresent(&cfg.MetricsInterval, os.Getenv("HUBD_METRICS_INTERVAL"))
	if v := os.Getenv("HUBD_SEED"); v != "" {
		cfg.Seed = isTrue(v)
	}

	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := loadFromEnvFile(cfg, envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to load .env file: %v\n", err)
		} else {
			cfg.ConfigFile = envFile
		}
	}

	// Finally, apply CLI opts if provided (highest priority)
	if opts != nil {
		setIfPresent(&cfg.DataDir, opts.DataDir)
		setIfPresent(&cfg.ListenAddr, opts.ListenAddr)
		setIfPresent(&cfg.BearerToken, opts.BearerToken)
		setIfPresent(&cfg.StorageBackend, opts.StorageBackend)
		setIfPresent(&cfg.MetricsInterval, opts.MetricsInterval)
		if opts.Seed {
			cfg.Seed = true
		}
	}

	if cfg.StorageBackend != "memory" && cfg.StorageBackend != "sqlite" {
		cfg.StorageBackend = "sqlite"
	}

	return cfg
}

// loadFromEnvFile loads configuration from a .env file
func loadFromEnvFile(cfg *Config, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE or KEY="VALUE"
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"")

		switch key {
		case "HUBD_DATA_DIR":
			cfg.DataDir = value
		case "HUBD_LISTEN_ADDR":
			cfg.ListenAddr = value
		case "HUBD_BEARER_TOKEN":
			cfg.BearerToken = value
		case "HUBD_STORAGE_BACKEND":
			cfg.StorageBackend = value
		case "HUBD_METRICS_INTERVAL":
			cfg.MetricsInterval = value
		case "HUBD_SEED":
			cfg.Seed = isTrue(value)
		}
	}

	return scanner.Err()
}

// IsAuthEnabled reports whether API requests must carry the bearer token.
func (c *Config) IsAuthEnabled() bool {
	return c.BearerToken != ""
}

// String returns a string representation of the config source
func (c *Config) String() string {
	if c.ConfigFile != "" {
		return fmt.Sprintf(".env file (%s)", c.ConfigFile)
	}
	return "environment variables"
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Command taxava serves the TAXAVA onboarding API over the seed data and
// the local overlay store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmynk/taxava/internal/catalog"
	"github.com/mmynk/taxava/internal/config"
	"github.com/mmynk/taxava/internal/overlay"
	"github.com/mmynk/taxava/internal/seed"
	"github.com/mmynk/taxava/internal/storage"
	"github.com/mmynk/taxava/internal/storage/redisstore"
	"github.com/mmynk/taxava/internal/storage/sqlite"
	"github.com/mmynk/taxava/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "taxava",
		Short:         "TAXAVA property onboarding server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serve := newServeCommand()
	// Bare "taxava" serves.
	root.RunE = serve.RunE
	registerServeFlags(root)

	root.AddCommand(serve)
	root.AddCommand(newInspectCommand())
	return root
}

// loadConfig reads the configuration, letting cmd's flags win, and sets up
// logging from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader, err := config.NewLoader()
	if err != nil {
		return nil, err
	}
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// openStore opens the overlay backend selected by cfg.Store.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		store, err := redisstore.New(redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", cfg.Store, "addr", cfg.Redis.Addr)
		return store, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", cfg.Store, "database", cfg.DBPath)
		return store, nil
	}
}

// loadSeed returns the bundled fixtures, or the ones in cfg.SeedDir.
func loadSeed(cfg *config.Config) (*seed.Store, error) {
	if cfg.SeedDir == "" {
		return seed.Default()
	}
	s, err := seed.Load(os.DirFS(cfg.SeedDir))
	if err != nil {
		return nil, err
	}
	slog.Info("Seed data loaded", "dir", cfg.SeedDir)
	return s, nil
}

// openCatalog wires seed, store and catalog together. The caller closes
// the returned store.
func openCatalog(cfg *config.Config) (*catalog.Catalog, storage.Store, error) {
	seedStore, err := loadSeed(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load seed data: %w", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return catalog.New(seedStore, store, overlay.WithRetries(cfg.CASRetries)), store, nil
}

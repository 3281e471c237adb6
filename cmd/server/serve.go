package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/taxava/internal/api"
	"github.com/mmynk/taxava/internal/auth"
	"github.com/mmynk/taxava/internal/config"
	"github.com/mmynk/taxava/internal/middleware"
	"github.com/mmynk/taxava/internal/service"
	"github.com/mmynk/taxava/internal/session"
)

const (
	addrFlag    = "addr"
	storeFlag   = "store"
	dbPathFlag  = "db-path"
	seedDirFlag = "seed-dir"
)

const shutdownTimeout = 10 * time.Second

// serveFlags default to empty so that unset flags fall through to the
// environment and the config defaults.
var serveFlags = map[string]cobraflags.Flag{
	addrFlag: &cobraflags.StringFlag{
		Name:  addrFlag,
		Value: "",
		Usage: "Listen address (default :8080)",
	},
	storeFlag: &cobraflags.StringFlag{
		Name:  storeFlag,
		Value: "",
		Usage: "Overlay store backend: sqlite or redis",
	},
	dbPathFlag: &cobraflags.StringFlag{
		Name:  dbPathFlag,
		Value: "",
		Usage: "Path of the sqlite overlay database",
	},
	seedDirFlag: &cobraflags.StringFlag{
		Name:  seedDirFlag,
		Value: "",
		Usage: "Directory with users.json, companies.json and properties.json replacing the bundled seed",
	},
}

func registerServeFlags(cmd *cobra.Command) {
	cobraflags.RegisterMap(cmd, serveFlags)
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (default)",
		RunE:  serveCommand,
	}
	registerServeFlags(cmd)
	return cmd
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cat, store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.JWTSecret == config.DevJWTSecret {
		slog.Warn("Using the development JWT secret; set TAXAVA_JWT_SECRET")
	}

	holder := session.NewHolder(store)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	logger := slog.Default()

	srv := api.NewServer(api.Services{
		Auth:       service.NewAuthService(auth.NewPasswordAuthenticator(cat), jwtManager, holder, cat, logger),
		Onboarding: service.NewOnboardingService(cat, holder),
		Companies:  service.NewCompanyService(cat),
		Properties: service.NewPropertyService(cat),
	}, jwtManager, holder, api.Config{RateLimit: cfg.RateLimit, RateBurst: cfg.RateBurst})

	// h2c serves HTTP/2 without TLS next to HTTP/1.1.
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(middleware.CORS(srv), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := cmd.Context()
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

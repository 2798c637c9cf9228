package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/sheetgraph/internal/api"
	"github.com/dgallion1/sheetgraph/internal/auth"
	"github.com/dgallion1/sheetgraph/internal/config"
	"github.com/dgallion1/sheetgraph/internal/stats"
	"github.com/dgallion1/sheetgraph/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	st, authn, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	sweeper := store.NewSweeper(st, cfg.SweepInterval, log)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	srv, err := api.NewServer(st, authn, stats.NewParseStats(cfg.StatsWindow), log, cfg)
	if err != nil {
		return fmt.Errorf("init api: %w", err)
	}

	eg, egctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
	}

	eg.Go(func() error {
		log.Info("starting sheetgraph", "port", cfg.Port, "mode", cfg.Mode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown.
	eg.Go(func() error {
		<-egctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// openBackend picks the store and authenticator for the configured mode.
func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, auth.Authenticator, error) {
	if cfg.Mode == config.ModeDemo {
		log.Info("demo mode: sessions and uploads are kept in memory")
		return store.NewMemoryStore(), auth.NewDemoAuthenticator(), nil
	}

	st, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	version, err := st.MigrationVersion()
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("read schema version: %w", err)
	}
	log.Info("store ready", "db_path", cfg.DBPath, "schema_version", version)

	if cfg.AdminUsername != "" {
		u, err := auth.Provision(ctx, st, auth.Account{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			Role:     "Admin",
			Name:     "Administrator",
		})
		if err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("seed admin: %w", err)
		}
		log.Info("admin account ready", "user_id", u.ID, "username", u.Username)
	}

	return st, auth.NewStoreAuthenticator(st), nil
}

// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mkaspar/vellum/internal/attachment"
	"github.com/mkaspar/vellum/internal/debounce"
	"github.com/mkaspar/vellum/internal/mcpserver"
	"github.com/mkaspar/vellum/internal/migrate"
	"github.com/mkaspar/vellum/internal/storage"
	"github.com/mkaspar/vellum/internal/vault"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Structured JSON logs go to stderr; stdout belongs to the MCP
	// transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.Int("retention_days", cfg.Vault.RetentionDays),
		slog.Bool("legacy_migration", cfg.Legacy.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	provider, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	for _, dir := range []string{vault.TrashDir, attachment.Dir} {
		if err := provider.MkdirAll(dir); err != nil {
			return fmt.Errorf("create %s dir: %w", dir, err)
		}
	}

	store := vault.NewStore(provider, logger, cfg.Vault.Retention())

	// One-shot legacy import, before the first scan so imported notes are
	// part of it. Failure is not fatal: the marker stays unset and the
	// next launch retries.
	if cfg.Legacy.Enabled() {
		if err := runMigration(ctx, cfg, provider, logger); err != nil {
			logger.Warn("legacy migration failed", slog.String("error", err.Error()))
		}
	}

	// Initial scan and startup purge of expired trash.
	if _, err := store.List(ctx); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}
	if err := store.Purge(ctx); err != nil {
		logger.Warn("startup purge failed", slog.String("error", err.Error()))
	}

	// Shutdown on SIGINT/SIGTERM or stdin EOF (MCP transport closing).
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	// Watch for outside edits.
	g.Go(func() error {
		return vault.Watch(gCtx, store, cfg.Vault.Path, logger, nil)
	})

	// Serve the stdio tool surface with debounced body writes.
	if cfg.MCP.Enabled {
		writer := debounce.NewWriter(cfg.Vault.Debounce(), func(id, content string) {
			if err := store.Write(context.Background(), id, content); err != nil {
				logger.Error("debounced write failed", slog.String("id", id), slog.String("error", err.Error()))
			}
		})
		defer writer.Stop()

		srv := mcpserver.New(store, writer)
		g.Go(func() error {
			logger.Info("Starting MCP server on stdio")
			return srv.Listen(gCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped successfully")
	return nil
}

func runMigration(ctx context.Context, cfg *Config, provider storage.Provider, logger *slog.Logger) error {
	legacy, err := migrate.OpenSQLite(cfg.Legacy.Path)
	if err != nil {
		return err
	}
	defer legacy.Close()

	return migrate.NewMigrator(legacy, provider, logger, cfg.Legacy.Key).Run(ctx)
}

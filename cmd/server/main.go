package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"github.com/garnizeh/citizenhub/api"
	dbfs "github.com/garnizeh/citizenhub/db"
	"github.com/garnizeh/citizenhub/internal/advisor"
	"github.com/garnizeh/citizenhub/internal/auth"
	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/internal/complaints"
	"github.com/garnizeh/citizenhub/internal/config"
	"github.com/garnizeh/citizenhub/internal/db"
	"github.com/garnizeh/citizenhub/internal/eligibility"
	"github.com/garnizeh/citizenhub/internal/jobs"
	"github.com/garnizeh/citizenhub/internal/repository/sqlite"
	"github.com/garnizeh/citizenhub/internal/seed"
	"github.com/garnizeh/citizenhub/internal/work"
	"github.com/garnizeh/citizenhub/pkg/completion"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(*configPath, logger); err != nil {
		logger.Error("server exited with error", slog.Any("err", err))
		os.Exit(1)
	}
	logger.Info("server exited")
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	api.SetLogger(logger)
	catalog.SetLogger(logger)
	completion.SetLogger(logger)

	logger.Info("starting citizenhub",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("env", cfg.Env),
		slog.String("completion_provider", cfg.Completion.Provider))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("close db", slog.Any("err", err))
		}
	}()
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repo := sqlite.New(database, logger)
	if cfg.IsDevelopment() || cfg.SeedPath != "" {
		fx, err := seed.Load(cfg.SeedPath)
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		// existing accounts keep credentials rotated with citizenctl seed
		if _, err := seed.ApplyMissing(ctx, repo, repo, fx, logger); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	revoker, closeRevoker, err := newRevoker(ctx, cfg.Revocation, logger)
	if err != nil {
		return err
	}
	defer closeRevoker()

	completer, err := completion.New(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("completion backend: %w", err)
	}
	defer completer.Close()

	store := catalog.NewStore(catalog.DefaultSchemes())
	var watcher *catalog.Watcher
	if cfg.CatalogPath != "" {
		watcher = catalog.NewWatcher(store, cfg.CatalogPath)
		if _, err := watcher.Load(); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenDuration, revoker)
	complaintsSvc := complaints.NewService(repo, repo, repo, logger)
	pool := jobs.NewWorkerPool(repo, map[string]jobs.Handler{
		complaints.RouteJobType: complaintsSvc.RouteHandler(),
	}, logger, cfg.Workers)

	deps := api.Deps{
		Version:    version,
		BuildTime:  buildTime,
		Ping:       func(ctx context.Context) error { return database.GetConn().PingContext(ctx) },
		Auth:       auth.NewService(repo, repo, tokens, logger),
		Complaints: complaintsSvc,
		Checker:    eligibility.NewChecker(completer, store, cfg.Completion.Timeout, logger),
		Catalog:    store,
		Advisor:    advisor.New(completer, cfg.Completion.Timeout, logger),
		Work:       work.NewService(store, repo, logger),
	}
	if o, ok := completer.(*completion.Ollama); ok {
		deps.CompletionHealth = o.Health
	}
	handler := api.SetupRoutes(deps)

	// Write timeout leaves room for one bounded remote completion call.
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout + cfg.Completion.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return pool.Run(gctx)
	})
	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		// Give outstanding requests 30 seconds to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newRevoker returns the Redis revocation list when configured and the
// in-memory one otherwise. The returned func releases it.
func newRevoker(ctx context.Context, cfg config.RevocationConfig, logger *slog.Logger) (auth.Revoker, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("token revocation kept in memory")
		return auth.NewMemoryRevoker(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("token revocation stored in redis", slog.String("addr", cfg.RedisAddr))
	return auth.NewRedisRevoker(client), func() { client.Close() }, nil
}

// Package app wires the service together and runs it until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/tinyurl/internal/adapter/generator"
	"github.com/vadimbarashkov/tinyurl/internal/adapter/publisher"
	"github.com/vadimbarashkov/tinyurl/internal/adapter/repository/postgres"
	"github.com/vadimbarashkov/tinyurl/internal/config"
	"github.com/vadimbarashkov/tinyurl/internal/usecase"
	"golang.org/x/sync/errgroup"

	cache "github.com/vadimbarashkov/tinyurl/internal/adapter/cache/redis"
	delivery "github.com/vadimbarashkov/tinyurl/internal/adapter/delivery/http"
	pgclient "github.com/vadimbarashkov/tinyurl/pkg/postgres"
	redisclient "github.com/vadimbarashkov/tinyurl/pkg/redis"
)

// NewLogger builds the request logger of the service; its embedded slog.Logger is used everywhere else.
func NewLogger(cfg *config.Config) *httplog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logger.Level)); err != nil {
		level = slog.LevelInfo
	}

	return httplog.NewLogger("tinyurl", httplog.Options{
		JSON:             cfg.Logger.Format == config.LogFormatJSON,
		LogLevel:         level,
		Concise:          cfg.Env == config.EnvDev,
		RequestHeaders:   cfg.Env != config.EnvProd,
		MessageFieldName: "message",
		Tags: map[string]string{
			"env": cfg.Env,
		},
		QuietDownRoutes: []string{"/api/v1/ping", "/api/v1/health"},
		QuietDownPeriod: 10 * time.Second,
		Writer:          os.Stdout,
	})
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := NewLogger(cfg)

	db, err := pgclient.New(
		ctx,
		cfg.Postgres.DSN(),
		pgclient.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		pgclient.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pgclient.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		pgclient.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		pgclient.WithConnectTimeout(cfg.Postgres.Timeout),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	migration, err := pgclient.RunMigrations(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}
	logger.Info("database schema ready",
		slog.Uint64("version", uint64(migration.Version)),
		slog.Bool("applied", migration.Applied),
	)

	rdb, err := redisclient.New(
		ctx,
		cfg.Redis.Addr,
		redisclient.WithPassword(cfg.Redis.Password),
		redisclient.WithDB(cfg.Redis.DB),
		redisclient.WithDialTimeout(cfg.Redis.DialTimeout),
		redisclient.WithReadTimeout(cfg.Redis.ReadTimeout),
		redisclient.WithWriteTimeout(cfg.Redis.WriteTimeout),
		redisclient.WithPoolSize(cfg.Redis.PoolSize),
		redisclient.WithMinIdleConns(cfg.Redis.MinIdleConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to redis: %w", op, err)
	}
	defer rdb.Close()

	policy := cfg.Cache.TTLPolicy()

	gen, err := generator.NewBase62Generator(cfg.ShortCode.Length)
	if err != nil {
		return fmt.Errorf("%s: failed to create short code generator: %w", op, err)
	}

	mappingRepo := postgres.NewMappingRepository(db)
	mappingCache := cache.NewMappingCache(rdb,
		cache.WithLogger(logger.Logger),
		cache.WithKeyPrefix(cfg.Cache.KeyPrefix),
		cache.WithStatsPrefix(cfg.Cache.StatsPrefix),
		cache.WithTTLPolicy(policy),
	)

	recorder := usecase.NewAccessRecorder(logger.Logger, cfg.AccessRecorder.MaxInFlight, cfg.AccessRecorder.Timeout)
	defer recorder.Wait()

	mappingUseCase := usecase.New(mappingRepo, mappingCache, gen,
		usecase.WithLogger(logger.Logger),
		usecase.WithTTLPolicy(policy),
		usecase.WithPublisher(publisher.NewLogPublisher(logger.Logger, slog.LevelDebug)),
		usecase.WithAccessRecorder(recorder),
		usecase.WithStorageTimeout(cfg.Postgres.Timeout),
		usecase.WithCacheTimeout(cfg.Cache.Timeout),
	)
	statsUseCase := usecase.NewStatsUseCase(mappingRepo, mappingCache)

	router := delivery.NewRouter(logger, strings.TrimSpace(cfg.BaseURL), mappingUseCase, statsUseCase,
		delivery.Probe{Name: "postgres", Critical: true, Check: mappingRepo.Ping},
		delivery.Probe{Name: "redis", Check: mappingCache.Ping},
	)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mappingCache.RunStatisticsFlusher(ctx, cfg.Cache.StatsFlush)
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

//go:build integration

package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/tinyurl/pkg/postgres"
	"github.com/vadimbarashkov/tinyurl/tests"

	goRedis "github.com/redis/go-redis/v9"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	redisclient "github.com/vadimbarashkov/tinyurl/pkg/redis"
)

// environment is a migrated PostgreSQL database and an empty Redis, both running in containers.
type environment struct {
	db  *sqlx.DB
	rdb *goRedis.Client
}

func setupEnvironment(t testing.TB) *environment {
	t.Helper()

	ctx := context.Background()

	pgCont, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tinyurl"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.WithSQLDriver("pgx"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgCont.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := pgCont.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get postgres connection string: %v", err)
	}

	root, err := tests.FindProjectRoot()
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}

	if _, err := postgres.RunMigrations("file://"+filepath.Join(root, "migrations"), dsn); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := postgres.New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	redisCont, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := redisCont.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate redis container: %v", err)
		}
	})

	addr, err := redisCont.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get redis endpoint: %v", err)
	}

	rdb, err := redisclient.New(ctx, addr)
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	t.Cleanup(func() {
		rdb.Close()
	})

	return &environment{db: db, rdb: rdb}
}

func (env *environment) reset(t testing.TB) {
	t.Helper()

	ctx := context.Background()

	if _, err := env.db.ExecContext(ctx, `TRUNCATE TABLE mappings`); err != nil {
		t.Fatalf("Failed to clean mappings table: %v", err)
	}

	if err := env.rdb.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush redis: %v", err)
	}
}

package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirtyMigration is returned when a previous migration failed halfway and needs manual repair.
var ErrDirtyMigration = errors.New("database schema is dirty")

// MigrationState is the schema version recorded by golang-migrate.
type MigrationState struct {
	Version uint
	Applied bool
}

// RunMigrations applies every pending migration found at path (a golang-migrate source URL such as
// file://migrations) and reports the resulting schema version.
func RunMigrations(path, dsn string) (MigrationState, error) {
	const op = "postgres.RunMigrations"

	m, err := migrate.New(path, dsn)
	if err != nil {
		return MigrationState{}, fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	defer m.Close()

	if _, dirty, err := m.Version(); err == nil && dirty {
		return MigrationState{}, fmt.Errorf("%s: %w", op, ErrDirtyMigration)
	}

	state := MigrationState{Applied: true}

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return MigrationState{}, fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}
		state.Applied = false
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationState{}, fmt.Errorf("%s: failed to read schema version: %w", op, err)
	}
	state.Version = version

	return state, nil
}

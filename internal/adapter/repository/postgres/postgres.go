// Package postgres stores mappings in a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

const (
	uniqueViolationErrCode = "23505"

	contentHashConstraint = "mappings_content_hash_key"
	shortCodeConstraint   = "mappings_pkey"
)

const columns = `short_code, content, content_hash, created_at, last_accessed_at, access_count, updated_at`

func uniqueViolationConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationErrCode {
		return "", false
	}
	return pgErr.ConstraintName, true
}

type mappingDB struct {
	ShortCode      string       `db:"short_code"`
	Content        string       `db:"content"`
	ContentHash    string       `db:"content_hash"`
	CreatedAt      time.Time    `db:"created_at"`
	LastAccessedAt sql.NullTime `db:"last_accessed_at"`
	AccessCount    int64        `db:"access_count"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

func (m *mappingDB) toEntity() (entity.Mapping, error) {
	code, err := entity.NewCode(m.ShortCode)
	if err != nil {
		return entity.Mapping{}, fmt.Errorf("%w: stored short code: %w", entity.ErrInternalConsistency, err)
	}

	content, err := entity.NewContent(m.Content)
	if err != nil {
		return entity.Mapping{}, fmt.Errorf("%w: stored url %s: %w", entity.ErrInternalConsistency, m.ShortCode, err)
	}

	var lastAccessedAt time.Time
	if m.LastAccessedAt.Valid {
		lastAccessedAt = m.LastAccessedAt.Time.UTC()
	}

	return entity.RestoreMapping(code, content, m.CreatedAt.UTC(), lastAccessedAt, m.AccessCount), nil
}

func toEntities(rows []mappingDB) ([]entity.Mapping, error) {
	mappings := make([]entity.Mapping, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

type MappingRepository struct {
	db *sqlx.DB
}

func NewMappingRepository(db *sqlx.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Ping checks that the database is reachable.
func (r *MappingRepository) Ping(ctx context.Context) error {
	const op = "adapter.repository.postgres.MappingRepository.Ping"

	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Save inserts a new mapping.
//
// It fails with entity.ErrContentExists when the url is stored under another code and with
// entity.ErrCodeExists when the code is taken.
func (r *MappingRepository) Save(ctx context.Context, m entity.Mapping) error {
	const op = "adapter.repository.postgres.MappingRepository.Save"
	const query = `
		INSERT INTO mappings(short_code, content, content_hash, created_at, last_accessed_at, access_count)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		m.Code().String(),
		m.Content().String(),
		m.Content().Hash(),
		m.CreatedAt(),
		nullTime(m.LastAccessedAt()),
		m.AccessCount(),
	)
	if err != nil {
		if constraint, ok := uniqueViolationConstraint(err); ok {
			switch constraint {
			case contentHashConstraint:
				return fmt.Errorf("%s: %w", op, entity.ErrContentExists)
			case shortCodeConstraint:
				return fmt.Errorf("%s: %w", op, entity.ErrCodeExists)
			}
		}

		return fmt.Errorf("%s: failed to insert into mappings table: %w", op, err)
	}

	return nil
}

// UpdateAccess writes the access statistics of a stored mapping. It never inserts: a mapping
// deleted in the meantime yields entity.ErrMappingNotFound.
func (r *MappingRepository) UpdateAccess(ctx context.Context, m entity.Mapping) error {
	const op = "adapter.repository.postgres.MappingRepository.UpdateAccess"
	const query = `
		UPDATE mappings
		SET access_count = $2, last_accessed_at = $3, updated_at = NOW()
		WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query,
		m.Code().String(),
		m.AccessCount(),
		nullTime(m.LastAccessedAt()),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to update mappings table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, entity.ErrMappingNotFound)
	}

	return nil
}

func nullTime(t time.Time, ok bool) sql.NullTime {
	return sql.NullTime{Time: t, Valid: ok}
}

func (r *MappingRepository) FindByCode(ctx context.Context, code entity.Code) (entity.Mapping, error) {
	const op = "adapter.repository.postgres.MappingRepository.FindByCode"
	const query = `SELECT ` + columns + ` FROM mappings WHERE short_code = $1`

	var row mappingDB

	if err := r.db.GetContext(ctx, &row, query, code.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Mapping{}, fmt.Errorf("%s: %w", op, entity.ErrMappingNotFound)
		}

		return entity.Mapping{}, fmt.Errorf("%s: failed to get row from mappings table: %w", op, err)
	}

	m, err := row.toEntity()
	if err != nil {
		return entity.Mapping{}, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

// FindByContent looks the url up by its content hash.
func (r *MappingRepository) FindByContent(ctx context.Context, content entity.Content) (entity.Mapping, error) {
	const op = "adapter.repository.postgres.MappingRepository.FindByContent"
	const query = `SELECT ` + columns + ` FROM mappings WHERE content_hash = $1`

	var row mappingDB

	if err := r.db.GetContext(ctx, &row, query, content.Hash()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Mapping{}, fmt.Errorf("%s: %w", op, entity.ErrMappingNotFound)
		}

		return entity.Mapping{}, fmt.Errorf("%s: failed to get row from mappings table: %w", op, err)
	}

	m, err := row.toEntity()
	if err != nil {
		return entity.Mapping{}, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func (r *MappingRepository) ExistsByCode(ctx context.Context, code entity.Code) (bool, error) {
	const op = "adapter.repository.postgres.MappingRepository.ExistsByCode"
	const query = `SELECT EXISTS(SELECT 1 FROM mappings WHERE short_code = $1)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, code.String()); err != nil {
		return false, fmt.Errorf("%s: failed to check mappings table: %w", op, err)
	}

	return exists, nil
}

// DeleteByCode reports whether a mapping was removed.
func (r *MappingRepository) DeleteByCode(ctx context.Context, code entity.Code) (bool, error) {
	const op = "adapter.repository.postgres.MappingRepository.DeleteByCode"
	const query = `DELETE FROM mappings WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, code.String())
	if err != nil {
		return false, fmt.Errorf("%s: failed to delete from mappings table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	return rowsAffected > 0, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

func (r *MappingRepository) count(ctx context.Context, op, query string, args ...any) (int64, error) {
	var n int64

	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to query mappings table: %w", op, err)
	}

	return n, nil
}

func (r *MappingRepository) list(ctx context.Context, op, query string, args ...any) ([]entity.Mapping, error) {
	var rows []mappingDB

	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select from mappings table: %w", op, err)
	}

	mappings, err := toEntities(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return mappings, nil
}

func (r *MappingRepository) Count(ctx context.Context) (int64, error) {
	const op = "adapter.repository.postgres.MappingRepository.Count"
	return r.count(ctx, op, `SELECT COUNT(*) FROM mappings`)
}

func (r *MappingRepository) TotalAccessCount(ctx context.Context) (int64, error) {
	const op = "adapter.repository.postgres.MappingRepository.TotalAccessCount"
	return r.count(ctx, op, `SELECT COALESCE(SUM(access_count), 0) FROM mappings`)
}

// CountUnused counts mappings that were never accessed.
func (r *MappingRepository) CountUnused(ctx context.Context) (int64, error) {
	const op = "adapter.repository.postgres.MappingRepository.CountUnused"
	return r.count(ctx, op, `SELECT COUNT(*) FROM mappings WHERE access_count = 0`)
}

func (r *MappingRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	const op = "adapter.repository.postgres.MappingRepository.CountCreatedSince"
	return r.count(ctx, op, `SELECT COUNT(*) FROM mappings WHERE created_at >= $1`, since)
}

// TopAccessed lists the most accessed mappings, older first on ties.
func (r *MappingRepository) TopAccessed(ctx context.Context, limit int) ([]entity.Mapping, error) {
	const op = "adapter.repository.postgres.MappingRepository.TopAccessed"
	const query = `SELECT ` + columns + ` FROM mappings ORDER BY access_count DESC, created_at ASC LIMIT $1`

	return r.list(ctx, op, query, limit)
}

func (r *MappingRepository) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]entity.Mapping, error) {
	const op = "adapter.repository.postgres.MappingRepository.FindCreatedBetween"
	const query = `SELECT ` + columns + ` FROM mappings WHERE created_at BETWEEN $1 AND $2 ORDER BY created_at ASC`

	return r.list(ctx, op, query, start, end)
}

func (r *MappingRepository) FindAccessedSince(ctx context.Context, since time.Time) ([]entity.Mapping, error) {
	const op = "adapter.repository.postgres.MappingRepository.FindAccessedSince"
	const query = `SELECT ` + columns + ` FROM mappings WHERE last_accessed_at >= $1 ORDER BY last_accessed_at DESC`

	return r.list(ctx, op, query, since)
}

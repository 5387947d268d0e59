package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100

	// ReportWindow is how far back a report counts freshly created mappings.
	ReportWindow = 24 * time.Hour
)

type statsStorage interface {
	Count(ctx context.Context) (int64, error)
	TotalAccessCount(ctx context.Context) (int64, error)
	CountUnused(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	TopAccessed(ctx context.Context, limit int) ([]entity.Mapping, error)
	FindCreatedBetween(ctx context.Context, start, end time.Time) ([]entity.Mapping, error)
	FindAccessedSince(ctx context.Context, since time.Time) ([]entity.Mapping, error)
}

type statsCache interface {
	Statistics(ctx context.Context) (entity.CacheStatistics, error)
	EvictAll(ctx context.Context) error
}

type StatsUseCase struct {
	storage statsStorage
	cache   statsCache
	now     func() time.Time
}

func NewStatsUseCase(storage statsStorage, cache statsCache) *StatsUseCase {
	return &StatsUseCase{
		storage: storage,
		cache:   cache,
		now:     time.Now,
	}
}

// Report gathers storage wide statistics and the limit most accessed mappings.
// A non-positive limit selects DefaultTopLimit, larger limits are capped at MaxTopLimit.
func (uc *StatsUseCase) Report(ctx context.Context, limit int) (entity.Report, error) {
	const op = "usecase.StatsUseCase.Report"

	switch {
	case limit <= 0:
		limit = DefaultTopLimit
	case limit > MaxTopLimit:
		limit = MaxTopLimit
	}

	var (
		report entity.Report
		err    error
	)

	report.Since = uc.now().UTC().Add(-ReportWindow)

	if report.TotalMappings, err = uc.storage.Count(ctx); err != nil {
		return entity.Report{}, fmt.Errorf("%s: failed to count mappings: %w", op, err)
	}
	if report.TotalAccessCount, err = uc.storage.TotalAccessCount(ctx); err != nil {
		return entity.Report{}, fmt.Errorf("%s: failed to sum access counts: %w", op, err)
	}
	if report.UnusedMappings, err = uc.storage.CountUnused(ctx); err != nil {
		return entity.Report{}, fmt.Errorf("%s: failed to count unused mappings: %w", op, err)
	}
	if report.CreatedSince, err = uc.storage.CountCreatedSince(ctx, report.Since); err != nil {
		return entity.Report{}, fmt.Errorf("%s: failed to count recent mappings: %w", op, err)
	}
	if report.TopAccessed, err = uc.storage.TopAccessed(ctx, limit); err != nil {
		return entity.Report{}, fmt.Errorf("%s: failed to list top mappings: %w", op, err)
	}

	return report, nil
}

func (uc *StatsUseCase) CreatedBetween(ctx context.Context, start, end time.Time) ([]entity.Mapping, error) {
	const op = "usecase.StatsUseCase.CreatedBetween"

	if start.After(end) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidRange)
	}

	mappings, err := uc.storage.FindCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return mappings, nil
}

func (uc *StatsUseCase) AccessedSince(ctx context.Context, since time.Time) ([]entity.Mapping, error) {
	const op = "usecase.StatsUseCase.AccessedSince"

	mappings, err := uc.storage.FindAccessedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return mappings, nil
}

func (uc *StatsUseCase) CacheStatistics(ctx context.Context) (entity.CacheStatistics, error) {
	const op = "usecase.StatsUseCase.CacheStatistics"

	stats, err := uc.cache.Statistics(ctx)
	if err != nil {
		return entity.CacheStatistics{}, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}

func (uc *StatsUseCase) ClearCache(ctx context.Context) error {
	const op = "usecase.StatsUseCase.ClearCache"

	if err := uc.cache.EvictAll(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

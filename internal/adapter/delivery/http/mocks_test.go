package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

type MockMappingUseCase struct {
	mock.Mock
}

func (uc *MockMappingUseCase) Shorten(ctx context.Context, content entity.Content, ttl time.Duration) (entity.Mapping, time.Duration, error) {
	args := uc.Called(ctx, content, ttl)
	m, _ := args.Get(0).(entity.Mapping)
	applied, _ := args.Get(1).(time.Duration)
	return m, applied, args.Error(2)
}

func (uc *MockMappingUseCase) Resolve(ctx context.Context, code entity.Code) (entity.Mapping, bool, error) {
	args := uc.Called(ctx, code)
	m, _ := args.Get(0).(entity.Mapping)
	return m, args.Bool(1), args.Error(2)
}

func (uc *MockMappingUseCase) Redirect(ctx context.Context, code entity.Code) (entity.Mapping, bool, error) {
	args := uc.Called(ctx, code)
	m, _ := args.Get(0).(entity.Mapping)
	return m, args.Bool(1), args.Error(2)
}

func (uc *MockMappingUseCase) Delete(ctx context.Context, code entity.Code) (bool, error) {
	args := uc.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (uc *MockMappingUseCase) TTLPolicy() entity.TTLPolicy {
	return entity.DefaultTTLPolicy()
}

type MockStatsUseCase struct {
	mock.Mock
}

func (uc *MockStatsUseCase) Report(ctx context.Context, limit int) (entity.Report, error) {
	args := uc.Called(ctx, limit)
	report, _ := args.Get(0).(entity.Report)
	return report, args.Error(1)
}

func (uc *MockStatsUseCase) CreatedBetween(ctx context.Context, start, end time.Time) ([]entity.Mapping, error) {
	args := uc.Called(ctx, start, end)
	mappings, _ := args.Get(0).([]entity.Mapping)
	return mappings, args.Error(1)
}

func (uc *MockStatsUseCase) AccessedSince(ctx context.Context, since time.Time) ([]entity.Mapping, error) {
	args := uc.Called(ctx, since)
	mappings, _ := args.Get(0).([]entity.Mapping)
	return mappings, args.Error(1)
}

func (uc *MockStatsUseCase) CacheStatistics(ctx context.Context) (entity.CacheStatistics, error) {
	args := uc.Called(ctx)
	stats, _ := args.Get(0).(entity.CacheStatistics)
	return stats, args.Error(1)
}

func (uc *MockStatsUseCase) ClearCache(ctx context.Context) error {
	args := uc.Called(ctx)
	return args.Error(0)
}

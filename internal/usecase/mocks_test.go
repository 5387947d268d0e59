package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

type MockMappingStorage struct {
	mock.Mock
}

func (s *MockMappingStorage) FindByCode(ctx context.Context, code entity.Code) (entity.Mapping, error) {
	args := s.Called(ctx, code)
	m, _ := args.Get(0).(entity.Mapping)
	return m, args.Error(1)
}

func (s *MockMappingStorage) FindByContent(ctx context.Context, content entity.Content) (entity.Mapping, error) {
	args := s.Called(ctx, content)
	m, _ := args.Get(0).(entity.Mapping)
	return m, args.Error(1)
}

func (s *MockMappingStorage) Save(ctx context.Context, m entity.Mapping) error {
	args := s.Called(ctx, m)
	return args.Error(0)
}

func (s *MockMappingStorage) UpdateAccess(ctx context.Context, m entity.Mapping) error {
	args := s.Called(ctx, m)
	return args.Error(0)
}

func (s *MockMappingStorage) ExistsByCode(ctx context.Context, code entity.Code) (bool, error) {
	args := s.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (s *MockMappingStorage) DeleteByCode(ctx context.Context, code entity.Code) (bool, error) {
	args := s.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (s *MockMappingStorage) Count(ctx context.Context) (int64, error) {
	args := s.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (s *MockMappingStorage) TotalAccessCount(ctx context.Context) (int64, error) {
	args := s.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (s *MockMappingStorage) CountUnused(ctx context.Context) (int64, error) {
	args := s.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (s *MockMappingStorage) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := s.Called(ctx, since)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (s *MockMappingStorage) TopAccessed(ctx context.Context, limit int) ([]entity.Mapping, error) {
	args := s.Called(ctx, limit)
	mappings, _ := args.Get(0).([]entity.Mapping)
	return mappings, args.Error(1)
}

func (s *MockMappingStorage) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]entity.Mapping, error) {
	args := s.Called(ctx, start, end)
	mappings, _ := args.Get(0).([]entity.Mapping)
	return mappings, args.Error(1)
}

func (s *MockMappingStorage) FindAccessedSince(ctx context.Context, since time.Time) ([]entity.Mapping, error) {
	args := s.Called(ctx, since)
	mappings, _ := args.Get(0).([]entity.Mapping)
	return mappings, args.Error(1)
}

type MockMappingCache struct {
	mock.Mock
}

func (c *MockMappingCache) FindByCode(ctx context.Context, code entity.Code) (entity.Mapping, error) {
	args := c.Called(ctx, code)
	m, _ := args.Get(0).(entity.Mapping)
	return m, args.Error(1)
}

func (c *MockMappingCache) Put(ctx context.Context, m entity.Mapping, ttl time.Duration) error {
	args := c.Called(ctx, m, ttl)
	return args.Error(0)
}

func (c *MockMappingCache) Evict(ctx context.Context, code entity.Code) error {
	args := c.Called(ctx, code)
	return args.Error(0)
}

func (c *MockMappingCache) EvictAll(ctx context.Context) error {
	args := c.Called(ctx)
	return args.Error(0)
}

func (c *MockMappingCache) Statistics(ctx context.Context) (entity.CacheStatistics, error) {
	args := c.Called(ctx)
	stats, _ := args.Get(0).(entity.CacheStatistics)
	return stats, args.Error(1)
}

type MockCodeGenerator struct {
	mock.Mock
}

func (g *MockCodeGenerator) Generate() (entity.Code, error) {
	args := g.Called()
	code, _ := args.Get(0).(entity.Code)
	return code, args.Error(1)
}

// recordingPublisher collects published events; background updates publish concurrently.
type recordingPublisher struct {
	mu  sync.Mutex
	log entity.EventLog
}

func (p *recordingPublisher) Publish(_ context.Context, events ...entity.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Record(events...)
}

func (p *recordingPublisher) Drain() []entity.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.log.Drain()
}

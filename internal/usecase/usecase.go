// Package usecase implements the shortening and resolution workflows on top of a durable
// storage and a lookup cache kept in agreement with the cache-aside discipline.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

// DefaultMaxAttempts bounds the number of candidates tried before giving up on a short code.
const DefaultMaxAttempts = 5

type mappingStorage interface {
	FindByCode(ctx context.Context, code entity.Code) (entity.Mapping, error)
	FindByContent(ctx context.Context, content entity.Content) (entity.Mapping, error)
	Save(ctx context.Context, m entity.Mapping) error
	UpdateAccess(ctx context.Context, m entity.Mapping) error
	ExistsByCode(ctx context.Context, code entity.Code) (bool, error)
	DeleteByCode(ctx context.Context, code entity.Code) (bool, error)
}

type mappingCache interface {
	FindByCode(ctx context.Context, code entity.Code) (entity.Mapping, error)
	Put(ctx context.Context, m entity.Mapping, ttl time.Duration) error
	Evict(ctx context.Context, code entity.Code) error
}

type codeGenerator interface {
	Generate() (entity.Code, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, events ...entity.Event)
}

// MappingUseCase creates and resolves mappings.
//
// Storage is the source of truth: its failures fail the call. Cache failures are logged and
// the workflow carries on as if the cache were empty.
type MappingUseCase struct {
	storage   mappingStorage
	cache     mappingCache
	generator codeGenerator
	publisher eventPublisher
	recorder  *AccessRecorder
	logger    *slog.Logger

	policy         entity.TTLPolicy
	maxAttempts    int
	storageTimeout time.Duration
	cacheTimeout   time.Duration
}

type Option func(*MappingUseCase)

func WithLogger(logger *slog.Logger) Option {
	return func(uc *MappingUseCase) {
		uc.logger = logger
	}
}

func WithTTLPolicy(policy entity.TTLPolicy) Option {
	return func(uc *MappingUseCase) {
		uc.policy = policy
	}
}

func WithPublisher(publisher eventPublisher) Option {
	return func(uc *MappingUseCase) {
		uc.publisher = publisher
	}
}

func WithAccessRecorder(recorder *AccessRecorder) Option {
	return func(uc *MappingUseCase) {
		uc.recorder = recorder
	}
}

func WithMaxAttempts(n int) Option {
	return func(uc *MappingUseCase) {
		uc.maxAttempts = n
	}
}

// WithStorageTimeout bounds every storage call. Zero disables the bound.
func WithStorageTimeout(d time.Duration) Option {
	return func(uc *MappingUseCase) {
		uc.storageTimeout = d
	}
}

// WithCacheTimeout bounds every cache call. Zero disables the bound.
func WithCacheTimeout(d time.Duration) Option {
	return func(uc *MappingUseCase) {
		uc.cacheTimeout = d
	}
}

func New(storage mappingStorage, cache mappingCache, generator codeGenerator, opts ...Option) *MappingUseCase {
	uc := &MappingUseCase{
		storage:     storage,
		cache:       cache,
		generator:   generator,
		publisher:   nopPublisher{},
		logger:      slog.Default(),
		policy:      entity.DefaultTTLPolicy(),
		maxAttempts: DefaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.recorder == nil {
		uc.recorder = NewAccessRecorder(uc.logger, 0, 0)
	}

	return uc
}

// TTLPolicy returns the policy the use case caches mappings with.
func (uc *MappingUseCase) TTLPolicy() entity.TTLPolicy {
	return uc.policy
}

// Wait blocks until every scheduled access update finished.
func (uc *MappingUseCase) Wait() {
	uc.recorder.Wait()
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...entity.Event) {}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

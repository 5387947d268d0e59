package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

// lookup reports a cache fault as a miss.
func (uc *MappingUseCase) lookup(ctx context.Context, code entity.Code) (entity.Mapping, bool) {
	ctx, cancel := withTimeout(ctx, uc.cacheTimeout)
	defer cancel()

	m, err := uc.cache.FindByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, entity.ErrCacheMiss) {
			uc.logger.WarnContext(ctx, "cache lookup failed, falling back to storage",
				slog.String("code", code.String()),
				slog.Any("err", err),
			)
		}
		return entity.Mapping{}, false
	}

	return m, true
}

// populate never fails the caller: a mapping missing from the cache is reloaded from storage.
func (uc *MappingUseCase) populate(ctx context.Context, m entity.Mapping, ttl time.Duration) {
	ctx, cancel := withTimeout(ctx, uc.cacheTimeout)
	defer cancel()

	if err := uc.cache.Put(ctx, m, ttl); err != nil {
		uc.logger.WarnContext(ctx, "failed to cache mapping",
			slog.String("code", m.Code().String()),
			slog.Duration("ttl", ttl),
			slog.Any("err", err),
		)
	}
}

func (uc *MappingUseCase) evict(ctx context.Context, code entity.Code) {
	ctx, cancel := withTimeout(ctx, uc.cacheTimeout)
	defer cancel()

	if err := uc.cache.Evict(ctx, code); err != nil {
		uc.logger.WarnContext(ctx, "failed to evict mapping from cache",
			slog.String("code", code.String()),
			slog.Any("err", err),
		)
	}
}

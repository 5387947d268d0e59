package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

// Shorten returns the mapping for content, creating it when the url was never shortened.
//
// A url that is already stored is returned as is, without any write to storage, and cached with
// the TTL the policy computes for it. A new mapping is cached with ttl, or with the policy's
// default TTL when ttl is zero. The call fails with entity.ErrCodeGenerationExhausted when every
// generated candidate was already taken. The returned duration is the TTL the mapping was
// cached with.
func (uc *MappingUseCase) Shorten(ctx context.Context, content entity.Content, ttl time.Duration) (entity.Mapping, time.Duration, error) {
	const op = "usecase.MappingUseCase.Shorten"

	existing, err := uc.findByContent(ctx, content)
	if err == nil {
		uc.logger.DebugContext(ctx, "url already shortened", slog.String("code", existing.Code().String()))
		existingTTL := uc.policy.Determine(existing)
		uc.populate(ctx, existing, existingTTL)
		return existing, existingTTL, nil
	}
	if !errors.Is(err, entity.ErrMappingNotFound) {
		return entity.Mapping{}, 0, fmt.Errorf("%s: failed to look up url: %w", op, err)
	}

	if ttl <= 0 {
		ttl = uc.policy.DefaultTTL
	}

	// Created events of rejected candidates are discarded.
	var pending entity.EventLog

	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		code, err := uc.generator.Generate()
		if err != nil {
			return entity.Mapping{}, 0, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		exists, err := uc.existsByCode(ctx, code)
		if err != nil {
			return entity.Mapping{}, 0, fmt.Errorf("%s: failed to check short code: %w", op, err)
		}
		if exists {
			uc.logCollision(ctx, code, attempt)
			continue
		}

		m, event := entity.NewMapping(content, code)
		pending.Record(event)

		if err := uc.save(ctx, m); err != nil {
			pending.Drain()

			switch {
			case errors.Is(err, entity.ErrCodeExists):
				uc.logCollision(ctx, code, attempt)
				continue
			case errors.Is(err, entity.ErrContentExists):
				return uc.adoptWinner(ctx, content)
			default:
				return entity.Mapping{}, 0, fmt.Errorf("%s: failed to save mapping: %w", op, err)
			}
		}

		uc.publisher.Publish(ctx, pending.Drain()...)
		uc.populate(ctx, m, ttl)

		uc.logger.InfoContext(ctx, "url shortened",
			slog.String("code", code.String()),
			slog.String("host", content.Host()),
			slog.Int("attempt", attempt),
		)

		return m, ttl, nil
	}

	return entity.Mapping{}, 0, fmt.Errorf("%s: %w after %d attempts", op, entity.ErrCodeGenerationExhausted, uc.maxAttempts)
}

// adoptWinner returns the mapping a concurrent request stored for the same url first.
func (uc *MappingUseCase) adoptWinner(ctx context.Context, content entity.Content) (entity.Mapping, time.Duration, error) {
	const op = "usecase.MappingUseCase.adoptWinner"

	winner, err := uc.findByContent(ctx, content)
	if err != nil {
		return entity.Mapping{}, 0, fmt.Errorf("%s: failed to reload concurrently shortened url: %w", op, err)
	}

	uc.logger.DebugContext(ctx, "url was shortened concurrently", slog.String("code", winner.Code().String()))
	winnerTTL := uc.policy.Determine(winner)
	uc.populate(ctx, winner, winnerTTL)

	return winner, winnerTTL, nil
}

func (uc *MappingUseCase) logCollision(ctx context.Context, code entity.Code, attempt int) {
	uc.logger.DebugContext(ctx, "short code collision",
		slog.String("code", code.String()),
		slog.Int("attempt", attempt),
		slog.Int("max_attempts", uc.maxAttempts),
	)
}

func (uc *MappingUseCase) findByContent(ctx context.Context, content entity.Content) (entity.Mapping, error) {
	ctx, cancel := withTimeout(ctx, uc.storageTimeout)
	defer cancel()

	return uc.storage.FindByContent(ctx, content)
}

func (uc *MappingUseCase) existsByCode(ctx context.Context, code entity.Code) (bool, error) {
	ctx, cancel := withTimeout(ctx, uc.storageTimeout)
	defer cancel()

	return uc.storage.ExistsByCode(ctx, code)
}

func (uc *MappingUseCase) save(ctx context.Context, m entity.Mapping) error {
	ctx, cancel := withTimeout(ctx, uc.storageTimeout)
	defer cancel()

	return uc.storage.Save(ctx, m)
}

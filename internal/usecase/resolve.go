package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

// Resolve looks the code up in the cache, then in storage.
//
// An unknown code is reported with found set to false and a nil error. A mapping read from
// storage is cached with the TTL the policy computes for it.
func (uc *MappingUseCase) Resolve(ctx context.Context, code entity.Code) (m entity.Mapping, found bool, err error) {
	const op = "usecase.MappingUseCase.Resolve"

	if cached, ok := uc.lookup(ctx, code); ok {
		return cached, true, nil
	}

	m, err = uc.findByCode(ctx, code)
	if err != nil {
		if errors.Is(err, entity.ErrMappingNotFound) {
			return entity.Mapping{}, false, nil
		}
		return entity.Mapping{}, false, fmt.Errorf("%s: %w", op, err)
	}

	uc.populate(ctx, m, uc.policy.Determine(m))

	return m, true, nil
}

// Redirect resolves the code and schedules an access update without waiting for it.
//
// The returned mapping carries the statistics as they were before this access.
func (uc *MappingUseCase) Redirect(ctx context.Context, code entity.Code) (entity.Mapping, bool, error) {
	const op = "usecase.MappingUseCase.Redirect"

	m, found, err := uc.Resolve(ctx, code)
	if err != nil {
		return entity.Mapping{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return entity.Mapping{}, false, nil
	}

	uc.recorder.Schedule(ctx, "record access "+code.String(), func(ctx context.Context) error {
		return uc.recordAccess(ctx, code)
	})

	return m, true, nil
}

// recordAccess is a read-modify-write without locking: concurrent updates may overwrite each other.
// The update never inserts, so a stale cached copy of a deleted mapping is evicted instead of
// bringing the mapping back.
func (uc *MappingUseCase) recordAccess(ctx context.Context, code entity.Code) error {
	const op = "usecase.MappingUseCase.recordAccess"

	current, ok := uc.lookup(ctx, code)
	if !ok {
		var err error
		current, err = uc.findByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("%s: failed to load mapping: %w", op, err)
		}
	}

	var pending entity.EventLog

	accessed, event := current.RecordAccess()
	pending.Record(event)

	if err := uc.updateAccess(ctx, accessed); err != nil {
		if errors.Is(err, entity.ErrMappingNotFound) {
			uc.logger.DebugContext(ctx, "mapping deleted before its access was recorded", slog.String("code", code.String()))
			uc.evict(ctx, code)
			return nil
		}
		return fmt.Errorf("%s: failed to update mapping: %w", op, err)
	}

	uc.publisher.Publish(ctx, pending.Drain()...)
	uc.populate(ctx, accessed, uc.policy.Determine(accessed))

	return nil
}

// Delete removes the mapping from storage, then from the cache.
func (uc *MappingUseCase) Delete(ctx context.Context, code entity.Code) (bool, error) {
	const op = "usecase.MappingUseCase.Delete"

	deleted, err := uc.deleteByCode(ctx, code)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	uc.evict(ctx, code)

	if deleted {
		uc.logger.InfoContext(ctx, "mapping deleted", slog.String("code", code.String()))
	}

	return deleted, nil
}

func (uc *MappingUseCase) findByCode(ctx context.Context, code entity.Code) (entity.Mapping, error) {
	ctx, cancel := withTimeout(ctx, uc.storageTimeout)
	defer cancel()

	return uc.storage.FindByCode(ctx, code)
}

func (uc *MappingUseCase) updateAccess(ctx context.Context, m entity.Mapping) error {
	ctx, cancel := withTimeout(ctx, uc.storageTimeout)
	defer cancel()

	return uc.storage.UpdateAccess(ctx, m)
}

func (uc *MappingUseCase) deleteByCode(ctx context.Context, code entity.Code) (bool, error) {
	ctx, cancel := withTimeout(ctx, uc.storageTimeout)
	defer cancel()

	return uc.storage.DeleteByCode(ctx, code)
}

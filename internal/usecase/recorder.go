package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxInFlight   = 64
	DefaultRecordTimeout = 5 * time.Second
)

// AccessRecorder runs access-count updates off the request path.
//
// At most maxInFlight updates run at once. An update scheduled while the recorder is saturated
// is dropped: the access count is an approximate statistic.
type AccessRecorder struct {
	group   *errgroup.Group
	logger  *slog.Logger
	timeout time.Duration
}

// NewAccessRecorder returns a recorder; zero maxInFlight or timeout selects the default.
func NewAccessRecorder(logger *slog.Logger, maxInFlight int, timeout time.Duration) *AccessRecorder {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	if timeout <= 0 {
		timeout = DefaultRecordTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := new(errgroup.Group)
	g.SetLimit(maxInFlight)

	return &AccessRecorder{
		group:   g,
		logger:  logger,
		timeout: timeout,
	}
}

// Schedule runs fn in the background and reports whether it was accepted.
//
// fn receives a context that keeps the values of ctx but outlives its cancellation, bounded by
// the recorder timeout. Errors returned by fn are logged.
func (r *AccessRecorder) Schedule(ctx context.Context, name string, fn func(ctx context.Context) error) bool {
	detached := context.WithoutCancel(ctx)

	ok := r.group.TryGo(func() error {
		ctx, cancel := context.WithTimeout(detached, r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.WarnContext(ctx, "background update failed",
				slog.String("task", name),
				slog.Any("err", err),
			)
		}

		return nil
	})

	if !ok {
		r.logger.WarnContext(ctx, "background update dropped", slog.String("task", name))
	}

	return ok
}

// Wait blocks until every accepted update returned.
func (r *AccessRecorder) Wait() {
	_ = r.group.Wait()
}

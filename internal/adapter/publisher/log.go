// Package publisher delivers mapping events.
package publisher

import (
	"context"
	"log/slog"

	"github.com/vadimbarashkov/tinyurl/internal/entity"
)

// LogPublisher writes every event to a structured logger.
type LogPublisher struct {
	logger *slog.Logger
	level  slog.Level
}

func NewLogPublisher(logger *slog.Logger, level slog.Level) *LogPublisher {
	return &LogPublisher{
		logger: logger,
		level:  level,
	}
}

func (p *LogPublisher) Publish(ctx context.Context, events ...entity.Event) {
	for _, event := range events {
		attrs := []slog.Attr{
			slog.String("event_id", event.EventID().String()),
			slog.String("event", event.EventName()),
			slog.String("code", event.MappingCode().String()),
			slog.Time("occurred_at", event.OccurredAt()),
		}

		switch e := event.(type) {
		case entity.MappingCreated:
			attrs = append(attrs, slog.String("host", e.Content.Host()))
		case entity.MappingAccessed:
			attrs = append(attrs, slog.Int64("total_access_count", e.TotalAccessCount))
		}

		p.logger.LogAttrs(ctx, p.level, "mapping event", attrs...)
	}
}

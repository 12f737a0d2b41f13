package billing

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dedupeKeyPrefix = "stripe:event:"

// EventDeduper remembers processed event ids so redelivered events are
// acknowledged without reprocessing. Best effort only: a Redis failure
// reads as "not seen", which is safe because every store write is
// idempotent. Ids are marked only after a successful handle so a failed
// delivery still gets retried by the provider.
type EventDeduper struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewEventDeduper constructs a deduper.
func NewEventDeduper(client *redis.Client, ttl time.Duration, logger *zap.Logger) *EventDeduper {
	return &EventDeduper{client: client, ttl: ttl, logger: logger}
}

// Seen reports whether the event id was already processed.
func (d *EventDeduper) Seen(ctx context.Context, eventID string) bool {
	if d == nil || d.client == nil {
		return false
	}
	n, err := d.client.Exists(ctx, dedupeKeyPrefix+eventID).Result()
	if err != nil {
		d.logger.Warn("event dedupe check failed", zap.Error(err))
		return false
	}
	return n > 0
}

// MarkProcessed records a successfully handled event id.
func (d *EventDeduper) MarkProcessed(ctx context.Context, eventID string) {
	if d == nil || d.client == nil {
		return
	}
	if err := d.client.Set(ctx, dedupeKeyPrefix+eventID, 1, d.ttl).Err(); err != nil {
		d.logger.Warn("event dedupe mark failed", zap.Error(err))
	}
}

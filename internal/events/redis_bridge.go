package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBridge forwards events to a Redis pub/sub channel consumed by the
// external notification dispatcher.
type RedisBridge struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisBridge builds a bridge publishing on channel.
func NewRedisBridge(client *redis.Client, channel string, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{client: client, channel: channel, logger: logger}
}

// Handle implements EventHandler.
func (b *RedisBridge) Handle(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Warn("failed to publish event",
			zap.String("channel", b.channel),
			zap.String("event_type", string(event.Type)),
			zap.String("case_id", event.CaseID),
			zap.Error(err))
		return err
	}
	b.logger.Debug("published event", zap.String("channel", b.channel), zap.String("event_id", event.ID))
	return nil
}

// Attach subscribes the bridge to every event type on d.
func (b *RedisBridge) Attach(d Dispatcher) {
	SubscribeAll(d, b.Handle)
}

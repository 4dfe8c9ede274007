package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher appends events to a stream.
type Publisher interface {
	// Publish returns the message id Redis assigned.
	Publish(ctx context.Context, stream string, event GraphEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	log    *zap.Logger
}

func NewPublisher(client *redis.Client, log *zap.Logger) Publisher {
	return &RedisPublisher{client: client, log: log.Named("publisher")}
}

// Publish adds an event with XADD and an auto-generated id.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event GraphEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		p.log.Warn("publish failed",
			zap.String("stream", stream),
			zap.String("type", event.Type),
			zap.Error(err))
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	p.log.Debug("published",
		zap.String("stream", stream),
		zap.String("type", event.Type),
		zap.String("msg_id", messageID),
		zap.Duration("duration", time.Since(startTime)))
	return messageID, nil
}

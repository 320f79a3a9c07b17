package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// Redis key prefixes
const (
	keyPrefixQueue      = "queue:"      // pending items, LPUSH in / BLMOVE out
	keyPrefixProcessing = "processing:" // items handed to a worker
	keyPrefixDLQ        = "dlq:"        // dead letter list
)

// RedisQueue implements Queue on Redis lists. Received items are moved
// atomically to a processing list and removed from it on Ack.
type RedisQueue struct {
	client      redis.Cmdable
	name        string
	pollTimeout time.Duration
}

// NewRedisQueue creates a new Redis-backed queue
func NewRedisQueue(client redis.Cmdable, name string) *RedisQueue {
	return &RedisQueue{
		client:      client,
		name:        name,
		pollTimeout: 5 * time.Second,
	}
}

// Publish pushes item onto the pending list
func (q *RedisQueue) Publish(ctx context.Context, item entities.WorkItem) error {
	data, err := encodeItem(item)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, keyPrefixQueue+q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue work item: %w", err)
	}
	return nil
}

// Receive blocks until an item is moved to the processing list
func (q *RedisQueue) Receive(ctx context.Context) (*Delivery, error) {
	queueKey := keyPrefixQueue + q.name
	processingKey := keyPrefixProcessing + q.name

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := q.client.BLMove(ctx, queueKey, processingKey, "RIGHT", "LEFT", q.pollTimeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to pop from queue: %w", err)
		}

		item, err := decodeItem([]byte(raw))
		if err != nil {
			// unreadable payloads go straight to the dead letter list
			_ = q.moveToDeadLetter(ctx, raw, []byte(raw))
			continue
		}

		return &Delivery{
			Item: item,
			ack: func(ctx context.Context) error {
				if err := q.client.LRem(ctx, processingKey, 1, raw).Err(); err != nil {
					return fmt.Errorf("failed to ack work item: %w", err)
				}
				return nil
			},
			deadLetter: func(ctx context.Context, cause error) error {
				return q.moveToDeadLetter(ctx, raw, encodeDeadLetter(q.name, item, cause))
			},
		}, nil
	}
}

func (q *RedisQueue) moveToDeadLetter(ctx context.Context, raw string, entry []byte) error {
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, keyPrefixProcessing+q.name, 1, raw)
	pipe.LPush(ctx, keyPrefixDLQ+q.name, entry)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to move to DLQ: %w", err)
	}
	return nil
}

// RecoverProcessing moves items left in the processing list by a crashed
// worker back to the pending list. Call it before starting workers.
func (q *RedisQueue) RecoverProcessing(ctx context.Context) (int, error) {
	moved := 0
	for {
		_, err := q.client.LMove(ctx, keyPrefixProcessing+q.name, keyPrefixQueue+q.name, "RIGHT", "RIGHT").Result()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to recover processing items: %w", err)
		}
		moved++
	}
}

// Depth returns the number of pending items
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, keyPrefixQueue+q.name).Result()
}

// Close is a no-op; the client is owned by the caller
func (q *RedisQueue) Close() error {
	return nil
}

var _ Queue = (*RedisQueue)(nil)

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-agent/pkg/config"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// RedisCheckpointStore keeps workflow checkpoints in Redis with a TTL
type RedisCheckpointStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCheckpointStore creates a checkpoint store on client. A ttl <= 0 keeps entries forever.
func NewRedisCheckpointStore(client redis.Cmdable, ttl time.Duration) *RedisCheckpointStore {
	return &RedisCheckpointStore{client: client, ttl: ttl}
}

// Load returns the checkpointed output of step
func (s *RedisCheckpointStore) Load(ctx context.Context, instanceID, step string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, checkpointKey(instanceID, step)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return val, true, nil
}

// Save stores the output of step
func (s *RedisCheckpointStore) Save(ctx context.Context, instanceID, step string, output []byte) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, checkpointKey(instanceID, step), output, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

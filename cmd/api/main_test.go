package main

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-agent/internal/adapter/repository"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-agent/pkg/config"
)

func checkpointConfig(driver string) *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.CheckpointDriver = driver
	cfg.Pipeline.CheckpointTTL = time.Hour
	return cfg
}

func TestNewCheckpointStore(t *testing.T) {
	// The client is never dialled; the store only keeps a handle.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	store, closeStore, err := newCheckpointStore(checkpointConfig("postgres"), nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &repository.CheckpointRepository{}, store)
	assert.NoError(t, closeStore())

	store, closeStore, err = newCheckpointStore(checkpointConfig("redis"), nil, client)
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisCheckpointStore{}, store)
	assert.NoError(t, closeStore())

	store, closeStore, err = newCheckpointStore(checkpointConfig("memory"), nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCheckpointStore{}, store)
	assert.NoError(t, closeStore())
}

func TestNewCheckpointStore_Errors(t *testing.T) {
	_, _, err := newCheckpointStore(checkpointConfig("redis"), nil, nil)
	assert.Error(t, err)

	_, _, err = newCheckpointStore(checkpointConfig("etcd"), nil, nil)
	assert.Error(t, err)
}

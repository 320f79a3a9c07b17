package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCheckpointStore_SaveLoad(t *testing.T) {
	store := NewMemoryCheckpointStore(0)
	defer store.Close()
	ctx := context.Background()

	_, found, err := store.Load(ctx, "job-1", "fetch-transcript")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, "job-1", "fetch-transcript", []byte(`"raw"`)))

	out, found, err := store.Load(ctx, "job-1", "fetch-transcript")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `"raw"`, string(out))

	_, found, _ = store.Load(ctx, "job-2", "fetch-transcript")
	assert.False(t, found)
}

func TestMemoryCheckpointStore_Expiry(t *testing.T) {
	store := NewMemoryCheckpointStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "job-1", "summarize", []byte(`"text"`)))
	time.Sleep(30 * time.Millisecond)

	_, found, err := store.Load(ctx, "job-1", "summarize")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCheckpointStore_ReturnsCopy(t *testing.T) {
	store := NewMemoryCheckpointStore(0)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "job-1", "parse", []byte(`[1]`)))
	out, _, _ := store.Load(ctx, "job-1", "parse")
	out[0] = 'x'

	again, _, _ := store.Load(ctx, "job-1", "parse")
	assert.Equal(t, `[1]`, string(again))
}

package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCheckpointStore keeps workflow checkpoints in process memory with a
// TTL. Checkpoints do not survive a restart, so it suits development and
// tests only.
type MemoryCheckpointStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      []byte
	expireTime time.Time
}

// NewMemoryCheckpointStore creates a new in-memory store. A ttl <= 0 keeps entries forever.
func NewMemoryCheckpointStore(ttl time.Duration) *MemoryCheckpointStore {
	store := &MemoryCheckpointStore{
		items: make(map[string]*memoryItem),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}

	if ttl > 0 {
		go store.cleanupExpired(5 * time.Minute)
	}

	return store
}

func checkpointKey(instanceID, step string) string {
	return "workflow:" + instanceID + ":" + step
}

// Load returns the checkpointed output of step
func (ms *MemoryCheckpointStore) Load(_ context.Context, instanceID, step string) ([]byte, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[checkpointKey(instanceID, step)]
	if !exists {
		return nil, false, nil
	}
	if !item.expireTime.IsZero() && time.Now().After(item.expireTime) {
		return nil, false, nil
	}

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, true, nil
}

// Save stores the output of step
func (ms *MemoryCheckpointStore) Save(_ context.Context, instanceID, step string, output []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item := &memoryItem{value: append([]byte(nil), output...)}
	if ms.ttl > 0 {
		item.expireTime = time.Now().Add(ms.ttl)
	}
	ms.items[checkpointKey(instanceID, step)] = item
	return nil
}

// Close stops the cleanup goroutine
func (ms *MemoryCheckpointStore) Close() error {
	ms.once.Do(func() { close(ms.stop) })
	return nil
}

// cleanupExpired periodically removes expired items
func (ms *MemoryCheckpointStore) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := time.Now()
			for key, item := range ms.items {
				if !item.expireTime.IsZero() && now.After(item.expireTime) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}

package queue

import (
	"context"
	"sync"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// MemoryQueue is an in-process queue for development and tests
type MemoryQueue struct {
	items chan entities.WorkItem
	done  chan struct{}
	once  sync.Once
	mu    sync.Mutex
	dead  []DeadLetterEntry
}

// NewMemoryQueue creates a queue holding at most size pending items
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 100
	}
	return &MemoryQueue{
		items: make(chan entities.WorkItem, size),
		done:  make(chan struct{}),
	}
}

// Publish enqueues item, blocking while the buffer is full
func (q *MemoryQueue) Publish(ctx context.Context, item entities.WorkItem) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.items <- item:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive waits for the next item
func (q *MemoryQueue) Receive(ctx context.Context) (*Delivery, error) {
	select {
	case item := <-q.items:
		return &Delivery{
			Item: item,
			deadLetter: func(_ context.Context, cause error) error {
				entry := DeadLetterEntry{Item: item, Queue: "memory"}
				if cause != nil {
					entry.Cause = cause.Error()
				}
				q.mu.Lock()
				q.dead = append(q.dead, entry)
				q.mu.Unlock()
				return nil
			},
		}, nil
	case <-q.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of pending items
func (q *MemoryQueue) Len() int {
	return len(q.items)
}

// DeadLetters returns a copy of the dead-lettered items
func (q *MemoryQueue) DeadLetters() []DeadLetterEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]DeadLetterEntry(nil), q.dead...)
}

// Close stops Publish and Receive
func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}

var _ Queue = (*MemoryQueue)(nil)

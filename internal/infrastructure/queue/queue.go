package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/pkg/metrics"
)

// ErrClosed is returned by Receive after the queue has been closed
var ErrClosed = errors.New("queue closed")

// Queue carries pipeline work items from the webhook path to the workers
type Queue interface {
	Publish(ctx context.Context, item entities.WorkItem) error
	// Receive blocks until an item is available or ctx is done
	Receive(ctx context.Context) (*Delivery, error)
	Close() error
}

// Delivery is a received work item awaiting acknowledgement
type Delivery struct {
	Item entities.WorkItem

	ack        func(ctx context.Context) error
	deadLetter func(ctx context.Context, cause error) error
}

// Ack marks the item as done
func (d *Delivery) Ack(ctx context.Context) error {
	if d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}

// DeadLetter parks the item with the failure cause
func (d *Delivery) DeadLetter(ctx context.Context, cause error) error {
	if d.deadLetter == nil {
		return nil
	}
	return d.deadLetter(ctx, cause)
}

// DeadLetterEntry is what gets stored for a failed item
type DeadLetterEntry struct {
	Item  entities.WorkItem `json:"item"`
	Cause string            `json:"cause"`
	Queue string            `json:"queue"`
}

func encodeItem(item entities.WorkItem) ([]byte, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal work item: %w", err)
	}
	return data, nil
}

func decodeItem(data []byte) (entities.WorkItem, error) {
	var item entities.WorkItem
	if err := json.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("failed to unmarshal work item: %w", err)
	}
	return item, nil
}

func encodeDeadLetter(queueName string, item entities.WorkItem, cause error) []byte {
	entry := DeadLetterEntry{Item: item, Queue: queueName}
	if cause != nil {
		entry.Cause = cause.Error()
	}
	data, _ := json.Marshal(entry)
	return data
}

type instrumented struct {
	Queue
	driver  string
	metrics *metrics.Metrics
}

// WithMetrics counts every successful Publish on q under the driver label
func WithMetrics(q Queue, driver string, m *metrics.Metrics) Queue {
	return &instrumented{Queue: q, driver: driver, metrics: m}
}

func (q *instrumented) Publish(ctx context.Context, item entities.WorkItem) error {
	if err := q.Queue.Publish(ctx, item); err != nil {
		return err
	}
	q.metrics.ObservePublish(q.driver)
	return nil
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/pkg/config"
)

// ConnectNATS opens a connection that keeps reconnecting in the background
func ConnectNATS(cfg *config.NATSConfig) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("meeting-agent"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}

// NATSQueue publishes work items on a subject and receives them through a
// queue group so each item reaches one worker. Core NATS does not redeliver,
// so Ack is a no-op and recovery relies on the pipeline checkpoints.
// The subscription is made on the first Receive, so publish-only users
// never join the group.
type NATSQueue struct {
	conn    *nats.Conn
	subject string
	group   string

	mu  sync.Mutex
	sub *nats.Subscription
}

// NewNATSQueue creates a queue on subject consumed within group
func NewNATSQueue(conn *nats.Conn, subject, group string) *NATSQueue {
	return &NATSQueue{conn: conn, subject: subject, group: group}
}

func (q *NATSQueue) subscription() (*nats.Subscription, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.sub != nil {
		return q.sub, nil
	}
	sub, err := q.conn.QueueSubscribeSync(q.subject, q.group)
	if err != nil {
		if errors.Is(err, nats.ErrConnectionClosed) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("failed to subscribe to %s: %w", q.subject, err)
	}
	q.sub = sub
	return sub, nil
}

// DeadLetterSubject is where failed items are republished
func (q *NATSQueue) DeadLetterSubject() string {
	return q.subject + ".dlq"
}

// Publish sends item on the work subject
func (q *NATSQueue) Publish(_ context.Context, item entities.WorkItem) error {
	data, err := encodeItem(item)
	if err != nil {
		return err
	}
	if err := q.conn.Publish(q.subject, data); err != nil {
		return fmt.Errorf("failed to publish work item: %w", err)
	}
	return nil
}

// Receive waits for the next message delivered to this subscriber
func (q *NATSQueue) Receive(ctx context.Context) (*Delivery, error) {
	sub, err := q.subscription()
	if err != nil {
		return nil, err
	}

	for {
		msg, err := sub.NextMsgWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, nats.ErrBadSubscription) || errors.Is(err, nats.ErrConnectionClosed) {
				return nil, ErrClosed
			}
			return nil, fmt.Errorf("failed to receive work item: %w", err)
		}

		item, err := decodeItem(msg.Data)
		if err != nil {
			_ = q.conn.Publish(q.DeadLetterSubject(), msg.Data)
			continue
		}

		return &Delivery{
			Item: item,
			deadLetter: func(_ context.Context, cause error) error {
				if err := q.conn.Publish(q.DeadLetterSubject(), encodeDeadLetter(q.subject, item, cause)); err != nil {
					return fmt.Errorf("failed to publish dead letter: %w", err)
				}
				return nil
			},
		}, nil
	}
}

// Close drops the subscription; the connection is owned by the caller
func (q *NATSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.sub == nil {
		return nil
	}
	err := q.sub.Unsubscribe()
	q.sub = nil
	return err
}

var _ Queue = (*NATSQueue)(nil)

package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/pkg/config"
	"github.com/johnquangdev/meeting-agent/pkg/metrics"
)

func TestMemoryQueue_PublishReceive(t *testing.T) {
	q := NewMemoryQueue(4)
	defer q.Close()
	ctx := context.Background()

	item := entities.NewProcessingWorkItem("meeting-1", "https://example.com/t.jsonl")
	require.NoError(t, q.Publish(ctx, item))
	assert.Equal(t, 1, q.Len())

	d, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, item, d.Item)
	assert.NoError(t, d.Ack(ctx))
}

func TestMemoryQueue_DeadLetter(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, entities.NewProcessingWorkItem("meeting-1", "u")))
	d, err := q.Receive(ctx)
	require.NoError(t, err)
	require.NoError(t, d.DeadLetter(ctx, errors.New("summarize failed")))

	dead := q.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, "meeting-1", dead[0].Item.Data.MeetingID)
	assert.Equal(t, "summarize failed", dead[0].Cause)
}

func TestMemoryQueue_ReceiveHonoursContext(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueue_Closed(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Publish(context.Background(), entities.WorkItem{}), ErrClosed)
	_, err := q.Receive(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWithMetrics_CountsPublishes(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	q := WithMetrics(NewMemoryQueue(2), "memory", m)
	defer q.Close()

	require.NoError(t, q.Publish(context.Background(), entities.NewProcessingWorkItem("m", "u")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueuePublishedTotal.WithLabelValues("memory")))
}

func TestOpen_SelectsDriver(t *testing.T) {
	cfg := &config.Config{}

	cfg.Pipeline.QueueDriver = DriverMemory
	q, err := Open(cfg, Backends{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryQueue{}, q)

	cfg.Pipeline.QueueDriver = DriverRedis
	_, err = Open(cfg, Backends{})
	assert.Error(t, err)

	cfg.Pipeline.QueueDriver = DriverNATS
	_, err = Open(cfg, Backends{})
	assert.Error(t, err)

	cfg.Pipeline.QueueDriver = "kafka"
	_, err = Open(cfg, Backends{})
	assert.Error(t, err)
}

package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string][]byte{}}
}

func (s *mapStore) Load(_ context.Context, instanceID, step string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[instanceID+"/"+step]
	return v, ok, nil
}

func (s *mapStore) Save(_ context.Context, instanceID, step string, output []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[instanceID+"/"+step] = output
	return nil
}

func noWait(retries uint64) Option {
	return WithBackOff(func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, retries)
	})
}

func TestStep_ReplaysCompletedStep(t *testing.T) {
	runner := NewRunner(newMapStore(), noWait(0))
	calls := 0
	fn := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	out, err := Step(context.Background(), runner.Begin("job-1"), "collect", fn)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)

	out, err = Step(context.Background(), runner.Begin("job-1"), "collect", fn)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)
	assert.Equal(t, 1, calls)
}

func TestStep_InstancesAreIsolated(t *testing.T) {
	runner := NewRunner(newMapStore(), noWait(0))
	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	first, err := Step(context.Background(), runner.Begin("job-1"), "count", fn)
	require.NoError(t, err)
	second, err := Step(context.Background(), runner.Begin("job-2"), "count", fn)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestStep_RetriesTransientFailure(t *testing.T) {
	runner := NewRunner(newMapStore(), noWait(3))
	calls := 0

	out, err := Step(context.Background(), runner.Begin("job-1"), "flaky", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, calls)
}

func TestStep_PermanentErrorStopsImmediately(t *testing.T) {
	store := newMapStore()
	runner := NewRunner(store, noWait(5))
	calls := 0
	cause := errors.New("malformed line 3")

	_, err := Step(context.Background(), runner.Begin("job-1"), "parse", func(ctx context.Context) (int, error) {
		calls++
		return 0, Permanent(cause)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, cause)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "parse", stepErr.Step)
	assert.False(t, stepErr.Retryable())

	_, found, _ := store.Load(context.Background(), "job-1", "parse")
	assert.False(t, found)
}

func TestStep_ExhaustedRetriesAreRetryable(t *testing.T) {
	runner := NewRunner(newMapStore(), noWait(2))
	calls := 0

	_, err := Step(context.Background(), runner.Begin("job-1"), "summarize", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("service unavailable")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.True(t, stepErr.Retryable())
}

func TestStep_ObserverSeesReplay(t *testing.T) {
	var seen []bool
	runner := NewRunner(newMapStore(), noWait(0), WithObserver(func(step string, _ time.Duration, replayed bool, err error) {
		seen = append(seen, replayed)
	}))
	fn := func(ctx context.Context) (bool, error) { return true, nil }

	_, err := Step(context.Background(), runner.Begin("job-1"), "save", fn)
	require.NoError(t, err)
	_, err = Step(context.Background(), runner.Begin("job-1"), "save", fn)
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true}, seen)
}

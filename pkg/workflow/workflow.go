// Package workflow runs multi-step jobs whose step results are checkpointed,
// so a re-run of the same job instance skips every step that already
// succeeded and resumes at the first one that did not.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// CheckpointStore persists step outputs keyed by job instance and step name
type CheckpointStore interface {
	Load(ctx context.Context, instanceID, step string) ([]byte, bool, error)
	Save(ctx context.Context, instanceID, step string, output []byte) error
}

// Observer is notified once per step execution or replay
type Observer func(step string, elapsed time.Duration, replayed bool, err error)

// Runner executes steps against a checkpoint store
type Runner struct {
	store      CheckpointStore
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
	observe    Observer
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the runner logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithBackOff sets the per-step retry policy
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(r *Runner) { r.newBackOff = factory }
}

// WithObserver installs a step observer (metrics)
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observe = o }
}

// ExponentialBackOff returns a factory for exponential retry with at most maxRetries retries
func ExponentialBackOff(initial time.Duration, maxRetries uint64) func() backoff.BackOff {
	return func() backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = initial
		bo.MaxInterval = 30 * time.Second
		bo.MaxElapsedTime = 2 * time.Minute
		return backoff.WithMaxRetries(bo, maxRetries)
	}
}

// NewRunner creates a runner backed by store
func NewRunner(store CheckpointStore, opts ...Option) *Runner {
	r := &Runner{
		store:      store,
		logger:     zap.NewNop(),
		newBackOff: ExponentialBackOff(time.Second, 3),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execution is one run of a job instance
type Execution struct {
	runner     *Runner
	instanceID string
}

// Begin starts (or resumes) the job instance identified by instanceID
func (r *Runner) Begin(instanceID string) *Execution {
	return &Execution{runner: r, instanceID: instanceID}
}

// InstanceID returns the job instance id
func (e *Execution) InstanceID() string {
	return e.instanceID
}

// StepError reports which step failed and whether retrying the job can help
type StepError struct {
	Step      string
	Err       error
	Permanent bool
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the job may be retried
func (e *StepError) Retryable() bool {
	return !e.Permanent
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Step runs fn as the step called name, or returns its checkpointed output
// when this instance already completed it. fn is retried with the runner's
// backoff until it succeeds, returns a Permanent error, or ctx ends.
func Step[T any](ctx context.Context, exec *Execution, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	r := exec.runner

	raw, found, err := r.store.Load(ctx, exec.instanceID, name)
	if err != nil {
		return zero, &StepError{Step: name, Err: fmt.Errorf("load checkpoint: %w", err)}
	}
	if found {
		var out T
		if err := json.Unmarshal(raw, &out); err != nil {
			return zero, &StepError{Step: name, Err: fmt.Errorf("decode checkpoint: %w", err), Permanent: true}
		}
		r.logger.Debug("workflow.step.replayed",
			zap.String("instance_id", exec.instanceID),
			zap.String("step", name),
		)
		r.notify(name, 0, true, nil)
		return out, nil
	}

	var (
		out       T
		permanent bool
		attempt   int
		start     = time.Now()
	)
	op := func() error {
		attempt++
		v, err := fn(ctx)
		if err != nil {
			var perm *backoff.PermanentError
			if errors.As(err, &perm) {
				permanent = true
			}
			return err
		}
		out = v
		return nil
	}
	onRetry := func(err error, next time.Duration) {
		r.logger.Warn("workflow.step.retry",
			zap.String("instance_id", exec.instanceID),
			zap.String("step", name),
			zap.Int("attempt", attempt),
			zap.Duration("next", next),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(r.newBackOff(), ctx), onRetry); err != nil {
		r.notify(name, time.Since(start), false, err)
		return zero, &StepError{Step: name, Err: err, Permanent: permanent}
	}

	raw, err = json.Marshal(out)
	if err != nil {
		return zero, &StepError{Step: name, Err: fmt.Errorf("encode checkpoint: %w", err), Permanent: true}
	}
	if err := r.store.Save(ctx, exec.instanceID, name, raw); err != nil {
		return zero, &StepError{Step: name, Err: fmt.Errorf("save checkpoint: %w", err)}
	}

	r.logger.Info("workflow.step.completed",
		zap.String("instance_id", exec.instanceID),
		zap.String("step", name),
		zap.Int("attempts", attempt),
		zap.Duration("elapsed", time.Since(start)),
	)
	r.notify(name, time.Since(start), false, nil)
	return out, nil
}

func (r *Runner) notify(step string, elapsed time.Duration, replayed bool, err error) {
	if r.observe != nil {
		r.observe(step, elapsed, replayed, err)
	}
}

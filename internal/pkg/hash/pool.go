package hash

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

// ErrTimeout is returned by Pool when a call does not finish in time.
var ErrTimeout = errors.New("hash: operation timed out")

// Pool runs a Strategy with bounded concurrency and an optional deadline.
//
// Peak memory is roughly the strategy memory cost times maxConcurrent. A call
// that times out returns early, but its computation keeps its slot until it
// finishes so the bound still holds.
type Pool struct {
	strategy Strategy
	sem      *semaphore.Weighted
	size     int64
	timeout  time.Duration
	inFlight *atomic.Int64
	timeouts *atomic.Int64
}

// NewPool wraps strategy. maxConcurrent < 1 selects runtime.NumCPU();
// timeout <= 0 disables the per-call deadline.
func NewPool(strategy Strategy, maxConcurrent int64, timeout time.Duration) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = int64(runtime.NumCPU())
	}

	return &Pool{
		strategy: strategy,
		sem:      semaphore.NewWeighted(maxConcurrent),
		size:     maxConcurrent,
		timeout:  timeout,
		inFlight: atomic.NewInt64(0),
		timeouts: atomic.NewInt64(0),
	}
}

// Strategy returns the wrapped strategy.
func (p *Pool) Strategy() Strategy {
	return p.strategy
}

// Size returns the maximum number of concurrent computations.
func (p *Pool) Size() int64 {
	return p.size
}

// InFlight returns the number of computations currently running.
func (p *Pool) InFlight() int64 {
	return p.inFlight.Load()
}

// Timeouts returns how many calls gave up waiting since the pool was created.
func (p *Pool) Timeouts() int64 {
	return p.timeouts.Load()
}

// Hash runs Strategy.Hash on the pool.
func (p *Pool) Hash(ctx context.Context, plaintext string) ([]byte, error) {
	type result struct {
		hashed []byte
		err    error
	}

	res, err := run(ctx, p, func() result {
		h, err := p.strategy.Hash(plaintext)
		return result{hashed: h, err: err}
	})
	if err != nil {
		return nil, err
	}

	return res.hashed, res.err
}

// Verify runs Strategy.Verify on the pool. A mismatch is (false, nil); an
// error only means the answer could not be computed in time.
func (p *Pool) Verify(ctx context.Context, hashed, plaintext string) (bool, error) {
	return run(ctx, p, func() bool {
		return p.strategy.Verify(hashed, plaintext)
	})
}

// Wait blocks until every running computation has released its slot,
// including those whose callers already timed out, or until ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, p.size); err != nil {
		return err
	}
	p.sem.Release(p.size)
	return nil
}

func run[T any](ctx context.Context, p *Pool, fn func() T) (T, error) {
	var zero T

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, p.ctxErr(err)
	}

	done := make(chan T, 1)
	p.inFlight.Inc()
	go func() {
		defer func() {
			p.inFlight.Dec()
			p.sem.Release(1)
		}()
		done <- fn()
	}()

	select {
	case v := <-done:
		return v, nil
	case <-ctx.Done():
		return zero, p.ctxErr(ctx.Err())
	}
}

func (p *Pool) ctxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		p.timeouts.Inc()
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

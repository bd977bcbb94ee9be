// Package goroutine runs short-lived named tasks with a concurrency limit and
// gathers their errors.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/gocrypt/internal/pkg/stacktrace"
)

// DefaultLimitPerCPU is multiplied by runtime.NumCPU() when NewManager
// receives a non-positive limit.
const DefaultLimitPerCPU = 100

// ErrLimitReached is recorded when a task is dropped because the manager is full.
var ErrLimitReached = errors.New("goroutine: limit reached")

// Task is a unit of work scheduled on a Manager.
type Task func(ctx context.Context) error

// Manager runs tasks in goroutines. Tasks are never queued: when the limit is
// reached the task is dropped and ErrLimitReached is recorded against its
// name. Errors, recovered panics and cancellations are returned by Wait,
// each prefixed with the task name.
type Manager struct {
	slots chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex // guards closed and wg.Add
	closed bool

	errMu sync.Mutex
	errs  []error
}

// NewManager creates a Manager that runs at most limit tasks at once.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * DefaultLimitPerCPU
	}

	return &Manager{slots: make(chan struct{}, limit)}
}

// Go starts f under name. A closed manager ignores the call.
func (m *Manager) Go(ctx context.Context, name string, f Task) {
	if m == nil {
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine manager is closed, task skipped", "task", name)
		return
	}

	select {
	case m.slots <- struct{}{}:
	default:
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine limit reached, task dropped", "task", name)
		m.fail(name, ErrLimitReached)
		return
	}

	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(ctx, name, f)
}

func (m *Manager) run(ctx context.Context, name string, f Task) {
	defer func() {
		<-m.slots
		m.wg.Done()
	}()

	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "stack", string(stack))
			}
			m.fail(name, fmt.Errorf("panic: %v", rvr))
		}
	}()

	if err := ctx.Err(); err != nil {
		m.fail(name, err)
		return
	}

	if err := f(ctx); err != nil {
		m.fail(name, err)
	}
}

func (m *Manager) fail(name string, err error) {
	m.errMu.Lock()
	m.errs = append(m.errs, fmt.Errorf("%s: %w", name, err))
	m.errMu.Unlock()
}

// Wait closes the manager, blocks until every started task returns, and
// joins the recorded errors.
func (m *Manager) Wait() error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	m.errMu.Lock()
	defer m.errMu.Unlock()
	return errors.Join(m.errs...)
}

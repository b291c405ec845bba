// Package batch runs queued operations in fixed-size concurrent batches.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/topup/internal/infra/metrics"
)

// DefaultSize is the number of operations launched together.
const DefaultSize = 10

// Operation is a queued unit of work.
type Operation[T any] func(ctx context.Context) (T, error)

// Failure records an operation error with the operation's queue index.
type Failure struct {
	Index int
	Err   error
}

// Result collects the outcome of Execute. Successes are in queue order.
type Result[T any] struct {
	Successes []T
	Failures  []Failure
}

// Manager queues operations and executes them batch by batch. Batches run
// sequentially; operations inside a batch run concurrently and every one of
// them is awaited even when some fail.
type Manager[T any] struct {
	size int

	mu    sync.Mutex
	queue []Operation[T]
}

// NewManager creates a manager with the given batch size (<= 0 uses DefaultSize).
func NewManager[T any](size int) *Manager[T] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Manager[T]{size: size}
}

// Add queues an operation.
func (m *Manager[T]) Add(op Operation[T]) {
	m.mu.Lock()
	m.queue = append(m.queue, op)
	m.mu.Unlock()
}

// Len returns the number of queued operations.
func (m *Manager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Execute drains the queue and runs it. Cancelling ctx stops launching new
// batches; operations of batches never started are reported as failures.
func (m *Manager[T]) Execute(ctx context.Context) Result[T] {
	m.mu.Lock()
	ops := m.queue
	m.queue = nil
	m.mu.Unlock()

	type outcome struct {
		value T
		err   error
	}
	outcomes := make([]outcome, len(ops))

	for start := 0; start < len(ops); start += m.size {
		end := min(start+m.size, len(ops))

		if err := ctx.Err(); err != nil {
			for i := start; i < len(ops); i++ {
				outcomes[i].err = err
			}
			break
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				v, err := run(ctx, ops[i])
				outcomes[i] = outcome{value: v, err: err}
				return nil
			})
		}
		_ = g.Wait()

		slog.Debug("Batch executed", "from", start, "to", end)
	}

	var res Result[T]
	for i, o := range outcomes {
		if o.err != nil {
			res.Failures = append(res.Failures, Failure{Index: i, Err: o.err})
			metrics.BatchOperationsTotal.WithLabelValues("failure").Inc()
			continue
		}
		res.Successes = append(res.Successes, o.value)
		metrics.BatchOperationsTotal.WithLabelValues("success").Inc()
	}
	return res
}

func run[T any](ctx context.Context, op Operation[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return op(ctx)
}

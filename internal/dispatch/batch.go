package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultWaitTimeout bounds Batch.Wait when no timeout is configured.
const DefaultWaitTimeout = 5 * time.Second

// ErrAlreadySubmitted is returned when a batch is submitted twice.
var ErrAlreadySubmitted = errors.New("tool calls already submitted for this batch")

// RequiresAction is an agent's request for the outputs of a set of tool
// calls before its run can continue.
type RequiresAction struct {
	RunID     string     `json:"run_id"`
	ToolCalls []ToolCall `json:"tool_calls"`
}

// Batch collects the outputs of one RequiresAction. Calls run in order on a
// single goroutine; Wait hands back whatever has finished when its timeout
// elapses.
type Batch struct {
	router *Router

	mu      sync.Mutex
	runID   string
	called  bool
	outputs []ToolOutput
	done    chan struct{}
}

// NewBatch creates an empty batch bound to router.
func NewBatch(router *Router) *Batch {
	return &Batch{
		router: router,
		done:   make(chan struct{}),
	}
}

// Submit starts processing action. It returns immediately.
func (b *Batch) Submit(ctx context.Context, action RequiresAction) error {
	b.mu.Lock()
	if b.called {
		b.mu.Unlock()
		return ErrAlreadySubmitted
	}
	b.called = true
	b.runID = action.RunID
	b.outputs = make([]ToolOutput, 0, len(action.ToolCalls))
	b.mu.Unlock()

	calls := append([]ToolCall(nil), action.ToolCalls...)
	go func() {
		defer close(b.done)
		for _, c := range calls {
			out := b.router.dispatchOne(ctx, c)
			b.mu.Lock()
			b.outputs = append(b.outputs, out)
			b.mu.Unlock()
		}
	}()
	return nil
}

// Wait blocks until every submitted call has an output, timeout elapses or
// ctx is done, and returns the outputs available at that point. A batch
// that was never submitted returns nil at once. A non-positive timeout
// uses DefaultWaitTimeout.
func (b *Batch) Wait(ctx context.Context, timeout time.Duration) []ToolOutput {
	b.mu.Lock()
	called := b.called
	b.mu.Unlock()
	if !called {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-b.done:
	case <-timer.C:
		b.router.logger.Warn("Tool outputs incomplete at timeout",
			"run_id", b.RunID(),
			"timeout", timeout,
		)
	case <-ctx.Done():
	}
	return b.Outputs()
}

// Outputs returns a copy of the outputs finished so far.
func (b *Batch) Outputs() []ToolOutput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ToolOutput(nil), b.outputs...)
}

// Done reports whether every submitted call has finished.
func (b *Batch) Done() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// RunID returns the run the batch belongs to.
func (b *Batch) RunID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runID
}

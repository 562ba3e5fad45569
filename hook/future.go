package hook

import "sync"

// Future is a one-shot container for a value or error produced later.
// The first call to Resolve or Reject wins; all later calls are no-ops.
type Future struct {
	done chan struct{}
	once sync.Once
	val  any
	err  error
}

// NewFuture creates an unsettled future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve settles the future with a value. Returns true if this call
// performed the settlement.
func (f *Future) Resolve(v any) bool {
	return f.settle(v, nil)
}

// Reject settles the future with an error. Returns true if this call
// performed the settlement.
func (f *Future) Reject(err error) bool {
	return f.settle(nil, err)
}

func (f *Future) settle(v any, err error) bool {
	won := false
	f.once.Do(func() {
		f.val = v
		f.err = err
		won = true
		close(f.done)
	})
	return won
}

// Await blocks until the future settles and returns its value or error.
func (f *Future) Await() (any, error) {
	<-f.done
	return f.val, f.err
}

// Done returns a channel that is closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has settled.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

var _ Deferred = (*Future)(nil)

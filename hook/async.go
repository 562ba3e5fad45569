package hook

import (
	"fmt"

	"github.com/google/uuid"
)

// ACallAll invokes every hook function registered for hookName
// concurrently: all functions are started before any is awaited. The
// returned future resolves to the flattened aggregate in registration
// order, regardless of settlement order, once every function has settled.
// It rejects with the first hook failure even while sibling functions are
// still pending.
//
// If cb is non-nil it is invoked with the aggregate (or the failure) and
// its return value becomes the future's value instead.
//
// A hook function that never settles leaves the future pending forever;
// there is no cancellation.
func (e *Engine) ACallAll(hookName string, ctx Context, cb Callback) *Future {
	e.calls.Add(1)
	if ctx == nil {
		ctx = Context{}
	}
	inv := uuid.NewString()
	ds := e.lookup(hookName)

	futs := make([]*Future, len(ds))
	for i, d := range ds {
		e.checkDeprecation(d, inv)
		futs[i] = e.callHookFnAsync(d, inv, ctx)
	}

	agg := NewFuture()
	for i := range futs {
		d, f := ds[i], futs[i]
		go func() {
			if _, err := f.Await(); err != nil {
				agg.Reject(fmt.Errorf("hook %q: %s.%s: %w", hookName, d.Owner, d.Name, err))
			}
		}()
	}
	go func() {
		results := []any{}
		for _, f := range futs {
			v, err := f.Await()
			if err != nil {
				return // already rejected above
			}
			results = appendFlat(results, v)
		}
		agg.Resolve(results)
	}()

	return withCallback(agg, cb)
}

// callHookFnAsync drives one hook function under relaxed rules: direct
// return, callback value, or either wrapped in a deferred value. The
// returned future settles with the function's first settlement. A function
// that returns None without calling back is waited on indefinitely.
func (e *Engine) callHookFnAsync(d Descriptor, inv string, ctx Context) *Future {
	e.invoked.Add(1)
	fut := NewFuture()
	s := e.newSettlement(d, inv, false, fut)

	settle := func(v any) any {
		if def, ok := v.(Deferred); ok {
			go s.attemptDeferred(def, howCalledBack)
			return None
		}
		s.attempt(outcome{val: v, how: howCalledBack})
		return None
	}

	go func() {
		ret, err := e.invoke(d, ctx, settle)
		switch {
		case err != nil:
			s.attempt(outcome{rejected: true, err: err, how: failureHow(err)})
		case isNone(ret):
			// The function will settle later through the sink.
		default:
			if def, ok := ret.(Deferred); ok {
				s.attemptDeferred(def, howReturned)
				return
			}
			s.attempt(outcome{val: ret, how: howReturned})
		}
	}()
	return fut
}

// attemptDeferred awaits a deferred settlement value and routes its
// resolution or failure into the settlement.
func (s *settlement) attemptDeferred(def Deferred, how string) {
	v, err := def.Await()
	if err != nil {
		s.attempt(outcome{rejected: true, err: err, how: how})
		return
	}
	s.attempt(outcome{val: v, how: how})
}

// withCallback adapts a future through the legacy completion callback.
func withCallback(fut *Future, cb Callback) *Future {
	if cb == nil {
		return fut
	}
	out := NewFuture()
	go func() {
		v, err := fut.Await()
		var results []any
		if err == nil {
			results, _ = v.([]any)
		}
		out.Resolve(cb(err, results))
	}()
	return out
}

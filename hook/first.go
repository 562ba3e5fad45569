package hook

import (
	"fmt"

	"github.com/google/uuid"
)

// nonEmpty is the default first-match predicate.
func nonEmpty(result []any) bool {
	return len(result) > 0
}

// CallFirst invokes the hook functions registered for hookName in
// registration order and returns the first non-empty result, normalized to
// a sequence. If no function produces a match the empty sequence is
// returned.
//
// First-match dispatch uses a lighter wrapper than CallAll: it performs no
// settle-once anomaly detection, and a hook failure is only logged unless
// the engine's bubble flag is set (the default), in which case it
// propagates to the caller.
func (e *Engine) CallFirst(hookName string, ctx Context) ([]any, error) {
	e.calls.Add(1)
	if ctx == nil {
		ctx = Context{}
	}
	inv := uuid.NewString()

	for _, d := range e.lookup(hookName) {
		e.checkDeprecation(d, inv)
		res, err := e.callHookFnShort(d, inv, ctx, false)
		if err != nil {
			return nil, fmt.Errorf("hook %q: %s.%s: %w", hookName, d.Owner, d.Name, err)
		}
		if nonEmpty(res) {
			return res, nil
		}
	}
	return []any{}, nil
}

// ACallFirst is the asynchronous first-match dispatch: hook functions run
// sequentially (each awaited before the next starts) and the returned
// future resolves with the first result satisfying pred, or the empty
// sequence if none matches. A nil pred accepts any non-empty result. If cb
// is non-nil its return value becomes the future's value.
func (e *Engine) ACallFirst(hookName string, ctx Context, cb Callback, pred Predicate) *Future {
	e.calls.Add(1)
	if ctx == nil {
		ctx = Context{}
	}
	if pred == nil {
		pred = nonEmpty
	}
	inv := uuid.NewString()
	ds := e.lookup(hookName)

	res := NewFuture()
	go func() {
		for _, d := range ds {
			e.checkDeprecation(d, inv)
			seq, err := e.callHookFnShort(d, inv, ctx, true)
			if err != nil {
				res.Reject(fmt.Errorf("hook %q: %s.%s: %w", hookName, d.Owner, d.Name, err))
				return
			}
			if pred(seq) {
				res.Resolve(seq)
				return
			}
		}
		res.Resolve([]any{})
	}()

	return withCallback(res, cb)
}

// callHookFnShort runs one hook function through the light first-match
// wrapper: no settlement tracking, the return value preferred over the
// callback value, and failures swallowed (logged) unless the bubble flag
// is set. With await set, a deferred result is waited on before
// normalization.
func (e *Engine) callHookFnShort(d Descriptor, inv string, ctx Context, await bool) ([]any, error) {
	e.invoked.Add(1)

	var cbVal any = None
	settle := func(v any) any {
		cbVal = v
		return None
	}

	ret, err := e.invoke(d, ctx, settle)
	if err == nil {
		val := ret
		if isNone(val) {
			val = cbVal
		}
		if def, ok := val.(Deferred); ok && await {
			val, err = def.Await()
		}
		if err == nil {
			return normalize(val), nil
		}
	}

	e.failed.Add(1)
	if e.bubble.Load() {
		return nil, err
	}
	e.diagf(SeverityError, d, inv, "hook function failed: %v", err)
	return []any{}, nil
}

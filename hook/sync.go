package hook

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CallAll invokes every hook function registered for hookName, in
// registration order, synchronously and sequentially, and returns the
// flattened aggregate of their results. None contributions are omitted;
// an explicit nil is preserved as an entry. The first hook failure aborts
// the remaining functions and is returned to the caller.
func (e *Engine) CallAll(hookName string, ctx Context) ([]any, error) {
	e.calls.Add(1)
	if ctx == nil {
		ctx = Context{}
	}
	inv := uuid.NewString()

	results := []any{}
	for _, d := range e.lookup(hookName) {
		e.checkDeprecation(d, inv)
		v, err := e.callHookFnSync(d, inv, ctx)
		if err != nil {
			return nil, fmt.Errorf("hook %q: %s.%s: %w", hookName, d.Owner, d.Name, err)
		}
		results = appendFlat(results, v)
	}
	return results, nil
}

// callHookFnSync drives one hook function under synchronous rules: the
// function must produce its value without asynchronous delay, through its
// return values or the completion sink. A deferred settlement value is a
// protocol misuse, reported and used unwrapped.
func (e *Engine) callHookFnSync(d Descriptor, inv string, ctx Context) (any, error) {
	e.invoked.Add(1)
	s := e.newSettlement(d, inv, true, nil)

	settle := func(v any) any {
		s.attempt(outcome{val: v, how: howCalledBack})
		return None
	}

	ret, err := e.invoke(d, ctx, settle)
	switch {
	case err != nil:
		// If the function already settled through the sink the failure
		// is absorbed as an anomaly and the settled value stands.
		s.attempt(outcome{rejected: true, err: err, how: failureHow(err)})
	case !isNone(ret):
		s.attempt(outcome{val: ret, how: howReturned})
	case !s.settled():
		e.misuses.Add(1)
		e.diagf(SeverityWarn, d, inv, "neither called back nor returned a value")
		s.attempt(outcome{val: None, how: howReturned})
	}

	o, ok := s.outcome()
	if !ok {
		// Unreachable: one of the branches above always settles.
		return None, nil
	}
	if o.rejected {
		return nil, o.err
	}
	return o.val, nil
}

func failureHow(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return howPanicked
	}
	return howErrored
}

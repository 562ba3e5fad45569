// Package hook implements the hook dispatch engine.
//
// A hook is a named extension point with zero or more registered hook
// functions. The engine invokes the functions registered for a hook in
// registration order and combines their individual results into one
// aggregate sequence.
//
// # Calling conventions
//
// Hook authors historically produce their value through several different
// channels, and the engine accepts all of them:
//
//   - return the value directly
//   - pass the value to the completion sink ("settle") supplied to the
//     function
//   - return a deferred value (anything implementing Deferred)
//   - pass a deferred value to the completion sink
//
// The first two are legal for synchronous dispatch (CallAll, CallFirst);
// all four are legal for asynchronous dispatch (ACallAll, ACallFirst).
//
// # Settlement
//
// Each invocation of a hook function is a one-shot completion: the function
// settles exactly once with a value or an error. The engine records the
// first settlement and reports every later attempt as an anomaly through
// the diagnostic handler. If a later attempt carries a different outcome
// than the first, the anomaly is escalated through the fault handler on a
// separate goroutine, outside the normal return path, so the bug is never
// silently lost and the already-delivered first result is never corrupted.
//
// # The None sentinel
//
// None marks "this hook function contributed nothing". It is distinct from
// an explicit nil: a function returning nil contributes one nil entry to
// the aggregate, a function returning None contributes no entry at all.
//
// # Usage
//
//	eng := hook.New(reg)
//	results, err := eng.CallAll("documentSaved", hook.Context{"path": p})
//
// Asynchronous fan-out with concurrent hook execution:
//
//	fut := eng.ACallAll("export", ctx, nil)
//	results, err := fut.Await()
package hook

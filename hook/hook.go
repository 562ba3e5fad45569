package hook

// Context carries the caller-supplied invocation payload. It is passed
// unmodified, by reference, to every hook function invoked for one call;
// concurrent mutation by hook functions is the hook authors' responsibility.
type Context map[string]any

// SettleFunc is the completion sink handed to a hook function. Calling it
// settles the invocation with the given value. It always returns None so a
// hook author can safely write "return settle(v)".
type SettleFunc func(value any) any

// Func is a hook function. It receives the hook name, the invocation
// context, and a completion sink, and produces its value through its return
// values or through the sink. A non-nil error is the function's failure
// signal.
type Func func(hookName string, ctx Context, settle SettleFunc) (any, error)

// Descriptor identifies one registered hook function.
type Descriptor struct {
	// Hook is the name of the hook the function is registered against.
	Hook string

	// Owner names the component (plugin/part) that registered the function.
	Owner string

	// Name is the function's identity, unique per owner. The deprecation
	// ledger is keyed by it.
	Name string

	// Fn is the hook function itself.
	Fn Func
}

// Registry is the read interface the engine consumes. Lookup returns the
// descriptors registered for a hook in registration order, or an empty
// slice if the hook has none.
type Registry interface {
	Lookup(hookName string) []Descriptor
}

// DeprecationTable is the advisory table consulted before invoking hook
// functions. Notice returns the advisory text for a hook name, if any.
type DeprecationTable interface {
	Notice(hookName string) (string, bool)
}

// Deferred is a value that will be produced later. Future implements it;
// hook authors may return their own implementations from asynchronous
// hook functions.
type Deferred interface {
	Await() (any, error)
}

// Callback is the legacy-style completion callback accepted by ACallAll and
// ACallFirst. Its return value becomes the externally observed result.
type Callback func(err error, results []any) any

// Predicate decides whether a first-match result is a match. The default
// predicate accepts any non-empty result.
type Predicate func(result []any) bool

// noValue is the type of the None sentinel.
type noValue struct{}

// None is the "no value" sentinel. A hook function that returns None (and
// does not call the completion sink) contributes nothing to the aggregate.
var None = noValue{}

func isNone(v any) bool {
	_, ok := v.(noValue)
	return ok
}

// Settlement channels, used in diagnostics only.
const (
	howCalledBack = "called back"
	howReturned   = "returned a value"
	howErrored    = "returned an error"
	howPanicked   = "panicked"
)

// appendFlat appends v to dst, flattening exactly one nesting level: a
// []any result contributes its elements individually, deeper nesting is
// preserved as-is. None contributes nothing; nil contributes one entry.
func appendFlat(dst []any, v any) []any {
	if isNone(v) {
		return dst
	}
	if seq, ok := v.([]any); ok {
		return append(dst, seq...)
	}
	return append(dst, v)
}

// normalize converts one first-match result into a sequence: None becomes
// empty, a []any is used as-is, anything else (including nil) becomes a
// single-element sequence.
func normalize(v any) []any {
	if isNone(v) {
		return []any{}
	}
	if seq, ok := v.([]any); ok {
		return seq
	}
	return []any{v}
}

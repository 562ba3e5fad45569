package hook

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Engine dispatches hook invocations to the functions registered in its
// registry. An Engine is safe for concurrent use.
type Engine struct {
	registry Registry
	table    DeprecationTable
	diag     DiagnosticHandler
	fault    FaultHandler

	// bubble controls whether first-match dispatch propagates hook
	// failures (true) or only logs them (false).
	bubble atomic.Bool

	// warned rate-limits deprecation notices to once per function
	// identity for the lifetime of the engine.
	warnedMu sync.Mutex
	warned   map[string]bool

	// Stats
	calls     atomic.Uint64
	invoked   atomic.Uint64
	failed    atomic.Uint64
	anomalies atomic.Uint64
	misuses   atomic.Uint64
	notices   atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithDeprecationTable sets the advisory table consulted before invoking
// hook functions.
func WithDeprecationTable(t DeprecationTable) Option {
	return func(e *Engine) {
		e.table = t
	}
}

// WithDiagnosticHandler sets the handler receiving all diagnostics.
func WithDiagnosticHandler(h DiagnosticHandler) Option {
	return func(e *Engine) {
		if h != nil {
			e.diag = h
		}
	}
}

// WithFaultHandler sets the handler receiving escalated double-settle
// anomalies.
func WithFaultHandler(h FaultHandler) Option {
	return func(e *Engine) {
		if h != nil {
			e.fault = h
		}
	}
}

// WithExceptionsBubble sets the initial bubble flag for first-match
// dispatch.
func WithExceptionsBubble(bubble bool) Option {
	return func(e *Engine) {
		e.bubble.Store(bubble)
	}
}

// New creates an Engine reading from the given registry.
func New(registry Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		diag:     defaultDiagnosticHandler,
		fault:    defaultFaultHandler,
		warned:   make(map[string]bool),
	}
	e.bubble.Store(true)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetExceptionsBubble toggles whether first-match dispatch propagates hook
// failures to the caller or only logs them.
func (e *Engine) SetExceptionsBubble(bubble bool) {
	e.bubble.Store(bubble)
}

// ExceptionsBubble returns the current bubble flag.
func (e *Engine) ExceptionsBubble() bool {
	return e.bubble.Load()
}

// ResetDeprecationWarnings clears the warned-once deprecation ledger.
// Intended for tests only.
func (e *Engine) ResetDeprecationWarnings() {
	e.warnedMu.Lock()
	defer e.warnedMu.Unlock()
	e.warned = make(map[string]bool)
}

// lookup returns the descriptors registered for a hook, in registration
// order.
func (e *Engine) lookup(hookName string) []Descriptor {
	if e.registry == nil {
		return nil
	}
	return e.registry.Lookup(hookName)
}

// checkDeprecation emits one advisory per function identity the first time
// a function registered for a deprecated hook is invoked.
func (e *Engine) checkDeprecation(d Descriptor, inv string) {
	if e.table == nil {
		return
	}
	notice, ok := e.table.Notice(d.Hook)
	if !ok {
		return
	}

	e.warnedMu.Lock()
	if e.warned[d.Name] {
		e.warnedMu.Unlock()
		return
	}
	e.warned[d.Name] = true
	e.warnedMu.Unlock()

	e.notices.Add(1)
	e.diagf(SeverityWarn, d, inv, "registered for deprecated hook: %s", notice)
}

// invoke runs a hook function with panic recovery. A recovered panic is
// converted into a *PanicError failure.
func (e *Engine) invoke(d Descriptor, ctx Context, settle SettleFunc) (ret any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return d.Fn(d.Hook, ctx, settle)
}

func (e *Engine) diagnostic(sev Severity, d Descriptor, inv, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity:   sev,
		Hook:       d.Hook,
		Owner:      d.Owner,
		Function:   d.Name,
		Invocation: inv,
		Message:    fmt.Sprintf(format, args...),
	}
}

func (e *Engine) report(d Diagnostic) {
	if e.diag != nil {
		e.diag(d)
	}
}

func (e *Engine) diagf(sev Severity, d Descriptor, inv, format string, args ...any) {
	e.report(e.diagnostic(sev, d, inv, format, args...))
}

// escalate delivers an escalated anomaly through the fault handler on its
// own goroutine. A panicking fault handler must not take down dispatch.
func (e *Engine) escalate(d Diagnostic) {
	h := e.fault
	if h == nil {
		return
	}
	go func() {
		defer func() {
			_ = recover()
		}()
		h(d)
	}()
}

// EngineStats is a snapshot of engine counters.
type EngineStats struct {
	// Calls is the number of dispatch operations performed.
	Calls uint64

	// Invoked is the number of hook function invocations.
	Invoked uint64

	// Failed is the number of hook functions that settled with an error.
	Failed uint64

	// Anomalies is the number of double-settlement attempts detected.
	Anomalies uint64

	// Misuses is the number of protocol misuses detected (deferred value
	// from a synchronous hook, neither-called-back-nor-returned).
	Misuses uint64

	// DeprecationNotices is the number of deprecation advisories emitted.
	DeprecationNotices uint64
}

// Stats returns a snapshot of engine counters.
// Note: counters are read individually, so a snapshot taken during active
// dispatch may be slightly inconsistent.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Calls:              e.calls.Load(),
		Invoked:            e.invoked.Load(),
		Failed:             e.failed.Load(),
		Anomalies:          e.anomalies.Load(),
		Misuses:            e.misuses.Load(),
		DeprecationNotices: e.notices.Load(),
	}
}

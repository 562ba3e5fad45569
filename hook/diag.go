package hook

import (
	"fmt"

	"github.com/dshills/hookline/internal/logger"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityWarn marks an authoring mistake the engine works around.
	SeverityWarn Severity = iota

	// SeverityError marks a contract violation that must reach plugin
	// developers.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a structured message about a misbehaving or deprecated
// hook function. Diagnostics report authoring bugs; they never alter the
// dispatch result.
type Diagnostic struct {
	Severity Severity

	// Hook is the hook name the function was invoked for.
	Hook string

	// Owner names the component that registered the function.
	Owner string

	// Function is the hook function's identity.
	Function string

	// Invocation correlates diagnostics from one engine call.
	Invocation string

	Message string

	// Value carries the differing value (or error) of a settlement
	// attempt that contradicted an earlier one. Nil for all other
	// diagnostics.
	Value any
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("hook %q: function %s (registered by %s): %s",
		d.Hook, d.Function, d.Owner, d.Message)
}

// DiagnosticHandler receives every diagnostic the engine emits.
type DiagnosticHandler func(Diagnostic)

// FaultHandler receives escalated diagnostics: a hook function settled a
// second time with a different outcome than its first settlement. It is
// invoked on its own goroutine, outside the dispatch return path.
type FaultHandler func(Diagnostic)

// defaultDiagnosticHandler logs through the module's structured logger.
func defaultDiagnosticHandler(d Diagnostic) {
	evt := logger.Warn()
	if d.Severity == SeverityError {
		evt = logger.Error()
	}
	evt.Str("hook", d.Hook).
		Str("owner", d.Owner).
		Str("function", d.Function).
		Str("invocation", d.Invocation).
		Msg(d.Message)
}

// defaultFaultHandler reports an escalated anomaly at error level. It is
// deliberately loud: a hook changing its settled outcome is a serious
// authoring bug.
func defaultFaultHandler(d Diagnostic) {
	logger.Error().
		Str("hook", d.Hook).
		Str("owner", d.Owner).
		Str("function", d.Function).
		Str("invocation", d.Invocation).
		Msg("DOUBLE SETTLE BUG: " + d.Message)
}

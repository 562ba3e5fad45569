package hook

import (
	"strings"
	"testing"
)

func TestCheckDeprecation_OncePerFunction(t *testing.T) {
	reg := stubRegistry{"oldHook": {
		desc("oldHook", "fnA", returning("a")),
		desc("oldHook", "fnB", returning("b")),
	}}
	rec := &diagRecorder{}
	eng := New(reg,
		WithDiagnosticHandler(rec.handler()),
		WithDeprecationTable(stubDeprecations{"oldHook": "use newHook instead"}),
	)

	// Multiple calls, synchronous and asynchronous: one notice per
	// function identity.
	if _, err := eng.CallAll("oldHook", nil); err != nil {
		t.Fatalf("CallAll() error = %v", err)
	}
	if _, err := eng.CallAll("oldHook", nil); err != nil {
		t.Fatalf("CallAll() error = %v", err)
	}
	awaitSeq(t, eng.ACallAll("oldHook", nil, nil))

	var notices []Diagnostic
	for _, d := range rec.all() {
		if strings.Contains(d.Message, "deprecated") {
			notices = append(notices, d)
		}
	}
	if len(notices) != 2 {
		t.Fatalf("deprecation notices = %d, want one per function", len(notices))
	}
	seen := map[string]bool{}
	for _, d := range notices {
		if seen[d.Function] {
			t.Errorf("duplicate notice for function %s", d.Function)
		}
		seen[d.Function] = true
		if !strings.Contains(d.Message, "use newHook instead") {
			t.Errorf("notice message = %q, want the advisory text", d.Message)
		}
	}
}

func TestCheckDeprecation_NotDeprecated(t *testing.T) {
	reg := stubRegistry{"h": {desc("h", "fn", returning("v"))}}
	rec := &diagRecorder{}
	eng := New(reg,
		WithDiagnosticHandler(rec.handler()),
		WithDeprecationTable(stubDeprecations{"other": "gone"}),
	)

	if _, err := eng.CallAll("h", nil); err != nil {
		t.Fatalf("CallAll() error = %v", err)
	}
	if rec.count() != 0 {
		t.Errorf("diagnostics = %v, want none", rec.all())
	}
}

func TestResetDeprecationWarnings(t *testing.T) {
	reg := stubRegistry{"oldHook": {desc("oldHook", "fn", returning("v"))}}
	rec := &diagRecorder{}
	eng := New(reg,
		WithDiagnosticHandler(rec.handler()),
		WithDeprecationTable(stubDeprecations{"oldHook": "gone"}),
	)

	if _, err := eng.CallAll("oldHook", nil); err != nil {
		t.Fatalf("CallAll() error = %v", err)
	}
	eng.ResetDeprecationWarnings()
	if _, err := eng.CallAll("oldHook", nil); err != nil {
		t.Fatalf("CallAll() error = %v", err)
	}

	if rec.count() != 2 {
		t.Errorf("diagnostics = %d, want the notice re-emitted after reset", rec.count())
	}
}

func TestEngine_Stats(t *testing.T) {
	reg := stubRegistry{
		"h": {
			desc("h", "ok", returning(1)),
			desc("h", "dup", func(hookName string, ctx Context, settle SettleFunc) (any, error) {
				settle("v")
				return "v", nil
			}),
		},
	}
	rec := &diagRecorder{}
	eng := New(reg, WithDiagnosticHandler(rec.handler()))

	if _, err := eng.CallAll("h", nil); err != nil {
		t.Fatalf("CallAll() error = %v", err)
	}

	stats := eng.Stats()
	if stats.Calls != 1 {
		t.Errorf("Calls = %d, want 1", stats.Calls)
	}
	if stats.Invoked != 2 {
		t.Errorf("Invoked = %d, want 2", stats.Invoked)
	}
	if stats.Anomalies != 1 {
		t.Errorf("Anomalies = %d, want 1", stats.Anomalies)
	}
}

func TestEngine_NilRegistry(t *testing.T) {
	eng := New(nil)

	results, err := eng.CallAll("h", nil)
	if err != nil {
		t.Fatalf("CallAll() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("CallAll() = %v, want empty sequence", results)
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SeverityWarn, "warn"},
		{SeverityError, "error"},
		{Severity(9), "severity(9)"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", int(tt.sev), got, tt.want)
		}
	}
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Hook:     "saveDocument",
		Owner:    "myplugin/main",
		Function: "onSave",
		Message:  "settled twice",
	}
	s := d.String()
	for _, part := range []string{"saveDocument", "myplugin/main", "onSave", "settled twice"} {
		if !strings.Contains(s, part) {
			t.Errorf("Diagnostic.String() = %q, missing %q", s, part)
		}
	}
}

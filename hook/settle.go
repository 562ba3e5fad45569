package hook

import (
	"fmt"
	"reflect"
	"sync"
)

// outcome records how one hook invocation settled.
type outcome struct {
	rejected bool
	val      any
	err      error
	how      string
}

// settlement is the one-shot completion cell for a single hook function
// invocation. The first attempt wins; every later attempt is reported as
// an anomaly. attempt may be called concurrently (return path racing an
// asynchronously-invoked completion sink).
type settlement struct {
	eng  *Engine
	desc Descriptor
	inv  string

	// syncMode rejects deferred settlement values as a protocol misuse.
	syncMode bool

	// future, if non-nil, receives the first settlement.
	future *Future

	mu    sync.Mutex
	first *outcome
}

func (e *Engine) newSettlement(d Descriptor, inv string, syncMode bool, fut *Future) *settlement {
	return &settlement{
		eng:      e,
		desc:     d,
		inv:      inv,
		syncMode: syncMode,
		future:   fut,
	}
}

// attempt records o if it is the first settlement and reports every later
// attempt through the diagnostic handler. Returns true if o was recorded.
func (s *settlement) attempt(o outcome) bool {
	// A deferred value is a misuse on any settlement attempt of a
	// synchronous hook, not just the recorded one.
	if s.syncMode && !o.rejected {
		if _, ok := o.val.(Deferred); ok {
			s.eng.misuses.Add(1)
			s.eng.diagf(SeverityWarn, s.desc, s.inv,
				"%s a deferred value; synchronous hook functions must settle with plain values", o.how)
		}
	}

	s.mu.Lock()
	if s.first == nil {
		s.first = &o
		s.mu.Unlock()

		if o.rejected {
			s.eng.failed.Add(1)
		}

		if s.future != nil {
			if o.rejected {
				s.future.Reject(o.err)
			} else {
				s.future.Resolve(o.val)
			}
		}
		return true
	}
	first := *s.first
	s.mu.Unlock()

	s.eng.anomalies.Add(1)
	if sameOutcome(first, o) {
		s.eng.diagf(SeverityWarn, s.desc, s.inv,
			"settled twice (first %s, then %s with the same outcome); the first settlement stands", first.how, o.how)
		return false
	}

	// The escalated fault carries the differing value so the fault
	// handler sees what the second settlement attempted.
	d := s.eng.diagnostic(SeverityError, s.desc, s.inv,
		"settled twice with different outcomes (first %s: %s, then %s: %s); the first settlement stands",
		first.how, describe(first), o.how, describe(o))
	d.Value = o.val
	if o.rejected {
		d.Value = o.err
	}
	s.eng.report(d)
	s.eng.escalate(d)
	return false
}

// settled reports whether a settlement has been recorded.
func (s *settlement) settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first != nil
}

// outcome returns the recorded settlement, if any.
func (s *settlement) outcome() (outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.first == nil {
		return outcome{}, false
	}
	return *s.first, true
}

// sameOutcome reports whether two settlement attempts carry the same
// result. Values are compared by deep equality.
func sameOutcome(a, b outcome) bool {
	if a.rejected != b.rejected {
		return false
	}
	if a.rejected {
		return a.err == b.err || reflect.DeepEqual(a.err, b.err)
	}
	return reflect.DeepEqual(a.val, b.val)
}

func describe(o outcome) string {
	if o.rejected {
		return fmt.Sprintf("error %v", o.err)
	}
	if isNone(o.val) {
		return "no value"
	}
	return fmt.Sprintf("%v", o.val)
}

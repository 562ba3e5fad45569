package hook

import "fmt"

// PanicError wraps a panic recovered from a hook function. The engine
// converts it into the function's failure signal instead of crashing the
// caller.
type PanicError struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace captured at the point of panic.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("hook function panicked: %v", e.Value)
}

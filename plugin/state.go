package plugin

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a gopher-lua LState for plugin execution.
//
// gopher-lua's LState is not goroutine-safe. Every entry point takes the
// mutex, so a plugin's hook functions serialize on its state even when
// the dispatch engine invokes them concurrently.
type State struct {
	mu     sync.Mutex
	l      *lua.LState
	closed bool
}

// NewState creates a Lua state with only the safe standard libraries
// opened. io, os, debug and package stay closed; plugins have no file
// system or process access.
func NewState() *State {
	l := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	lua.OpenBase(l)
	lua.OpenTable(l)
	lua.OpenString(l)
	lua.OpenMath(l)

	return &State{l: l}
}

// DoFile executes a Lua file on the state.
func (s *State) DoFile(path string) error {
	return s.Do(func(l *lua.LState) error {
		return l.DoFile(path)
	})
}

// DoString executes Lua source on the state.
func (s *State) DoString(code string) error {
	return s.Do(func(l *lua.LState) error {
		return l.DoString(code)
	})
}

// Do runs fn with the raw LState while holding the state lock, with
// panic recovery. fn must not retain the LState past its return.
func (s *State) Do(fn func(l *lua.LState) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn(s.l)
}

// HasGlobalFunction reports whether a global Lua function exists.
func (s *State) HasGlobalFunction(name string) bool {
	found := false
	_ = s.Do(func(l *lua.LState) error {
		found = l.GetGlobal(name).Type() == lua.LTFunction
		return nil
	})
	return found
}

// IsClosed reports whether the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Further calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.l.Close()
	s.closed = true
	return nil
}

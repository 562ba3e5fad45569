package plugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hookline/hook"
	"github.com/dshills/hookline/internal/logger"
)

// Host runs a single loaded plugin: its Lua state plus the manifest that
// describes it. A Host turns the plugin's Lua functions into hook.Func
// values the dispatch engine can invoke.
type Host struct {
	manifest *Manifest
	state    *State
	loaded   bool
}

// NewHost creates a host for a validated manifest. The plugin is not
// executed until Load.
func NewHost(m *Manifest) (*Host, error) {
	if m == nil {
		return nil, ErrNilManifest
	}
	return &Host{manifest: m}, nil
}

// Name returns the plugin name.
func (h *Host) Name() string {
	return h.manifest.Name
}

// Manifest returns the plugin's manifest.
func (h *Host) Manifest() *Manifest {
	return h.manifest
}

// Load creates the Lua state and executes the plugin's entry point.
func (h *Host) Load() error {
	if h.loaded {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, h.manifest.Name)
	}

	state := NewState()
	if err := state.DoFile(h.manifest.MainPath()); err != nil {
		_ = state.Close()
		return fmt.Errorf("loading plugin %s: %w", h.manifest.Name, err)
	}

	h.state = state
	h.loaded = true

	logger.Debug().
		Str("plugin", h.manifest.Name).
		Str("path", h.manifest.Path()).
		Msg("plugin loaded")
	return nil
}

// IsLoaded reports whether Load has succeeded.
func (h *Host) IsLoaded() bool {
	return h.loaded
}

// HasFunction reports whether the plugin defines a global Lua function.
func (h *Host) HasFunction(name string) bool {
	if !h.loaded {
		return false
	}
	return h.state.HasGlobalFunction(name)
}

// Descriptors returns the hook descriptors declared by the manifest,
// part by part, with each part's hooks in sorted hook-name order. The
// descriptor owner is "plugin/part" and the function name is qualified
// as "plugin:luaFunction" so deprecation bookkeeping keys on the actual
// function identity.
func (h *Host) Descriptors() ([]hook.Descriptor, error) {
	if !h.loaded {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, h.manifest.Name)
	}

	var ds []hook.Descriptor
	for _, part := range h.manifest.Parts {
		owner := h.manifest.Name + "/" + part.Name
		for _, hookName := range part.HookNames() {
			fnName := part.Hooks[hookName]
			if !h.HasFunction(fnName) {
				return nil, fmt.Errorf("%w: %s in plugin %s", ErrFunctionNotFound, fnName, h.manifest.Name)
			}
			ds = append(ds, hook.Descriptor{
				Hook:  hookName,
				Owner: owner,
				Name:  h.manifest.Name + ":" + fnName,
				Fn:    h.HookFunc(fnName),
			})
		}
	}
	return ds, nil
}

// HookFunc adapts a global Lua function into a hook.Func.
//
// The Lua function is called as fn(hookName, ctx, settle). The context
// map is converted to a table; settle is exposed as a Lua callback that
// forwards its first argument to the invocation's settle function. A
// non-nil Lua return value settles the invocation with that value; nil
// (or no return) maps to the no-value sentinel. Lua errors surface as
// the hook function's failure.
func (h *Host) HookFunc(fnName string) hook.Func {
	return func(hookName string, ctx hook.Context, settle hook.SettleFunc) (any, error) {
		var ret any = hook.None
		err := h.state.Do(func(l *lua.LState) error {
			fn := l.GetGlobal(fnName)
			if fn.Type() != lua.LTFunction {
				return fmt.Errorf("%w: %s", ErrFunctionNotFound, fnName)
			}

			sink := l.NewFunction(func(l *lua.LState) int {
				arg := l.Get(1)
				if arg == lua.LNil {
					settle(hook.None)
				} else {
					settle(toGo(arg))
				}
				return 0
			})

			l.Push(fn)
			l.Push(lua.LString(hookName))
			l.Push(toLua(l, map[string]any(ctx)))
			l.Push(sink)
			if err := l.PCall(3, 1, nil); err != nil {
				return err
			}

			rv := l.Get(-1)
			l.Pop(1)
			if rv != lua.LNil {
				ret = toGo(rv)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return ret, nil
	}
}

// Close releases the plugin's Lua state.
func (h *Host) Close() error {
	if !h.loaded {
		return nil
	}
	h.loaded = false
	return h.state.Close()
}

package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/dshills/hookline/hook"
)

// Registry errors.
var (
	// ErrMissingHook is returned when a descriptor has no hook name.
	ErrMissingHook = errors.New("descriptor has no hook name")

	// ErrMissingName is returned when a descriptor has no function name.
	ErrMissingName = errors.New("descriptor has no function name")

	// ErrNilFunc is returned when a descriptor has no function.
	ErrNilFunc = errors.New("descriptor has no function")
)

// Registry is an ordered, mutex-guarded mapping from hook name to the
// hook functions registered against it.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string][]hook.Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		hooks: make(map[string][]hook.Descriptor),
	}
}

// Register appends a descriptor to its hook's list. Order of registration
// is preserved.
func (r *Registry) Register(d hook.Descriptor) error {
	switch {
	case d.Hook == "":
		return ErrMissingHook
	case d.Name == "":
		return ErrMissingName
	case d.Fn == nil:
		return ErrNilFunc
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[d.Hook] = append(r.hooks[d.Hook], d)
	return nil
}

// Lookup implements hook.Registry. The returned slice is a copy; callers
// may not observe later registry mutation through it.
func (r *Registry) Lookup(hookName string) []hook.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds := r.hooks[hookName]
	if len(ds) == 0 {
		return nil
	}
	return append([]hook.Descriptor{}, ds...)
}

// Unregister removes every descriptor registered by the given owner and
// returns how many were removed. Relative order of the remaining
// descriptors is preserved.
func (r *Registry) Unregister(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for name, ds := range r.hooks {
		kept := ds[:0]
		for _, d := range ds {
			if d.Owner == owner {
				removed++
				continue
			}
			kept = append(kept, d)
		}
		if len(kept) == 0 {
			delete(r.hooks, name)
		} else {
			r.hooks[name] = kept
		}
	}
	return removed
}

// Hooks returns the names of all hooks with at least one registered
// function, sorted.
func (r *Registry) Hooks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of functions registered for a hook.
func (r *Registry) Count(hookName string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[hookName])
}

// Clear removes all registrations.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = make(map[string][]hook.Descriptor)
}

// Ensure Registry implements the engine's read interface.
var _ hook.Registry = (*Registry)(nil)

// Deprecations is a static deprecation table: hook name to advisory text.
type Deprecations map[string]string

// Notice implements hook.DeprecationTable.
func (d Deprecations) Notice(hookName string) (string, bool) {
	notice, ok := d[hookName]
	return notice, ok
}

var _ hook.DeprecationTable = Deprecations(nil)

// DeprecationTable is a mutex-guarded deprecation table whose notices can
// change while an engine is reading it.
type DeprecationTable struct {
	mu      sync.RWMutex
	notices map[string]string
}

// NewDeprecationTable creates an empty settable deprecation table.
func NewDeprecationTable() *DeprecationTable {
	return &DeprecationTable{
		notices: make(map[string]string),
	}
}

// Set records or replaces the advisory for a hook.
func (t *DeprecationTable) Set(hookName, notice string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notices[hookName] = notice
}

// Remove clears the advisory for a hook.
func (t *DeprecationTable) Remove(hookName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.notices, hookName)
}

// Notice implements hook.DeprecationTable.
func (t *DeprecationTable) Notice(hookName string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	notice, ok := t.notices[hookName]
	return notice, ok
}

var _ hook.DeprecationTable = (*DeprecationTable)(nil)

package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/hookline/internal/logger"
	"github.com/dshills/hookline/registry"
)

// Manager owns the lifecycle of all loaded plugins and keeps their hook
// contributions registered in a registry.
type Manager struct {
	mu     sync.Mutex
	loader *Loader
	reg    *registry.Registry

	// Loaded hosts by plugin name, plus per-plugin registered owners so
	// unload can remove exactly what the plugin contributed.
	hosts  map[string]*Host
	owners map[string][]string
}

// NewManager creates a manager that registers plugin hook functions into
// reg.
func NewManager(loader *Loader, reg *registry.Registry) *Manager {
	return &Manager{
		loader: loader,
		reg:    reg,
		hosts:  make(map[string]*Host),
		owners: make(map[string][]string),
	}
}

// LoadAll discovers and loads every plugin, registering its hook
// functions. Broken plugins are skipped; their errors are joined into
// the returned error while healthy plugins stay loaded.
func (m *Manager) LoadAll() error {
	infos, err := m.loader.Discover()
	if err != nil {
		return fmt.Errorf("discovering plugins: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, info := range infos {
		if info.Err != nil {
			logger.Warn().
				Str("plugin", info.Name).
				Str("path", info.Path).
				Err(info.Err).
				Msg("skipping broken plugin")
			errs = append(errs, info.Err)
			continue
		}
		if _, loaded := m.hosts[info.Name]; loaded {
			continue
		}
		if err := m.loadLocked(info.Manifest); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadLocked loads one plugin and registers its descriptors. Called with
// m.mu held.
func (m *Manager) loadLocked(manifest *Manifest) error {
	host, err := NewHost(manifest)
	if err != nil {
		return err
	}
	if err := host.Load(); err != nil {
		return err
	}

	ds, err := host.Descriptors()
	if err != nil {
		_ = host.Close()
		return err
	}

	ownerSet := make(map[string]bool)
	for _, d := range ds {
		if err := m.reg.Register(d); err != nil {
			for owner := range ownerSet {
				m.reg.Unregister(owner)
			}
			_ = host.Close()
			return fmt.Errorf("registering %s for plugin %s: %w", d.Name, host.Name(), err)
		}
		ownerSet[d.Owner] = true
	}

	owners := make([]string, 0, len(ownerSet))
	for owner := range ownerSet {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	m.hosts[host.Name()] = host
	m.owners[host.Name()] = owners

	logger.Info().
		Str("plugin", host.Name()).
		Int("hooks", len(ds)).
		Msg("plugin registered")
	return nil
}

// unloadLocked closes one plugin and removes its registrations. Called
// with m.mu held.
func (m *Manager) unloadLocked(name string) {
	host, ok := m.hosts[name]
	if !ok {
		return
	}
	for _, owner := range m.owners[name] {
		m.reg.Unregister(owner)
	}
	_ = host.Close()
	delete(m.hosts, name)
	delete(m.owners, name)
}

// Unload closes one plugin and removes its hook registrations.
func (m *Manager) Unload(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.hosts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, name)
	}
	m.unloadLocked(name)
	return nil
}

// Reload unloads every plugin and loads the current filesystem state
// fresh. Used by the watcher when plugin sources change.
func (m *Manager) Reload() error {
	m.mu.Lock()
	for name := range m.hosts {
		m.unloadLocked(name)
	}
	m.mu.Unlock()

	logger.Info().Msg("reloading plugins")
	return m.LoadAll()
}

// Host returns a loaded plugin's host.
func (m *Manager) Host(name string) (*Host, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	host, ok := m.hosts[name]
	return host, ok
}

// Plugins returns the names of loaded plugins, sorted.
func (m *Manager) Plugins() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.hosts))
	for name := range m.hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close unloads every plugin.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name := range m.hosts {
		m.unloadLocked(name)
	}
	return nil
}

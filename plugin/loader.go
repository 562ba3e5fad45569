package plugin

import (
	"os"
	"path/filepath"
	"sort"
)

// Loader discovers plugins on the filesystem.
type Loader struct {
	// Search paths, checked in order. First path wins on name clashes.
	paths []string
}

// Info describes a discovered plugin directory. Err is set when the
// directory carries a broken manifest; such plugins are discovered but
// not loadable.
type Info struct {
	Name     string
	Path     string
	Manifest *Manifest
	Err      error
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPaths sets the plugin search paths.
func WithPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.paths = paths
	}
}

// NewLoader creates a plugin loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		paths: DefaultPluginPaths(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultPluginPaths returns the default search paths: the user config
// directory and the working directory's plugins/ subdirectory.
func DefaultPluginPaths() []string {
	paths := make([]string, 0, 2)
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "hookline", "plugins"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, "plugins"))
	}
	return paths
}

// Paths returns the configured search paths.
func (l *Loader) Paths() []string {
	return l.paths
}

// Discover finds plugin directories in the search paths, sorted by
// plugin name. A missing search path is not an error.
func (l *Loader) Discover() ([]*Info, error) {
	found := make(map[string]*Info)

	for _, base := range l.paths {
		entries, err := os.ReadDir(base)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(base, entry.Name())
			info := inspect(entry.Name(), dir)
			if info == nil {
				continue
			}
			if _, exists := found[info.Name]; !exists {
				found[info.Name] = info
			}
		}
	}

	infos := make([]*Info, 0, len(found))
	for _, info := range found {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// inspect examines one candidate directory. Directories without a
// manifest are skipped; a broken manifest yields an Info with Err set.
func inspect(name, dir string) *Info {
	if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err != nil {
		return nil
	}

	m, err := LoadManifest(dir)
	if err != nil {
		return &Info{Name: name, Path: dir, Err: err}
	}
	return &Info{Name: m.Name, Path: dir, Manifest: m}
}

package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// ManifestFile is the manifest file name inside a plugin directory.
const ManifestFile = "plugin.json"

// DefaultMain is the entry point used when the manifest does not name one.
const DefaultMain = "init.lua"

// Manifest describes a plugin: its identity and the hook functions it
// contributes.
type Manifest struct {
	// Identity
	Name        string `json:"name"`        // Unique identifier (e.g., "markdown-export")
	Version     string `json:"version"`     // Semver (e.g., "1.2.0")
	Description string `json:"description"` // Short description
	Author      string `json:"author"`      // Author name or org
	License     string `json:"license"`     // SPDX license identifier

	// Entry point
	Main string `json:"main"` // Relative path to the main Lua file (default: "init.lua")

	// Parts declare the plugin's hook contributions.
	Parts []Part `json:"parts"`

	// Internal: path to the plugin directory
	path string
}

// Part is a named group of hook contributions.
type Part struct {
	// Name identifies the part within the plugin (default: "main").
	Name string `json:"name"`

	// Hooks maps hook names to the Lua functions implementing them.
	Hooks map[string]string `json:"hooks"`
}

// nameRE validates plugin and part names.
var nameRE = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// LoadManifest reads and validates the manifest in a plugin directory.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, dir)
		}
		return nil, fmt.Errorf("reading manifest in %s: %w", dir, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest in %s: %w", dir, err)
	}
	m.path = dir

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest in %s: %w", dir, err)
	}
	return &m, nil
}

// Validate checks the manifest for structural problems.
func (m *Manifest) Validate() error {
	if !nameRE.MatchString(m.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, m.Name)
	}
	if len(m.Parts) == 0 {
		return ErrNoParts
	}
	for i := range m.Parts {
		p := &m.Parts[i]
		if p.Name == "" {
			p.Name = "main"
		}
		if !nameRE.MatchString(p.Name) {
			return fmt.Errorf("%w: part %q", ErrInvalidName, p.Name)
		}
		for hookName, fnName := range p.Hooks {
			if hookName == "" || fnName == "" {
				return fmt.Errorf("part %q: hook and function names must be non-empty", p.Name)
			}
		}
	}
	return nil
}

// Path returns the plugin directory.
func (m *Manifest) Path() string {
	return m.path
}

// MainPath returns the absolute path of the plugin's entry point.
func (m *Manifest) MainPath() string {
	main := m.Main
	if main == "" {
		main = DefaultMain
	}
	return filepath.Join(m.path, main)
}

// HookNames returns a part's hook names, sorted. Registration iterates
// this so the order plugins contribute hook functions is deterministic.
func (p *Part) HookNames() []string {
	names := make([]string, 0, len(p.Hooks))
	for name := range p.Hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

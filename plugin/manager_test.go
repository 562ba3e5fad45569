package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/hookline/hook"
	"github.com/dshills/hookline/registry"
)

func TestManagerLoadAll(t *testing.T) {
	base := t.TempDir()
	writePlugin(t, base, "demo", `{
		"name": "demo",
		"parts": [{"name": "main", "hooks": {"greet": "greet"}}]
	}`, testLua)

	reg := registry.New()
	m := NewManager(NewLoader(WithPaths(base)), reg)
	defer m.Close()

	if err := m.LoadAll(); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if plugins := m.Plugins(); len(plugins) != 1 || plugins[0] != "demo" {
		t.Fatalf("Plugins() = %v, want [demo]", plugins)
	}

	eng := hook.New(reg)
	results, err := eng.CallAll("greet", hook.Context{"who": "manager"})
	if err != nil {
		t.Fatalf("CallAll() error = %v", err)
	}
	if len(results) != 1 || results[0] != "hello manager" {
		t.Errorf("CallAll() = %v, want [hello manager]", results)
	}
}

func TestManagerLoadAll_SkipsBrokenPlugins(t *testing.T) {
	base := t.TempDir()
	writePlugin(t, base, "good", `{"name": "good", "parts": [{"hooks": {"greet": "greet"}}]}`, testLua)
	writePlugin(t, base, "bad", `{"name": "bad", "parts": [{"hooks": {"h": "f"}}]}`, `not lua at all`)

	reg := registry.New()
	m := NewManager(NewLoader(WithPaths(base)), reg)
	defer m.Close()

	err := m.LoadAll()
	if err == nil {
		t.Error("LoadAll() = nil, want joined error for the broken plugin")
	}
	if plugins := m.Plugins(); len(plugins) != 1 || plugins[0] != "good" {
		t.Errorf("Plugins() = %v, want [good]", plugins)
	}
	if reg.Count("greet") != 1 {
		t.Errorf("Count(greet) = %d, want 1", reg.Count("greet"))
	}
}

func TestManagerUnload(t *testing.T) {
	base := t.TempDir()
	writePlugin(t, base, "demo", `{
		"name": "demo",
		"parts": [{"name": "main", "hooks": {"greet": "greet", "record": "record"}}]
	}`, testLua)

	reg := registry.New()
	m := NewManager(NewLoader(WithPaths(base)), reg)
	defer m.Close()

	if err := m.LoadAll(); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if err := m.Unload("demo"); err != nil {
		t.Fatalf("Unload() error = %v", err)
	}

	if len(m.Plugins()) != 0 {
		t.Errorf("Plugins() = %v, want empty", m.Plugins())
	}
	if len(reg.Hooks()) != 0 {
		t.Errorf("Hooks() = %v, want empty after unload", reg.Hooks())
	}
	if err := m.Unload("demo"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("second Unload() error = %v, want ErrNotLoaded", err)
	}
}

func TestManagerReload_PicksUpChanges(t *testing.T) {
	base := t.TempDir()
	dir := writePlugin(t, base, "demo", `{
		"name": "demo",
		"parts": [{"name": "main", "hooks": {"version": "version"}}]
	}`, `function version() return 1 end`)

	reg := registry.New()
	m := NewManager(NewLoader(WithPaths(base)), reg)
	defer m.Close()

	if err := m.LoadAll(); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	eng := hook.New(reg)

	results, err := eng.CallAll("version", nil)
	if err != nil {
		t.Fatalf("CallAll() error = %v", err)
	}
	if len(results) != 1 || results[0] != int64(1) {
		t.Fatalf("CallAll() = %v, want [1]", results)
	}

	src := `function version() return 2 end`
	if err := os.WriteFile(filepath.Join(dir, DefaultMain), []byte(src), 0o644); err != nil {
		t.Fatalf("rewriting init.lua: %v", err)
	}
	if err := m.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	results, err = eng.CallAll("version", nil)
	if err != nil {
		t.Fatalf("CallAll() after reload error = %v", err)
	}
	if len(results) != 1 || results[0] != int64(2) {
		t.Errorf("CallAll() after reload = %v, want [2]", results)
	}
}

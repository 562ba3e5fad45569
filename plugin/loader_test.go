package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderDiscover(t *testing.T) {
	base := t.TempDir()
	writePlugin(t, base, "zeta", `{"name": "zeta", "parts": [{"hooks": {"h": "f"}}]}`, `function f() end`)
	writePlugin(t, base, "alpha", `{"name": "alpha", "parts": [{"hooks": {"h": "f"}}]}`, `function f() end`)

	// Directories without a manifest are ignored.
	if err := os.MkdirAll(filepath.Join(base, "notaplugin"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	l := NewLoader(WithPaths(base))
	infos, err := l.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(infos) != 2 {
		t.Fatalf("Discover() found %d plugins, want 2", len(infos))
	}
	if infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Errorf("Discover() order = [%s %s], want [alpha zeta]", infos[0].Name, infos[1].Name)
	}
	for _, info := range infos {
		if info.Err != nil {
			t.Errorf("plugin %s: unexpected Err = %v", info.Name, info.Err)
		}
		if info.Manifest == nil {
			t.Errorf("plugin %s: nil manifest", info.Name)
		}
	}
}

func TestLoaderDiscover_BrokenManifest(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "broken")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	writeManifest(t, dir, `{"name": "Broken Name", "parts": [{"hooks": {"h": "f"}}]}`)

	l := NewLoader(WithPaths(base))
	infos, err := l.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("Discover() found %d plugins, want 1", len(infos))
	}
	if infos[0].Err == nil {
		t.Error("broken manifest discovered without Err")
	}
}

func TestLoaderDiscover_MissingPath(t *testing.T) {
	l := NewLoader(WithPaths(filepath.Join(t.TempDir(), "does-not-exist")))
	infos, err := l.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Discover() = %v, want empty", infos)
	}
}

func TestLoaderDiscover_FirstPathWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writePlugin(t, first, "dup", `{"name": "dup", "version": "1.0.0", "parts": [{"hooks": {"h": "f"}}]}`, `function f() end`)
	writePlugin(t, second, "dup", `{"name": "dup", "version": "2.0.0", "parts": [{"hooks": {"h": "f"}}]}`, `function f() end`)

	l := NewLoader(WithPaths(first, second))
	infos, err := l.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("Discover() found %d plugins, want 1", len(infos))
	}
	if infos[0].Manifest.Version != "1.0.0" {
		t.Errorf("Version = %q, want the first path's 1.0.0", infos[0].Manifest.Version)
	}
}

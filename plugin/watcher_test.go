package plugin

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherFiresOnChange(t *testing.T) {
	dir := t.TempDir()

	fired := make(chan struct{}, 1)
	w, err := NewWatcher([]string{dir}, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "init.lua"), []byte(`x = 1`), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()

	fired := make(chan struct{}, 16)
	w, err := NewWatcher([]string{dir}, func() {
		fired <- struct{}{}
	}, WithDebounce(150*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	// A burst of writes inside the quiet period coalesces to one reload.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, "init.lua"), []byte{byte('0' + i)}, 0o644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("reload callback never fired")
	}

	select {
	case <-fired:
		t.Error("burst produced more than one reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherMissingPathSkipped(t *testing.T) {
	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "absent")}, func() {})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/chartflow/internal/logging"
)

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 8)
	w, err := Watch(path, func(p string) { changed <- p },
		WithDebounce(100*time.Millisecond), WithWatcherLogger(logging.Null()))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	// Writes to siblings are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"VISIBLE":false}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-changed:
		if got != w.Path() {
			t.Errorf("handler path = %q, want %q", got, w.Path())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	select {
	case <-changed:
		t.Error("burst of writes produced more than one notification")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")
	w, err := Watch(path, func(string) {}, WithWatcherLogger(logging.Null()))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close() error = %v, want ErrWatcherClosed", err)
	}
}

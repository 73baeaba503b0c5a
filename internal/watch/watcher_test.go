package watch

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer(t *testing.T) {
	var triggerCount atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func(paths []string) {
		triggerCount.Add(1)
	})

	// Rapid changes collapse into one trigger
	d.Changed("a.yaml")
	d.Changed("b.yaml")
	d.Changed("a.yaml")

	time.Sleep(30 * time.Millisecond)
	if triggerCount.Load() != 0 {
		t.Fatal("triggered too early")
	}

	time.Sleep(60 * time.Millisecond)
	if triggerCount.Load() != 1 {
		t.Fatalf("expected 1 trigger, got %d", triggerCount.Load())
	}

	d.Stop()
}

func TestDebouncerMultipleBatches(t *testing.T) {
	var batches [][]string
	var mu sync.Mutex
	d := NewDebouncer(30*time.Millisecond, func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
	})

	d.Changed("a.yaml")
	time.Sleep(60 * time.Millisecond)
	d.Changed("b.yaml")
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	d.Stop()
}

func TestDebouncerStop(t *testing.T) {
	var triggerCount atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func([]string) { triggerCount.Add(1) })

	d.Changed("a.yaml")
	d.Stop()
	d.Stop()
	d.Changed("b.yaml")
	time.Sleep(50 * time.Millisecond)

	if triggerCount.Load() != 0 {
		t.Fatalf("expected no trigger after stop, got %d", triggerCount.Load())
	}
}

func TestNewDebouncer_Defaults(t *testing.T) {
	d := NewDebouncer(0, func([]string) {})
	if d.debounce != DefaultDebounce {
		t.Errorf("expected default debounce, got %v", d.debounce)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil callback")
		}
	}()
	NewDebouncer(time.Second, nil)
}

func TestFileWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabset.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 4)
	fw, err := NewFileWatcher([]string{path}, 20*time.Millisecond, nil, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	// Unrelated files in the same directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("a: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changed:
		if len(paths) != 1 || filepath.Base(paths[0]) != "tabset.yaml" {
			t.Errorf("unexpected changed paths: %v", paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	fw, err := NewFileWatcher([]string{"/nonexistent/dir/tabset.yaml"}, 0, nil, func([]string) {})
	if err != nil {
		t.Fatalf("missing directories should not fail, got: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestFileWatcher_SetFilesTracksNewFiles(t *testing.T) {
	configDir := t.TempDir()
	bodyDir := t.TempDir()
	cfgPath := filepath.Join(configDir, "tabset.yaml")
	bodyPath := filepath.Join(bodyDir, "notes.md")
	if err := os.WriteFile(cfgPath, []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 4)
	fw, err := NewFileWatcher([]string{cfgPath}, 20*time.Millisecond, nil, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	if err := fw.SetFiles([]string{cfgPath, bodyPath}); err != nil {
		t.Fatal(err)
	}
	if got := fw.Files(); len(got) != 2 {
		t.Fatalf("expected 2 tracked files, got %v", got)
	}

	if err := os.WriteFile(bodyPath, []byte("# notes\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changed:
		if len(paths) != 1 || filepath.Base(paths[0]) != "notes.md" {
			t.Errorf("unexpected changed paths: %v", paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change to newly tracked file")
	}
}

func TestFileWatcher_SetFilesDropsOldFiles(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.md")
	newPath := filepath.Join(dir, "new.md")

	changed := make(chan []string, 4)
	fw, err := NewFileWatcher([]string{oldPath}, 20*time.Millisecond, nil, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	if err := fw.SetFiles([]string{newPath}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(oldPath, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newPath, []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changed:
		if len(paths) != 1 || filepath.Base(paths[0]) != "new.md" {
			t.Errorf("expected only new.md, got %v", paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

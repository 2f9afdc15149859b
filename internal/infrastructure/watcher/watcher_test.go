package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDetectsProfileRewrite(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "cover.out")

	w, err := New(WithDebounce(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := w.WatchFile(profile); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	events := w.Events(ctx)

	if err := os.WriteFile(profile, []byte("mode: set\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-events:
	case <-ctx.Done():
		t.Fatal("timeout waiting for change event")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := New(WithDebounce(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := w.WatchFile(filepath.Join(dir, "cover.out")); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	events := w.Events(ctx)

	if err := os.WriteFile(filepath.Join(dir, "other.out"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-events:
		t.Fatal("unexpected event for unwatched file")
	case <-ctx.Done():
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "cover.out")

	w, err := New(WithDebounce(150 * time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	if err := w.WatchFile(profile); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	events := w.Events(ctx)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(profile, []byte("mode: set\n"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	count := 0
	for {
		select {
		case _, ok := <-events:
			if !ok {
				if count != 1 {
					t.Fatalf("expected 1 debounced event, got %d", count)
				}
				return
			}
			count++
		case <-time.After(2 * time.Second):
			t.Fatal("events channel did not close")
		}
	}
}

func TestWatchFileMissingDirectory(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := w.WatchFile(filepath.Join(t.TempDir(), "missing", "cover.out")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

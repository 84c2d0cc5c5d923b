package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePolicyFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writePolicyFile(t, path, `
rules:
  - claim: "original"
    directive: PASS
`)

	p, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(p)

	reloaded := make(chan error, 4)
	w := NewWatcher(path, engine, 20*time.Millisecond)
	w.OnReload = func(_ *Policy, err error) { reloaded <- err }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	writePolicyFile(t, path, `
rules:
  - claim: "replacement"
    directive: FAIL
`)

	select {
	case err := <-reloaded:
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	if _, ok := engine.Match("replacement"); !ok {
		t.Error("engine still serving old policy after reload")
	}
	if _, ok := engine.Match("original"); ok {
		t.Error("old rule still matches after reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}

func TestWatcherKeepsPolicyOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writePolicyFile(t, path, `
rules:
  - claim: "keep me"
    directive: PASS
`)

	p, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(p)

	reloaded := make(chan error, 4)
	w := NewWatcher(path, engine, 20*time.Millisecond)
	w.OnReload = func(_ *Policy, err error) { reloaded <- err }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)

	time.Sleep(100 * time.Millisecond)

	writePolicyFile(t, path, `
rules:
  - claim: "broken"
    directive: NOT_A_DIRECTIVE
`)

	select {
	case err := <-reloaded:
		if err == nil {
			t.Fatal("expected reload error for invalid policy")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload attempt")
	}

	if _, ok := engine.Match("keep me"); !ok {
		t.Error("previous policy should stay active after failed reload")
	}
}

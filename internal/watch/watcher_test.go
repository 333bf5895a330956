package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cyra/ngxlog/internal/config"
	"github.com/cyra/ngxlog/internal/logging"
)

func startWatcher(t *testing.T, w *Watcher) <-chan *config.Config {
	t.Helper()
	calls := make(chan *config.Config, 10)
	w.Debounce = 50 * time.Millisecond
	w.Logger = logging.Discard()
	w.OnChange = func(_ context.Context, cfg *config.Config) { calls <- cfg }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	// Give the watcher time to register before the test touches files.
	time.Sleep(100 * time.Millisecond)
	return calls
}

func waitCall(t *testing.T, calls <-chan *config.Config) *config.Config {
	t.Helper()
	select {
	case cfg := <-calls:
		return cfg
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
		return nil
	}
}

func TestRerunOnInputChange(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, &Watcher{Dir: dir, Store: config.NewStore(config.Default())})

	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-calls:
		t.Fatal("OnChange called for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	path := filepath.Join(dir, "access-stream.log")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("line\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	waitCall(t, calls)
}

func TestConfigReload(t *testing.T) {
	dir := t.TempDir()
	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("input:\n  workers: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := config.NewStore(config.Default())
	calls := startWatcher(t, &Watcher{Dir: dir, ConfigPath: cfgPath, Store: store})

	if err := os.WriteFile(cfgPath, []byte("input:\n  workers: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := waitCall(t, calls)
	if cfg.Input.Workers != 3 || store.Current().Input.Workers != 3 {
		t.Errorf("workers = %d, want 3 after reload", cfg.Input.Workers)
	}

	if err := os.WriteFile(cfgPath, []byte("input: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg = waitCall(t, calls)
	if cfg.Input.Workers != 3 {
		t.Errorf("broken config replaced the previous one: %+v", cfg.Input)
	}
}

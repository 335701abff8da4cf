package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// waitForReload blocks until a config arrives on ch or the deadline passes.
func waitForReload(t *testing.T, ch <-chan *Config, timeout time.Duration) *Config {
	t.Helper()
	select {
	case cfg := <-ch:
		return cfg
	case <-time.After(timeout):
		t.Fatal("timed out waiting for config reload")
		return nil
	}
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnvOverrides(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	require.NoError(t, err)
	w.debounceDur = 50 * time.Millisecond // keep the test fast

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Let the directory watch establish before the first write.
	time.Sleep(100 * time.Millisecond)

	updated := DefaultConfig()
	updated.Registry.MaxMembranes = 24
	updated.Logging.Level = "debug"
	require.NoError(t, updated.Save(path))

	cfg := waitForReload(t, reloaded, 5*time.Second)
	require.Equal(t, 24, cfg.Registry.MaxMembranes)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.GreaterOrEqual(t, w.Reloads(), 1)
}

func TestWatcher_RejectsInvalidConfig(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnvOverrides(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	require.NoError(t, err)
	w.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	// A config that parses but fails validation must not reach the callback.
	bad := DefaultConfig()
	bad.Shell.Theme = "sepia"
	require.NoError(t, bad.Save(path))

	// A later valid write proves the loop survived the rejection.
	time.Sleep(300 * time.Millisecond)
	good := DefaultConfig()
	good.Registry.MaxMembranes = 10
	require.NoError(t, good.Save(path))

	cfg := waitForReload(t, reloaded, 5*time.Second)
	require.Equal(t, 10, cfg.Registry.MaxMembranes)
	require.Equal(t, "dark", cfg.Shell.Theme)
	require.Equal(t, 1, w.Reloads())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnvOverrides(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	require.NoError(t, err)
	w.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte("x: 1\n"), 0644))

	select {
	case <-reloaded:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(500 * time.Millisecond):
	}
	require.Equal(t, 0, w.Reloads())
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

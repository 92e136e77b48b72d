package file

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("sync.max_pages", 1))

	changed := make(chan struct{}, 1)
	w := NewWatcher(store, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(store.Path(), []byte("[sync]\nmax_pages = 5\n"), 0600))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("config change not observed")
	}
	assert.Equal(t, 5, store.GetInt("sync.max_pages"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_KeepsValuesOnBadFile(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("sync.max_pages", 3))

	w := NewWatcher(store, nil)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(store.Path(), []byte("[[[ broken"), 0600))
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 3, store.GetInt("sync.max_pages"))
}

func TestWatcher_MissingDirectory(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	store.filePath = "/nonexistent-drawsync-dir/config.toml"

	err = NewWatcher(store, nil).Run(context.Background())
	assert.Error(t, err)
}

package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapBootstrap replaces the bootstrap function for one test.
func swapBootstrap(t *testing.T, fn func(ctx context.Context, withStore bool) (*App, error)) {
	t.Helper()
	old, oldApp, oldOwns := bootstrap, app, ownsApp
	bootstrap = fn
	app, ownsApp = nil, false
	t.Cleanup(func() {
		bootstrap = old
		app, ownsApp = oldApp, oldOwns
		rootCmd.SetArgs(nil)
	})
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "drawsync", rootCmd.Use)
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	for _, name := range []string{"config-dir", "data-dir", "verbose", "log-json"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_BootstrapsAndCloses(t *testing.T) {
	closed := 0
	var gotWithStore bool
	swapBootstrap(t, func(_ context.Context, withStore bool) (*App, error) {
		gotWithStore = withStore
		a := setupTestApp(t, 2024001)
		a.Close = func() error {
			closed++
			return nil
		}
		return a, nil
	})

	out, err := execute(t, "draws", "count")

	require.NoError(t, err)
	assert.Contains(t, out, "1 draws stored")
	assert.True(t, gotWithStore)
	assert.Equal(t, 1, closed)
	assert.Nil(t, app)
}

func TestRootCmd_SettingsSkipStore(t *testing.T) {
	var gotWithStore = true
	swapBootstrap(t, func(_ context.Context, withStore bool) (*App, error) {
		gotWithStore = withStore
		return &App{Settings: newMockSettingsService()}, nil
	})

	_, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.False(t, gotWithStore)
}

func TestRootCmd_VersionSkipsBootstrap(t *testing.T) {
	swapBootstrap(t, func(context.Context, bool) (*App, error) {
		t.Fatal("bootstrap should not run for version")
		return nil, nil
	})

	_, err := execute(t, "version")
	assert.NoError(t, err)
}

func TestRootCmd_BootstrapError(t *testing.T) {
	bootErr := errors.New("config unreadable")
	swapBootstrap(t, func(context.Context, bool) (*App, error) {
		return nil, bootErr
	})

	_, err := execute(t, "draws", "latest")
	assert.ErrorIs(t, err, bootErr)
}

func TestExecute_ClosesAppOnFailure(t *testing.T) {
	closed := 0
	swapBootstrap(t, func(context.Context, bool) (*App, error) {
		a := setupTestApp(t)
		a.Close = func() error {
			closed++
			return nil
		}
		return a, nil
	})
	rootCmd.SetArgs([]string{"draws", "latest"})

	err := Execute(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, closed)
}

func TestNeedsStore(t *testing.T) {
	assert.True(t, needsStore(syncCmd))
	assert.True(t, needsStore(drawsLatestCmd))
	assert.False(t, needsStore(settingsCmd))
	assert.False(t, needsStore(settingsSetCmd))
}

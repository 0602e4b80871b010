// SPDX-License-Identifier: MIT
package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const goodCfg = "[flake8]\nmax-line-length = 88\n\n[isort]\nline_length = 88\n"

func newTestHolder(t *testing.T, content string) (*Holder, string) {
	t.Helper()
	path := writeConfig(t, content)
	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)
	return NewHolder(initial, loader, 20*time.Millisecond), path
}

func TestReloadSwapsSnapshot(t *testing.T) {
	holder, path := newTestHolder(t, goodCfg)
	before := holder.Current()

	require.NoError(t, os.WriteFile(path, []byte("[flake8]\nmax-line-length = 100\n\n[isort]\nline_length = 100\n"), 0o600))
	require.NoError(t, holder.Reload(context.Background(), "test"))

	after := holder.Current()
	assert.NotEqual(t, before.Revision, after.Revision)
	assert.Equal(t, 100, after.Project.Flake8.MaxLineLength)
}

func TestReloadKeepsOldSnapshotOnBadFile(t *testing.T) {
	holder, path := newTestHolder(t, goodCfg)
	before := holder.Current()

	require.NoError(t, os.WriteFile(path, []byte("[flake8\nbroken"), 0o600))
	err := holder.Reload(context.Background(), "test")
	require.Error(t, err)

	after := holder.Current()
	assert.Equal(t, before.Revision, after.Revision)
	assert.Equal(t, 88, after.Project.Flake8.MaxLineLength)
}

func TestReloadNotifiesListeners(t *testing.T) {
	holder, _ := newTestHolder(t, goodCfg)

	ch := make(chan Snapshot, 1)
	holder.RegisterListener(ch)

	require.NoError(t, holder.Reload(context.Background(), "test"))

	select {
	case snap := <-ch:
		assert.Equal(t, holder.Current().Revision, snap.Revision)
	case <-time.After(time.Second):
		t.Fatal("listener was not notified")
	}
}

func TestFullListenerDoesNotBlockReload(t *testing.T) {
	holder, _ := newTestHolder(t, goodCfg)

	ch := make(chan Snapshot) // unbuffered and never drained
	holder.RegisterListener(ch)

	done := make(chan struct{})
	go func() {
		_ = holder.Reload(context.Background(), "test")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reload blocked on full listener channel")
	}
}

func TestWatcherTriggersReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	holder, path := newTestHolder(t, goodCfg)
	before := holder.Current()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, holder.StartWatcher(ctx))

	require.NoError(t, os.WriteFile(path, []byte("[flake8]\nmax-line-length = 120\n\n[isort]\nline_length = 120\n"), 0o600))

	require.Eventually(t, func() bool {
		return holder.Current().Revision != before.Revision
	}, 5*time.Second, 25*time.Millisecond, "watcher never picked up the change")

	assert.Equal(t, 120, holder.Current().Project.Flake8.MaxLineLength)

	cancel()
	// Give the watch loop a beat to drain before goleak verifies.
	time.Sleep(200 * time.Millisecond)
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	holder, _ := newTestHolder(t, goodCfg)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, holder.StartWatcher(ctx))
	cancel()

	time.Sleep(100 * time.Millisecond)
	holder.Stop() // double stop is safe
}

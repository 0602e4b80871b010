// SPDX-License-Identifier: MIT
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/confkit/confkit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func snapshotFrom(t *testing.T, content string) config.Snapshot {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setup.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	snap, err := config.NewLoader(path, "test").Load()
	require.NoError(t, err)
	return snap
}

func TestAppendListGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := snapshotFrom(t, "[flake8]\nmax-line-length = 88\n\n[isort]\nline_length = 88\n")
	second := snapshotFrom(t, "[flake8]\nmax-line-length = 100\n\n[isort]\nline_length = 100\n")

	require.NoError(t, s.Append(ctx, FromSnapshot(first)))
	require.NoError(t, s.Append(ctx, FromSnapshot(second)))

	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, second.Revision, records[0].Revision)
	assert.Equal(t, first.Revision, records[1].Revision)
	assert.Contains(t, records[0].Content, "max-line-length = 100")
	assert.Equal(t, 2, records[0].Sections)

	rec, found, err := s.Get(ctx, first.Revision)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, rec.Content, "max-line-length = 88")
}

func TestGetAbsentRevision(t *testing.T) {
	s := openTestStore(t)

	_, found, err := s.Get(context.Background(), "no-such-revision")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		snap := snapshotFrom(t, fmt.Sprintf("[flake8]\nmax-line-length = %d\n\n[isort]\nline_length = %d\n", 80+i, 80+i))
		require.NoError(t, s.Append(ctx, FromSnapshot(snap)))
	}

	records, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Contains(t, records[0].Content, "84")
}

func TestPruneKeepsNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var revisions []string
	for i := 0; i < 5; i++ {
		snap := snapshotFrom(t, fmt.Sprintf("[flake8]\nmax-line-length = %d\n\n[isort]\nline_length = %d\n", 80+i, 80+i))
		require.NoError(t, s.Append(ctx, FromSnapshot(snap)))
		revisions = append(revisions, snap.Revision)
	}

	removed, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, revisions[4], records[0].Revision)
	assert.Equal(t, revisions[3], records[1].Revision)

	// Pruned id lookups are gone too.
	_, found, err := s.Get(ctx, revisions[0])
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPruneNoop(t *testing.T) {
	s := openTestStore(t)
	removed, err := s.Prune(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

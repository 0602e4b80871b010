// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setup.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoaderLoadSampleFile(t *testing.T) {
	loader := NewLoader(filepath.Join("testdata", "setup.cfg"), "test-version")
	snap, err := loader.Load()
	require.NoError(t, err)

	assert.NotEmpty(t, snap.Revision)
	assert.False(t, snap.LoadedAt.IsZero())
	assert.False(t, snap.ModTime.IsZero())
	assert.Equal(t, 88, snap.Project.Flake8.MaxLineLength)
	assert.Empty(t, snap.Warnings)
}

func TestLoaderMissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope.cfg"), "test")
	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat config")
}

func TestLoaderParseFailure(t *testing.T) {
	path := writeConfig(t, "[flake8\nmax-line-length = 88\n")
	loader := NewLoader(path, "test")
	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}

func TestLoaderValidationFailure(t *testing.T) {
	path := writeConfig(t, "[flake8]\nmax-line-length = 7\n")
	loader := NewLoader(path, "test")
	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate")
}

func TestLoaderConcurrentLoads(t *testing.T) {
	loader := NewLoader(filepath.Join("testdata", "setup.cfg"), "test")

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = loader.Load()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "load %d", i)
	}
}

func TestSeparateLoadsGetSeparateRevisions(t *testing.T) {
	loader := NewLoader(filepath.Join("testdata", "setup.cfg"), "test")

	a, err := loader.Load()
	require.NoError(t, err)
	b, err := loader.Load()
	require.NoError(t, err)
	assert.NotEqual(t, a.Revision, b.Revision)
}

// SPDX-License-Identifier: MIT
package ini

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, input string) *Store {
	t.Helper()
	store, err := Load("", strings.NewReader(input))
	require.NoError(t, err)
	return store
}

func TestBoolCoercion(t *testing.T) {
	store := mustLoad(t, "[coverage:run]\nbranch = True\n")

	v, err := store.Section("coverage:run").Bool("branch", false)
	require.NoError(t, err)
	assert.True(t, v)

	// Absent key falls back to the caller's default.
	v, err = store.Section("coverage:run").Bool("parallel", false)
	require.NoError(t, err)
	assert.False(t, v)
}

func TestBoolSpellings(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"True", true}, {"true", true}, {"1", true}, {"yes", true}, {"ON", true},
		{"False", false}, {"false", false}, {"0", false}, {"no", false}, {"off", false},
	}
	for _, tc := range tests {
		store := mustLoad(t, "[s]\nk = "+tc.raw+"\n")
		v, err := store.Section("s").Bool("k", !tc.want)
		require.NoError(t, err, "raw %q", tc.raw)
		assert.Equal(t, tc.want, v, "raw %q", tc.raw)
	}
}

func TestBoolMismatchIsTypeError(t *testing.T) {
	store := mustLoad(t, "[coverage:run]\nbranch = maybe\n")
	_, err := store.Section("coverage:run").Bool("branch", false)

	var terr *TypeError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "coverage:run", terr.Section)
	assert.Equal(t, "branch", terr.Key)
	assert.Equal(t, "bool", terr.Want)
}

func TestIntCoercion(t *testing.T) {
	store := mustLoad(t, "[flake8]\nmax-line-length = 88\n")

	n, err := store.Section("flake8").Int("max-line-length", 0)
	require.NoError(t, err)
	assert.Equal(t, 88, n)

	n, err = store.Section("flake8").Int("max-doc-length", 72)
	require.NoError(t, err)
	assert.Equal(t, 72, n)

	store = mustLoad(t, "[flake8]\nmax-line-length = long\n")
	_, err = store.Section("flake8").Int("max-line-length", 0)
	var terr *TypeError
	require.True(t, errors.As(err, &terr))
}

func TestScalarGetterOnListValue(t *testing.T) {
	store := mustLoad(t, "[flake8]\nexclude =\n    .tox\n    migrations\n")

	_, err := store.Section("flake8").Int("exclude", 0)
	var terr *TypeError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "int", terr.Want)

	_, err = store.Section("flake8").Bool("exclude", false)
	require.True(t, errors.As(err, &terr))
}

func TestListFromScalarAndCommas(t *testing.T) {
	store := mustLoad(t, "[isort]\nskip = migrations\nknown_first_party = dependencies, helpers\n")
	sec := store.Section("isort")

	assert.Equal(t, []string{"migrations"}, sec.List("skip", nil))
	assert.Equal(t, []string{"dependencies", "helpers"}, sec.List("known_first_party", nil))
	assert.Equal(t, []string{"fallback"}, sec.List("known_third_party", []string{"fallback"}))
}

func TestKeyFolding(t *testing.T) {
	store := mustLoad(t, "[flake8]\nmax-line-length = 88\n")
	sec := store.Section("flake8")

	n, err := sec.Int("max_line_length", 0)
	require.NoError(t, err)
	assert.Equal(t, 88, n)

	// Section names are never folded.
	assert.False(t, store.Has("FLAKE8"))
}

func TestDeclaredEmptyString(t *testing.T) {
	store := mustLoad(t, "[tool:pytest]\naddopts =\n")
	// Declared but empty is empty, not the default.
	assert.Equal(t, "", store.Section("tool:pytest").String("addopts", "-q"))
	assert.Equal(t, "-q", store.Section("tool:pytest").String("testpaths", "-q"))
}

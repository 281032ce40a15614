package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_DefaultsKeepEverything(t *testing.T) {
	mem := newMemTree(t, map[string]string{
		"/data/a.txt":     "a",
		"/data/sub/b.txt": "b",
	})
	entries, err := NewWalker(mem).Walk("/data", "")
	require.NoError(t, err)

	assert.Equal(t, relPaths(entries), relPaths(NewFilter(nil, nil).Apply(entries)))
}

func TestFilter_IncludesKeepParentDirectories(t *testing.T) {
	mem := newMemTree(t, map[string]string{
		"/data/main.go":          "package main",
		"/data/README.md":        "readme",
		"/data/pkg/util/util.go": "package util",
		"/data/docs/guide.md":    "guide",
	})
	entries, err := NewWalker(mem).Walk("/data", "")
	require.NoError(t, err)

	got := NewFilter([]string{"**/*.go"}, nil).Apply(entries)
	assert.Equal(t, []string{"main.go", "pkg", "pkg/util", "pkg/util/util.go"}, relPaths(got))
}

func TestFilter_ExcludedDirectoryPrunesSubtree(t *testing.T) {
	mem := newMemTree(t, map[string]string{
		"/data/a.txt":                  "a",
		"/data/vendor/lib/lib.txt":     "lib",
		"/data/src/vendor/inner.txt":   "inner",
		"/data/src/keep.txt":           "keep",
		"/data/node_modules/x/pkg.txt": "pkg",
	})
	entries, err := NewWalker(mem).Walk("/data", "")
	require.NoError(t, err)

	f := NewFilter(nil, []string{"**/vendor/**", "**/node_modules/**"})
	assert.Equal(t, []string{"a.txt", "src", "src/keep.txt"}, relPaths(f.Apply(entries)))
}

func TestFilter_Match(t *testing.T) {
	f := NewFilter([]string{"**/*.txt"}, []string{"**/*.min.txt"})

	assert.True(t, f.Match("a/b/c.txt"))
	assert.False(t, f.Match("a/b/c.min.txt"))
	assert.False(t, f.Match("a/b/c.go"))
}

package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"arcutil/internal/domain"
	"arcutil/internal/port"
)

func newMemTree(t *testing.T, files map[string]string) *BillyFS {
	t.Helper()
	b := NewInMemoryFS()
	for name, content := range files {
		require.NoError(t, util.WriteFile(b.Raw(), name, []byte(content), 0o644))
	}
	return b
}

func relPaths(entries []domain.WalkEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.RelativePath
	}
	return out
}

// faultyLister injects failures for selected paths.
type faultyLister struct {
	port.Lister
	statErr map[string]error
	listErr map[string]error
}

func (f *faultyLister) Stat(name string) (iofs.FileInfo, error) {
	if err, ok := f.statErr[name]; ok {
		return nil, err
	}
	return f.Lister.Stat(name)
}

func (f *faultyLister) ReadDirNames(dir string) ([]string, error) {
	if err, ok := f.listErr[dir]; ok {
		return nil, err
	}
	return f.Lister.ReadDirNames(dir)
}

type reversedLister struct {
	port.Lister
}

func (r reversedLister) ReadDirNames(dir string) ([]string, error) {
	names, err := r.Lister.ReadDirNames(dir)
	slices.Reverse(names)
	return names, err
}

func TestWalk_PreOrder(t *testing.T) {
	mem := newMemTree(t, map[string]string{
		"/data/a.txt":     "a",
		"/data/sub/b.txt": "b",
	})

	entries, err := NewWalker(mem).Walk("/data", "/data")
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "sub", "sub/b.txt"}, relPaths(entries))
	assert.False(t, entries[0].IsDir)
	assert.True(t, entries[1].IsDir)
	assert.Equal(t, filepath.Join("/data", "sub", "b.txt"), entries[2].Path)
	for _, e := range entries {
		assert.NotNil(t, e.Info, e.RelativePath)
	}
}

func TestWalk_BaseDefaultsToRoot(t *testing.T) {
	mem := newMemTree(t, map[string]string{"/data/sub/b.txt": "b"})

	entries, err := NewWalker(mem).Walk("/data", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub", "sub/b.txt"}, relPaths(entries))
}

func TestWalk_RelativeToOtherBase(t *testing.T) {
	mem := newMemTree(t, map[string]string{"/data/sub/b.txt": "b"})

	entries, err := NewWalker(mem).Walk("/data/sub", "/data")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/b.txt"}, relPaths(entries))
}

func TestWalk_KeepsListingOrder(t *testing.T) {
	mem := newMemTree(t, map[string]string{
		"/data/a.txt":     "a",
		"/data/b.txt":     "b",
		"/data/sub/x.txt": "x",
		"/data/sub/y.txt": "y",
	})

	entries, err := NewWalker(reversedLister{mem}).Walk("/data", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub", "sub/y.txt", "sub/x.txt", "b.txt", "a.txt"}, relPaths(entries))
}

func TestWalk_EmptyDirectory(t *testing.T) {
	mem := NewInMemoryFS()
	require.NoError(t, mem.Raw().MkdirAll("/data/empty", 0o755))

	entries, err := NewWalker(mem).Walk("/data", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"empty"}, relPaths(entries))
}

func TestWalk_DeepTree(t *testing.T) {
	const depth = 300
	dir := "/data" + strings.Repeat("/d", depth)
	mem := newMemTree(t, map[string]string{dir + "/leaf.txt": "leaf"})

	entries, err := NewWalker(mem).Walk("/data", "")
	require.NoError(t, err)
	require.Len(t, entries, depth+1)
	for i := 0; i < depth; i++ {
		assert.True(t, entries[i].IsDir)
		assert.Equal(t, strings.TrimPrefix(strings.Repeat("/d", i+1), "/"), entries[i].RelativePath)
	}
	assert.True(t, strings.HasSuffix(entries[depth].RelativePath, "/leaf.txt"))
}

func TestWalk_StatFailureAbortsWholeWalk(t *testing.T) {
	mem := newMemTree(t, map[string]string{
		"/data/a.txt":          "a",
		"/data/sub/b.txt":      "b",
		"/data/sub/deep/c.txt": "c",
		"/data/z.txt":          "z",
	})
	boom := errors.New("stat exploded")
	lister := &faultyLister{
		Lister:  mem,
		statErr: map[string]error{filepath.Join("/data", "sub", "deep", "c.txt"): boom},
	}

	entries, err := NewWalker(lister).Walk("/data", "")
	assert.Nil(t, entries)

	var statErr *StatError
	require.ErrorAs(t, err, &statErr)
	assert.Equal(t, filepath.Join("/data", "sub", "deep", "c.txt"), statErr.Path)
	assert.ErrorIs(t, err, boom)
}

func TestWalk_NestedListingFailure(t *testing.T) {
	mem := newMemTree(t, map[string]string{
		"/data/a.txt":     "a",
		"/data/sub/b.txt": "b",
	})
	boom := errors.New("permission denied")
	lister := &faultyLister{
		Lister:  mem,
		listErr: map[string]error{filepath.Join("/data", "sub"): boom},
	}

	entries, err := NewWalker(lister).Walk("/data", "")
	assert.Nil(t, entries)

	var listErr *ListingError
	require.ErrorAs(t, err, &listErr)
	assert.Equal(t, filepath.Join("/data", "sub"), listErr.Path)
	assert.ErrorIs(t, err, boom)
}

func TestWalk_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	entries, err := NewWalker(nil).Walk(root, "")
	assert.Nil(t, entries)

	var listErr *ListingError
	require.ErrorAs(t, err, &listErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWalk_HostFilesystem(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "inner"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("bb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "inner", "c.txt"), []byte("ccc"), 0o644))

	entries, err := NewWalker(OSFS{}).Walk(root, root)
	require.NoError(t, err)

	rels := relPaths(entries)
	assert.ElementsMatch(t, []string{"a.txt", "sub", "sub/b.txt", "sub/inner", "sub/inner/c.txt"}, rels)
	assertPreOrder(t, rels)

	for _, e := range entries {
		assert.NotContains(t, e.RelativePath, `\`)
		if e.RelativePath == "sub/inner/c.txt" {
			assert.Equal(t, int64(3), e.Info.Size())
		}
	}
}

func TestWalk_ConcurrentIndependentTrees(t *testing.T) {
	left := newMemTree(t, map[string]string{
		"/left/a.txt":     "a",
		"/left/sub/b.txt": "b",
	})
	right := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(right, "x", "y"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(right, "x", "y", "z.txt"), []byte("z"), 0o644))

	var leftEntries, rightEntries []domain.WalkEntry
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			entries, err := NewWalker(left).Walk("/left", "")
			if err == nil && len(entries) != 3 {
				return errors.New("left walk returned wrong count")
			}
			leftEntries = entries
			return err
		})
		g.Go(func() error {
			entries, err := NewWalker(OSFS{}).Walk(right, "")
			if err == nil && len(entries) != 3 {
				return errors.New("right walk returned wrong count")
			}
			rightEntries = entries
			return err
		})
		require.NoError(t, g.Wait())
	}

	assert.Equal(t, []string{"a.txt", "sub", "sub/b.txt"}, relPaths(leftEntries))
	assert.Equal(t, []string{"x", "x/y", "x/y/z.txt"}, relPaths(rightEntries))
}

// assertPreOrder checks every entry appears after its parent directory.
func assertPreOrder(t *testing.T, rels []string) {
	t.Helper()
	seen := make(map[string]bool)
	for _, rel := range rels {
		if parent := filepath.ToSlash(filepath.Dir(rel)); parent != "." {
			assert.True(t, seen[parent], "%s listed before its parent", rel)
		}
		seen[rel] = true
	}
}

func BenchmarkWalk_InMemory(b *testing.B) {
	mfs := NewInMemoryFS()
	for d := 0; d < 20; d++ {
		for f := 0; f < 50; f++ {
			name := fmt.Sprintf("/root/d%02d/f%02d.txt", d, f)
			if err := util.WriteFile(mfs.Raw(), name, []byte("x"), 0o644); err != nil {
				b.Fatal(err)
			}
		}
	}
	w := NewWalker(mfs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := w.Walk("/root", ""); err != nil {
			b.Fatal(err)
		}
	}
}

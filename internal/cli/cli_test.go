package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcutil/internal/adapter/archive"
)

func runCLI(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("beta"), 0o644))
	return root
}

func TestWalkCommand_JSON(t *testing.T) {
	root := makeTree(t)

	out := runCLI(t, "", "walk", "--dir", root, "--format", "json", root)

	var entries []walkOutput
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	rels := make([]string, len(entries))
	for i, e := range entries {
		rels[i] = e.Relative
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub", "sub/b.txt"}, rels)
}

func TestPackCommand(t *testing.T) {
	root := makeTree(t)
	output := filepath.Join(t.TempDir(), "out.tar.zst")

	out := runCLI(t, "", "pack", "--dir", root, "-q", "-c", "zstd", "-o", output, root)
	assert.Contains(t, out, "Files added:     2")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	entries, err := archive.ReadAll(f, archive.CompressionZstd)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = os.Stat(filepath.Join(root, ".arcutil", "manifest.db"))
	assert.NoError(t, err)
}

func TestDigestCommand_Stdin(t *testing.T) {
	out := runCLI(t, "hello", "digest", "--dir", t.TempDir(), "-")
	fields := strings.Fields(out)
	require.Len(t, fields, 3)
	assert.Len(t, fields[0], 64)
	assert.Equal(t, "5", fields[1])
}

func TestPickCompression(t *testing.T) {
	c, err := pickCompression("lz4", "out.tar.gz", "none")
	require.NoError(t, err)
	assert.Equal(t, archive.CompressionLZ4, c)

	c, err = pickCompression("", "out.tar.gz", "none")
	require.NoError(t, err)
	assert.Equal(t, archive.CompressionGzip, c)

	c, err = pickCompression("", "out.bin", "zstd")
	require.NoError(t, err)
	assert.Equal(t, archive.CompressionZstd, c)
}

func TestWriteWalk_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeWalk(&buf, "text", []walkOutput{
		{Relative: "sub", Dir: true},
		{Relative: "sub/b.txt", Size: 4},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "d "))
	assert.True(t, strings.HasSuffix(lines[1], " sub/b.txt"))

	assert.Error(t, writeWalk(&buf, "xml", nil))
}

func TestPackCommand_OutputInsideRoot(t *testing.T) {
	root := makeTree(t)
	output := filepath.Join(root, "out.tar")

	runCLI(t, "", "pack", "--dir", root, "-q", "-c", "none", "-o", output, root)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	entries, err := archive.ReadAll(f, archive.CompressionNone)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Header.Name
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub/", "sub/b.txt"}, names)
}

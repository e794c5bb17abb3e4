package share

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRelativize(t *testing.T) {
	root := NewRoot("/mnt/media")

	tests := []struct {
		name    string
		abs     string
		want    string
		wantErr bool
	}{
		{name: "direct child", abs: "/mnt/media/a.txt", want: "a.txt"},
		{name: "nested child", abs: "/mnt/media/a/b/c.txt", want: "a/b/c.txt"},
		{name: "root itself", abs: "/mnt/media", wantErr: true},
		{name: "sibling", abs: "/mnt/other/a.txt", wantErr: true},
		{name: "prefix but not component", abs: "/mnt/mediafoo/a.txt", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := root.Relativize(tc.abs)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNotWithinRoot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRootWalkFiles(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "top.txt"))
	mustWriteFile(t, filepath.Join(dir, "a", "mid.txt"))
	mustWriteFile(t, filepath.Join(dir, "a", "b", "deep.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))

	var got []string
	err := NewRoot(dir).WalkFiles(func(rel string) error {
		got = append(got, rel)
		return nil
	})
	require.NoError(t, err)

	sort.Strings(got)
	assert.Equal(t, []string{"a/b/deep.txt", "a/mid.txt", "top.txt"}, got)
}

func TestRootWalkFilesMissingRoot(t *testing.T) {
	root := NewRoot(filepath.Join(t.TempDir(), "does-not-exist"))
	called := false
	err := root.WalkFiles(func(string) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called, "missing root must enumerate nothing")
}

func TestRootRemoveEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	// a/b/c is an empty chain, d holds a file, e is empty.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b", "c"), 0o755))
	mustWriteFile(t, filepath.Join(dir, "d", "keep.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "e"), 0o755))

	removed, err := NewRoot(dir).RemoveEmptyDirs()
	require.NoError(t, err)
	assert.Equal(t, 4, removed, "a, a/b, a/b/c and e")

	assert.NoDirExists(t, filepath.Join(dir, "a"))
	assert.NoDirExists(t, filepath.Join(dir, "e"))
	assert.DirExists(t, filepath.Join(dir, "d"))
	assert.DirExists(t, dir, "the root itself is never removed")
}

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

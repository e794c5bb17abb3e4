package share

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathNodeProbes(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("data"), 0o644))

	fileNode := NewPathNode(file)
	assert.True(t, fileNode.Exists())
	assert.True(t, fileNode.IsFile())
	assert.False(t, fileNode.IsDir())

	dirNode := NewPathNode(dir)
	assert.True(t, dirNode.Exists())
	assert.True(t, dirNode.IsDir())
	assert.False(t, dirNode.IsFile())

	missing := NewPathNode(filepath.Join(dir, "nope"))
	assert.False(t, missing.Exists())
	assert.False(t, missing.IsFile())
	assert.False(t, missing.IsDir())
}

func TestPathNodeInode(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "orig")
	link := filepath.Join(dir, "link")
	copied := filepath.Join(dir, "copy")
	require.NoError(t, os.WriteFile(orig, []byte("data"), 0o644))
	require.NoError(t, os.Link(orig, link))
	require.NoError(t, os.WriteFile(copied, []byte("data"), 0o644))

	origIno, err := NewPathNode(orig).Inode()
	require.NoError(t, err)
	linkIno, err := NewPathNode(link).Inode()
	require.NoError(t, err)
	copyIno, err := NewPathNode(copied).Inode()
	require.NoError(t, err)

	assert.Equal(t, origIno, linkIno, "hardlink must share the inode")
	assert.NotEqual(t, origIno, copyIno, "a byte-identical copy is a different inode")

	nlink, err := NewPathNode(orig).Nlink()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nlink)
}

func TestPathNodeHardlinkFrom(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	dst := NewPathNode(filepath.Join(dir, "dst"))
	require.NoError(t, dst.HardlinkFrom(src))
	assert.True(t, dst.IsFile())

	// Destination already occupied.
	err := dst.HardlinkFrom(src)
	require.Error(t, err)
}

func TestPathNodeRemoveTreeIdempotent(t *testing.T) {
	dir := t.TempDir()
	sub := NewPathNode(filepath.Join(dir, "a", "b"))
	require.NoError(t, sub.MkdirAll())
	require.NoError(t, NewPathNode(filepath.Join(dir, "a")).RemoveTree())

	// Already absent: still a success.
	require.NoError(t, NewPathNode(filepath.Join(dir, "a")).RemoveTree())
}

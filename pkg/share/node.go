package share

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// PathNode is a handle to one absolute filesystem location. Every probe and
// mutation is a live syscall performed at call time; nothing is cached, so
// results always reflect the filesystem as it is now, not as it was when the
// node was created.
type PathNode struct {
	path string
}

// NewPathNode wraps an absolute path. The path is not required to exist.
func NewPathNode(path string) PathNode {
	return PathNode{path: path}
}

// Path returns the wrapped absolute path.
func (n PathNode) Path() string {
	return n.path
}

// Exists reports whether anything is present at the path.
func (n PathNode) Exists() bool {
	_, err := os.Stat(n.path)
	return err == nil
}

// IsFile reports whether the path is a regular file.
func (n PathNode) IsFile() bool {
	info, err := os.Stat(n.path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether the path is a directory.
func (n PathNode) IsDir() bool {
	info, err := os.Stat(n.path)
	return err == nil && info.IsDir()
}

// Inode returns the inode number of the path. Lock state is defined by inode
// identity, so this is the primitive the whole reconciler builds on.
func (n PathNode) Inode() (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(n.path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", n.path, err)
	}
	return st.Ino, nil
}

// Nlink returns the hardlink count of the path.
func (n PathNode) Nlink() (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(n.path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", n.path, err)
	}
	return uint64(st.Nlink), nil
}

// MTime returns the modification time of the path.
func (n PathNode) MTime() (time.Time, error) {
	info, err := os.Stat(n.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", n.path, err)
	}
	return info.ModTime(), nil
}

// Mkdir creates the directory at the path. The parent must already exist.
func (n PathNode) Mkdir() error {
	if err := os.Mkdir(n.path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", n.path, err)
	}
	return nil
}

// MkdirAll creates the directory at the path along with any missing parents.
// An existing directory is a success.
func (n PathNode) MkdirAll() error {
	if err := os.MkdirAll(n.path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", n.path, err)
	}
	return nil
}

// RemoveFile deletes the file at the path.
func (n PathNode) RemoveFile() error {
	if err := os.Remove(n.path); err != nil {
		return fmt.Errorf("remove %s: %w", n.path, err)
	}
	return nil
}

// RemoveTree deletes the directory at the path and everything beneath it.
// An absent path is a success.
func (n PathNode) RemoveTree() error {
	if err := os.RemoveAll(n.path); err != nil {
		return fmt.Errorf("remove tree %s: %w", n.path, err)
	}
	return nil
}

// HardlinkFrom creates the path as a hardlink of src. Fails if the path
// already exists or if src lives on a different filesystem; the underlying
// *os.LinkError is preserved in the wrap chain.
func (n PathNode) HardlinkFrom(src string) error {
	if err := os.Link(src, n.path); err != nil {
		return fmt.Errorf("hardlink %s -> %s: %w", src, n.path, err)
	}
	return nil
}

package share

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Root is a value type over one absolute directory path. It provides path
// resolution and live tree enumeration; Share and Store each wrap one Root
// rather than inheriting from a common directory type.
type Root struct {
	path string
}

// NewRoot wraps an absolute directory path. The directory is not required to
// exist; enumeration of a missing root yields nothing.
func NewRoot(path string) Root {
	return Root{path: filepath.Clean(path)}
}

// Path returns the root directory path.
func (r Root) Path() string {
	return r.path
}

// Node returns a PathNode for the root directory itself.
func (r Root) Node() PathNode {
	return NewPathNode(r.path)
}

// Resolve joins a forward-slash relative path onto the root.
func (r Root) Resolve(rel string) string {
	return filepath.Join(r.path, filepath.FromSlash(rel))
}

// Relativize strips the root prefix from an absolute path, returning the
// forward-slash relative remainder. The root itself is not its own child.
// Fails with ErrNotWithinRoot when abs lies outside the root.
func (r Root) Relativize(abs string) (string, error) {
	abs = filepath.Clean(abs)
	prefix := r.path + string(filepath.Separator)
	if !strings.HasPrefix(abs, prefix) {
		return "", fmt.Errorf("%s: %w %s", abs, ErrNotWithinRoot, r.path)
	}
	return filepath.ToSlash(abs[len(prefix):]), nil
}

// WalkFiles calls fn with the relative path of every regular file reachable
// under the root, recursing through all subdirectories. Each call walks the
// live tree, so the sequence is restartable and never stale. Symlinks are
// not followed. A missing root yields no files.
func (r Root) WalkFiles(fn func(rel string) error) error {
	return filepath.WalkDir(r.path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == r.path && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, rerr := r.Relativize(p)
		if rerr != nil {
			return rerr
		}
		return fn(rel)
	})
}

// RemoveEmptyDirs deletes directories under the root that contain no
// entries, deepest first so that a branch emptied by removing its children
// is itself removed in the same pass. The root directory is never removed.
// Returns the number of directories deleted.
func (r Root) RemoveEmptyDirs() (int, error) {
	var dirs []string
	err := filepath.WalkDir(r.path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == r.path && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() && p != r.path {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	removed := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("read dir %s: %w", dir, err)
		}
		if len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			return removed, fmt.Errorf("remove empty dir %s: %w", dir, err)
		}
		removed++
	}
	return removed, nil
}

// Package share implements hardlink-based lock state for files beneath a
// shared directory tree.
//
// Every share has a hidden buddy directory sitting next to it, the store:
// for the share /mnt/foobar the store is /mnt/.foobar. A file within the
// share is locked if and only if the store holds a regular file at the exact
// same relative path that is hardlinked (same inode) to it. Lock state is
// purely structural; no database or cache is consulted, only the live
// filesystem.
package share

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Share is a user-facing directory whose file lock state is tracked.
type Share struct {
	root Root
}

// NewShare canonicalizes path and wraps it as a share root. The directory
// must exist; fails with ErrNotFound otherwise.
func NewShare(p string) (*Share, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", p, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", abs, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", abs, ErrNotFound)
	}
	return &Share{root: NewRoot(abs)}, nil
}

// Path returns the absolute share root path.
func (s *Share) Path() string {
	return s.root.Path()
}

// Root returns the share's directory root.
func (s *Share) Root() Root {
	return s.root
}

// Store derives the hardlink mirror for this share: the hidden sibling
// directory named after the share with a leading dot. The store may not
// exist yet; an absent store means nothing is locked.
func (s *Share) Store() Store {
	dir := filepath.Dir(s.root.Path())
	base := filepath.Base(s.root.Path())
	return Store{
		root:  NewRoot(filepath.Join(dir, "."+base)),
		share: s,
	}
}

// Store is the hidden buddy directory mirroring locked files via hardlinks.
// It is a distinct value type wrapping its own Root, with a back-reference
// to the share it belongs to.
type Store struct {
	root  Root
	share *Share
}

// Path returns the absolute store root path.
func (st Store) Path() string {
	return st.root.Path()
}

// Root returns the store's directory root.
func (st Store) Root() Root {
	return st.root
}

// Share returns the share this store mirrors.
func (st Store) Share() *Share {
	return st.share
}

// Exists reports whether the store directory is present on disk.
func (st Store) Exists() bool {
	return st.root.Node().IsDir()
}

// FindShare resolves which of the configured share roots contains abs and
// returns the share together with abs's share-relative path. The share root
// itself resolves to the relative path ".". Fails with ErrNotWithinShare
// when no root matches; configured roots that do not exist on disk are
// skipped.
func FindShare(roots []string, abs string) (*Share, string, error) {
	abs = filepath.Clean(abs)
	for _, rootPath := range roots {
		sh, err := NewShare(rootPath)
		if err != nil {
			continue
		}
		if abs == sh.Path() {
			return sh, ".", nil
		}
		rel, err := sh.Root().Relativize(abs)
		if err == nil {
			return sh, rel, nil
		}
	}
	return nil, "", fmt.Errorf("%s: %w", abs, ErrNotWithinShare)
}

// eachFile invokes fn with the share-relative path of rel itself when rel is
// a regular file, or of every regular file beneath it when rel is a
// directory. rel "." addresses the whole share.
func (s *Share) eachFile(rel string, fn func(rel string) error) error {
	abs := s.root.Resolve(rel)
	node := NewPathNode(abs)
	switch {
	case node.IsFile():
		return fn(rel)
	case node.IsDir():
		sub := NewRoot(abs)
		return sub.WalkFiles(func(subRel string) error {
			if rel == "." {
				return fn(subRel)
			}
			return fn(path.Join(rel, subRel))
		})
	case !node.Exists():
		return fmt.Errorf("%s: %w", abs, ErrNotFound)
	default:
		return &UnexpectedNodeTypeError{Path: abs}
	}
}

// LockAll locks rel and, when rel names a directory, every regular file
// beneath it. Returns the number of new hardlinks established.
func (s *Share) LockAll(rel string) (int, error) {
	created := 0
	err := s.eachFile(rel, func(fileRel string) error {
		c, err := s.Lock(fileRel)
		if err != nil {
			return err
		}
		if c {
			created++
		}
		return nil
	})
	return created, err
}

// UnlockAll unlocks rel and, when rel names a directory, every regular file
// beneath it. Returns the number of store entries removed.
func (s *Share) UnlockAll(rel string) (int, error) {
	removed := 0
	err := s.eachFile(rel, func(fileRel string) error {
		r, err := s.Unlock(fileRel)
		if err != nil {
			return err
		}
		if r {
			removed++
		}
		return nil
	})
	return removed, err
}

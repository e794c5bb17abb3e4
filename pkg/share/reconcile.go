package share

import (
	"fmt"
	"path/filepath"

	"github.com/c-base/kgbsorter/internal/logger"
)

// The reconciler is direction-generic: locking links share files into the
// store, while cleanup phase 1 replays store entries back into the share.
// Both directions share the same walk, so the branch and leaf policies are
// written once against a (dst, src) root pair.

// linked reports whether dst/rel is a hardlink to src/rel. The walk starts
// at the dst root and moves one segment at a time; the first missing or
// non-directory branch means "definitely not linked", never an error. The
// leaf must exist on both sides as a regular file with the same inode.
func linked(dst, src Root, rel string) (bool, error) {
	segs, err := Segments(rel)
	if err != nil {
		return false, err
	}

	cursor := dst.Path()
	for _, seg := range segs[:len(segs)-1] {
		cursor = filepath.Join(cursor, seg)
		if !NewPathNode(cursor).IsDir() {
			return false, nil
		}
	}

	leaf := NewPathNode(filepath.Join(cursor, segs[len(segs)-1]))
	if !leaf.IsFile() {
		return false, nil
	}
	srcNode := NewPathNode(src.Resolve(rel))
	if !srcNode.IsFile() {
		return false, nil
	}

	leafIno, err := leaf.Inode()
	if err != nil {
		return false, err
	}
	srcIno, err := srcNode.Inode()
	if err != nil {
		return false, err
	}
	return leafIno == srcIno, nil
}

// ensureLinked converges dst/rel to a hardlink of src/rel, healing whatever
// occupies the path on the way. Branch collisions follow last-writer-wins: a
// stray file sitting where a directory belongs is deleted and replaced. A
// branch that is neither file nor directory aborts with
// UnexpectedNodeTypeError, since no corrective action is safe. Returns true
// when a new hardlink was established, false when the link already existed.
func ensureLinked(dst, src Root, rel string) (bool, error) {
	segs, err := Segments(rel)
	if err != nil {
		return false, err
	}
	srcPath := src.Resolve(rel)

	// The dst root itself may not exist yet (fresh store).
	if err := dst.Node().MkdirAll(); err != nil {
		return false, err
	}

	cursor := dst.Path()
	for _, seg := range segs[:len(segs)-1] {
		cursor = filepath.Join(cursor, seg)
		node := NewPathNode(cursor)
		switch {
		case node.IsDir():
			// already in place
		case node.IsFile():
			logger.Debug("replacing stray file with directory", "path", cursor)
			if err := node.RemoveFile(); err != nil {
				return false, err
			}
			if err := node.Mkdir(); err != nil {
				return false, err
			}
		case !node.Exists():
			if err := node.Mkdir(); err != nil {
				return false, err
			}
		default:
			return false, &UnexpectedNodeTypeError{Path: cursor}
		}
	}

	leaf := NewPathNode(filepath.Join(cursor, segs[len(segs)-1]))
	switch {
	case leaf.IsFile():
		leafIno, err := leaf.Inode()
		if err != nil {
			return false, err
		}
		srcIno, err := NewPathNode(srcPath).Inode()
		if err != nil {
			return false, err
		}
		if leafIno == srcIno {
			return false, nil
		}
		// Stale link to an old version of the file.
		logger.Debug("relinking stale entry", "path", leaf.Path())
		if err := leaf.RemoveFile(); err != nil {
			return false, err
		}
	case leaf.IsDir():
		logger.Debug("replacing stray directory with hardlink", "path", leaf.Path())
		if err := leaf.RemoveTree(); err != nil {
			return false, err
		}
	case leaf.Exists():
		return false, &UnexpectedNodeTypeError{Path: leaf.Path()}
	}

	if err := leaf.HardlinkFrom(srcPath); err != nil {
		return false, err
	}
	return true, nil
}

// ensureUnlinked removes dst/rel when it is a hardlink of src/rel.
// Intermediate directories stay in place; only cleanup-time pruning removes
// branches emptied by unlinking. Returns true when an entry was removed.
func ensureUnlinked(dst, src Root, rel string) (bool, error) {
	ok, err := linked(dst, src, rel)
	if err != nil || !ok {
		return false, err
	}
	if err := NewPathNode(dst.Resolve(rel)).RemoveFile(); err != nil {
		return false, err
	}
	return true, nil
}

// IsLocked reports whether the file at rel is locked: the store holds a
// regular file at the same relative path hardlinked to the share file. The
// answer is computed from the live filesystem on every call.
func (s *Share) IsLocked(rel string) (bool, error) {
	return linked(s.Store().Root(), s.root, rel)
}

// Lock hardlinks the share file at rel into the store, creating intermediate
// store directories on demand and healing any inconsistent prior state. The
// share file must exist and be a regular file. Idempotent: locking an
// already locked file reports created=false.
func (s *Share) Lock(rel string) (bool, error) {
	node := NewPathNode(s.root.Resolve(rel))
	if !node.Exists() {
		return false, fmt.Errorf("%s: %w", node.Path(), ErrNotFound)
	}
	if !node.IsFile() {
		return false, fmt.Errorf("%s: %w", node.Path(), ErrNotRegularFile)
	}
	created, err := ensureLinked(s.Store().Root(), s.root, rel)
	if err != nil {
		return false, err
	}
	if created {
		logger.Info("locked", "share", s.Path(), "path", rel)
	}
	return created, nil
}

// Unlock removes the store-side hardlink for rel. A file that is not locked
// is a no-op reporting removed=false; only the store copy is ever touched,
// the share file stays as it is.
func (s *Share) Unlock(rel string) (bool, error) {
	removed, err := ensureUnlinked(s.Store().Root(), s.root, rel)
	if err != nil {
		return false, err
	}
	if removed {
		logger.Info("unlocked", "share", s.Path(), "path", rel)
	}
	return removed, nil
}

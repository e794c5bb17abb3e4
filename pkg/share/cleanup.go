package share

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c-base/kgbsorter/internal/logger"
)

// ManifestName is the advisory manifest written at the share root when a
// cleanup pass runs with MarkSoon enabled.
const ManifestName = "to_be_deleted_soon.txt"

const manifestHeader = "# files eligible for deletion on the next cleanup run"

// DefaultMaxAge is the retention threshold for unlocked files when none is
// configured.
const DefaultMaxAge = 7 * 24 * time.Hour

// Options control a cleanup pass.
type Options struct {
	// MaxAge is the retention threshold for unlocked files. Files whose
	// mtime is strictly older than now-MaxAge are deleted. Zero or negative
	// means DefaultMaxAge.
	MaxAge time.Duration

	// MarkSoon writes the advisory manifest listing unlocked files that
	// survive this pass but fall within one day of the threshold. Purely
	// advisory output; nothing is deleted or locked by recording.
	MarkSoon bool

	// Now overrides the pass's notion of the current time. Zero means
	// time.Now. Used by tests.
	Now time.Time
}

// Report summarizes what a cleanup pass did.
type Report struct {
	Restored   int // store entries relinked back into the share
	Removed    int // aged unlocked share files deleted
	Marked     int // paths recorded in the advisory manifest
	PrunedDirs int // empty directories removed across both trees
}

// Cleanup reconciles a share against its store, then prunes aged unlocked
// files.
//
// Phase 1 treats the store as the authoritative manifest of what must exist:
// every store file is replayed into the share with the same healing walk the
// lock operation uses, restoring share files that were deleted or diverged
// out of band. Phase 2 walks the share and deletes unlocked files whose
// mtime is strictly older than the threshold; locked files survive
// regardless of age. Phase 1 completes in full before phase 2 begins, so a
// file present in the store but missing in the share is restored before its
// lock state is judged. Empty directories left behind in either tree are
// removed after each phase.
func Cleanup(s *Share, opts Options) (Report, error) {
	var rep Report

	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	store := s.Store()
	logger.Info("cleanup started",
		"share", s.Path(),
		"store", store.Path(),
		"max_age", maxAge)

	// Phase 1: store -> share reconciliation.
	err := store.Root().WalkFiles(func(rel string) error {
		created, err := ensureLinked(s.Root(), store.Root(), rel)
		if err != nil {
			return fmt.Errorf("restore %s: %w", rel, err)
		}
		if created {
			logger.Info("restored from store", "share", s.Path(), "path", rel)
			rep.Restored++
		}
		return nil
	})
	if err != nil {
		return rep, err
	}
	if err := pruneEmptyDirs(&rep, store.Root(), s.Root()); err != nil {
		return rep, err
	}

	deleteBefore := now.Add(-maxAge)
	// One day earlier than deletion eligibility; collapses to the deletion
	// threshold for retention windows of a day or less.
	warnBefore := deleteBefore.Add(24 * time.Hour)
	if maxAge <= 24*time.Hour {
		warnBefore = deleteBefore
	}

	// Phase 2: share scan and pruning.
	var soon []string
	err = s.Root().WalkFiles(func(rel string) error {
		if rel == ManifestName {
			return nil
		}
		locked, err := s.IsLocked(rel)
		if err != nil {
			return err
		}
		if locked {
			return nil
		}
		node := NewPathNode(s.Root().Resolve(rel))
		mtime, err := node.MTime()
		if err != nil {
			return err
		}
		if mtime.Before(deleteBefore) {
			// Extra hardlinks outside the store mean removal frees no
			// space; worth knowing when chasing disk usage.
			if nlink, nerr := node.Nlink(); nerr == nil && nlink > 1 {
				logger.Warn("removing file with hardlinks elsewhere",
					"share", s.Path(), "path", rel, "nlink", nlink)
			}
			logger.Info("removing aged unlocked file",
				"share", s.Path(), "path", rel, "mtime", mtime)
			if err := node.RemoveFile(); err != nil {
				return err
			}
			rep.Removed++
			return nil
		}
		if opts.MarkSoon && mtime.Before(warnBefore) {
			soon = append(soon, rel)
		}
		return nil
	})
	if err != nil {
		return rep, err
	}

	if opts.MarkSoon {
		if err := writeManifest(s.Path(), soon); err != nil {
			return rep, err
		}
		rep.Marked = len(soon)
	}

	if err := pruneEmptyDirs(&rep, store.Root(), s.Root()); err != nil {
		return rep, err
	}

	logger.Info("cleanup finished",
		"share", s.Path(),
		"restored", rep.Restored,
		"removed", rep.Removed,
		"marked", rep.Marked,
		"pruned_dirs", rep.PrunedDirs)
	return rep, nil
}

func pruneEmptyDirs(rep *Report, roots ...Root) error {
	for _, r := range roots {
		n, err := r.RemoveEmptyDirs()
		rep.PrunedDirs += n
		if err != nil {
			return err
		}
	}
	return nil
}

// writeManifest rewrites the advisory manifest each pass so stale entries
// from earlier runs never linger: the header line, then one relative path
// per line.
func writeManifest(shareRoot string, rels []string) error {
	p := filepath.Join(shareRoot, ManifestName)
	buf := make([]byte, 0, 256)
	buf = append(buf, manifestHeader...)
	buf = append(buf, '\n')
	for _, rel := range rels {
		buf = append(buf, rel...)
		buf = append(buf, '\n')
	}
	if err := os.WriteFile(p, buf, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", p, err)
	}
	return nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c-base/kgbsorter/internal/logger"
	"github.com/c-base/kgbsorter/pkg/share"
)

var lockCmd = &cobra.Command{
	Use:   "lock FILE...",
	Short: "Lock files so cleanup never deletes them",
	Long: `Lock the given files by hardlinking them into their share's store.

A directory target locks every regular file beneath it. Targets must resolve
under a configured share. Locking an already locked file is a no-op; a stale
store entry pointing at an old version of the file is healed in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLock,
}

func runLock(cmd *cobra.Command, args []string) error {
	roots, _, err := loadShares()
	if err != nil {
		return err
	}

	failed := 0
	for _, target := range args {
		n, err := lockTarget(roots, target)
		if err != nil {
			logger.Error("lock failed", "target", target, "error", err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d file(s) locked\n", target, n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d target(s) failed", failed, len(args))
	}
	return nil
}

func lockTarget(roots []string, target string) (int, error) {
	abs, err := canonicalize(target)
	if err != nil {
		return 0, err
	}
	sh, rel, err := share.FindShare(roots, abs)
	if err != nil {
		return 0, err
	}
	return sh.LockAll(rel)
}

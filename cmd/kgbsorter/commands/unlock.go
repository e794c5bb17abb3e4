package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c-base/kgbsorter/internal/logger"
	"github.com/c-base/kgbsorter/pkg/share"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock FILE...",
	Short: "Unlock files, making them eligible for cleanup",
	Long: `Unlock the given files by removing their hardlinks from the share's
store. Only the store copy is removed; the share file itself is untouched.

A directory target unlocks every regular file beneath it. Unlocking a file
that is not locked is a no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUnlock,
}

func runUnlock(cmd *cobra.Command, args []string) error {
	roots, _, err := loadShares()
	if err != nil {
		return err
	}

	failed := 0
	for _, target := range args {
		n, err := unlockTarget(roots, target)
		if err != nil {
			logger.Error("unlock failed", "target", target, "error", err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d file(s) unlocked\n", target, n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d target(s) failed", failed, len(args))
	}
	return nil
}

func unlockTarget(roots []string, target string) (int, error) {
	abs, err := canonicalize(target)
	if err != nil {
		return 0, err
	}
	sh, rel, err := share.FindShare(roots, abs)
	if err != nil {
		return 0, err
	}
	return sh.UnlockAll(rel)
}

package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/c-base/kgbsorter/internal/cli/output"
	"github.com/c-base/kgbsorter/pkg/share"
)

var cleanupFlags struct {
	days     int
	minutes  int
	markSoon bool
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup SHARE",
	Short: "Reconcile a share against its store and prune aged unlocked files",
	Long: `Run the two-phase cleanup pass on the share containing SHARE.

Phase 1 replays every store entry back into the share, restoring files that
were deleted or diverged. Phase 2 deletes unlocked files whose modification
time is older than the retention threshold; locked files survive regardless
of age. Empty directories left behind in either tree are removed.

With --mark-soon, unlocked files within one day of the threshold are listed
in ` + share.ManifestName + ` at the share root as an operator warning.`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVarP(&cleanupFlags.days, "days", "d", 7, "Retention threshold in days")
	cleanupCmd.Flags().IntVarP(&cleanupFlags.minutes, "minutes", "m", 0, "Additional retention minutes")
	cleanupCmd.Flags().BoolVar(&cleanupFlags.markSoon, "mark-soon", false, "Write the advisory soon-to-be-deleted manifest")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	roots, cfg, err := loadShares()
	if err != nil {
		return err
	}

	abs, err := canonicalize(args[0])
	if err != nil {
		return err
	}
	sh, _, err := share.FindShare(roots, abs)
	if err != nil {
		return err
	}

	maxAge := time.Duration(cleanupFlags.days)*24*time.Hour +
		time.Duration(cleanupFlags.minutes)*time.Minute
	// The config's cleanup section applies unless the flags were given.
	if cfg != nil && !cmd.Flags().Changed("days") && !cmd.Flags().Changed("minutes") {
		maxAge = cfg.MaxAge()
	}

	rep, err := share.Cleanup(sh, share.Options{
		MaxAge:   maxAge,
		MarkSoon: cleanupFlags.markSoon,
	})
	if err != nil {
		return err
	}

	table := output.NewTableData("RESTORED", "REMOVED", "MARKED", "PRUNED DIRS")
	table.AddRow(
		strconv.Itoa(rep.Restored),
		strconv.Itoa(rep.Removed),
		strconv.Itoa(rep.Marked),
		strconv.Itoa(rep.PrunedDirs),
	)
	return output.PrintTable(cmd.OutOrStdout(), table)
}

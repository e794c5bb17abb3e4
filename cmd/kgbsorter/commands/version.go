package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "kgbsorter %s\n", Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  Commit:     %s\n", Commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  Built:      %s\n", Date)
		fmt.Fprintf(cmd.OutOrStdout(), "  Go version: %s\n", runtime.Version())
		fmt.Fprintf(cmd.OutOrStdout(), "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show only version number")
}

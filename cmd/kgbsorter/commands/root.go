// Package commands implements the kgbsorter CLI.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/c-base/kgbsorter/internal/cli/output"
	"github.com/c-base/kgbsorter/internal/logger"
	"github.com/c-base/kgbsorter/pkg/config"
	"github.com/c-base/kgbsorter/pkg/share"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var flags struct {
	config    string
	smbConf   string
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "kgbsorter",
	Short: "Manage hardlink-based lock state for files in shared directories",
	Long: `kgbsorter manages a locked/unlocked state for files inside shared
directory trees.

Every share has a hidden buddy directory sitting next to it, the store:
for the share /mnt/foobar the store is /mnt/.foobar. A file is locked when
the store holds a hardlink to it at the identical relative path. The cleanup
command restores every file the store remembers and deletes unlocked files
older than the retention threshold.

Shares come from an ini-style shares file ([name] path = /abs/path) or from
a Samba configuration (--smb-conf); smb.conf shares whose trailing comment
contains "protected" are skipped.

Without a subcommand, kgbsorter lists the configured shares.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Config{
			Level:  flags.logLevel,
			Format: flags.logFormat,
		})
	},
	RunE: runListShares,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "Path to the shares file (default: kgbsorter.ini, /etc/kgbsorter/shares.ini, ~/.config/kgbsorter/shares.ini)")
	rootCmd.PersistentFlags().StringVar(&flags.smbConf, "smb-conf", "", "Resolve shares from a Samba configuration instead of the shares file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadShares resolves the configured share roots. Returns the backing ini
// config when one was used, nil in smb.conf mode.
func loadShares() ([]string, *config.Config, error) {
	if flags.smbConf != "" {
		roots, err := config.LoadSmbConf(flags.smbConf)
		return roots, nil, err
	}

	cfg, err := config.Load(flags.config)
	if err != nil {
		// No shares file anywhere: fall back to the system smb.conf when
		// one exists.
		if errors.Is(err, config.ErrNoConfig) {
			if _, serr := os.Stat(config.DefaultSmbConf); serr == nil {
				roots, lerr := config.LoadSmbConf("")
				return roots, nil, lerr
			}
		}
		return nil, nil, err
	}

	// The shares file may carry logging settings; flags win.
	if flags.logLevel == "" && flags.logFormat == "" {
		if cfg.Logging.Level != "" || cfg.Logging.Format != "" {
			if err := logger.Init(logger.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			}); err != nil {
				return nil, nil, err
			}
		}
	}

	return cfg.ShareRoots(), cfg, nil
}

// canonicalize resolves a CLI target the way the filesystem sees it:
// absolute, symlinks resolved.
func canonicalize(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", target, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", abs, share.ErrNotFound)
		}
		return "", fmt.Errorf("resolve %s: %w", abs, err)
	}
	return resolved, nil
}

func runListShares(cmd *cobra.Command, args []string) error {
	roots, cfg, err := loadShares()
	if err != nil {
		return err
	}

	if len(roots) == 0 && (cfg == nil || len(cfg.Shares) == 0) {
		fmt.Fprintln(cmd.OutOrStdout(), "No shares configured.")
		return nil
	}

	table := output.NewTableData("NAME", "PATH", "STORE", "STATE")
	if cfg != nil {
		for _, entry := range cfg.Shares {
			table.AddRow(entry.Name, entry.Path, storeColumn(entry.Path), shareState(entry))
		}
	} else {
		for _, root := range roots {
			table.AddRow(filepath.Base(root), root, storeColumn(root), shareState(config.ShareEntry{Path: root}))
		}
	}
	return output.PrintTable(cmd.OutOrStdout(), table)
}

func storeColumn(sharePath string) string {
	sh, err := share.NewShare(sharePath)
	if err != nil {
		return "-"
	}
	return sh.Store().Path()
}

func shareState(entry config.ShareEntry) string {
	if entry.Protected {
		return "protected"
	}
	sh, err := share.NewShare(entry.Path)
	if err != nil {
		return "missing"
	}
	if !sh.Store().Exists() {
		return "no store"
	}
	return "ok"
}

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mediadupfinder/internal/config"
	"mediadupfinder/internal/probe"
)

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	configPath   string
	logDir       string
	historyPath  string
	workers      int
	probeTimeout time.Duration
	ffprobePath  string
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "mediadupfinder",
		Short: "Find and delete duplicate images and videos",
		Long: `mediadupfinder finds likely duplicate images and videos without reading
their content.

Files in the same directory are grouped when they share cheap metadata:
size and resolution for images, size, duration and frame rate for videos,
numbered copy names such as "photo (1).jpg", or an image sharing its name
with a video. One file of every group is kept, the rest are proposed for
deletion and removed only after confirmation.

Example usage:
  mediadupfinder scan ./photos            # Scan, review and confirm per category
  mediadupfinder scan ./photos --dry-run  # Preview only
  mediadupfinder interactive              # Ask for a folder, confirm once
  mediadupfinder history                  # Show previous runs`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rf.configPath, "config", "", "Path to config file (default ~/.mediadupfinder/config.toml)")
	pf.StringVar(&rf.logDir, "log-dir", ".", "Directory for run logs and reports")
	pf.StringVar(&rf.historyPath, "history", "", `Path to run history database ("none" disables history)`)
	pf.IntVar(&rf.workers, "workers", 1, "Number of parallel fingerprinting workers per directory")
	pf.DurationVar(&rf.probeTimeout, "probe-timeout", probe.DefaultTimeout, "Timeout for each ffprobe call")
	pf.StringVar(&rf.ffprobePath, "ffprobe", probe.DefaultCommand, "ffprobe executable")

	rootCmd.AddCommand(
		newScanCmd(rf),
		newInteractiveCmd(rf),
		newHistoryCmd(rf),
		newConfigCmd(rf),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (rf *rootFlags) configFile() (string, error) {
	if rf.configPath != "" {
		return rf.configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and applies the flags set on the
// command line over it
func (rf *rootFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := rf.configFile()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-dir") {
		cfg.LogDir = rf.logDir
	}
	if flags.Changed("history") {
		cfg.HistoryDB = rf.historyPath
		if rf.historyPath == "none" {
			cfg.HistoryDB = ""
		}
	}
	if flags.Changed("workers") {
		cfg.Workers = rf.workers
	}
	if flags.Changed("probe-timeout") {
		cfg.Probe.Timeout = config.Duration{Duration: rf.probeTimeout}
	}
	if flags.Changed("ffprobe") {
		cfg.Probe.Command = rf.ffprobePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

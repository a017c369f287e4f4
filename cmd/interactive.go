package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func newInteractiveCmd(rf *rootFlags) *cobra.Command {
	var flags runFlags

	interactiveCmd := &cobra.Command{
		Use:   "interactive",
		Short: "Ask for a folder, scan it and confirm all deletions at once",
		Long: `Ask for the folder to scan on the terminal, then run the same scan as
'mediadupfinder scan' with a single confirmation for every delete candidate.

A terminal is required unless --yes or --dry-run is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, rf, &flags)
		},
	}

	flags.register(interactiveCmd)
	return interactiveCmd
}

func runInteractive(cmd *cobra.Command, rf *rootFlags, flags *runFlags) error {
	con := newConsole(cmd)
	if !con.tty && !flags.yes && !flags.dryRun {
		return errors.New("interactive mode needs a terminal; use --yes or --dry-run")
	}

	cfg, err := rf.loadConfig(cmd)
	if err != nil {
		return err
	}

	root, err := con.readLine("Folder to scan: ")
	if err != nil {
		return err
	}
	root = trimQuotes(root)
	if root == "" {
		return errors.New("no folder given")
	}

	opts, err := flags.options(root)
	if err != nil {
		return err
	}
	return runPipeline(cmd.Context(), cfg, opts, con)
}

// trimQuotes strips the quotes terminals add to paths dropped onto them
func trimQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(s, `"'`))
}

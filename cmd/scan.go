package cmd

import (
	"github.com/spf13/cobra"
)

func newScanCmd(rf *rootFlags) *cobra.Command {
	var flags runFlags

	scanCmd := &cobra.Command{
		Use:   "scan <folder>",
		Short: "Scan a folder for duplicate media and delete confirmed duplicates",
		Long: `Scan a folder recursively, directory by directory, for duplicate images
and videos.

The scan will:
1. Classify the files of every directory as images or videos by extension
2. Fingerprint images by size and resolution, videos by size, duration and
   frame rate (read with ffprobe)
3. Group files sharing a fingerprint, numbered copies with their original,
   and images sharing a name with a video
4. Keep one file per group and write a report next to the run log
5. Ask once per group category before deleting anything

Options:
  --dry-run     Preview what would be deleted
  --trash       Move files to the system trash instead of deleting them
  --move-to     Move files to a specific folder
  --yes         Skip confirmation prompts
  --category    Only act on some group types (can be used multiple times)

Example:
  mediadupfinder scan ./photos
  mediadupfinder scan ./photos --dry-run
  mediadupfinder scan ./photos --trash --category copy
  mediadupfinder scan /media/camera --workers 4 --move-to ./review`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.loadConfig(cmd)
			if err != nil {
				return err
			}

			opts, err := flags.options(args[0])
			if err != nil {
				return err
			}
			opts.perCategory = true

			return runPipeline(cmd.Context(), cfg, opts, newConsole(cmd))
		},
	}

	flags.register(scanCmd)
	return scanCmd
}

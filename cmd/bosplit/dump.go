package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bosplit/process_blob"
)

type DumpOptions struct {
	*RootOptions
	PID           int
	Output        string
	MaxRegionSize uint
}

func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Save the game's memory to a directory for offline inspection",
		Long: `Copy every readable region of the running game into a directory that
"bosplit inspect" can load later.

Example:
  bosplit dump --output ./bo-dump
  bosplit dump --pid 4242 --output ./bo-dump --max-region 67108864`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := openProcess(opts.Runtime.Process, opts.PID)
			if err != nil {
				return err
			}
			defer proc.Close()

			image, err := process_blob.Capture(proc, opts.Runtime.Process, opts.MaxRegionSize)
			if err != nil {
				return err
			}
			if err := image.Save(opts.Output); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d regions of pid %d to %s\n", len(image.Blobs), image.PID, opts.Output)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.PID, "pid", 0, "process id (default: find by --process)")
	cmd.Flags().StringVar(&opts.Runtime.Process, "process", opts.Runtime.Process, "game executable name")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (required)")
	cmd.Flags().UintVar(&opts.MaxRegionSize, "max-region", process_blob.DefaultMaxRegionSize, "skip regions larger than this many bytes")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

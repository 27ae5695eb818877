package main

import (
	"github.com/spf13/cobra"

	"bosplit/settings"
)

// RootOptions holds flags shared by every command. Defaults come from the
// BOSPLIT_* environment.
type RootOptions struct {
	Runtime settings.Runtime
	envErr  error
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	opts.Runtime, opts.envErr = settings.LoadRuntime()

	cmd := &cobra.Command{
		Use:   "bosplit",
		Short: "Autosplitter for Bo: Path of the Teal Lotus",
		Long: `bosplit watches the memory of a running Bo.exe (native or under Wine/Proton)
and sends splits to LiveSplit Server when progress flags change.

Configuration is read from BOSPLIT_* environment variables; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envErr != nil {
				return opts.envErr
			}
			return opts.Runtime.Validate()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Runtime.Layout, "layout", opts.Runtime.Layout, "class layout file")
	cmd.PersistentFlags().StringVar(&opts.Runtime.Ledger, "ledger", opts.Runtime.Ledger, "completion ledger database")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewLedgerCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}

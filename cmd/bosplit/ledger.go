package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"bosplit/ledger"
	"bosplit/pod"
)

func NewLedgerCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show or reset the completion ledger",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List every milestone and whether it fired this run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, opts.Runtime.Ledger, func(l *ledger.Ledger) error {
				return printLedger(cmd.OutOrStdout(), l)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Start a new epoch with every milestone unfired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, opts.Runtime.Ledger, func(l *ledger.Ledger) error {
				if err := l.ResetEpoch(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "New epoch", l.Epoch())
				return nil
			})
		},
	})

	return cmd
}

func withLedger(cmd *cobra.Command, path string, fn func(l *ledger.Ledger) error) error {
	backend, err := ledger.OpenSQLite(path)
	if err != nil {
		return err
	}
	l, err := ledger.Open(cmd.Context(), backend)
	if err != nil {
		backend.Close()
		return err
	}
	defer l.Close()
	return fn(l)
}

func printLedger(w io.Writer, l *ledger.Ledger) error {
	fmt.Fprintln(w, "Epoch", l.Epoch())

	table := pod.NewTable(
		pod.ColumnSpec{Header: "Milestone", MinWidth: 24},
		pod.ColumnSpec{Header: "Fired"},
	)
	for _, key := range l.Keys() {
		fired, _ := l.Get(key)
		table.AddRow(key, strconv.FormatBool(fired))
	}
	return table.Render(w)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bosplit/game"
	"bosplit/ledger"
	"bosplit/settings"
	"bosplit/splitter"
	"bosplit/timer"
)

func NewRunCommand(opts *RootOptions) *cobra.Command {
	rt := &opts.Runtime

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Attach to the game and split",
		Long: `Wait for the game process, bind the class layout and poll its memory,
sending a split to the timer the first time each enabled milestone is reached.

Example:
  bosplit run --layout layout.yaml --settings settings.yaml
  BOSPLIT_TIMER=log bosplit run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplitter(cmd, *rt)
		},
	}

	cmd.Flags().StringVar(&rt.Process, "process", rt.Process, "game executable name")
	cmd.Flags().StringVar(&rt.Settings, "settings", rt.Settings, "split settings file")
	cmd.Flags().DurationVar(&rt.PollInterval, "poll", rt.PollInterval, "memory poll interval")
	cmd.Flags().DurationVar(&rt.AttachInterval, "attach-interval", rt.AttachInterval, "process search interval")
	cmd.Flags().StringVar(&rt.Timer, "timer", rt.Timer, "timer backend (livesplit|log)")
	cmd.Flags().StringVar(&rt.LiveSplitAddr, "livesplit", rt.LiveSplitAddr, "LiveSplit Server address")
	cmd.Flags().IntVar(&rt.StallTicks, "stall-ticks", rt.StallTicks, "unchanged play time reads before game time pauses")

	return cmd
}

func newTimer(rt settings.Runtime) timer.Timer {
	if rt.Timer == settings.TimerLog {
		return timer.NewLog()
	}
	return timer.NewLiveSplit(rt.LiveSplitAddr)
}

func runSplitter(cmd *cobra.Command, rt settings.Runtime) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := ledger.OpenSQLite(rt.Ledger)
	if err != nil {
		return err
	}
	l, err := ledger.Open(ctx, backend)
	if err != nil {
		backend.Close()
		return err
	}
	defer l.Close()

	t := newTimer(rt)
	defer t.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "Splitting", rt.Process, "with the", rt.Timer, "timer. Press Ctrl-C to stop.")

	s := splitter.New(splitter.ConfigFromRuntime(rt), newAttacher(rt.AttachInterval), game.NewSettings(rt.Settings), l, t)
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bosplit/binder"
	"bosplit/game"
	"bosplit/hexdump"
	"bosplit/pod"
	"bosplit/process"
	"bosplit/process_blob"
	"bosplit/remote_array"
)

type InspectOptions struct {
	*RootOptions
	From  string
	Raw   bool
	Color bool
	Addr  string
	Size  int
}

func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the tracked records from a saved memory dump",
		Long: `Load a directory written by "bosplit dump", resolve the layout against it
and print every tracked record with its remote field offsets.

Example:
  bosplit inspect --from ./bo-dump --layout layout.yaml
  bosplit inspect --from ./bo-dump --addr 0x7f12a0001000 --size 128`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			image := process_blob.NewProcessImage()
			if err := image.Load(opts.From); err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if opts.Addr != "" {
				addr, err := parseAddress(opts.Addr)
				if err != nil {
					return err
				}
				return dumpRange(w, image, addr, opts.Size, opts.Color)
			}

			layout, err := binder.LoadLayout(opts.Runtime.Layout)
			if err != nil {
				return err
			}
			return inspectImage(w, image, layout, opts.Raw, opts.Color)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "dump directory (required)")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "hexdump each record after its fields")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "colorize output")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "hexdump memory at this address instead of printing records")
	cmd.Flags().IntVar(&opts.Size, "size", 256, "bytes to hexdump with --addr")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func parseAddress(s string) (process.ProcessMemoryAddress, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", s, err)
	}
	return process.ProcessMemoryAddress(v), nil
}

func dumpRange(w io.Writer, proc process.Process, addr process.ProcessMemoryAddress, size int, color bool) error {
	data, err := proc.ReadMemory(addr, process.ProcessMemorySize(size))
	if err != nil {
		return err
	}
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return err
	}
	hexdump.NewHexDump().SetStartOffset(uint64(addr)).SetColor(color).EnablePointerChecking(mm).DumpToWriter(w, data)
	return nil
}

type inspector struct {
	w     io.Writer
	proc  process.Process
	raw   bool
	color bool
}

// inspectImage prints GameManager, the managers it points to and both
// lists. A record that cannot be read is reported and skipped.
func inspectImage(w io.Writer, proc process.Process, layout *binder.Layout, raw, color bool) error {
	classes, err := game.Bind(layout)
	if err != nil {
		return err
	}
	in := &inspector{w: w, proc: proc, raw: raw, color: color}

	if layout.Scene != nil {
		if path, err := layout.ScenePath(proc); err != nil {
			fmt.Fprintln(w, "Scene: unreadable:", err)
		} else {
			fmt.Fprintf(w, "Scene: %s (%s)\n", binder.SceneName(path), path)
		}
	}

	gmAddr, err := layout.ResolveInstance(proc, game.ClassGameManager)
	if err != nil {
		return err
	}
	gm, err := printRecord(in, classes.GameManager, game.ClassGameManager, gmAddr)
	if err != nil {
		return err
	}

	printRecord(in, classes.QuestManager, game.ClassQuestManager, gm.QuestManager)
	printRecord(in, classes.AbilityManager, game.ClassAbilityManager, gm.AbilityManager)
	printRecord(in, classes.InventoryContainer, game.ClassInventoryContainer, gm.InventoryContainer)
	printRecord(in, classes.BetaPlayerDataManager, game.ClassBetaPlayerDataManager, gm.BetaDataManager)

	if enemies, err := printRecord(in, classes.EnemiesManager, game.ClassEnemiesManager, gm.EnemiesManager); err == nil {
		printList(in, classes.BossData, game.EntityBosses, enemies.Bosses)
	}
	if darumas, err := printRecord(in, classes.DarumaManager, game.ClassDarumaManager, gm.DarumaManager); err == nil {
		printList(in, classes.Daruma, game.EntityDarumas, darumas.AllDarumas)
	}

	return nil
}

func printRecord[T any](in *inspector, c *binder.Class[T], title string, addr process.ProcessMemoryAddress) (T, error) {
	v, err := c.Read(in.proc, addr)
	if err != nil {
		fmt.Fprintf(in.w, "=== %s @ 0x%X: %v ===\n", title, uint64(addr), err)
		return v, err
	}

	err = pod.PrintStruct(in.w, v, pod.PrintOptions{
		Title:   title,
		Address: uint64(addr),
		Offset: func(sf reflect.StructField) (uint32, bool) {
			return c.Offset(sf.Name)
		},
		IsValidPointer: func(p uint64) bool {
			return in.proc.IsValidAddress(process.ProcessMemoryAddress(p))
		},
		Color: in.color,
	})
	if err != nil {
		return v, err
	}

	if in.raw {
		if data, err := in.proc.ReadMemory(addr, c.Span()); err == nil {
			hexdump.NewHexDump().SetStartOffset(uint64(addr)).SetColor(in.color).DumpToWriter(in.w, data)
		}
	}
	fmt.Fprintln(in.w)
	return v, nil
}

func printList[T any](in *inspector, c *binder.Class[T], name string, addr process.ProcessMemoryAddress) {
	elements, err := remote_array.New[process.ProcessMemoryAddress](addr).ReadAll(in.proc)
	if err != nil {
		fmt.Fprintf(in.w, "=== %s @ 0x%X: %v ===\n\n", name, uint64(addr), err)
		return
	}

	fmt.Fprintf(in.w, "%s: %d elements\n", name, len(elements))
	for i, element := range elements {
		printRecord(in, c, fmt.Sprintf("%s[%d]", name, i), element)
	}
}

// Command picoctl checks pico definition files and inspects the trees and
// stats they produce.
//
//	picoctl validate weapons.yml tools.yml
//	picoctl stats --blueprint iron_sword weapons.yml
//	picoctl tree --blueprint iron_sword --nbt weapons.yml
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/oriumgames/pico"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitInvalid = 1
	exitError   = 2
)

// exitCodeError carries the process exit code for an error.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

// cli holds the flag values of one command tree.
type cli struct {
	blueprintID string
	treeNBT     bool
	verbose     bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "picoctl:", err)
		code := exitError
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			code = exitErr.code
		}
		os.Exit(code)
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "picoctl",
		Short:         "Inspect pico definition files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log registry diagnostics")

	validateCmd := &cobra.Command{
		Use:   "validate <files...>",
		Short: "Load definition files and report errors",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runValidate,
	}

	statsCmd := &cobra.Command{
		Use:   "stats --blueprint <id> <files...>",
		Short: "Print the compiled stats of a blueprint",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runStats,
	}
	statsCmd.Flags().StringVarP(&c.blueprintID, "blueprint", "b", "", "blueprint id")
	_ = statsCmd.MarkFlagRequired("blueprint")

	treeCmd := &cobra.Command{
		Use:   "tree --blueprint <id> <files...>",
		Short: "Print the tree of a blueprint",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runTree,
	}
	treeCmd.Flags().StringVarP(&c.blueprintID, "blueprint", "b", "", "blueprint id")
	treeCmd.Flags().BoolVar(&c.treeNBT, "nbt", false, "round-trip the tree through NBT")
	_ = treeCmd.MarkFlagRequired("blueprint")

	root.AddCommand(validateCmd, statsCmd, treeCmd)
	return root
}

// load builds a registry from the given definition files.
func (c *cli) load(files []string) (*pico.Registry, error) {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	bundle := pico.NewBundle("picoctl")
	for _, f := range files {
		bundle.ConfigFile(f)
	}
	return pico.NewBuilder().
		Option(pico.WithLogger(logger), pico.WithCacheCleanup(0)).
		Bundle(bundle.Build()).
		Build()
}

// runValidate is the handler for "picoctl validate".
//
// # Exit Codes
//
//   - 0: All files loaded
//   - 1: A definition is invalid
func (c *cli) runValidate(cmd *cobra.Command, args []string) error {
	reg, err := c.load(args)
	if err != nil {
		return &exitCodeError{code: exitInvalid, err: fmt.Errorf("invalid: %w", err)}
	}
	defer reg.Shutdown()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "stats:      %d\n", len(reg.StatKeys()))
	fmt.Fprintf(out, "components: %d\n", len(reg.ComponentIDs()))
	fmt.Fprintf(out, "blueprints: %d\n", len(reg.BlueprintIDs()))

	invalid := 0
	for _, id := range reg.BlueprintIDs() {
		tree, _ := reg.Create(id)
		if _, err := reg.Evaluate(tree); err != nil {
			fmt.Fprintf(out, "blueprint %s: %v\n", id, err)
			invalid++
		}
	}
	if invalid > 0 {
		return &exitCodeError{code: exitInvalid, err: fmt.Errorf("%d invalid blueprints", invalid)}
	}
	return nil
}

// runStats is the handler for "picoctl stats".
func (c *cli) runStats(cmd *cobra.Command, args []string) error {
	reg, err := c.load(args)
	if err != nil {
		return err
	}
	defer reg.Shutdown()

	tree, err := reg.Create(c.blueprintID)
	if err != nil {
		return err
	}
	stats, err := reg.Evaluate(tree)
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), stats)

	states, err := pico.States(tree, stats)
	if err != nil {
		return err
	}
	for _, s := range states {
		if d, ok := s.(*pico.DurabilityState); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "durability: %d/%d\n", d.Remaining(), d.Max)
		}
	}
	return nil
}

func printStats(w io.Writer, stats *pico.CompiledStatMap) {
	for key, v := range stats.All() {
		fmt.Fprintf(w, "%s = %v\n", key, v)
	}
}

// runTree is the handler for "picoctl tree".
func (c *cli) runTree(cmd *cobra.Command, args []string) error {
	reg, err := c.load(args)
	if err != nil {
		return err
	}
	defer reg.Shutdown()

	tree, err := reg.Create(c.blueprintID)
	if err != nil {
		return err
	}

	if c.treeNBT {
		data, err := pico.EncodeTree(tree)
		if err != nil {
			return err
		}
		decoded, err := reg.DecodeTree(data)
		if err != nil {
			return fmt.Errorf("round trip: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# nbt: %d bytes\n", len(data))
		tree = decoded
	}

	out, err := pico.MarshalTree(tree)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

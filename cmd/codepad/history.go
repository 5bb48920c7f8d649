package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jask/codepad/internal/codec"
	"github.com/jask/codepad/internal/tree"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved snapshots of the file tree",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Make a past snapshot the current file tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of snapshots to show")
	historyCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	snaps, err := a.kv.History(cmd.Context(), codec.StorageKey, historyLimit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no snapshots yet")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSAVED\tFOLDERS\tFILES")
	for _, s := range snaps {
		folders, files := "?", "?"
		if root, err := codec.Decode(s.Value); err == nil {
			nf, nd := tree.Count(root)
			files, folders = fmt.Sprint(nf), fmt.Sprint(nd)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04:05"), folders, files)
	}
	return w.Flush()
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.kv.Revision(ctx, args[0])
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("no snapshot %s", args[0])
	}
	if _, err := codec.Decode(snap.Value); err != nil {
		return fmt.Errorf("snapshot %s is unreadable: %w", args[0], err)
	}
	if err := a.kv.Record(ctx, snap.Key, snap.Value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "restored snapshot from %s\n", snap.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

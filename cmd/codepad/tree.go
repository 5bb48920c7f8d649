package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/codepad/internal/codec"
	"github.com/jask/codepad/internal/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the saved file tree",
	Args:  cobra.NoArgs,
	RunE:  runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	root, ok, err := codec.NewPersister(a.kv).Load(cmd.Context())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "no saved files yet")
		return nil
	}
	printTree(cmd, root)
	return nil
}

func printTree(cmd *cobra.Command, root *tree.Folder) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, root.Name()+"/")
	_ = tree.Walk(root, func(dir tree.Path, n tree.Node) error {
		indent := strings.Repeat("  ", len(dir)+1)
		switch n := n.(type) {
		case *tree.Folder:
			fmt.Fprintf(out, "%s%s/\n", indent, n.Name())
		case *tree.File:
			fmt.Fprintf(out, "%s%s (%d bytes)\n", indent, n.Name(), len(n.Content()))
		}
		return nil
	})
	files, folders := tree.Count(root)
	fmt.Fprintf(out, "\n%d folder(s), %d file(s)\n", folders, files)
}

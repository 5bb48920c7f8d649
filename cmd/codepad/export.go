package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/codepad/internal/console"
	"github.com/jask/codepad/internal/editor"
	"github.com/jask/codepad/internal/tree"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Save a file, or a folder as a zip, into the export directory",
	Example: `  codepad export "Skibidi Folder"
  codepad export "Skibidi Folder/main.lua" --export-dir .`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	con := console.New(console.WithLogger(a.log))
	ws, err := a.workspace(ctx, editor.New(), con)
	if err != nil {
		return err
	}

	p := tree.ParsePath(args[0])
	var dest string
	if len(p) == 0 {
		dest, err = ws.ExportFolder(ctx, nil)
	} else {
		dir, name := p.Split()
		kind, lookupErr := ws.Store().Lookup(dir, name)
		if lookupErr != nil {
			return lookupErr
		}
		if kind == tree.KindFolder {
			dest, err = ws.ExportFolder(ctx, p)
		} else {
			dest, err = ws.ExportFile(dir, name)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dest)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jask/codepad/internal/console"
	"github.com/jask/codepad/internal/editor"
	"github.com/jask/codepad/internal/hostfs"
)

var uploadHidden bool

var uploadCmd = &cobra.Command{
	Use:   "upload <dir>",
	Short: "Copy a directory from disk into the workspace as a new top-level folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadHidden, "hidden", false, "include dot files and dot directories")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	ws, err := a.workspace(ctx, editor.New(), console.New(console.WithLogger(a.log)))
	if err != nil {
		return err
	}
	files, err := hostfs.CollectDir(afero.NewOsFs(), args[0], hostfs.CollectOptions{
		ShowHidden:  uploadHidden || a.cfg.UI.ShowHidden,
		MaxFileSize: a.cfg.UI.MaxUploadBytes,
	})
	if err != nil {
		return err
	}
	res, err := ws.Upload(ctx, files)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "uploaded %d file(s) into %v\n", res.Files, res.Folders)
	for _, e := range res.Errors {
		fmt.Fprintln(out, "skipped:", e)
	}
	return nil
}

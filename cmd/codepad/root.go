package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/codepad/internal/console"
	"github.com/jask/codepad/internal/editor"
	"github.com/jask/codepad/internal/prefs"
	"github.com/jask/codepad/internal/tui"
)

var exportDir string

var rootCmd = &cobra.Command{
	Use:   "codepad",
	Short: "Terminal workspace for editing small code projects",
	Long: `codepad keeps a tree of folders and files in a local database and edits
them in up to six tabs. Folders can be uploaded from disk and saved back out as
zip archives.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
	RunE:              runTUI,
}

func loadEnv(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Println("could not read .env:", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&exportDir, "export-dir", "", "directory saved files are written to (overrides export.dir)")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	con := console.New(console.WithLogger(a.log))
	surface := editor.New()
	if !a.cfg.Editor.LineNumbers {
		surface.ToggleLineNumbers()
	}
	ws, err := a.workspace(ctx, surface, con)
	if err != nil {
		return err
	}

	opts := tui.Options{
		HostFs:         afero.NewOsFs(),
		ShowHidden:     a.cfg.UI.ShowHidden,
		MaxUploadBytes: a.cfg.UI.MaxUploadBytes,
		Language:       a.cfg.Editor.Language,
		Config:         &a.cfg,
	}
	if path, err := prefs.DefaultPath(); err == nil {
		opts.Prefs = prefs.NewStore(afero.NewOsFs(), path)
	} else {
		a.log.Warn("session prefs disabled", zap.Error(err))
	}

	p := tea.NewProgram(tui.New(ctx, ws, surface, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

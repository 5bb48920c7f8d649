package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/jask/codepad/internal/archive"
	"github.com/jask/codepad/internal/codec"
	"github.com/jask/codepad/internal/config"
	"github.com/jask/codepad/internal/console"
	"github.com/jask/codepad/internal/database"
	"github.com/jask/codepad/internal/database/repository"
	"github.com/jask/codepad/internal/hostfs"
	"github.com/jask/codepad/internal/logging"
	"github.com/jask/codepad/internal/tabs"
	"github.com/jask/codepad/internal/tree"
	"github.com/jask/codepad/internal/workspace"
)

// app holds what every command needs.
type app struct {
	cfg config.Config
	log *zap.Logger
	db  *sql.DB
	kv  *repository.KVRepo
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if exportDir != "" {
		cfg.Export.Dir = exportDir
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Path: cfg.Log.Path})
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	logger.Info("started", zap.String("db", cfg.Database.Path))

	return &app{
		cfg: cfg,
		log: logger,
		db:  db,
		kv:  repository.NewKVRepo(db).WithHistory(cfg.Database.History),
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
	_ = a.log.Sync()
}

// workspace builds a workspace showing sessions on surface.
func (a *app) workspace(ctx context.Context, surface tabs.Surface, con *console.Console) (*workspace.Workspace, error) {
	return workspace.New(ctx, workspace.Deps{
		Store:      tree.NewStore(nil),
		Tabs:       tabs.NewManager(surface, con, a.cfg.Editor.MaxTabs),
		Console:    con,
		Persister:  codec.NewPersister(a.kv),
		Archiver:   archive.NewZipper(),
		Downloader: hostfs.NewDownloader(afero.NewOsFs(), a.cfg.Export.Dir),
		Log:        a.log,
	}, workspace.Config{DefaultExtension: a.cfg.Editor.DefaultExtension})
}

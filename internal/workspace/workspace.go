// Package workspace is the explorer controller. It owns the file tree and
// mediates every change to it: mutations go through the store, are persisted
// as a whole-tree snapshot before returning, and keep open tabs bound to the
// files they show.
//
// Methods that touch tabs must be called from the UI goroutine. Upload and
// ExportFolder only touch the store and may run on any goroutine.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jask/codepad/internal/archive"
	"github.com/jask/codepad/internal/console"
	"github.com/jask/codepad/internal/tabs"
	"github.com/jask/codepad/internal/tree"
)

var (
	ErrUploadRead        = errors.New("upload read failed")
	ErrArchiveGeneration = errors.New("archive generation failed")
	ErrPersist           = errors.New("persist snapshot")
)

const (
	SeedFolder  = "Skibidi Folder"
	SeedFile    = "main.lua"
	SeedContent = `print("Hello World!")`
)

// Persister stores and loads whole-tree snapshots. Checkpoint also keeps
// the snapshot as a restorable history entry.
type Persister interface {
	Save(ctx context.Context, store *tree.Store) error
	Checkpoint(ctx context.Context, store *tree.Store) error
	Load(ctx context.Context) (*tree.Folder, bool, error)
}

// Archiver packs entries into one compressed archive.
type Archiver interface {
	Archive(ctx context.Context, entries []archive.Entry) ([]byte, error)
}

// Downloader hands finished bytes to the user under name and returns where
// they went.
type Downloader interface {
	Download(name string, data []byte) (string, error)
}

type Config struct {
	DefaultExtension string
}

type Deps struct {
	Store      *tree.Store
	Tabs       *tabs.Manager
	Console    *console.Console
	Persister  Persister
	Archiver   Archiver
	Downloader Downloader
	Log        *zap.Logger
}

type Workspace struct {
	ctx        context.Context
	cfg        Config
	store      *tree.Store
	tabs       *tabs.Manager
	console    *console.Console
	persister  Persister
	archiver   Archiver
	downloader Downloader
	log        *zap.Logger

	persistMu sync.Mutex
	// revision counts tree changes; the view re-renders when it moves.
	revision atomic.Uint64
}

// New builds the workspace and loads the saved tree, seeding a demo folder
// when nothing was saved yet.
func New(ctx context.Context, deps Deps, cfg Config) (*Workspace, error) {
	if deps.Store == nil || deps.Tabs == nil || deps.Console == nil || deps.Persister == nil {
		return nil, errors.New("workspace: store, tabs, console and persister are required")
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	w := &Workspace{
		ctx:        ctx,
		cfg:        cfg,
		store:      deps.Store,
		tabs:       deps.Tabs,
		console:    deps.Console,
		persister:  deps.Persister,
		archiver:   deps.Archiver,
		downloader: deps.Downloader,
		log:        deps.Log,
	}
	w.tabs.OnEdit = w.handleEdit

	root, ok, err := w.persister.Load(ctx)
	switch {
	case err != nil:
		w.log.Warn("load snapshot", zap.Error(err))
		w.console.Error("Could not load saved files: %v", err)
		w.seed()
	case ok:
		w.store.Replace(root)
	default:
		w.seed()
		if err := w.persist(ctx, true); err != nil {
			return nil, err
		}
	}
	w.console.Log("Editor initialized", console.KindNormal)
	w.console.Info("Press Ctrl+R to run code")
	return w, nil
}

func (w *Workspace) seed() {
	root := tree.NewFolder("root")
	folder := tree.NewFolder(SeedFolder)
	folder.AddChild(SeedFile, tree.NewFile(SeedFile, SeedContent))
	root.AddChild(SeedFolder, folder)
	w.store.Replace(root)
}

func (w *Workspace) Store() *tree.Store        { return w.store }
func (w *Workspace) Tabs() *tabs.Manager       { return w.tabs }
func (w *Workspace) Console() *console.Console { return w.console }
func (w *Workspace) Revision() uint64          { return w.revision.Load() }
func (w *Workspace) DefaultExtension() string  { return w.cfg.DefaultExtension }

// View runs fn with read access to the tree.
func (w *Workspace) View(fn func(root *tree.Folder) error) error { return w.store.View(fn) }

// commit checkpoints the tree after a structural change and bumps the
// revision.
func (w *Workspace) commit(ctx context.Context) error {
	err := w.persist(ctx, true)
	w.revision.Add(1)
	return err
}

func (w *Workspace) persist(ctx context.Context, checkpoint bool) error {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()
	save := w.persister.Save
	if checkpoint {
		save = w.persister.Checkpoint
	}
	if err := save(ctx, w.store); err != nil {
		w.log.Error("persist snapshot", zap.Error(err))
		w.console.Error("Error saving workspace: %v", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Checkpoint writes the current tree and keeps it in history.
func (w *Workspace) Checkpoint() error {
	if err := w.persist(w.ctx, true); err != nil {
		return err
	}
	w.console.Success("Workspace saved")
	return nil
}

// Reload replaces the tree with the last saved snapshot.
func (w *Workspace) Reload() error {
	root, ok, err := w.persister.Load(w.ctx)
	if err != nil {
		w.console.Error("Could not load saved files: %v", err)
		return err
	}
	if !ok {
		return nil
	}
	w.store.Replace(root)
	w.SyncTabs()
	w.revision.Add(1)
	return nil
}

// SyncTabs unbinds tabs whose file no longer exists.
func (w *Workspace) SyncTabs() {
	for _, t := range w.tabs.Tabs() {
		if !t.Bound() {
			continue
		}
		dir, name := t.File.Split()
		if kind, err := w.store.Lookup(dir, name); err != nil || kind != tree.KindFile {
			w.tabs.Unbind(t.File)
		}
	}
}

func (w *Workspace) handleEdit(t tabs.Tab) {
	if !t.Bound() {
		return
	}
	dir, name := t.File.Split()
	if err := w.store.WriteFile(dir, name, t.Content); err != nil {
		w.log.Warn("edit of missing file", zap.String("path", t.File.String()), zap.Error(err))
		w.tabs.Unbind(t.File)
		return
	}
	_ = w.persist(w.ctx, false)
}

// CreateFile adds an empty file under dir. Names without an extension get
// the default one.
func (w *Workspace) CreateFile(dir tree.Path, name string) (tree.Path, error) {
	if err := tree.ValidateName(name); err != nil {
		return nil, err
	}
	name = tree.DefaultFileName(name, w.cfg.DefaultExtension)
	if err := w.store.Create(dir, tree.NewFile(name, "")); err != nil {
		return nil, err
	}
	return dir.Join(name), w.commit(w.ctx)
}

// CreateFolder adds an empty folder under dir.
func (w *Workspace) CreateFolder(dir tree.Path, name string) (tree.Path, error) {
	if err := tree.ValidateName(name); err != nil {
		return nil, err
	}
	if err := w.store.Create(dir, tree.NewFolder(name)); err != nil {
		return nil, err
	}
	return dir.Join(name), w.commit(w.ctx)
}

// Rename renames a child of dir and moves tabs bound to it, or to anything
// below it, along.
func (w *Workspace) Rename(dir tree.Path, oldName, newName string) error {
	if err := tree.ValidateName(newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if err := w.store.Rename(dir, oldName, newName); err != nil {
		return err
	}
	w.tabs.Rebind(dir.Join(oldName), dir.Join(newName))
	return w.commit(w.ctx)
}

// Delete removes a child of dir. Tabs showing deleted files keep their text
// as scratch tabs.
func (w *Workspace) Delete(dir tree.Path, name string) error {
	if err := w.store.Remove(dir, name); err != nil {
		return err
	}
	w.tabs.Unbind(dir.Join(name))
	return w.commit(w.ctx)
}

// Move moves a child of from into the folder to.
func (w *Workspace) Move(from tree.Path, name string, to tree.Path) error {
	if err := w.store.Move(from, name, to); err != nil {
		return err
	}
	w.tabs.Rebind(from.Join(name), to.Join(name))
	return w.commit(w.ctx)
}

// OpenFile shows a file in a tab, reusing the tab already bound to it.
func (w *Workspace) OpenFile(dir tree.Path, name string) (int, error) {
	content, err := w.store.ReadFile(dir, name)
	if err != nil {
		return -1, err
	}
	return w.tabs.BindFile(dir.Join(name), content)
}

// RunCode is a stand-in for executing the active tab.
func (w *Workspace) RunCode() {
	t := w.tabs.ActiveTab()
	w.log.Debug("run code", zap.String("tab", t.Name), zap.Int("bytes", len(t.Content)))
	w.console.Info("Running code...")
	w.console.Success("Code executed successfully")
}

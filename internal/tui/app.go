package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/jask/codepad/internal/config"
	"github.com/jask/codepad/internal/editor"
	"github.com/jask/codepad/internal/hostfs"
	"github.com/jask/codepad/internal/prefs"
	"github.com/jask/codepad/internal/tabs"
	"github.com/jask/codepad/internal/tree"
	"github.com/jask/codepad/internal/workspace"
)

// App ties together the explorer, the tabbed editor and the console.
type App struct {
	ctx     context.Context
	ws      *workspace.Workspace
	surface *editor.Surface
	opts    Options
	keys    keyMap
	help    help.Model

	focus       focusArea
	modal       modalState
	inputBuffer string
	target      *row

	rows     []row
	cursor   int
	expanded map[string]bool
	seenRev  uint64
	dirty    bool

	quick       []workspace.FileRef
	quickCursor int

	status        string
	width, height int
}

// Options configures the App beyond the workspace itself.
type Options struct {
	HostFs         afero.Fs
	Prefs          *prefs.Store
	ShowHidden     bool
	MaxUploadBytes int64
	ConsoleLines   int
	// Language is shown next to the cursor position.
	Language       string
	// Config, when set, is written back when a setting changes in the UI.
	Config         *config.Config
}

type focusArea string

const (
	focusExplorer focusArea = "explorer"
	focusEditor   focusArea = "editor"
)

type modalState string

const (
	modalNone          modalState = ""
	modalNewFile       modalState = "newFile"
	modalNewFolder     modalState = "newFolder"
	modalRename        modalState = "rename"
	modalMove          modalState = "move"
	modalUpload        modalState = "upload"
	modalQuickOpen     modalState = "quickOpen"
	modalConfirmDelete modalState = "confirmDelete"
)

const (
	explorerWidth       = 32
	defaultConsoleLines = 6
	quickOpenLimit      = 8
)

func New(ctx context.Context, ws *workspace.Workspace, surface *editor.Surface, opts Options) *App {
	if opts.HostFs == nil {
		opts.HostFs = afero.NewOsFs()
	}
	if opts.ConsoleLines <= 0 {
		opts.ConsoleLines = defaultConsoleLines
	}
	a := &App{
		ctx:      ctx,
		ws:       ws,
		surface:  surface,
		opts:     opts,
		keys:     newKeyMap(),
		help:     help.New(),
		focus:    focusExplorer,
		expanded: map[string]bool{},
		dirty:    true,
	}
	a.restoreSession()
	a.syncRows()
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("codepad")
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	a.syncRows()
	return a, cmd
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.layout()
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if cmd, ok := a.handleGlobalKey(m); ok {
			return cmd
		}
		if a.focus == focusEditor {
			return a.handleEditorKey(m)
		}
		return a.handleExplorerKey(m)
	case errMsg:
		a.fail(m.error)
	case uploadDoneMsg:
		a.ws.SyncTabs()
		for _, name := range m.Result.Folders {
			a.expanded[name] = true
		}
		a.dirty = true
		summary := fmt.Sprintf("uploaded %d file(s) into %s", m.Result.Files, strings.Join(m.Result.Folders, ", "))
		if len(m.Result.Errors) > 0 {
			summary += fmt.Sprintf(", %d error(s) (see console)", len(m.Result.Errors))
		}
		a.status = summary
	case exportDoneMsg:
		if m.Err != nil {
			a.status = "error: " + m.Err.Error()
		} else {
			a.status = "saved " + m.Dest
		}
	default:
		if a.focus == focusEditor {
			return a.surface.Update(msg)
		}
	}
	return nil
}

func (a *App) handleGlobalKey(m tea.KeyMsg) (tea.Cmd, bool) {
	k := a.keys.global
	switch {
	case key.Matches(m, k.Quit):
		a.saveSession()
		return tea.Quit, true
	case key.Matches(m, k.Focus):
		return a.toggleFocus(), true
	case key.Matches(m, k.AddTab):
		if _, err := a.ws.Tabs().AddTab(a.ws.Tabs().NextName()); err != nil {
			a.status = "error: " + err.Error()
		}
	case key.Matches(m, k.CloseTab):
		a.ws.Tabs().CloseActive()
	case key.Matches(m, k.NextTab):
		a.ws.Tabs().Next()
	case key.Matches(m, k.PrevTab):
		a.ws.Tabs().Prev()
	case key.Matches(m, k.Run):
		a.ws.RunCode()
	case key.Matches(m, k.ClearLog):
		a.ws.Console().Clear()
	case key.Matches(m, k.ClearEditor):
		a.surface.ClearText()
	case key.Matches(m, k.Checkpoint):
		if err := a.ws.Checkpoint(); err != nil {
			a.status = "error: " + err.Error()
		} else {
			a.status = "snapshot saved"
		}
	case key.Matches(m, k.LineNumbers):
		a.surface.ToggleLineNumbers()
		a.saveLineNumbers()
	case key.Matches(m, k.Reload):
		if err := a.ws.Reload(); err != nil {
			a.status = "error: " + err.Error()
		} else {
			a.status = "reloaded saved files"
		}
	default:
		return nil, false
	}
	return nil, true
}

func (a *App) toggleFocus() tea.Cmd {
	if a.focus == focusEditor {
		a.focus = focusExplorer
		a.surface.Blur()
		return nil
	}
	a.focus = focusEditor
	return a.surface.Focus()
}

func (a *App) handleEditorKey(m tea.KeyMsg) tea.Cmd {
	if key.Matches(m, a.keys.editor.Leave) {
		return a.toggleFocus()
	}
	return a.surface.Update(m)
}

func (a *App) selected() *row {
	if a.cursor < 0 || a.cursor >= len(a.rows) {
		return nil
	}
	r := a.rows[a.cursor]
	return &r
}

func (a *App) handleExplorerKey(m tea.KeyMsg) tea.Cmd {
	k := a.keys.explorer
	cur := a.selected()
	switch {
	case key.Matches(m, k.Quit):
		a.saveSession()
		return tea.Quit
	case key.Matches(m, k.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(m, k.Down):
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}
	case key.Matches(m, k.Open):
		if cur == nil {
			return nil
		}
		if cur.Root {
			return nil
		}
		if cur.Kind == tree.KindFolder {
			a.expanded[cur.Key()] = !a.expanded[cur.Key()]
			a.dirty = true
			return nil
		}
		return a.openFile(cur.Dir, cur.Name)
	case key.Matches(m, k.Collapse):
		if cur == nil {
			return nil
		}
		if cur.Root {
			return nil
		}
		if cur.Kind == tree.KindFolder && a.expanded[cur.Key()] {
			delete(a.expanded, cur.Key())
			a.dirty = true
		} else {
			a.selectPath(cur.Dir)
		}
	case key.Matches(m, k.Expand):
		if cur != nil && !cur.Root && cur.Kind == tree.KindFolder {
			a.expanded[cur.Key()] = true
			a.dirty = true
		}
	case key.Matches(m, k.NewFile):
		a.openModal(modalNewFile, cur, "")
	case key.Matches(m, k.NewFolder):
		a.openModal(modalNewFolder, cur, "")
	case key.Matches(m, k.Rename):
		if a.editable(cur) {
			a.openModal(modalRename, cur, cur.Name)
		}
	case key.Matches(m, k.Delete):
		if a.editable(cur) {
			a.openModal(modalConfirmDelete, cur, "")
		}
	case key.Matches(m, k.Move):
		if a.editable(cur) {
			a.openModal(modalMove, cur, "/"+strings.TrimPrefix(cur.Dir.String(), "/"))
		}
	case key.Matches(m, k.Upload):
		a.openModal(modalUpload, cur, "")
	case key.Matches(m, k.Find):
		a.openModal(modalQuickOpen, cur, "")
		a.refreshQuickOpen()
	case key.Matches(m, k.Save):
		if cur == nil {
			return nil
		}
		if cur.Kind == tree.KindFile {
			dest, err := a.ws.ExportFile(cur.Dir, cur.Name)
			if err != nil {
				a.status = "error: " + err.Error()
			} else {
				a.status = "saved " + dest
			}
			return nil
		}
		return a.exportFolderCmd(cur.Path())
	}
	return nil
}

// editable reports whether r can be renamed, moved or deleted.
func (a *App) editable(r *row) bool {
	if r == nil {
		return false
	}
	if r.Root {
		a.status = "the root folder cannot be changed"
		return false
	}
	return true
}

func (a *App) openModal(state modalState, target *row, initial string) {
	a.modal = state
	a.target = target
	a.inputBuffer = initial
	a.status = ""
}

func (a *App) closeModal() {
	a.modal = modalNone
	a.target = nil
	a.inputBuffer = ""
	a.quick = nil
	a.quickCursor = 0
}

func (a *App) handleModalKey(m tea.KeyMsg) tea.Cmd {
	if a.modal == modalConfirmDelete {
		switch m.String() {
		case "y", "Y":
			target := a.target
			a.closeModal()
			if err := a.ws.Delete(target.Dir, target.Name); err != nil {
				a.fail(err)
				return nil
			}
			delete(a.expanded, target.Key())
			a.status = "deleted " + target.Key()
		case "n", "N", "esc":
			a.closeModal()
		}
		return nil
	}

	switch m.Type {
	case tea.KeyEsc:
		a.closeModal()
	case tea.KeyEnter:
		return a.submitModal()
	case tea.KeyUp:
		if a.quickCursor > 0 {
			a.quickCursor--
		}
	case tea.KeyDown:
		if a.quickCursor < len(a.quick)-1 {
			a.quickCursor++
		}
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.inputBuffer) > 0 {
			r := []rune(a.inputBuffer)
			a.inputBuffer = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		a.inputBuffer += " "
	case tea.KeyRunes:
		a.inputBuffer += string(m.Runes)
	}
	if a.modal == modalQuickOpen {
		a.refreshQuickOpen()
	}
	return nil
}

func (a *App) refreshQuickOpen() {
	a.quick = a.ws.QuickOpen(a.inputBuffer, quickOpenLimit)
	if a.quickCursor >= len(a.quick) {
		a.quickCursor = max(0, len(a.quick)-1)
	}
}

func (a *App) submitModal() tea.Cmd {
	text := strings.TrimSpace(a.inputBuffer)
	mode, target := a.modal, a.target

	if mode == modalQuickOpen {
		if len(a.quick) == 0 {
			a.status = "no matching file"
			return nil
		}
		ref := a.quick[a.quickCursor]
		a.closeModal()
		dir, name := ref.Path.Split()
		a.expandTo(dir)
		return a.openFile(dir, name)
	}
	if text == "" && mode != modalMove {
		a.status = "enter a value"
		return nil
	}
	a.closeModal()

	switch mode {
	case modalNewFile:
		dir := targetDir(target)
		p, err := a.ws.CreateFile(dir, text)
		if err != nil {
			a.fail(err)
			return nil
		}
		a.expandTo(dir)
		parent, name := p.Split()
		return a.openFile(parent, name)
	case modalNewFolder:
		dir := targetDir(target)
		p, err := a.ws.CreateFolder(dir, text)
		if err != nil {
			a.fail(err)
			return nil
		}
		a.expandTo(dir)
		a.selectPath(p)
	case modalRename:
		if err := a.ws.Rename(target.Dir, target.Name, text); err != nil {
			a.fail(err)
			return nil
		}
		to := target.Dir.Join(text)
		renameExpanded(a.expanded, target.Path(), to)
		a.selectPath(to)
	case modalMove:
		dest := tree.ParsePath(text)
		if err := a.ws.Move(target.Dir, target.Name, dest); err != nil {
			a.fail(err)
			return nil
		}
		to := dest.Join(target.Name)
		renameExpanded(a.expanded, target.Path(), to)
		a.expandTo(dest)
		a.selectPath(to)
	case modalUpload:
		return a.uploadCmd(text)
	}
	return nil
}

func (a *App) openFile(dir tree.Path, name string) tea.Cmd {
	if _, err := a.ws.OpenFile(dir, name); err != nil {
		if !errors.Is(err, tabs.ErrTabLimitExceeded) {
			a.fail(err)
		} else {
			a.status = "error: " + err.Error()
		}
		return nil
	}
	a.dirty = true
	a.selectPath(dir.Join(name))
	a.focus = focusEditor
	return a.surface.Focus()
}

// fail reports an error in the status line and the console.
func (a *App) fail(err error) {
	a.status = "error: " + err.Error()
	a.ws.Console().Error("%v", err)
}

// expandTo expands every folder on the way to dir.
func (a *App) expandTo(dir tree.Path) {
	for i := 1; i <= len(dir); i++ {
		a.expanded[dir[:i].String()] = true
	}
	a.dirty = true
}

// selectPath moves the cursor to p once rows are rebuilt.
func (a *App) selectPath(p tree.Path) {
	a.dirty = true
	a.syncRows()
	want := p.String()
	for i, r := range a.rows {
		if r.Key() == want {
			a.cursor = i
			return
		}
	}
}

// syncRows rebuilds the explorer after the tree or expansion state changed,
// keeping the cursor on the same entry where possible.
func (a *App) syncRows() {
	rev := a.ws.Revision()
	if !a.dirty && rev == a.seenRev {
		return
	}
	var keep string
	if cur := a.selected(); cur != nil {
		keep = cur.Key()
	}
	_ = a.ws.View(func(root *tree.Folder) error {
		a.rows = buildRows(root, a.expanded)
		return nil
	})
	a.seenRev, a.dirty = rev, false

	for i, r := range a.rows {
		if r.Key() == keep {
			a.cursor = i
			return
		}
	}
	if a.cursor >= len(a.rows) {
		a.cursor = max(0, len(a.rows)-1)
	}
}

func (a *App) layout() {
	editorWidth := max(10, a.width-explorerWidth-4)
	editorHeight := max(3, a.height-a.opts.ConsoleLines-7)
	a.surface.SetSize(editorWidth, editorHeight)
	a.help.Width = a.width
}

func (a *App) uploadCmd(path string) tea.Cmd {
	abs := path
	if strings.HasPrefix(abs, "~") {
		if h, err := os.UserHomeDir(); err == nil {
			abs = filepath.Join(h, strings.TrimPrefix(abs, "~"))
		}
	}
	if !filepath.IsAbs(abs) {
		if p, err := filepath.Abs(abs); err == nil {
			abs = p
		}
	}
	a.status = "uploading..."
	fs := a.opts.HostFs
	opts := hostfs.CollectOptions{ShowHidden: a.opts.ShowHidden, MaxFileSize: a.opts.MaxUploadBytes}
	return func() tea.Msg {
		files, err := hostfs.CollectDir(fs, abs, opts)
		if err != nil {
			return errMsg{fmt.Errorf("upload %s: %w", abs, err)}
		}
		res, err := a.ws.Upload(a.ctx, files)
		if err != nil {
			return errMsg{err}
		}
		return uploadDoneMsg{Result: res}
	}
}

func (a *App) exportFolderCmd(dir tree.Path) tea.Cmd {
	a.status = "archiving..."
	return func() tea.Msg {
		dest, err := a.ws.ExportFolder(a.ctx, dir)
		return exportDoneMsg{Dest: dest, Err: err}
	}
}

func (a *App) restoreSession() {
	if a.opts.Prefs == nil {
		return
	}
	sess, err := a.opts.Prefs.Load()
	if err != nil {
		a.ws.Console().Error("Could not restore session: %v", err)
		return
	}
	for _, k := range sess.Expanded {
		a.expanded[k] = true
	}
	for _, p := range sess.Tabs {
		dir, name := tree.ParsePath(p).Split()
		if name == "" {
			continue
		}
		_, _ = a.ws.OpenFile(dir, name)
	}
	for i, t := range a.ws.Tabs().Tabs() {
		if t.Bound() && t.File.String() == sess.Active {
			a.ws.Tabs().OpenTab(i)
		}
	}
}

func (a *App) saveLineNumbers() {
	if a.opts.Config == nil {
		return
	}
	a.opts.Config.Editor.LineNumbers = a.surface.LineNumbers()
	if err := config.Save(*a.opts.Config); err != nil {
		a.fail(fmt.Errorf("save config: %w", err))
	}
}

func (a *App) saveSession() {
	if a.opts.Prefs == nil {
		return
	}
	var sess prefs.Session
	if active := a.ws.Tabs().ActiveTab(); active.Bound() {
		sess.Active = active.File.String()
	}
	for k, open := range a.expanded {
		if open {
			sess.Expanded = append(sess.Expanded, k)
		}
	}
	sort.Strings(sess.Expanded)
	for _, t := range a.ws.Tabs().Tabs() {
		if t.Bound() {
			sess.Tabs = append(sess.Tabs, t.File.String())
		}
	}
	if err := a.opts.Prefs.Save(sess); err != nil {
		a.ws.Console().Error("Could not save session: %v", err)
	}
}

type errMsg struct{ error }

type uploadDoneMsg struct {
	Result workspace.UploadResult
}

type exportDoneMsg struct {
	Dest string
	Err  error
}

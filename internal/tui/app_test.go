package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/codepad/internal/archive"
	"github.com/jask/codepad/internal/codec"
	"github.com/jask/codepad/internal/config"
	"github.com/jask/codepad/internal/console"
	"github.com/jask/codepad/internal/editor"
	"github.com/jask/codepad/internal/hostfs"
	"github.com/jask/codepad/internal/prefs"
	"github.com/jask/codepad/internal/tabs"
	"github.com/jask/codepad/internal/tree"
	"github.com/jask/codepad/internal/workspace"
)

type memKV map[string]string

func (m memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memKV) Set(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

type harness struct {
	app  *App
	fs   afero.Fs
	kv   memKV
	opts Options
}

func newHarness(t *testing.T, kv memKV, fs afero.Fs) *harness {
	t.Helper()
	if kv == nil {
		kv = memKV{}
	}
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	ctx := context.Background()
	con := console.New()
	surface := editor.New()
	ws, err := workspace.New(ctx, workspace.Deps{
		Store:      tree.NewStore(nil),
		Tabs:       tabs.NewManager(surface, con, tabs.DefaultLimit),
		Console:    con,
		Persister:  codec.NewPersister(kv),
		Archiver:   archive.NewZipper(),
		Downloader: hostfs.NewDownloader(fs, "/downloads"),
	}, workspace.Config{DefaultExtension: ".lua"})
	require.NoError(t, err)

	opts := Options{HostFs: fs, Prefs: prefs.NewStore(fs, "/cfg/session.json")}
	app := New(ctx, ws, surface, opts)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &harness{app: app, fs: fs, kv: kv, opts: opts}
}

func (h *harness) press(keys ...string) tea.Cmd {
	var last tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "ctrl+t":
			msg = tea.KeyMsg{Type: tea.KeyCtrlT}
		case "ctrl+w":
			msg = tea.KeyMsg{Type: tea.KeyCtrlW}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		case "ctrl+l":
			msg = tea.KeyMsg{Type: tea.KeyCtrlL}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		case "ctrl+g":
			msg = tea.KeyMsg{Type: tea.KeyCtrlG}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "ctrl+x":
			msg = tea.KeyMsg{Type: tea.KeyCtrlX}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, last = h.app.Update(msg)
	}
	return last
}

// run executes cmd synchronously and feeds its message back.
func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		h.app.Update(msg)
	}
}

func (h *harness) keys() []string {
	out := make([]string, len(h.app.rows))
	for i, r := range h.app.rows {
		out[i] = r.Key()
	}
	return out
}

func TestInitialView(t *testing.T) {
	h := newHarness(t, nil, nil)
	assert.Equal(t, []string{"/", "Skibidi Folder"}, h.keys())
	view := h.app.View()
	assert.Contains(t, view, "Skibidi Folder")
	assert.Contains(t, view, "Tab 1")
	assert.Contains(t, view, "Editor initialized")
}

func TestCreateFolderAndFileThenEdit(t *testing.T) {
	h := newHarness(t, nil, nil)

	h.press("N", "src", "enter")
	require.Contains(t, h.keys(), "src")
	assert.Equal(t, "src", h.app.selected().Key())

	h.press("n", "main", "enter")
	assert.Equal(t, focusEditor, h.app.focus)
	assert.Equal(t, "src/main.lua", h.app.ws.Tabs().ActiveTab().File.String())
	assert.Contains(t, h.keys(), "src/main.lua")

	h.press("p", "r", "i", "n", "t")
	content, err := h.app.ws.Store().ReadFile(tree.Path{"src"}, "main.lua")
	require.NoError(t, err)
	assert.Equal(t, "print", content)

	saved, ok, err := codec.NewPersister(h.kv).Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	src, err := tree.Resolve(saved, tree.Path{"src"})
	require.NoError(t, err)
	n, _ := src.Child("main.lua")
	assert.Equal(t, "print", n.(*tree.File).Content())

	h.press("esc")
	assert.Equal(t, focusExplorer, h.app.focus)
}

func TestCreateCollisionReported(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.press("N", "Skibidi Folder", "enter")
	assert.Contains(t, h.app.status, "error:")
	tail := h.app.ws.Console().Tail(1)
	require.Len(t, tail, 1)
	assert.Equal(t, console.KindError, tail[0].Kind)
}

func TestEscapeCancelsInput(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.press("n", "abc", "esc")
	assert.Equal(t, modalNone, h.app.modal)
	assert.Equal(t, []string{"/", "Skibidi Folder"}, h.keys())
}

func TestRenameAndDelete(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.press("r")
	assert.Equal(t, modalNone, h.app.modal, "root cannot be renamed")

	h.press("down", "enter")
	require.Equal(t, []string{"/", "Skibidi Folder", "Skibidi Folder/main.lua"}, h.keys())

	h.press("down", "r")
	require.Equal(t, modalRename, h.app.modal)
	assert.Equal(t, "main.lua", h.app.inputBuffer)
	h.press("backspace", "backspace", "backspace", "py", "enter")
	assert.Equal(t, []string{"/", "Skibidi Folder", "Skibidi Folder/main.py"}, h.keys())

	h.press("d", "n")
	assert.Len(t, h.keys(), 3)
	h.press("d", "y")
	assert.Equal(t, []string{"/", "Skibidi Folder"}, h.keys())
}

func TestMoveIntoFolder(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.press("N", "dest", "enter")
	h.app.selectPath(tree.Path{"Skibidi Folder"})
	h.press("m")
	require.Equal(t, modalMove, h.app.modal)
	h.app.inputBuffer = ""
	h.press("/dest", "enter")
	assert.Contains(t, h.keys(), "dest/Skibidi Folder")
	assert.Equal(t, "dest/Skibidi Folder", h.app.selected().Key())
}

func TestTabLimitFromKeyboard(t *testing.T) {
	h := newHarness(t, nil, nil)
	for i := 0; i < 5; i++ {
		h.press("ctrl+t")
	}
	assert.Equal(t, 6, h.app.ws.Tabs().Len())
	h.press("ctrl+t")
	assert.Equal(t, 6, h.app.ws.Tabs().Len())
	assert.Contains(t, h.app.status, "tab limit")
	assert.NotContains(t, h.app.View(), "[+]")

	h.press("ctrl+w")
	assert.Equal(t, 5, h.app.ws.Tabs().Len())
}

func TestRunAndClearConsole(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.press("ctrl+r")
	assert.Equal(t, "Code executed successfully", h.app.ws.Console().Tail(1)[0].Message)
	h.press("ctrl+l")
	assert.Empty(t, h.app.ws.Console().Entries())
}

func TestSaveFolderAsZip(t *testing.T) {
	h := newHarness(t, nil, nil)
	cmd := h.press("down", "s")
	require.NotNil(t, cmd)
	h.run(cmd)
	assert.True(t, strings.HasPrefix(h.app.status, "saved "), h.app.status)
	exists, err := afero.Exists(h.fs, "/downloads/Skibidi Folder.zip")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUploadFromDisk(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/me/game", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/home/me/game/init.lua", []byte("x = 1"), 0o644))
	h := newHarness(t, nil, fs)

	h.press("u", "/home/me/game")
	cmd := h.press("enter")
	require.NotNil(t, cmd)
	h.run(cmd)
	assert.Contains(t, h.app.status, "uploaded 1 file(s) into game")
	assert.Contains(t, h.keys(), "game/init.lua")
}

func TestQuickOpen(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.press("/", "mai")
	require.Equal(t, modalQuickOpen, h.app.modal)
	require.NotEmpty(t, h.app.quick)
	h.press("enter")
	assert.Equal(t, "Skibidi Folder/main.lua", h.app.ws.Tabs().ActiveTab().File.String())
	assert.Equal(t, focusEditor, h.app.focus)
}

func TestSessionRestored(t *testing.T) {
	fs := afero.NewMemMapFs()
	kv := memKV{}
	h := newHarness(t, kv, fs)
	h.press("down", "enter", "down", "enter")
	require.Equal(t, "Skibidi Folder/main.lua", h.app.ws.Tabs().ActiveTab().File.String())
	h.press("ctrl+c")

	again := newHarness(t, kv, fs)
	assert.Equal(t, []string{"/", "Skibidi Folder", "Skibidi Folder/main.lua"}, again.keys())
	assert.Equal(t, "Skibidi Folder/main.lua", again.app.ws.Tabs().ActiveTab().File.String())
}

func TestClearEditorAndCheckpoint(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.press("down", "enter", "down", "enter")
	require.Equal(t, focusEditor, h.app.focus)

	h.press("ctrl+x")
	content, err := h.app.ws.Store().ReadFile(tree.Path{"Skibidi Folder"}, "main.lua")
	require.NoError(t, err)
	assert.Equal(t, "", content)

	h.press("ctrl+s")
	assert.Equal(t, "snapshot saved", h.app.status)
	assert.Equal(t, "Workspace saved", h.app.ws.Console().Tail(1)[0].Message)
}

func TestLineNumbersToggleIsSaved(t *testing.T) {
	t.Setenv("CODEPAD_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	cfg, err := config.Load()
	require.NoError(t, err)
	require.True(t, cfg.Editor.LineNumbers)

	h := newHarness(t, nil, nil)
	h.app.opts.Config = &cfg
	h.press("ctrl+g")
	assert.False(t, h.app.surface.LineNumbers())

	reloaded, err := config.Load()
	require.NoError(t, err)
	assert.False(t, reloaded.Editor.LineNumbers)
}

func TestDeletedFileTabShownDetached(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.press("down", "enter", "down", "enter", "esc")
	assert.NotContains(t, h.app.renderTabs(), "main.lua*")

	h.app.selectPath(tree.Path{"Skibidi Folder"})
	h.press("d", "y")
	assert.Equal(t, []string{"/"}, h.keys())
	assert.Contains(t, h.app.renderTabs(), "main.lua*")
}

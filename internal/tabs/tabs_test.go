package tabs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/codepad/internal/console"
	"github.com/jask/codepad/internal/tree"
)

type fakeSession struct {
	id   string
	text string
	fns  []func(string)
}

func (s *fakeSession) ID() string               { return s.id }
func (s *fakeSession) Value() string            { return s.text }
func (s *fakeSession) OnChange(fn func(string)) { s.fns = append(s.fns, fn) }
func (s *fakeSession) SetValue(text string) {
	if text == s.text {
		return
	}
	s.text = text
	for _, fn := range s.fns {
		fn(text)
	}
}

type fakeSurface struct {
	n     int
	shown Session
}

var _ Surface = (*fakeSurface)(nil)

func (f *fakeSurface) NewSession(text string) Session {
	f.n++
	return &fakeSession{id: fmt.Sprintf("s%d", f.n), text: text}
}

func (f *fakeSurface) Show(s Session) { f.shown = s }

func newTestManager(t *testing.T) (*Manager, *fakeSurface, *console.Console) {
	t.Helper()
	surf := &fakeSurface{}
	con := console.New()
	return NewManager(surf, con, DefaultLimit), surf, con
}

func lastMessage(c *console.Console) string {
	tail := c.Tail(1)
	if len(tail) == 0 {
		return ""
	}
	return tail[0].Message
}

func TestDefaultTab(t *testing.T) {
	m, surf, _ := newTestManager(t)
	require.Equal(t, 1, m.Len())
	tab := m.ActiveTab()
	assert.Equal(t, "Tab 1", tab.Name)
	assert.Equal(t, `print("Welcome to Tab 1")`, tab.Content)
	assert.False(t, tab.Bound())
	assert.Same(t, tab.Session, surf.shown)
	assert.Equal(t, "Tab 2", m.NextName())
}

func TestAddTabLimit(t *testing.T) {
	m, surf, con := newTestManager(t)
	for m.Len() < DefaultLimit {
		idx, err := m.AddTab(m.NextName())
		require.NoError(t, err)
		assert.Equal(t, idx, m.Active())
		assert.Same(t, m.ActiveTab().Session, surf.shown)
	}
	assert.Equal(t, `print("This is Tab 6")`, m.ActiveTab().Content)
	assert.Equal(t, "Opened tab: Tab 6", lastMessage(con))
	assert.True(t, m.Full())

	_, err := m.AddTab("Tab 7")
	require.ErrorIs(t, err, ErrTabLimitExceeded)
	assert.Equal(t, DefaultLimit, m.Len())
	assert.Equal(t, "Tab limit reached! You can only have up to 6 tabs.", lastMessage(con))
	assert.Equal(t, console.KindError, con.Tail(1)[0].Kind)
}

func TestOpenTabOutOfRange(t *testing.T) {
	m, _, con := newTestManager(t)
	before := len(con.Entries())
	m.OpenTab(5)
	m.OpenTab(-1)
	assert.Equal(t, 0, m.Active())
	assert.Len(t, con.Entries(), before)
}

func TestRemoveTab(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.RemoveTab(0)
	assert.Equal(t, 1, m.Len(), "last tab is kept")

	for i := 0; i < 3; i++ {
		_, err := m.AddTab(m.NextName())
		require.NoError(t, err)
	}
	m.RemoveTab(2)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 1, m.Active())

	m.RemoveTab(0)
	assert.Equal(t, 0, m.Active())
	m.RemoveTab(9)
	assert.Equal(t, 2, m.Len())
}

func TestBindFileAndEdits(t *testing.T) {
	m, surf, _ := newTestManager(t)
	var edits []Tab
	m.OnEdit = func(tab Tab) { edits = append(edits, tab) }

	path := tree.Path{"src", "main.lua"}
	idx, err := m.BindFile(path, "X")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Empty(t, edits, "binding does not echo back to the store")

	tab := m.ActiveTab()
	assert.Equal(t, "main.lua", tab.Name)
	assert.Equal(t, "X", tab.Content)
	assert.Equal(t, "X", tab.Session.Value())
	assert.True(t, tab.File.Equal(path))
	assert.Same(t, tab.Session, surf.shown)

	tab.Session.SetValue("Y")
	require.Len(t, edits, 1)
	assert.Equal(t, "Y", edits[0].Content)
	assert.Equal(t, "Y", m.ActiveTab().Content)

	m.OpenTab(0)
	again, err := m.BindFile(path, "Z")
	require.NoError(t, err)
	assert.Equal(t, idx, again)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "Z", m.ActiveTab().Content)

	other, err := m.BindFile(tree.Path{"lib", "main.lua"}, "other")
	require.NoError(t, err)
	assert.NotEqual(t, idx, other, "same name in another folder gets its own tab")
}

func TestBindFileReusesScratchTabByName(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.AddTab("a.lua")
	require.NoError(t, err)
	idx, err := m.BindFile(tree.Path{"a.lua"}, "body")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, m.Len())
}

func TestBindFileAtLimit(t *testing.T) {
	m, _, _ := newTestManager(t)
	for m.Len() < DefaultLimit {
		_, err := m.AddTab(m.NextName())
		require.NoError(t, err)
	}
	_, err := m.BindFile(tree.Path{"x.lua"}, "")
	require.ErrorIs(t, err, ErrTabLimitExceeded)
}

func TestRebindAndUnbind(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.BindFile(tree.Path{"F", "a.lua"}, "a")
	require.NoError(t, err)
	_, err = m.BindFile(tree.Path{"F", "sub", "c.lua"}, "c")
	require.NoError(t, err)

	assert.Equal(t, 1, m.Rebind(tree.Path{"F", "a.lua"}, tree.Path{"F", "b.lua"}))
	tabs := m.Tabs()
	assert.Equal(t, "b.lua", tabs[1].Name)
	assert.Equal(t, "F/b.lua", tabs[1].File.String())

	assert.Equal(t, 2, m.Rebind(tree.Path{"F"}, tree.Path{"G"}))
	assert.Equal(t, "G/sub/c.lua", m.Tabs()[2].File.String())

	assert.Equal(t, 1, m.Unbind(tree.Path{"G", "sub"}))
	tabs = m.Tabs()
	assert.False(t, tabs[2].Bound())
	assert.Equal(t, "c", tabs[2].Content, "unbound tab keeps its text")
	assert.True(t, tabs[1].Bound())
}

func TestNextPrev(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, _ = m.AddTab("Tab 2")
	_, _ = m.AddTab("Tab 3")
	m.Next()
	assert.Equal(t, 0, m.Active())
	m.Prev()
	assert.Equal(t, 2, m.Active())
	m.CloseActive()
	assert.Equal(t, 1, m.Active())
	assert.Equal(t, 2, m.Len())
}

func TestUnbindMarksTabDetached(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.BindFile(tree.Path{"src", "Makefile"}, "all:")
	require.NoError(t, err)
	_, err = m.AddTab("notes.txt")
	require.NoError(t, err)

	m.Unbind(tree.Path{"src"})
	tabs := m.Tabs()
	assert.False(t, tabs[0].Detached, "scratch tab")
	assert.True(t, tabs[1].Detached, "names without a dot are detached too")
	assert.False(t, tabs[2].Detached, "dotted scratch name is not detached")

	idx, err := m.BindFile(tree.Path{"src", "Makefile"}, "all:")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.False(t, m.Tabs()[1].Detached)
	assert.True(t, m.Tabs()[1].Bound())
}

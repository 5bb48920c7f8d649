// Package tabs manages the bounded list of editor tabs and their binding to
// files in the tree.
//
// A Manager is owned by the UI goroutine and is not safe for concurrent use.
package tabs

import (
	"errors"
	"fmt"

	"github.com/jask/codepad/internal/tree"
)

// DefaultLimit is the maximum number of open tabs.
const DefaultLimit = 6

var ErrTabLimitExceeded = errors.New("tab limit exceeded")

// Session is one editable text buffer.
type Session interface {
	ID() string
	Value() string
	SetValue(text string)
	OnChange(fn func(text string))
}

// Surface creates sessions and displays one of them at a time.
type Surface interface {
	NewSession(text string) Session
	Show(s Session)
}

// Logger receives user facing messages.
type Logger interface {
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Tab is a snapshot of one open tab.
type Tab struct {
	Name    string
	Content string
	Session Session
	// File is the bound file's full path, nil for scratch tabs.
	File tree.Path
	// Detached is set when the bound file went away and the tab kept its text.
	Detached bool
}

func (t Tab) Bound() bool { return t.File != nil }

type Manager struct {
	surface Surface
	log     Logger
	limit   int
	tabs    []*Tab
	active  int
	syncing bool

	// OnEdit is called with the edited tab after its cached content changed
	// through the session.
	OnEdit func(Tab)
}

// NewManager opens the default first tab.
func NewManager(surface Surface, log Logger, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m := &Manager{surface: surface, log: log, limit: limit}
	m.tabs = append(m.tabs, m.newTab("Tab 1", `print("Welcome to Tab 1")`))
	surface.Show(m.tabs[0].Session)
	return m
}

func (m *Manager) newTab(name, content string) *Tab {
	t := &Tab{Name: name, Content: content, Session: m.surface.NewSession(content)}
	t.Session.OnChange(func(text string) {
		t.Content = text
		if m.syncing || m.OnEdit == nil {
			return
		}
		m.OnEdit(*t)
	})
	return t
}

// AddTab appends a placeholder tab and activates it.
func (m *Manager) AddTab(name string) (int, error) {
	idx, err := m.addTab(name)
	if err != nil {
		return -1, err
	}
	m.OpenTab(idx)
	return idx, nil
}

func (m *Manager) addTab(name string) (int, error) {
	if len(m.tabs) >= m.limit {
		m.log.Error("Tab limit reached! You can only have up to %d tabs.", m.limit)
		return -1, fmt.Errorf("%w: %d open", ErrTabLimitExceeded, len(m.tabs))
	}
	m.tabs = append(m.tabs, m.newTab(name, fmt.Sprintf("print(%q)", "This is "+name)))
	return len(m.tabs) - 1, nil
}

// OpenTab activates the tab at index. Out of range indexes are ignored.
func (m *Manager) OpenTab(index int) {
	if index < 0 || index >= len(m.tabs) {
		return
	}
	m.active = index
	t := m.tabs[index]
	m.surface.Show(t.Session)
	m.log.Info("Opened tab: %s", t.Name)
}

// RemoveTab closes the tab at index unless it is the last one.
func (m *Manager) RemoveTab(index int) {
	if len(m.tabs) <= 1 || index < 0 || index >= len(m.tabs) {
		return
	}
	m.tabs = append(m.tabs[:index], m.tabs[index+1:]...)
	m.OpenTab(max(0, index-1))
}

// BindFile shows the file at path with content in a tab. A tab already bound
// to path is reused, then a scratch tab with the file's name; otherwise a new
// tab is added.
func (m *Manager) BindFile(path tree.Path, content string) (int, error) {
	idx := m.indexOf(path)
	if idx < 0 {
		name := path.Base()
		for i, t := range m.tabs {
			if !t.Bound() && t.Name == name {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		var err error
		if idx, err = m.addTab(path.Base()); err != nil {
			return -1, err
		}
	}

	t := m.tabs[idx]
	t.File = path.Clone()
	t.Detached = false
	t.Name = path.Base()
	m.syncing = true
	t.Session.SetValue(content)
	m.syncing = false
	t.Content = content
	m.OpenTab(idx)
	return idx, nil
}

func (m *Manager) indexOf(path tree.Path) int {
	for i, t := range m.tabs {
		if t.Bound() && t.File.Equal(path) {
			return i
		}
	}
	return -1
}

// Rebind moves every tab bound at or below from to the same place below to.
// It returns the number of tabs changed.
func (m *Manager) Rebind(from, to tree.Path) int {
	n := 0
	for _, t := range m.tabs {
		if !t.Bound() {
			continue
		}
		if p, ok := t.File.Rebase(from, to); ok {
			t.File = p
			t.Name = p.Base()
			n++
		}
	}
	return n
}

// Unbind turns tabs bound at or below path into scratch tabs that keep their
// text.
func (m *Manager) Unbind(path tree.Path) int {
	n := 0
	for _, t := range m.tabs {
		if t.Bound() && t.File.HasPrefix(path) {
			t.File = nil
			t.Detached = true
			n++
		}
	}
	return n
}

// Tabs returns copies of all tabs in order.
func (m *Manager) Tabs() []Tab {
	out := make([]Tab, len(m.tabs))
	for i, t := range m.tabs {
		out[i] = *t
	}
	return out
}

func (m *Manager) Active() int      { return m.active }
func (m *Manager) ActiveTab() Tab   { return *m.tabs[m.active] }
func (m *Manager) Len() int         { return len(m.tabs) }
func (m *Manager) Limit() int       { return m.limit }
func (m *Manager) NextName() string { return fmt.Sprintf("Tab %d", len(m.tabs)+1) }
func (m *Manager) Full() bool       { return len(m.tabs) >= m.limit }
func (m *Manager) Next()            { m.OpenTab((m.active + 1) % len(m.tabs)) }
func (m *Manager) Prev()            { m.OpenTab((m.active + len(m.tabs) - 1) % len(m.tabs)) }
func (m *Manager) CloseActive()     { m.RemoveTab(m.active) }

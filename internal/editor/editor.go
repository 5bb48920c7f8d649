// Package editor provides the editing surface: text sessions shown one at a
// time in a bubbles textarea.
package editor

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/codepad/internal/tabs"
)

// Session is a text buffer with change listeners. Listeners fire only when
// the text actually changes.
type Session struct {
	id        string
	text      string
	listeners []func(string)
	surface   *Surface
}

var _ tabs.Session = (*Session)(nil)

func (s *Session) ID() string    { return s.id }
func (s *Session) Value() string { return s.text }

func (s *Session) OnChange(fn func(string)) {
	s.listeners = append(s.listeners, fn)
}

// SetValue replaces the text. If the session is on screen the textarea is
// updated too.
func (s *Session) SetValue(text string) {
	if text == s.text {
		return
	}
	if s.surface != nil && s.surface.current == s {
		s.surface.load(text)
	}
	s.changed(text)
}

func (s *Session) changed(text string) {
	s.text = text
	for _, fn := range s.listeners {
		fn(text)
	}
}

// Surface owns the textarea and the session currently shown in it.
type Surface struct {
	area    textarea.Model
	current *Session
	// loaded is the textarea value right after the last load. The textarea
	// rewrites tabs and carriage returns, so it can differ from the session
	// text without any edit.
	loaded string
}

var _ tabs.Surface = (*Surface)(nil)

func New() *Surface {
	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = true
	ta.Placeholder = "-- start typing"
	return &Surface{area: ta}
}

// NewSession creates a session bound to this surface.
func (s *Surface) NewSession(text string) tabs.Session {
	return &Session{id: uuid.NewString(), text: text, surface: s}
}

// Show puts sess in the textarea. Sessions created by another surface are
// shown by value only.
func (s *Surface) Show(sess tabs.Session) {
	own, ok := sess.(*Session)
	if ok && own.surface == s {
		s.current = own
	} else {
		s.current = nil
	}
	s.load(sess.Value())
}

func (s *Surface) load(text string) {
	s.area.SetValue(text)
	s.loaded = s.area.Value()
}

// Update forwards msg to the textarea and reports edits to the current
// session. Cursor moves and blinks never count as edits.
func (s *Surface) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.area, cmd = s.area.Update(msg)
	v := s.area.Value()
	if v == s.loaded {
		return cmd
	}
	s.loaded = v
	if s.current != nil {
		s.current.changed(v)
	}
	return cmd
}

func (s *Surface) View() string { return s.area.View() }

func (s *Surface) SetSize(width, height int) {
	s.area.SetWidth(width)
	s.area.SetHeight(height)
}

func (s *Surface) Focus() tea.Cmd { return s.area.Focus() }
func (s *Surface) Blur()          { s.area.Blur() }
func (s *Surface) Focused() bool  { return s.area.Focused() }

// Text returns the text of the shown session.
func (s *Surface) Text() string { return s.area.Value() }

// ClearText empties the shown session.
func (s *Surface) ClearText() {
	if s.current != nil {
		s.current.SetValue("")
		return
	}
	s.area.Reset()
}

func (s *Surface) ToggleLineNumbers() {
	s.area.ShowLineNumbers = !s.area.ShowLineNumbers
}

func (s *Surface) LineNumbers() bool { return s.area.ShowLineNumbers }

// Cursor returns the 1-based line and column of the cursor.
func (s *Surface) Cursor() (line, col int) {
	info := s.area.LineInfo()
	return s.area.Line() + 1, info.CharOffset + 1
}

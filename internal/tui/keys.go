package tui

import "github.com/charmbracelet/bubbles/key"

type globalKeys struct {
	Quit        key.Binding
	Focus       key.Binding
	AddTab      key.Binding
	CloseTab    key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Run         key.Binding
	ClearLog    key.Binding
	LineNumbers key.Binding
	Reload      key.Binding
	ClearEditor key.Binding
	Checkpoint  key.Binding
}

type explorerKeys struct {
	globalKeys
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Collapse  key.Binding
	Expand    key.Binding
	NewFile   key.Binding
	NewFolder key.Binding
	Rename    key.Binding
	Delete    key.Binding
	Save      key.Binding
	Move      key.Binding
	Upload    key.Binding
	Find      key.Binding
	Quit      key.Binding
}

type editorKeys struct {
	globalKeys
	Leave key.Binding
}

type keyMap struct {
	global   globalKeys
	explorer explorerKeys
	editor   editorKeys
}

func newKeyMap() keyMap {
	g := globalKeys{
		Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Focus:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		AddTab:      key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "new tab")),
		CloseTab:    key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "close tab")),
		NextTab:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next tab")),
		PrevTab:     key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "prev tab")),
		Run:         key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "run")),
		ClearLog:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear console")),
		LineNumbers: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "line numbers")),
		Reload:      key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "reload saved")),
		ClearEditor: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear editor")),
		Checkpoint:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save snapshot")),
	}
	return keyMap{
		global: g,
		explorer: explorerKeys{
			globalKeys: g,
			Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/toggle")),
			Collapse:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
			Expand:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
			NewFile:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new file")),
			NewFolder:  key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new folder")),
			Rename:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
			Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
			Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to disk")),
			Move:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
			Upload:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload dir")),
			Find:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "quick open")),
			Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		},
		editor: editorKeys{
			globalKeys: g,
			Leave:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "explorer")),
		},
	}
}

func (k explorerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.NewFile, k.NewFolder, k.Rename, k.Delete, k.Save, k.Move, k.Upload, k.Find, k.Focus, k.Quit}
}

func (k explorerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.ShortHelp(),
		{k.Up, k.Down, k.Collapse, k.Expand},
		{k.AddTab, k.CloseTab, k.NextTab, k.PrevTab, k.Run, k.ClearLog, k.ClearEditor, k.LineNumbers, k.Checkpoint, k.Reload},
	}
}

func (k editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Leave, k.AddTab, k.CloseTab, k.NextTab, k.Run, k.ClearLog, k.Quit}
}

func (k editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.PrevTab, k.ClearEditor, k.LineNumbers, k.Checkpoint, k.Reload, k.Focus}}
}

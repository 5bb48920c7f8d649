package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/codepad/internal/console"
	"github.com/jask/codepad/internal/tree"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	focusPaneStyle = paneStyle.BorderForeground(lipgloss.Color("63"))
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	folderStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Background(lipgloss.Color("63")).Foreground(lipgloss.Color("231"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	consoleStyles = map[console.Kind]lipgloss.Style{
		console.KindNormal:  lipgloss.NewStyle(),
		console.KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		console.KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		console.KindError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

func (a *App) View() string {
	left := a.renderExplorer()
	right := lipgloss.JoinVertical(lipgloss.Left,
		a.renderTabs(),
		a.renderEditor(),
		a.renderConsole(),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderFooter())
}

func (a *App) renderExplorer() string {
	lines := []string{titleStyle.Render("Explorer")}
	for i, r := range a.rows {
		indent := strings.Repeat("  ", r.Depth)
		label := plainLabel(r, a.expanded[r.Key()])
		switch {
		case i == a.cursor && a.focus == focusExplorer:
			label = selectedStyle.Render(label)
		case r.Kind == tree.KindFolder:
			label = folderStyle.Render(label)
		}
		lines = append(lines, indent+label)
	}
	if len(a.rows) == 1 {
		lines = append(lines, dimStyle.Render("  (empty) n: new file"))
	}

	style := paneStyle
	if a.focus == focusExplorer {
		style = focusPaneStyle
	}
	height := max(1, a.height-4)
	return style.Width(explorerWidth).Height(height).Render(strings.Join(lines, "\n"))
}

func plainLabel(r row, open bool) string {
	if r.Root {
		return "/ " + r.Name
	}
	if r.Kind != tree.KindFolder {
		return "  " + r.Name
	}
	if open {
		return "▾ " + r.Name
	}
	return "▸ " + r.Name
}

func (a *App) renderTabs() string {
	mgr := a.ws.Tabs()
	parts := make([]string, 0, mgr.Len()+1)
	for i, t := range mgr.Tabs() {
		name := t.Name
		if t.Detached {
			name += "*"
		}
		if i == mgr.Active() {
			parts = append(parts, activeTabStyle.Render(name))
		} else {
			parts = append(parts, tabStyle.Render(name))
		}
	}
	if !mgr.Full() {
		parts = append(parts, dimStyle.Render("[+]"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderEditor() string {
	style := paneStyle
	if a.focus == focusEditor {
		style = focusPaneStyle
	}
	line, col := a.surface.Cursor()
	lines := strings.Count(a.surface.Text(), "\n") + 1
	text := fmt.Sprintf("Ln %d, Col %d  %d lines", line, col, lines)
	if a.opts.Language != "" {
		text += "  " + a.opts.Language
	}
	info := dimStyle.Render(text)
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, a.surface.View(), info))
}

func (a *App) renderConsole() string {
	lines := []string{titleStyle.Render("Console")}
	for _, e := range a.ws.Console().Tail(a.opts.ConsoleLines) {
		style, ok := consoleStyles[e.Kind]
		if !ok {
			style = consoleStyles[console.KindNormal]
		}
		lines = append(lines, style.Render(e.String()))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderFooter() string {
	if a.modal != modalNone {
		return a.renderModal()
	}
	var out []string
	if a.status != "" {
		out = append(out, statusStyle.Render(a.status))
	}
	if a.focus == focusEditor {
		out = append(out, a.help.View(a.keys.editor))
	} else {
		out = append(out, a.help.View(a.keys.explorer))
	}
	return strings.Join(out, "\n")
}

func (a *App) renderModal() string {
	var where string
	if a.target != nil {
		where = a.target.Key()
	}
	switch a.modal {
	case modalNewFile:
		return titleStyle.Render("New file in /"+strings.TrimPrefix(targetDir(a.target).String(), "/")) +
			fmt.Sprintf("\n%s\n[enter] Create  [esc] Cancel", a.inputBuffer)
	case modalNewFolder:
		return titleStyle.Render("New folder in /"+strings.TrimPrefix(targetDir(a.target).String(), "/")) +
			fmt.Sprintf("\n%s\n[enter] Create  [esc] Cancel", a.inputBuffer)
	case modalRename:
		return titleStyle.Render("Rename "+where) + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalMove:
		return titleStyle.Render("Move "+where+" to folder") + fmt.Sprintf("\n%s\n[enter] Move  [esc] Cancel", a.inputBuffer)
	case modalUpload:
		return titleStyle.Render("Upload directory from disk") + fmt.Sprintf("\n%s\n[enter] Upload  [esc] Cancel", a.inputBuffer)
	case modalConfirmDelete:
		return titleStyle.Render("Delete "+where+"?") + "\n[y] Yes  [n] No"
	case modalQuickOpen:
		lines := []string{titleStyle.Render("Open file"), "> " + a.inputBuffer}
		for i, ref := range a.quick {
			line := ref.Path.String()
			if i == a.quickCursor {
				line = selectedStyle.Render(line)
			}
			lines = append(lines, line)
		}
		lines = append(lines, "[enter] Open  [↑/↓] Select  [esc] Cancel")
		return strings.Join(lines, "\n")
	}
	return ""
}

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"macsim/apps"
	"macsim/model"
)

// routeKey hands a key to the app hosted in the active window.
func (m *Model) routeKey(windowID string, msg tea.KeyMsg) tea.Cmd {
	v := m.view(windowID)
	var cmd tea.Cmd
	switch a := m.sh.App(windowID).(type) {
	case *apps.Finder:
		m.finderKey(a, v, msg)
	case *apps.Terminal:
		terminalKey(a, v, msg)
	case *apps.CodeEditor:
		codeKey(a, v, msg)
	case *apps.MarkdownEditor:
		m.markdownKey(a, msg)
	case *apps.ChatSession:
		cmd = chatKey(a, v, windowID, msg)
	}
	m.sh.SyncTitle(windowID)
	return cmd
}

// editText applies a typing key to s and reports whether it was one.
func editText(s string, msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		return s + string(msg.Runes), true
	case tea.KeySpace:
		return s + " ", true
	case tea.KeyBackspace, tea.KeyCtrlH:
		return trimLastRune(s), true
	}
	return s, false
}

func (m *Model) finderKey(f *apps.Finder, v *windowView, msg tea.KeyMsg) {
	items := f.Items()
	current := func() (model.Node, bool) {
		if len(items) == 0 {
			return model.Node{}, false
		}
		return items[clamp(v.cursor, 0, len(items)-1)], true
	}
	switch msg.String() {
	case "up":
		v.cursor = max(0, v.cursor-1)
		return
	case "down":
		v.cursor = clamp(v.cursor+1, 0, max(0, len(items)-1))
		return
	case "left", "alt+left":
		f.Back()
		v.cursor = 0
		return
	case "right", "alt+right":
		f.Forward()
		v.cursor = 0
		return
	case "enter":
		if n, ok := current(); ok {
			f.Open(n.ID)
			if n.IsFolder() {
				v.cursor = 0
			}
		}
		return
	case " ":
		if n, ok := current(); ok {
			f.Select(n.ID, true)
		}
		return
	case "delete", "ctrl+x":
		if n := f.DeleteSelected(); n > 0 {
			m.setStatus(fmt.Sprintf("Deleted %d item(s), ctrl+z to undo", n), false)
		}
		return
	case "ctrl+z":
		if !f.Undo() {
			m.setStatus("Nothing to undo", true)
		}
		return
	case "ctrl+d":
		f.NewFolder()
		return
	case "ctrl+v":
		if f.ViewMode() == apps.ViewGrid {
			f.SetViewMode(apps.ViewList)
		} else {
			f.SetViewMode(apps.ViewGrid)
		}
		return
	case "backspace":
		if f.Query() == "" {
			f.Up()
			v.cursor = 0
			return
		}
	}
	if q, ok := editText(f.Query(), msg); ok && msg.Type != tea.KeySpace {
		f.SetQuery(q)
		v.cursor = 0
	}
}

func terminalKey(t *apps.Terminal, v *windowView, msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		t.Submit(v.input)
		v.input = ""
	case tea.KeyUp:
		v.input = t.PrevCommand()
	case tea.KeyDown:
		v.input = t.NextCommand()
	default:
		v.input, _ = editText(v.input, msg)
	}
}

func codeKey(e *apps.CodeEditor, v *windowView, msg tea.KeyMsg) {
	if msg.String() == "ctrl+e" {
		if v.focus == focusTree {
			v.focus = focusEditor
		} else {
			v.focus = focusTree
		}
		return
	}
	if v.focus == focusTree {
		rows := e.Tree()
		switch msg.Type {
		case tea.KeyUp:
			v.cursor = max(0, v.cursor-1)
		case tea.KeyDown:
			v.cursor = clamp(v.cursor+1, 0, max(0, len(rows)-1))
		case tea.KeyEnter, tea.KeySpace:
			if len(rows) > 0 {
				row := rows[clamp(v.cursor, 0, len(rows)-1)]
				e.Click(row.Node.ID)
				if row.Node.IsFile() {
					v.focus = focusEditor
				}
			}
		}
		return
	}
	n, ok := e.Active()
	if !ok {
		return
	}
	content := n.Content
	switch msg.Type {
	case tea.KeyEnter:
		content += "\n"
	case tea.KeyTab:
		content += "  "
	default:
		var typed bool
		if content, typed = editText(content, msg); !typed {
			return
		}
	}
	e.SetContent(content)
}

func (m *Model) markdownKey(md *apps.MarkdownEditor, msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+p":
		md.ToggleMode()
		return
	case "ctrl+t":
		next := map[apps.Theme]apps.Theme{
			apps.ThemeGitHub:    apps.ThemeNight,
			apps.ThemeNight:     apps.ThemeNewsprint,
			apps.ThemeNewsprint: apps.ThemeGitHub,
		}
		md.SetTheme(next[md.Theme()])
		return
	case "ctrl+b":
		md.ToggleSidebar()
		return
	case "ctrl+s":
		if md.FileID() == "" {
			md.CreateFile()
			m.setStatus("Saved Untitled.md to Desktop", false)
			return
		}
		md.Flush()
		m.setStatus("Saved "+md.Title(), false)
		return
	case "ctrl+o":
		name, content := md.Export()
		path := filepath.Join(".", filepath.Base(name))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			m.setStatus("Export failed: "+err.Error(), true)
			return
		}
		m.setStatus("Exported "+path, false)
		return
	case "ctrl+y":
		if err := copyToClipboard(md.Content()); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		m.setStatus("Copied document", false)
		return
	}
	if md.Mode() != apps.ModeEdit {
		return
	}
	content := md.Content()
	switch msg.Type {
	case tea.KeyEnter:
		md.SetContent(content + "\n")
	case tea.KeyTab:
		md.SetContent(content + "  ")
	default:
		if next, ok := editText(content, msg); ok {
			md.SetContent(next)
		}
	}
}

func chatKey(s *apps.ChatSession, v *windowView, windowID string, msg tea.KeyMsg) tea.Cmd {
	if msg.Type != tea.KeyEnter {
		v.input, _ = editText(v.input, msg)
		return nil
	}
	text := strings.TrimSpace(v.input)
	if text == "" || s.Busy() {
		return nil
	}
	v.input = ""
	return func() tea.Msg {
		_, err := s.Send(context.Background(), text)
		return chatReplyMsg{windowID: windowID, err: err}
	}
}

// clickContent handles a press inside a window's content area.
func (m *Model) clickContent(w model.Window, area rect, x, y int) {
	v := m.view(w.ID)
	switch a := m.sh.App(w.ID).(type) {
	case *apps.Finder:
		m.clickFinder(a, v, area, x, y)
	case *apps.CodeEditor:
		tw := min(treeW, area.width()/2)
		if x >= area.x0+tw {
			v.focus = focusEditor
			return
		}
		v.focus = focusTree
		rows := a.Tree()
		if i := y - area.y0 - 1; i >= 0 && i < len(rows) {
			v.cursor = i
			a.Click(rows[i].Node.ID)
			if rows[i].Node.IsFile() {
				v.focus = focusEditor
			}
		}
	case *apps.MarkdownEditor:
		if a.SidebarOpen() && area.width() > 40 && x < area.x0+outlineW {
			// The outline jumps back to the source.
			if a.Mode() == apps.ModePreview {
				a.ToggleMode()
			}
		}
	}
	m.sh.SyncTitle(w.ID)
}

func (m *Model) clickFinder(f *apps.Finder, v *windowView, area rect, x, y int) {
	if y == area.y0 {
		switch x - area.x0 {
		case 1:
			f.Back()
		case 3:
			f.Forward()
		case 5:
			f.Up()
		default:
			if x >= area.x1-5 {
				m.finderKey(f, v, tea.KeyMsg{Type: tea.KeyCtrlV})
			}
			return
		}
		v.cursor = 0
		return
	}
	if area.width() > 40 && x < area.x0+sidebarW {
		if i := y - area.y0 - 3; i >= 0 && i < len(f.Sidebar()) {
			f.Navigate(f.Sidebar()[i].ID)
			v.cursor = 0
		}
		return
	}
	items := f.Items()
	for i, r := range finderRows(area, f.ViewMode(), len(items)) {
		if !r.contains(x, y) {
			continue
		}
		v.cursor = i
		id := items[i].ID
		if m.isDoubleClick(id) {
			f.Open(id)
			if items[i].IsFolder() {
				v.cursor = 0
			}
			return
		}
		f.Select(id, false)
		return
	}
	f.ClearSelection()
}

package apps

import (
	"sort"
	"strings"

	"macsim/model"
)

// ViewMode is how Finder lays out the current folder.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// SidebarItem is a Favorites or Locations shortcut.
type SidebarItem struct {
	Label string
	ID    string
}

var sidebar = []SidebarItem{
	{Label: "Downloads", ID: model.DownloadsID},
	{Label: "Desktop", ID: model.DesktopID},
	{Label: "Documents", ID: model.DocumentsID},
	{Label: "Macintosh HD", ID: model.RootID},
}

// Finder is the file browser's view state.
type Finder struct {
	fs       FileSystem
	open     Opener
	current  string
	history  []string
	index    int
	view     ViewMode
	query    string
	selected map[string]bool
}

// NewFinder starts at start when it is a folder, otherwise at the desktop.
func NewFinder(fs FileSystem, start string, open Opener) *Finder {
	if n, ok := fs.GetItem(start); !ok || !n.IsFolder() {
		start = model.DesktopID
	}
	return &Finder{
		fs:       fs,
		open:     open,
		current:  start,
		history:  []string{start},
		view:     ViewGrid,
		selected: make(map[string]bool),
	}
}

func (f *Finder) Current() string { return f.current }

// Title is the name of the current folder.
func (f *Finder) Title() string {
	if n, ok := f.fs.GetItem(f.current); ok {
		return n.Name
	}
	return "Finder"
}

// Items lists the current folder filtered by the search query.
func (f *Finder) Items() []model.Node {
	children := f.fs.GetChildren(f.current)
	if f.query == "" {
		return children
	}
	q := strings.ToLower(f.query)
	out := children[:0]
	for _, c := range children {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// Navigate opens folder id, dropping any forward history.
func (f *Finder) Navigate(id string) {
	if id == f.current {
		return
	}
	f.history = append(f.history[:f.index+1:f.index+1], id)
	f.index = len(f.history) - 1
	f.current = id
	f.ClearSelection()
}

func (f *Finder) CanBack() bool { return f.index > 0 }
func (f *Finder) CanForward() bool { return f.index < len(f.history)-1 }

func (f *Finder) Back() {
	if f.CanBack() {
		f.index--
		f.current = f.history[f.index]
	}
}

func (f *Finder) Forward() {
	if f.CanForward() {
		f.index++
		f.current = f.history[f.index]
	}
}

// Up navigates to the parent folder.
func (f *Finder) Up() {
	if n, ok := f.fs.GetItem(f.current); ok && !n.IsRoot() {
		f.Navigate(n.ParentID)
	}
}

func (f *Finder) Sidebar() []SidebarItem {
	out := make([]SidebarItem, len(sidebar))
	copy(out, sidebar)
	return out
}

// Breadcrumbs is the path from the root to the current folder.
func (f *Finder) Breadcrumbs() []model.Node {
	return f.fs.GetPath(f.current)
}

func (f *Finder) Query() string { return f.query }
func (f *Finder) SetQuery(q string) { f.query = q }
func (f *Finder) ViewMode() ViewMode { return f.view }
func (f *Finder) SetViewMode(v ViewMode) {
	if v == ViewGrid || v == ViewList {
		f.view = v
	}
}

// Select picks id. With toggle it is added to or removed from the selection,
// otherwise it replaces it.
func (f *Finder) Select(id string, toggle bool) {
	if !toggle {
		f.selected = map[string]bool{id: true}
		return
	}
	if f.selected[id] {
		delete(f.selected, id)
	} else {
		f.selected[id] = true
	}
}

func (f *Finder) IsSelected(id string) bool { return f.selected[id] }

// Selected returns the selected ids in display order.
func (f *Finder) Selected() []string {
	var out []string
	for _, c := range f.fs.GetChildren(f.current) {
		if f.selected[c.ID] {
			out = append(out, c.ID)
		}
	}
	// Stale selections from another folder keep a stable order too.
	var rest []string
	for id := range f.selected {
		if !contains(out, id) {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func (f *Finder) ClearSelection() {
	f.selected = make(map[string]bool)
}

// Open handles a double-click: folders navigate in place, files go through
// the opener.
func (f *Finder) Open(id string) {
	n, ok := f.fs.GetItem(id)
	if !ok {
		return
	}
	if n.IsFolder() {
		f.Navigate(id)
		return
	}
	if f.open != nil {
		f.open(OpenRequestFor(n))
	}
}

// DeleteSelected removes every selected item and returns how many there were.
func (f *Finder) DeleteSelected() int {
	ids := f.Selected()
	for _, id := range ids {
		f.fs.DeleteItem(id)
	}
	f.ClearSelection()
	return len(ids)
}

// NewFolder creates "untitled folder" in the current folder.
func (f *Finder) NewFolder() string {
	return f.fs.CreateItem("untitled folder", model.KindFolder, f.current, "")
}

// Undo reverts the last structural change to the file system.
func (f *Finder) Undo() bool {
	return f.fs.Undo()
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package apps

import "macsim/model"

// TreeRow is one visible line of the explorer tree.
type TreeRow struct {
	Node     model.Node
	Depth    int
	Expanded bool
}

// CodeEditor is the VS Code look-alike: an explorer tree over the whole file
// system and one active file.
type CodeEditor struct {
	fs       FileSystem
	active   string
	expanded map[string]bool
}

func NewCodeEditor(fs FileSystem, fileID string) *CodeEditor {
	return &CodeEditor{
		fs:       fs,
		active:   fileID,
		expanded: map[string]bool{model.RootID: true, model.DesktopID: true},
	}
}

// Title is shown in the editor's own title strip and the window title.
func (c *CodeEditor) Title() string {
	if n, ok := c.Active(); ok {
		return n.Name + " - macOS Web"
	}
	return "Visual Studio Code - macOS Web"
}

// Active returns the open file, if it still exists.
func (c *CodeEditor) Active() (model.Node, bool) {
	if c.active == "" {
		return model.Node{}, false
	}
	n, ok := c.fs.GetItem(c.active)
	if !ok || !n.IsFile() {
		return model.Node{}, false
	}
	return n, true
}

// Tree flattens the expanded part of the file system, starting below the root.
func (c *CodeEditor) Tree() []TreeRow {
	var rows []TreeRow
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, n := range c.fs.GetChildren(parent) {
			open := n.IsFolder() && c.expanded[n.ID]
			rows = append(rows, TreeRow{Node: n, Depth: depth, Expanded: open})
			if open {
				walk(n.ID, depth+1)
			}
		}
	}
	walk(model.RootID, 0)
	return rows
}

// Click acts like a click in the explorer: folders toggle, files open.
func (c *CodeEditor) Click(id string) {
	n, ok := c.fs.GetItem(id)
	if !ok {
		return
	}
	if n.IsFolder() {
		c.Toggle(id)
		return
	}
	c.active = id
}

func (c *CodeEditor) Toggle(id string) {
	c.expanded[id] = !c.expanded[id]
}

// Select opens a file; folders are ignored.
func (c *CodeEditor) Select(id string) {
	if n, ok := c.fs.GetItem(id); ok && n.IsFile() {
		c.active = id
	}
}

// SetContent writes the buffer straight through to the file.
func (c *CodeEditor) SetContent(content string) {
	if c.active != "" {
		c.fs.UpdateFileContent(c.active, content)
	}
}

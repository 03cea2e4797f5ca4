// Package apps holds the application adapters hosted inside windows: Finder,
// Terminal, the code and markdown editors and the assistant chat. Adapters
// keep only view state; files live in the vfs store.
package apps

import (
	"strings"

	"macsim/events"
	"macsim/model"
)

// FileSystem is the forgiving file system view adapters work against.
// vfs.Lenient implements it.
type FileSystem interface {
	GetItem(id string) (model.Node, bool)
	GetChildren(parentID string) []model.Node
	GetPath(id string) []model.Node
	CreateItem(name string, kind model.NodeKind, parentID, content string) string
	DeleteItem(id string)
	UpdateFileContent(id, content string)
	Undo() bool
}

// Opener asks the shell to open an application.
type Opener func(events.OpenAppRequest)

// MarkdownExt selects the markdown editor on double-click.
const MarkdownExt = ".md"

// OpenRequestFor applies the double-click policy: folders open in Finder,
// markdown files in Typora and every other file in VS Code.
func OpenRequestFor(n model.Node) events.OpenAppRequest {
	switch {
	case n.IsFolder():
		return events.OpenAppRequest{AppID: model.AppFinder, FileID: n.ID}
	case strings.HasSuffix(n.Name, MarkdownExt):
		return events.OpenAppRequest{AppID: model.AppTypora, FileID: n.ID}
	default:
		return events.OpenAppRequest{AppID: model.AppVSCode, FileID: n.ID}
	}
}

func pathString(fs FileSystem, id string) string {
	path := fs.GetPath(id)
	if len(path) == 0 {
		return "/"
	}
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.Name
	}
	return "/" + strings.Join(names, "/")
}

func childNamed(fs FileSystem, parentID, name string, kind model.NodeKind) (model.Node, bool) {
	for _, c := range fs.GetChildren(parentID) {
		if c.Name == name && (kind == "" || c.Kind == kind) {
			return c, true
		}
	}
	return model.Node{}, false
}

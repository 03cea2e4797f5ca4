package model

import (
	"encoding/json"
	"time"
)

// NodeKind tells files and folders apart.
type NodeKind string

const (
	KindFile   NodeKind = "file"
	KindFolder NodeKind = "folder"
)

// Well-known node ids of the seed tree.
const (
	RootID      = "root"
	DesktopID   = "desktop"
	DocumentsID = "documents"
	DownloadsID = "downloads"
)

// Timestamp is a Unix time in milliseconds.
type Timestamp int64

// TimestampOf truncates t to millisecond precision.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts the timestamp back to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

// Position is a point in desktop pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is an entry of the virtual file system.
// Content is only meaningful for files and Children only for folders.
// ParentID is empty for the root.
type Node struct {
	ID        string
	Name      string
	Kind      NodeKind
	Content   string
	Children  []string
	ParentID  string
	CreatedAt Timestamp
	UpdatedAt Timestamp
	Position  *Position
}

type nodeJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      NodeKind  `json:"type"`
	Content   *string   `json:"content,omitempty"`
	Children  *[]string `json:"children,omitempty"`
	ParentID  *string   `json:"parentId"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
	Position  *Position `json:"position,omitempty"`
}

// IsFolder reports whether the node holds children.
func (n Node) IsFolder() bool { return n.Kind == KindFolder }

// IsFile reports whether the node holds text content.
func (n Node) IsFile() bool { return n.Kind == KindFile }

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool { return n.ParentID == "" }

// MarshalJSON writes the browser-compatible shape: parentId is null for the
// root, content only appears on files and children only on folders.
func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:        n.ID,
		Name:      n.Name,
		Kind:      n.Kind,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		Position:  n.Position,
	}
	if n.Kind == KindFile {
		content := n.Content
		out.Content = &content
	}
	if n.Children != nil {
		children := n.Children
		out.Children = &children
	}
	if n.ParentID != "" {
		parent := n.ParentID
		out.ParentID = &parent
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the shape written by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Node{
		ID:        in.ID,
		Name:      in.Name,
		Kind:      in.Kind,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
		Position:  in.Position,
	}
	if in.Content != nil {
		n.Content = *in.Content
	}
	if in.Children != nil {
		n.Children = *in.Children
		if n.Children == nil {
			n.Children = []string{}
		}
	}
	if in.ParentID != nil {
		n.ParentID = *in.ParentID
	}
	return nil
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	if n.Children != nil {
		out.Children = make([]string, len(n.Children))
		copy(out.Children, n.Children)
	}
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	return out
}

// Table is the persisted node table keyed by node id.
type Table map[string]Node

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for id, n := range t {
		out[id] = n.Clone()
	}
	return out
}

// Roots returns the ids of every node without a parent.
func (t Table) Roots() []string {
	var roots []string
	for id, n := range t {
		if n.IsRoot() {
			roots = append(roots, id)
		}
	}
	return roots
}

// AppID identifies an application of the catalog.
type AppID string

const (
	AppFinder     AppID = "finder"
	AppGemini     AppID = "gemini"
	AppCalculator AppID = "calculator"
	AppVSCode     AppID = "vscode"
	AppSafari     AppID = "safari"
	AppSettings   AppID = "settings"
	AppPhotos     AppID = "photos"
	AppTerminal   AppID = "terminal"
	AppNotes      AppID = "notes"
	AppTypora     AppID = "typora"
	AppAboutMac   AppID = "about_mac"
)

// Window is the window manager's record of one open application window.
type Window struct {
	ID        string  `json:"id"`
	AppID     AppID   `json:"appId"`
	Title     string  `json:"title"`
	FileID    string  `json:"fileId,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	ZIndex    int     `json:"zIndex"`
	Minimized bool    `json:"isMinimized"`
	Maximized bool    `json:"isMaximized"`
}

// Contains reports whether the point lies inside the window's frame.
func (w Window) Contains(x, y float64) bool {
	return x >= w.X && x < w.X+w.Width && y >= w.Y && y < w.Y+w.Height
}

// SystemState is the top-level state of the desktop shell.
type SystemState string

const (
	StateBooting SystemState = "BOOTING"
	StateLogin   SystemState = "LOGIN"
	StateDesktop SystemState = "DESKTOP"
)

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one entry of an assistant conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp Timestamp `json:"timestamp"`
}

package shell

import (
	"fmt"
	"slices"
	"time"

	"macsim/model"
	"macsim/registry"
)

// Overlay is a panel drawn above the windows.
type Overlay string

const (
	Launchpad          Overlay = "launchpad"
	Spotlight          Overlay = "spotlight"
	ControlCenter      Overlay = "control_center"
	NotificationCenter Overlay = "notification_center"
)

// ToggleOverlay opens or closes a panel. Launchpad and Spotlight start with an
// empty query.
func (s *Shell) ToggleOverlay(o Overlay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != model.StateDesktop {
		return
	}
	if s.overlays[o] {
		delete(s.overlays, o)
		return
	}
	s.overlays[o] = true
	if o == Launchpad || o == Spotlight {
		s.query = ""
	}
}

func (s *Shell) OverlayOpen(o Overlay) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays[o]
}

func (s *Shell) CloseOverlays() {
	s.mu.Lock()
	s.overlays = make(map[Overlay]bool)
	s.mu.Unlock()
}

func (s *Shell) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Shell) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// SearchResults filters the catalog by the Spotlight/Launchpad query.
func (s *Shell) SearchResults() []registry.App {
	return registry.Search(s.Query())
}

const (
	MenuNewFolder       = "New Folder"
	MenuNewTextDocument = "New Text Document"
	MenuGetInfo         = "Get Info"
	MenuChangeWallpaper = "Change Wallpaper..."
)

type MenuItem struct {
	Label     string
	Separator bool
}

// ContextMenu is the right-click menu on the desktop.
type ContextMenu struct {
	Open   bool
	X, Y   float64
	Target string
	Items  []MenuItem
}

var desktopMenu = []MenuItem{
	{Label: MenuNewFolder},
	{Label: MenuNewTextDocument},
	{Label: MenuGetInfo},
	{Separator: true},
	{Label: MenuChangeWallpaper},
}

// OpenContextMenu shows the desktop menu at the pointer. target is the icon
// under the pointer, if any; Get Info describes it.
func (s *Shell) OpenContextMenu(x, y float64, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != model.StateDesktop {
		return
	}
	if target != "" {
		s.selectedIcon = target
	}
	s.menu = ContextMenu{Open: true, X: x, Y: y, Target: target, Items: slices.Clone(desktopMenu)}
}

func (s *Shell) ContextMenu() ContextMenu {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.menu
	m.Items = slices.Clone(m.Items)
	return m
}

func (s *Shell) CloseContextMenu() {
	s.mu.Lock()
	s.menu = ContextMenu{}
	s.mu.Unlock()
}

// ChooseMenuItem runs a context menu action and closes the menu. Unknown
// labels and separators only close it.
func (s *Shell) ChooseMenuItem(label string) {
	s.mu.Lock()
	m := s.menu
	s.menu = ContextMenu{}
	s.mu.Unlock()
	if !m.Open {
		return
	}

	switch label {
	case MenuNewFolder:
		s.files.CreateItem("New Folder", model.KindFolder, model.DesktopID, "")
	case MenuNewTextDocument:
		s.files.CreateItem("Untitled.txt", model.KindFile, model.DesktopID, "")
	case MenuGetInfo:
		if n, ok := s.fs.GetItem(m.Target); ok {
			s.Notify(LevelInfo, n.Name, describe(n))
		}
	case MenuChangeWallpaper:
		s.OpenApp(model.AppSettings, "")
	}
}

func describe(n model.Node) string {
	modified := n.UpdatedAt.Time().Format("Jan 2, 2006 at 3:04 PM")
	if n.IsFolder() {
		return fmt.Sprintf("Folder, %d items, modified %s", len(n.Children), modified)
	}
	return fmt.Sprintf("File, %d bytes, modified %s", len(n.Content), modified)
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// MaxNotifications bounds the notification list.
const MaxNotifications = 20

type Notification struct {
	Title string
	Body  string
	Time  time.Time
	Level Level
}

// Notify adds a notification; only the newest MaxNotifications are kept.
func (s *Shell) Notify(level Level, title, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, Notification{Title: title, Body: body, Time: s.now(), Level: level})
	if over := len(s.notifications) - MaxNotifications; over > 0 {
		s.notifications = slices.Delete(s.notifications, 0, over)
	}
}

// Notifications returns the list newest first.
func (s *Shell) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.notifications)
	slices.Reverse(out)
	return out
}

func (s *Shell) ClearNotifications() {
	s.mu.Lock()
	s.notifications = nil
	s.mu.Unlock()
}

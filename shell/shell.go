// Package shell coordinates the desktop: the boot/login state machine, opening
// applications, desktop icons, pointer drag sessions, overlays and
// notifications. It owns one application adapter per open window.
package shell

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"macsim/apps"
	"macsim/assistant"
	"macsim/events"
	"macsim/metrics"
	"macsim/model"
	"macsim/registry"
	"macsim/vfs"
	"macsim/wm"
)

var ErrInvalidTransition = errors.New("invalid system state transition")

// DefaultIconPosition is used for desktop items that were never placed.
var DefaultIconPosition = model.Position{X: 20, Y: 20}

// Transition is an input to the system state machine.
type Transition string

const (
	BootComplete Transition = "boot_complete"
	Login        Transition = "login"
	Restart      Transition = "restart"
	ShutDown     Transition = "shut_down"
	Sleep        Transition = "sleep"
	LogOut       Transition = "log_out"
)

type Option func(*Shell)

func WithWindowManager(m *wm.Manager) Option {
	return func(s *Shell) { s.wm = m }
}

// WithSignals shares an existing open-app emitter instead of creating one.
func WithSignals(e *events.Emitter[events.OpenAppRequest]) Option {
	return func(s *Shell) { s.signals = e }
}

// WithProvider sets the language model used by assistant windows.
func WithProvider(p assistant.Provider) Option {
	return func(s *Shell) { s.provider = p }
}

func WithChatTimeout(d time.Duration) Option {
	return func(s *Shell) { s.chatTimeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Shell) { s.now = now }
}

// WithViewport sets the desktop size reported to apps (neofetch) and used for
// hit-testing.
func WithViewport(vp wm.Viewport) Option {
	return func(s *Shell) { s.viewport = vp }
}

// WithInitialState starts the machine somewhere other than BOOTING.
func WithInitialState(st model.SystemState) Option {
	return func(s *Shell) { s.state = st }
}

type iconDrag struct {
	id     string
	dx, dy float64
}

type windowDrag struct {
	id     string
	resize bool
	// offset from the window origin for moves, starting pointer for resizes
	x, y float64
	// window size when a resize started
	w, h float64
}

// Shell is the desktop coordinator. Callers drive it from a single input
// loop; persistence errors and assistant replies may arrive on other
// goroutines, so its own state is guarded.
type Shell struct {
	fs          *vfs.Store
	files       vfs.Lenient
	wm          *wm.Manager
	signals     *events.Emitter[events.OpenAppRequest]
	provider    assistant.Provider
	chatTimeout time.Duration
	log         *zap.Logger
	now         func() time.Time
	unsubscribe []func()

	mu            sync.Mutex
	state         model.SystemState
	viewport      wm.Viewport
	overlays      map[Overlay]bool
	query         string
	menu          ContextMenu
	notifications []Notification
	selectedIcon  string
	iconDrag      *iconDrag
	windowDrag    *windowDrag
	apps          map[string]any
}

// New wires a shell to the file system. It subscribes to open-app signals,
// window events and persistence failures until Close.
func New(fs *vfs.Store, opts ...Option) *Shell {
	s := &Shell{
		fs:       fs,
		files:    fs.Lenient(),
		provider: assistant.Offline{},
		log:      zap.NewNop(),
		now:      time.Now,
		state:    model.StateBooting,
		viewport: wm.Viewport{Width: 1280, Height: 800},
		overlays: make(map[Overlay]bool),
		apps:     make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.wm == nil {
		s.wm = wm.New(wm.WithLogger(s.log))
	}
	if s.signals == nil {
		s.signals = events.NewEmitter[events.OpenAppRequest]()
	}

	s.unsubscribe = append(s.unsubscribe,
		s.signals.Subscribe(func(r events.OpenAppRequest) {
			s.OpenApp(r.AppID, r.FileID)
		}),
		s.wm.Subscribe(s.onWindowEvent),
		fs.OnPersistError(func(err error) {
			s.Notify(LevelError, "Changes not saved", err.Error())
		}),
	)
	if msg := fs.LoadStatus(); msg != "" {
		s.Notify(LevelWarning, "File system restored", msg)
	}
	return s
}

// Close detaches the shell from its collaborators and closes every window.
func (s *Shell) Close() {
	s.wm.CloseAll()
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

func (s *Shell) Windows() *wm.Manager { return s.wm }

func (s *Shell) FS() *vfs.Store { return s.fs }

// Signals is the open-app channel handed to adapters such as the terminal.
func (s *Shell) Signals() *events.Emitter[events.OpenAppRequest] { return s.signals }

func (s *Shell) State() model.SystemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition advances the system state machine.
func (s *Shell) Transition(t Transition) error {
	s.mu.Lock()
	from := s.state
	var to model.SystemState
	switch {
	case t == BootComplete && from == model.StateBooting:
		to = model.StateLogin
	case t == Login && from == model.StateLogin:
		to = model.StateDesktop
	case t == Restart || t == ShutDown:
		to = model.StateBooting
	case (t == Sleep || t == LogOut) && from == model.StateDesktop:
		to = model.StateLogin
	default:
		s.mu.Unlock()
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, t, from)
	}
	s.state = to
	if to != model.StateDesktop {
		s.overlays = make(map[Overlay]bool)
		s.menu = ContextMenu{}
		s.iconDrag, s.windowDrag = nil, nil
	}
	s.mu.Unlock()

	if to == model.StateBooting {
		s.wm.CloseAll()
	}
	s.log.Info("system state changed", zap.String("from", string(from)), zap.String("to", string(to)), zap.String("transition", string(t)))
	return nil
}

// OpenApp opens or refocuses a window. Requests outside the desktop state are
// ignored and return "".
func (s *Shell) OpenApp(appID model.AppID, fileID string) string {
	if s.State() != model.StateDesktop {
		s.log.Debug("open ignored outside desktop", zap.String("app_id", string(appID)))
		return ""
	}
	id, err := s.wm.OpenApp(appID, fileID)
	if err != nil {
		s.log.Warn("open app failed", zap.String("app_id", string(appID)), zap.Error(err))
		return ""
	}
	metrics.RecordAppOpen(string(appID))

	s.mu.Lock()
	delete(s.overlays, Launchpad)
	delete(s.overlays, Spotlight)
	s.query = ""
	s.mu.Unlock()
	return id
}

// OpenItem applies the double-click policy to a node.
func (s *Shell) OpenItem(id string) string {
	n, ok := s.fs.GetItem(id)
	if !ok {
		return ""
	}
	r := apps.OpenRequestFor(n)
	return s.OpenApp(r.AppID, r.FileID)
}

// App returns the adapter hosted in a window: *apps.Finder, *apps.Terminal,
// *apps.CodeEditor, *apps.MarkdownEditor, *apps.ChatSession, or nil for apps
// without state.
func (s *Shell) App(windowID string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apps[windowID]
}

// SyncTitle copies the adapter's title onto its window.
func (s *Shell) SyncTitle(windowID string) {
	var title string
	switch a := s.App(windowID).(type) {
	case *apps.Finder:
		title = a.Title()
	case *apps.CodeEditor:
		title = a.Title()
	case *apps.MarkdownEditor:
		title = a.Title()
	default:
		return
	}
	if w, ok := s.wm.Get(windowID); ok && w.Title != title {
		_ = s.wm.SetTitle(windowID, title)
	}
}

// DockClick restores a minimized app whose windows are all hidden, otherwise
// opens it.
func (s *Shell) DockClick(appID model.AppID) string {
	if s.wm.MinimizedApps()[appID] {
		ws := s.wm.WindowsFor(appID)
		top := ws[0]
		for _, w := range ws[1:] {
			if w.ZIndex > top.ZIndex {
				top = w
			}
		}
		if err := s.wm.Restore(top.ID); err == nil {
			return top.ID
		}
	}
	return s.OpenApp(appID, "")
}

// ClickDesktop handles a click on empty desktop.
func (s *Shell) ClickDesktop() {
	s.wm.ClearFocus()
	s.mu.Lock()
	s.menu = ContextMenu{}
	s.selectedIcon = ""
	s.mu.Unlock()
}

// SelectedIcon is the desktop item last pressed.
func (s *Shell) SelectedIcon() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedIcon
}

func (s *Shell) Viewport() wm.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

func (s *Shell) SetViewport(vp wm.Viewport) {
	s.mu.Lock()
	s.viewport = vp
	s.mu.Unlock()
}

// Icon is a desktop item ready to draw.
type Icon struct {
	Node     model.Node
	Position model.Position
	Selected bool
}

// DesktopIcons lists the desktop folder's children with resolved positions.
func (s *Shell) DesktopIcons() []Icon {
	selected := s.SelectedIcon()
	children := s.fs.GetChildren(model.DesktopID)
	out := make([]Icon, len(children))
	for i, n := range children {
		pos := DefaultIconPosition
		if n.Position != nil {
			pos = *n.Position
		}
		out[i] = Icon{Node: n, Position: pos, Selected: n.ID == selected}
	}
	return out
}

// DockItem is one dock entry with its indicator lights.
type DockItem struct {
	App       registry.App
	Running   bool
	Active    bool
	Minimized bool
}

func (s *Shell) Dock() []DockItem {
	active := s.wm.ActiveApp()
	minimized := s.wm.MinimizedApps()
	running := make(map[model.AppID]bool)
	for _, w := range s.wm.Windows() {
		running[w.AppID] = true
	}
	dock := registry.Dock()
	out := make([]DockItem, len(dock))
	for i, a := range dock {
		out[i] = DockItem{
			App:       a,
			Running:   running[a.ID],
			Active:    a.ID == active,
			Minimized: minimized[a.ID],
		}
	}
	return out
}

func (s *Shell) onWindowEvent(ev wm.Event) {
	metrics.SetWindowsOpen(ev.Open)
	switch ev.Kind {
	case wm.WindowOpened:
		if a := s.newApp(ev.Window); a != nil {
			s.mu.Lock()
			s.apps[ev.Window.ID] = a
			s.mu.Unlock()
			s.SyncTitle(ev.Window.ID)
		}
	case wm.WindowClosed:
		s.mu.Lock()
		a := s.apps[ev.Window.ID]
		delete(s.apps, ev.Window.ID)
		if s.windowDrag != nil && s.windowDrag.id == ev.Window.ID {
			s.windowDrag = nil
		}
		s.mu.Unlock()
		switch a := a.(type) {
		case *apps.ChatSession:
			a.Close()
		case *apps.MarkdownEditor:
			a.Flush()
		}
	}
}

func (s *Shell) newApp(w model.Window) any {
	switch w.AppID {
	case model.AppFinder:
		return apps.NewFinder(s.files, w.FileID, func(r events.OpenAppRequest) {
			s.OpenApp(r.AppID, r.FileID)
		})
	case model.AppTerminal:
		return apps.NewTerminal(s.files, s.signals,
			apps.WithClock(s.now),
			apps.WithResolution(func() (int, int) {
				vp := s.Viewport()
				return int(vp.Width), int(vp.Height)
			}))
	case model.AppVSCode:
		return apps.NewCodeEditor(s.files, w.FileID)
	case model.AppTypora:
		return apps.NewMarkdownEditor(s.files, w.FileID)
	case model.AppGemini:
		return apps.NewChatSession(s.provider,
			apps.WithTimeout(s.chatTimeout),
			apps.WithChatLogger(s.log.Named("assistant")),
			apps.WithChatClock(s.now))
	}
	return nil
}

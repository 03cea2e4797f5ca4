// Package wm tracks open application windows: geometry, stacking order,
// focus and the minimized/maximized flags.
package wm

import (
	"errors"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"macsim/events"
	"macsim/model"
	"macsim/registry"
)

const (
	MinWidth      = 300
	MinHeight     = 200
	MenuBarHeight = 32

	baseZ = 10
)

var (
	ErrWindowNotFound = errors.New("window not found")
	ErrUnknownApp     = registry.ErrUnknownApp
)

// Viewport is the size of the desktop in pixels.
type Viewport struct {
	Width  float64
	Height float64
}

// Frame returns the area a window actually covers: maximized windows fill the
// viewport below the menu bar.
func Frame(w model.Window, vp Viewport) model.Window {
	if !w.Maximized {
		return w
	}
	w.X, w.Y = 0, MenuBarHeight
	w.Width, w.Height = vp.Width, vp.Height-MenuBarHeight
	return w
}

// EventKind says whether a window appeared or went away.
type EventKind int

const (
	WindowOpened EventKind = iota
	WindowClosed
)

// Event is delivered to subscribers after the collection changed size.
type Event struct {
	Kind   EventKind
	Window model.Window
	Open   int
}

type Option func(*Manager)

// WithRand sets the source of the initial window offset; it must return
// values in [0, 1).
func WithRand(r func() float64) Option {
	return func(m *Manager) { m.rand = r }
}

func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// Manager owns the window collection. Operations on unknown ids return
// ErrWindowNotFound and change nothing.
type Manager struct {
	mu      sync.RWMutex
	windows []model.Window
	active  string
	z       int

	rand   func() float64
	newID  func() string
	log    *zap.Logger
	events *events.Emitter[Event]
}

func New(opts ...Option) *Manager {
	m := &Manager{
		z:      baseZ,
		rand:   rand.Float64,
		newID:  uuid.NewString,
		log:    zap.NewNop(),
		events: events.NewEmitter[Event](),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers fn for window open/close events.
func (m *Manager) Subscribe(fn func(Event)) func() {
	return m.events.Subscribe(fn)
}

// OpenApp opens a window for appID and returns its id. A single-instance app
// that already has a window gets that window restored and focused instead;
// fileID is ignored in that case.
func (m *Manager) OpenApp(appID model.AppID, fileID string) (string, error) {
	app, err := registry.Lookup(appID)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	if app.SingleInstance {
		if i := m.indexOfApp(appID); i >= 0 {
			m.windows[i].Minimized = false
			m.focusLocked(i)
			id := m.windows[i].ID
			m.mu.Unlock()
			m.log.Debug("single-instance app refocused", zap.String("app_id", string(appID)), zap.String("window_id", id))
			return id, nil
		}
	}

	m.z++
	w := model.Window{
		ID:     m.newID(),
		AppID:  appID,
		Title:  app.Title,
		FileID: fileID,
		X:      100 + m.rand()*50,
		Y:      50 + m.rand()*50,
		Width:  app.DefaultWidth,
		Height: app.DefaultHeight,
		ZIndex: m.z,
	}
	m.windows = append(m.windows, w)
	m.active = w.ID
	open := len(m.windows)
	m.mu.Unlock()

	m.log.Debug("window opened", zap.String("app_id", string(appID)), zap.String("window_id", w.ID), zap.String("file_id", fileID))
	m.events.Emit(Event{Kind: WindowOpened, Window: w, Open: open})
	return w.ID, nil
}

// CloseWindow removes the window. Closing the active window clears focus.
func (m *Manager) CloseWindow(id string) error {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return ErrWindowNotFound
	}
	w := m.windows[i]
	m.windows = append(m.windows[:i:i], m.windows[i+1:]...)
	if m.active == id {
		m.active = ""
	}
	open := len(m.windows)
	m.mu.Unlock()

	m.log.Debug("window closed", zap.String("window_id", id), zap.String("app_id", string(w.AppID)))
	m.events.Emit(Event{Kind: WindowClosed, Window: w, Open: open})
	return nil
}

// CloseAll removes every window.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	closed := m.windows
	m.windows = nil
	m.active = ""
	m.mu.Unlock()

	for i, w := range closed {
		m.events.Emit(Event{Kind: WindowClosed, Window: w, Open: len(closed) - i - 1})
	}
}

// FocusWindow raises the window above all others and makes it active.
// Focusing the active window changes nothing.
func (m *Manager) FocusWindow(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrWindowNotFound
	}
	m.focusLocked(i)
	return nil
}

// ClearFocus leaves no window active.
func (m *Manager) ClearFocus() {
	m.mu.Lock()
	m.active = ""
	m.mu.Unlock()
}

// MinimizeWindow hides the window; it stays in the collection.
func (m *Manager) MinimizeWindow(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrWindowNotFound
	}
	m.windows[i].Minimized = true
	if m.active == id {
		m.active = ""
	}
	return nil
}

// Restore un-minimizes and focuses the window.
func (m *Manager) Restore(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrWindowNotFound
	}
	m.windows[i].Minimized = false
	m.focusLocked(i)
	return nil
}

// MaximizeWindow toggles the maximized flag and focuses the window.
func (m *Manager) MaximizeWindow(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrWindowNotFound
	}
	m.windows[i].Maximized = !m.windows[i].Maximized
	m.focusLocked(i)
	return nil
}

func (m *Manager) UpdateWindowPosition(id string, x, y float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrWindowNotFound
	}
	m.windows[i].X, m.windows[i].Y = x, y
	return nil
}

// UpdateWindowSize resizes the window, never below MinWidth x MinHeight.
func (m *Manager) UpdateWindowSize(id string, width, height float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrWindowNotFound
	}
	m.windows[i].Width = max(width, MinWidth)
	m.windows[i].Height = max(height, MinHeight)
	return nil
}

func (m *Manager) SetTitle(id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrWindowNotFound
	}
	m.windows[i].Title = title
	return nil
}

// Get returns a copy of the window.
func (m *Manager) Get(id string) (model.Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.indexOf(id)
	if i < 0 {
		return model.Window{}, false
	}
	return m.windows[i], true
}

// Windows returns every window in creation order.
func (m *Manager) Windows() []model.Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Window, len(m.windows))
	copy(out, m.windows)
	return out
}

// Stack returns the visible windows from bottom to top.
func (m *Manager) Stack() []model.Window {
	m.mu.RLock()
	out := make([]model.Window, 0, len(m.windows))
	for _, w := range m.windows {
		if !w.Minimized {
			out = append(out, w)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// Active returns the id of the focused window, or "".
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// ActiveApp returns the app of the focused window, or "".
func (m *Manager) ActiveApp() model.AppID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexOf(m.active); i >= 0 {
		return m.windows[i].AppID
	}
	return ""
}

// WindowsFor returns the windows hosting appID in creation order.
func (m *Manager) WindowsFor(appID model.AppID) []model.Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Window
	for _, w := range m.windows {
		if w.AppID == appID {
			out = append(out, w)
		}
	}
	return out
}

// MinimizedApps returns the apps whose every window is minimized.
func (m *Manager) MinimizedApps() map[model.AppID]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.AppID]bool)
	for _, w := range m.windows {
		if v, seen := out[w.AppID]; seen {
			out[w.AppID] = v && w.Minimized
		} else {
			out[w.AppID] = w.Minimized
		}
	}
	for id, v := range out {
		if !v {
			delete(out, id)
		}
	}
	return out
}

// TopmostAt returns the highest visible window covering the point.
func (m *Manager) TopmostAt(x, y float64, vp Viewport) (model.Window, bool) {
	stack := m.Stack()
	for i := len(stack) - 1; i >= 0; i-- {
		if Frame(stack[i], vp).Contains(x, y) {
			return stack[i], true
		}
	}
	return model.Window{}, false
}

func (m *Manager) focusLocked(i int) {
	if m.active == m.windows[i].ID {
		return
	}
	m.z++
	m.windows[i].ZIndex = m.z
	m.active = m.windows[i].ID
}

func (m *Manager) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, w := range m.windows {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) indexOfApp(appID model.AppID) int {
	for i, w := range m.windows {
		if w.AppID == appID {
			return i
		}
	}
	return -1
}

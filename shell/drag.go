package shell

import "go.uber.org/zap"

// BeginIconDrag starts moving a desktop icon. The pointer offset from the
// icon's position is kept for the whole session.
func (s *Shell) BeginIconDrag(id string, px, py float64) bool {
	n, ok := s.fs.GetItem(id)
	if !ok {
		return false
	}
	pos := DefaultIconPosition
	if n.Position != nil {
		pos = *n.Position
	}
	s.mu.Lock()
	s.menu = ContextMenu{}
	s.selectedIcon = id
	s.iconDrag = &iconDrag{id: id, dx: px - pos.X, dy: py - pos.Y}
	s.mu.Unlock()
	return true
}

// BeginWindowDrag focuses the window and starts moving it. Maximized windows
// are focused but not moved.
func (s *Shell) BeginWindowDrag(id string, px, py float64) bool {
	if err := s.wm.FocusWindow(id); err != nil {
		return false
	}
	w, _ := s.wm.Get(id)
	if w.Maximized {
		return false
	}
	s.mu.Lock()
	s.windowDrag = &windowDrag{id: id, x: px - w.X, y: py - w.Y}
	s.mu.Unlock()
	return true
}

// BeginWindowResize focuses the window and anchors a resize at the pointer.
func (s *Shell) BeginWindowResize(id string, px, py float64) bool {
	if err := s.wm.FocusWindow(id); err != nil {
		return false
	}
	w, _ := s.wm.Get(id)
	if w.Maximized {
		return false
	}
	s.mu.Lock()
	s.windowDrag = &windowDrag{id: id, resize: true, x: px, y: py, w: w.Width, h: w.Height}
	s.mu.Unlock()
	return true
}

// Dragging reports which sessions are active.
func (s *Shell) Dragging() (icon, window bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iconDrag != nil, s.windowDrag != nil
}

// DragTo applies a pointer move to the active sessions in arrival order.
// Resizes are measured from where the session started, so the corner stays
// under the pointer once it is back above the minimum size.
func (s *Shell) DragTo(px, py float64) {
	s.mu.Lock()
	icon := s.iconDrag
	var win *windowDrag
	if s.windowDrag != nil {
		d := *s.windowDrag
		win = &d
	}
	s.mu.Unlock()

	if icon != nil {
		s.files.UpdateItemPosition(icon.id, px-icon.dx, py-icon.dy)
	}
	if win == nil {
		return
	}
	var err error
	if win.resize {
		err = s.wm.UpdateWindowSize(win.id, win.w+px-win.x, win.h+py-win.y)
	} else {
		err = s.wm.UpdateWindowPosition(win.id, px-win.x, py-win.y)
	}
	if err != nil {
		s.log.Debug("window drag ignored", zap.String("window_id", win.id), zap.Error(err))
	}
}

// EndDrag finishes every active session.
func (s *Shell) EndDrag() {
	s.mu.Lock()
	s.iconDrag, s.windowDrag = nil, nil
	s.mu.Unlock()
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"macsim/apps"
	"macsim/model"
	"macsim/shell"
)

const (
	doubleClick  = 500 * time.Millisecond
	bootInterval = 40 * time.Millisecond
	bootStep     = 5
)

type focusPane int

const (
	focusTree focusPane = iota
	focusEditor
)

func (f focusPane) String() string {
	if f == focusEditor {
		return "editor"
	}
	return "explorer"
}

type bootTickMsg struct{}

type clockTickMsg time.Time

type chatReplyMsg struct {
	windowID string
	err      error
}

// windowView is the per-window input state the adapters do not keep.
type windowView struct {
	input  string
	cursor int
	focus  focusPane
}

type click struct {
	id string
	at time.Time
}

type Model struct {
	sh  *shell.Shell
	now func() time.Time

	bootProgress int
	appleMenu    bool
	searchCursor int
	views        map[string]*windowView
	lastClick    click
	seenNotes    int
	ticking      bool

	status    string
	statusErr bool

	width  int
	height int
}

func NewModel(sh *shell.Shell, startupStatus string) *Model {
	status := strings.TrimSpace(startupStatus)
	if status == "" {
		status = "Ready"
	}
	m := &Model{
		sh:     sh,
		now:    time.Now,
		views:  make(map[string]*windowView),
		status: status,
	}
	m.seenNotes = len(sh.Notifications())
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.sh.State() == model.StateBooting {
		return bootTick()
	}
	return m.startClock()
}

// startClock starts the menu bar clock once.
func (m *Model) startClock() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return clockTick()
}

func bootTick() tea.Cmd {
	return tea.Tick(bootInterval, func(time.Time) tea.Msg { return bootTickMsg{} })
}

func clockTick() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sh.SetViewport(viewportFor(m.width, m.height))
	case bootTickMsg:
		cmd = m.advanceBoot(bootStep)
	case clockTickMsg:
		cmd = clockTick()
	case chatReplyMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.setStatus("Assistant: "+msg.err.Error(), true)
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+q":
			m.flush()
			return m, tea.Quit
		}
		switch m.sh.State() {
		case model.StateBooting:
			cmd = m.advanceBoot(100)
		case model.StateLogin:
			if msg.Type == tea.KeyEnter {
				m.transition(shell.Login)
				cmd = m.startClock()
			}
		default:
			cmd = m.updateDesktopKey(msg)
		}
	case tea.MouseMsg:
		if m.sh.State() == model.StateDesktop {
			cmd = m.updateMouse(msg)
		}
	}
	m.syncNotifications()
	return m, cmd
}

func (m *Model) advanceBoot(step int) tea.Cmd {
	if m.sh.State() != model.StateBooting {
		return nil
	}
	m.bootProgress = min(100, m.bootProgress+step)
	if m.bootProgress < 100 {
		return bootTick()
	}
	m.transition(shell.BootComplete)
	return nil
}

func (m *Model) transition(t shell.Transition) tea.Cmd {
	if err := m.sh.Transition(t); err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	m.appleMenu = false
	if m.sh.State() == model.StateBooting {
		m.bootProgress = 0
		m.views = make(map[string]*windowView)
		return bootTick()
	}
	return nil
}

func (m *Model) updateDesktopKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+k":
		m.searchCursor = 0
		m.sh.ToggleOverlay(shell.Spotlight)
		return nil
	case "ctrl+l":
		m.searchCursor = 0
		m.sh.ToggleOverlay(shell.Launchpad)
		return nil
	case "esc":
		if m.closePopups() {
			return nil
		}
	}

	if m.sh.OverlayOpen(shell.Spotlight) || m.sh.OverlayOpen(shell.Launchpad) {
		m.updateSearchKey(msg)
		return nil
	}

	wins := m.sh.Windows()
	active := wins.Active()
	switch msg.String() {
	case "tab":
		m.cycleFocus()
		return nil
	case "ctrl+w":
		if active != "" {
			_ = wins.CloseWindow(active)
			delete(m.views, active)
		}
		return nil
	case "ctrl+n":
		if active != "" {
			_ = wins.MinimizeWindow(active)
		}
		return nil
	case "ctrl+f":
		if active != "" {
			_ = wins.MaximizeWindow(active)
		}
		return nil
	}
	if active == "" {
		return nil
	}
	return m.routeKey(active, msg)
}

// closePopups closes menus and overlays and reports whether anything was open.
func (m *Model) closePopups() bool {
	open := m.appleMenu || m.sh.ContextMenu().Open
	for _, o := range []shell.Overlay{shell.Launchpad, shell.Spotlight, shell.ControlCenter, shell.NotificationCenter} {
		open = open || m.sh.OverlayOpen(o)
	}
	m.appleMenu = false
	m.sh.CloseContextMenu()
	m.sh.CloseOverlays()
	return open
}

func (m *Model) updateSearchKey(msg tea.KeyMsg) {
	results := m.sh.SearchResults()
	switch msg.Type {
	case tea.KeyEnter:
		if len(results) == 0 {
			return
		}
		app := results[clamp(m.searchCursor, 0, len(results)-1)]
		if id := m.sh.OpenApp(app.ID, ""); id != "" {
			m.setStatus("Opened "+app.Title, false)
		}
		return
	case tea.KeyUp:
		m.searchCursor = max(0, m.searchCursor-1)
		return
	case tea.KeyDown:
		m.searchCursor = clamp(m.searchCursor+1, 0, max(0, len(results)-1))
		return
	case tea.KeyBackspace, tea.KeyCtrlH:
		m.sh.SetQuery(trimLastRune(m.sh.Query()))
	case tea.KeySpace:
		m.sh.SetQuery(m.sh.Query() + " ")
	case tea.KeyRunes:
		m.sh.SetQuery(m.sh.Query() + string(msg.Runes))
	default:
		return
	}
	m.searchCursor = 0
}

// cycleFocus raises the bottom-most visible window.
func (m *Model) cycleFocus() {
	stack := m.sh.Windows().Stack()
	if len(stack) < 2 {
		if len(stack) == 1 {
			_ = m.sh.Windows().FocusWindow(stack[0].ID)
		}
		return
	}
	_ = m.sh.Windows().FocusWindow(stack[0].ID)
	m.setStatus("Focus: "+stack[0].Title, false)
}

func (m *Model) view(windowID string) *windowView {
	v, ok := m.views[windowID]
	if !ok {
		v = &windowView{}
		m.views[windowID] = v
	}
	return v
}

func (m *Model) updateMouse(msg tea.MouseMsg) tea.Cmd {
	px, py := pixelOf(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionMotion:
		if icon, win := m.sh.Dragging(); icon || win {
			m.sh.DragTo(px, py)
		}
		return nil
	case tea.MouseActionRelease:
		m.sh.EndDrag()
		return nil
	case tea.MouseActionPress:
	default:
		return nil
	}
	right := msg.Button == tea.MouseButtonRight
	if msg.Button != tea.MouseButtonLeft && !right {
		return nil
	}
	x, y := msg.X, msg.Y

	if menu := m.sh.ContextMenu(); menu.Open {
		if label, ok := contextMenuItemAt(menu, m.width, m.height, x, y); ok {
			m.sh.ChooseMenuItem(label)
		} else {
			m.sh.CloseContextMenu()
		}
		return nil
	}
	if m.appleMenu {
		m.appleMenu = false
		if i, ok := appleMenuItemAt(x, y); ok {
			return m.chooseAppleMenu(i)
		}
		return nil
	}
	if y == 0 {
		m.clickMenuBar(x)
		return nil
	}
	if m.sh.OverlayOpen(shell.Spotlight) || m.sh.OverlayOpen(shell.Launchpad) {
		m.clickSearch(x, y)
		return nil
	}
	if m.sh.OverlayOpen(shell.ControlCenter) || m.sh.OverlayOpen(shell.NotificationCenter) {
		if !sidePanelRect(m.width, m.height).contains(x, y) {
			m.sh.CloseOverlays()
		}
		return nil
	}

	frame, slots := dockLayout(m.sh.Dock(), m.width, m.height)
	if frame.contains(x, y) {
		for _, s := range slots {
			if !s.r.contains(x, y) {
				continue
			}
			if s.launchpad {
				m.searchCursor = 0
				m.sh.ToggleOverlay(shell.Launchpad)
			} else {
				m.sh.DockClick(s.app.ID)
			}
		}
		return nil
	}

	if w, ok := m.sh.Windows().TopmostAt(px, py, m.sh.Viewport()); ok {
		return m.pressWindow(w, x, y, px, py)
	}

	icons := m.sh.DesktopIcons()
	for i := len(icons) - 1; i >= 0; i-- {
		icon := icons[i]
		if !iconRect(icon.Position).contains(x, y) {
			continue
		}
		if right {
			m.sh.OpenContextMenu(px, py, icon.Node.ID)
			return nil
		}
		if m.isDoubleClick(icon.Node.ID) {
			m.sh.OpenItem(icon.Node.ID)
			return nil
		}
		m.sh.BeginIconDrag(icon.Node.ID, px, py)
		return nil
	}

	if right {
		m.sh.OpenContextMenu(px, py, "")
		return nil
	}
	m.sh.ClickDesktop()
	return nil
}

func (m *Model) isDoubleClick(id string) bool {
	now := m.now()
	double := m.lastClick.id == id && now.Sub(m.lastClick.at) <= doubleClick
	if double {
		m.lastClick = click{}
	} else {
		m.lastClick = click{id: id, at: now}
	}
	return double
}

func (m *Model) pressWindow(w model.Window, x, y int, px, py float64) tea.Cmd {
	wins := m.sh.Windows()
	r := windowRect(w, m.sh.Viewport())
	if y == r.y0 {
		switch x - r.x0 {
		case closeOffset:
			_ = wins.CloseWindow(w.ID)
			delete(m.views, w.ID)
		case minimizeOffset:
			_ = wins.MinimizeWindow(w.ID)
		case maximizeOffset:
			_ = wins.MaximizeWindow(w.ID)
		default:
			m.sh.BeginWindowDrag(w.ID, px, py)
		}
		return nil
	}
	if x == r.x1 && y == r.y1 {
		m.sh.BeginWindowResize(w.ID, px, py)
		return nil
	}
	_ = wins.FocusWindow(w.ID)
	m.clickContent(w, contentRect(r), x, y)
	return nil
}

func (m *Model) clickMenuBar(x int) {
	bar := menuBarLayout(m.width, m.clock())
	switch {
	case bar.apple.contains(x, 0):
		m.appleMenu = !m.appleMenu
	case bar.control.contains(x, 0):
		m.sh.ToggleOverlay(shell.ControlCenter)
	case bar.notifications.contains(x, 0):
		m.sh.ToggleOverlay(shell.NotificationCenter)
	case bar.spotlight.contains(x, 0):
		m.searchCursor = 0
		m.sh.ToggleOverlay(shell.Spotlight)
	}
}

func (m *Model) chooseAppleMenu(i int) tea.Cmd {
	switch appleMenu[i] {
	case menuAbout:
		m.sh.OpenApp(model.AppAboutMac, "")
	case menuSleep:
		return m.transition(shell.Sleep)
	case menuRestart:
		return m.transition(shell.Restart)
	case menuShutDown:
		return m.transition(shell.ShutDown)
	case menuLogOut:
		return m.transition(shell.LogOut)
	}
	return nil
}

func (m *Model) clickSearch(x, y int) {
	if m.sh.OverlayOpen(shell.Launchpad) {
		for _, t := range launchpadLayout(m.sh.SearchResults(), m.width, m.height) {
			if t.r.contains(x, y) {
				m.sh.OpenApp(t.app.ID, "")
				return
			}
		}
		m.sh.CloseOverlays()
		return
	}
	box, rows := spotlightLayout(len(m.sh.SearchResults()), m.width)
	if !box.contains(x, y) {
		m.sh.CloseOverlays()
		return
	}
	for i, r := range rows {
		if r.contains(x, y) {
			m.sh.OpenApp(m.sh.SearchResults()[i].ID, "")
			return
		}
	}
}

// syncNotifications mirrors new notifications into the status line.
func (m *Model) syncNotifications() {
	notes := m.sh.Notifications()
	if len(notes) == m.seenNotes {
		return
	}
	if len(notes) > m.seenNotes && len(notes) > 0 {
		n := notes[0]
		m.setStatus(n.Title+": "+n.Body, n.Level == shell.LevelError)
	}
	m.seenNotes = len(notes)
}

func (m *Model) flush() {
	if err := m.sh.FS().Flush(); err != nil {
		m.setStatus("Could not save file system: "+err.Error(), true)
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) clock() string {
	return m.now().Format("Mon Jan 2  3:04 PM")
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// One column is kept free so terminals that wrap on the last cell do
	// not eat the right border.
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	switch m.sh.State() {
	case model.StateBooting:
		return m.renderBoot()
	case model.StateLogin:
		return m.renderLogin()
	}
	return m.renderDesktop()
}

func (m *Model) renderFooter(statusText string, statusStyle lipgloss.Style, rightHint string) string {
	left := strings.TrimSpace(statusText)
	right := strings.TrimSpace(rightHint)
	if left == "" {
		left = "Ready"
	}
	if right == "" {
		right = "ctrl+q quit"
	}

	leftW := utf8.RuneCountInString(left)
	rightW := utf8.RuneCountInString(right)
	width := m.viewportWidth()
	if width <= 0 {
		width = leftW + rightW + 2
	}

	if leftW+rightW+1 > width {
		maxLeft := width - rightW - 1
		if maxLeft < 8 {
			maxLeft = 8
		}
		left = truncateRunes(left, maxLeft)
		leftW = utf8.RuneCountInString(left)
	}

	padding := width - leftW - rightW
	if padding < 1 {
		padding = 1
	}

	rightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	line := statusStyle.Render(left) + strings.Repeat(" ", padding) + rightStyle.Render(right)
	return lipgloss.NewStyle().Width(width).Render(line)
}

func (m *Model) footer() string {
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	if m.statusErr {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	hint := "ctrl+k search • ctrl+l launchpad • tab focus • ctrl+q quit"
	if active := m.sh.Windows().Active(); active != "" {
		if _, ok := m.sh.App(active).(*apps.CodeEditor); ok {
			hint = fmt.Sprintf("ctrl+e %s • ", m.view(active).focus) + hint
		}
	}
	return m.renderFooter(m.status, statusStyle, hint)
}

func copyToClipboard(text string) error {
	candidates := []struct {
		name string
		args []string
	}{
		{name: "wl-copy", args: []string{"--type", "text/plain"}},
		{name: "xclip", args: []string{"-in", "-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
		{name: "pbcopy"},
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		go runClipboardCommand(c.name, c.args, text)
		return nil
	}
	return fmt.Errorf("no clipboard command available (install wl-copy or xclip)")
}

func runClipboardCommand(name string, args []string, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(text)
	_ = cmd.Run()
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"macsim/apps"
	"macsim/model"
	"macsim/registry"
	"macsim/shell"
	"macsim/wm"
)

const (
	desktopBG = lipgloss.Color("24")
	barBG     = lipgloss.Color("236")
	windowBG  = lipgloss.Color("235")
	panelBG   = lipgloss.Color("237")
	pickBG    = lipgloss.Color("25")

	sidebarW = 16
	finderW  = 16
	treeW    = 24
	outlineW = 20
)

var (
	desktopPaint = paint{fg: "231", bg: desktopBG}
	barPaint     = paint{fg: "252", bg: barBG}
	bodyPaint    = paint{fg: "252", bg: windowBG}
	dimPaint     = paint{fg: "244", bg: windowBG}
	panelPaint   = paint{fg: "252", bg: panelBG}
	pickPaint    = paint{fg: "229", bg: pickBG, bold: true}
)

func (m *Model) renderBoot() string {
	w := m.viewportWidth()
	barW := min(40, max(10, w-10))
	filled := barW * m.bootProgress / 100
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render(strings.Repeat("█", barW-filled))
	logo := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Render("⌘")
	body := lipgloss.JoinVertical(lipgloss.Center, logo, "", bar)
	return lipgloss.Place(w, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) renderLogin() string {
	w := m.viewportWidth()
	avatar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("244")).
		Padding(0, 2).
		Render("◉")
	name := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Render("Guest User")
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("Press Enter to log in")
	clock := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Render(m.now().Format("3:04"))
	date := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render(m.now().Format("Monday, January 2"))
	body := lipgloss.JoinVertical(lipgloss.Center, date, clock, "", "", avatar, name, hint)
	return lipgloss.Place(w, m.height-1, lipgloss.Center, lipgloss.Center, body) + "\n" + m.footer()
}

func (m *Model) renderDesktop() string {
	c := newCanvas(m.viewportWidth(), max(1, m.height-1), desktopPaint)
	vp := m.sh.Viewport()
	wins := m.sh.Windows()

	m.drawIcons(c)
	active := wins.Active()
	for _, w := range wins.Stack() {
		m.drawWindow(c, w, w.ID == active, vp)
	}
	m.drawMenuBar(c)
	m.drawDock(c)

	switch {
	case m.sh.OverlayOpen(shell.Launchpad):
		m.drawLaunchpad(c)
	case m.sh.OverlayOpen(shell.Spotlight):
		m.drawSpotlight(c)
	}
	if m.sh.OverlayOpen(shell.ControlCenter) {
		m.drawControlCenter(c)
	} else if m.sh.OverlayOpen(shell.NotificationCenter) {
		m.drawNotificationCenter(c)
	}
	if menu := m.sh.ContextMenu(); menu.Open {
		m.drawContextMenu(c, menu)
	}
	if m.appleMenu {
		m.drawAppleMenu(c)
	}
	return c.String() + "\n" + m.footer()
}

func iconGlyph(n model.Node) (string, lipgloss.Color) {
	switch {
	case n.IsFolder():
		return "[=]", "75"
	case strings.HasSuffix(n.Name, apps.MarkdownExt):
		return "[M]", "231"
	default:
		return "[T]", "231"
	}
}

func (m *Model) drawIcons(c *canvas) {
	for _, icon := range m.sh.DesktopIcons() {
		r := iconRect(icon.Position)
		glyph, color := iconGlyph(icon.Node)
		c.text(r.x0+(iconCols-3)/2, r.y0, glyph, paint{fg: color, bg: desktopBG, bold: true}, -1)
		name := truncateRunes(icon.Node.Name, iconCols)
		p := desktopPaint
		if icon.Selected {
			p = pickPaint
		}
		c.text(r.x0+(iconCols-len([]rune(name)))/2, r.y1, name, p, -1)
	}
}

func (m *Model) drawWindow(c *canvas, w model.Window, active bool, vp wm.Viewport) {
	r := windowRect(w, vp)
	border := paint{fg: "240", bg: windowBG}
	if active {
		border.fg = "39"
	}
	c.box(r, bodyPaint, border)
	c.set(r.x0+closeOffset, r.y0, '●', paint{fg: "9", bg: windowBG})
	c.set(r.x0+minimizeOffset, r.y0, '●', paint{fg: "11", bg: windowBG})
	c.set(r.x0+maximizeOffset, r.y0, '●', paint{fg: "10", bg: windowBG})

	title := " " + truncateRunes(w.Title, max(1, r.width()-12)) + " "
	tx := r.x0 + max(maximizeOffset+2, (r.width()-len([]rune(title)))/2)
	titlePaint := paint{fg: "250", bg: windowBG}
	if active {
		titlePaint = paint{fg: "229", bg: windowBG, bold: true}
	}
	c.text(tx, r.y0, title, titlePaint, -1)
	if active {
		c.set(r.x1, r.y1, '◢', border)
	}
	m.drawContent(c, w, contentRect(r), active)
}

func (m *Model) drawMenuBar(c *canvas) {
	c.fill(rect{x0: 0, y0: 0, x1: c.w - 1, y1: 0}, barPaint)
	clock := m.clock()
	bar := menuBarLayout(m.width, clock)

	c.text(1, 0, "⌘", paint{fg: "231", bg: barBG, bold: true}, -1)
	title := "Finder"
	if id := m.sh.Windows().ActiveApp(); id != "" {
		if a, err := registry.Lookup(id); err == nil {
			title = a.Title
		}
	}
	c.text(4, 0, title, paint{fg: "231", bg: barBG, bold: true}, -1)
	x := 4 + len([]rune(title)) + 3
	for _, item := range []string{"File", "Edit", "View", "Go", "Window", "Help"} {
		if x+len(item) >= bar.spotlight.x0-2 {
			break
		}
		c.text(x, 0, item, barPaint, -1)
		x += len(item) + 3
	}

	c.set(bar.spotlight.x0, 0, '⌕', barPaint)
	c.set(bar.control.x0, 0, '◐', barPaint)
	c.set(bar.notifications.x0, 0, '☰', barPaint)
	c.text(bar.clockX, 0, clock, barPaint, -1)
}

func (m *Model) drawDock(c *canvas) {
	items := m.sh.Dock()
	frame, slots := dockLayout(items, m.width, m.height)
	c.box(frame, paint{bg: "238"}, paint{fg: "244", bg: "238"})

	byApp := make(map[model.AppID]shell.DockItem, len(items))
	for _, it := range items {
		byApp[it.App.ID] = it
	}
	for _, s := range slots {
		if s.launchpad {
			c.text(s.r.x0+1, s.r.y0, "⊞", paint{fg: "231", bg: "238", bold: true}, -1)
			continue
		}
		it := byApp[s.app.ID]
		c.text(s.r.x0+1, s.r.y0, s.app.Glyph, paint{fg: lipgloss.Color(s.app.Color), bg: "238", bold: true}, -1)
		switch {
		case it.Active:
			c.set(s.r.x0+1, frame.y1, '•', paint{fg: "231", bg: "238"})
		case it.Minimized:
			c.set(s.r.x0+1, frame.y1, '◦', paint{fg: "231", bg: "238"})
		case it.Running:
			c.set(s.r.x0+1, frame.y1, '·', paint{fg: "231", bg: "238"})
		}
	}
}

func (m *Model) drawSpotlight(c *canvas) {
	results := m.sh.SearchResults()
	box, rows := spotlightLayout(len(results), m.width)
	c.box(box, panelPaint, paint{fg: "39", bg: panelBG})
	c.text(box.x0+2, box.y0+1, "⌕ "+m.sh.Query()+"▌", paint{fg: "231", bg: panelBG, bold: true}, box.width()-4)
	for i, r := range rows {
		p := panelPaint
		if i == m.searchCursor {
			p = pickPaint
			c.fill(r, p)
		}
		a := results[i]
		c.text(r.x0+1, r.y0, a.Glyph+"  "+a.Title, p, r.width()-2)
	}
}

func (m *Model) drawLaunchpad(c *canvas) {
	dim := paint{fg: "252", bg: "17"}
	c.fill(rect{x0: 0, y0: 1, x1: c.w - 1, y1: c.h - dockRows - 2}, dim)
	w := min(30, c.w-4)
	x0 := max(0, (c.w-w)/2)
	c.box(rect{x0: x0, y0: 2, x1: x0 + w - 1, y1: 4}, panelPaint, paint{fg: "244", bg: panelBG})
	c.text(x0+2, 3, "⌕ "+m.sh.Query()+"▌", paint{fg: "231", bg: panelBG}, w-4)

	for i, t := range launchpadLayout(m.sh.SearchResults(), m.width, m.height) {
		p := paint{fg: lipgloss.Color(t.app.Color), bg: "17", bold: true}
		if i == m.searchCursor {
			c.fill(t.r, pickPaint)
			p.bg = pickBG
		}
		c.text(t.r.x0+(t.r.width()-len(t.app.Glyph))/2, t.r.y0, t.app.Glyph, p, -1)
		name := truncateRunes(t.app.Title, t.r.width())
		np := dim
		if i == m.searchCursor {
			np = pickPaint
		}
		c.text(t.r.x0+(t.r.width()-len([]rune(name)))/2, t.r.y0+2, name, np, -1)
	}
}

func (m *Model) drawControlCenter(c *canvas) {
	r := sidePanelRect(m.width, m.height)
	r.y1 = min(r.y1, r.y0+9)
	c.box(r, panelPaint, paint{fg: "244", bg: panelBG})
	rows := []string{
		"Wi-Fi          Home",
		"Bluetooth      On",
		"AirDrop        Contacts Only",
		"",
		"Display   ██████████░░",
		"Sound     ███████░░░░░",
		"",
		"Now Playing    Not Playing",
	}
	for i, line := range rows {
		c.text(r.x0+2, r.y0+1+i, line, panelPaint, r.width()-4)
	}
}

func (m *Model) drawNotificationCenter(c *canvas) {
	r := sidePanelRect(m.width, m.height)
	c.box(r, panelPaint, paint{fg: "244", bg: panelBG})
	c.text(r.x0+2, r.y0+1, m.now().Format("Monday, January 2"), paint{fg: "231", bg: panelBG, bold: true}, r.width()-4)
	notes := m.sh.Notifications()
	if len(notes) == 0 {
		c.text(r.x0+2, r.y0+3, "No Notifications", paint{fg: "244", bg: panelBG}, r.width()-4)
		return
	}
	y := r.y0 + 3
	for _, n := range notes {
		if y+1 >= r.y1 {
			break
		}
		titleColor := lipgloss.Color("231")
		if n.Level == shell.LevelError {
			titleColor = "9"
		}
		c.text(r.x0+2, y, n.Title+"  "+n.Time.Format("3:04 PM"), paint{fg: titleColor, bg: panelBG, bold: true}, r.width()-4)
		c.text(r.x0+2, y+1, n.Body, panelPaint, r.width()-4)
		y += 3
	}
}

func (m *Model) drawContextMenu(c *canvas, menu shell.ContextMenu) {
	r := contextMenuRect(menu, m.width, m.height)
	c.box(r, panelPaint, paint{fg: "244", bg: panelBG})
	for i, it := range menu.Items {
		y := r.y0 + 1 + i
		if it.Separator {
			c.text(r.x0+1, y, strings.Repeat("─", r.width()-2), paint{fg: "240", bg: panelBG}, -1)
			continue
		}
		c.text(r.x0+2, y, it.Label, panelPaint, r.width()-4)
	}
}

func (m *Model) drawAppleMenu(c *canvas) {
	r := appleMenuRect()
	c.box(r, panelPaint, paint{fg: "244", bg: panelBG})
	for i, label := range appleMenu {
		y := r.y0 + 1 + i
		if label == "" {
			c.text(r.x0+1, y, strings.Repeat("─", r.width()-2), paint{fg: "240", bg: panelBG}, -1)
			continue
		}
		c.text(r.x0+2, y, label, panelPaint, r.width()-4)
	}
}

// drawContent renders the app hosted in a window into its content area.
func (m *Model) drawContent(c *canvas, w model.Window, area rect, active bool) {
	if area.width() <= 0 || area.height() <= 0 {
		return
	}
	v := m.view(w.ID)
	switch a := m.sh.App(w.ID).(type) {
	case *apps.Finder:
		drawFinder(c, a, v, area, active)
	case *apps.Terminal:
		drawTerminal(c, a, v, area)
	case *apps.CodeEditor:
		drawCodeEditor(c, a, v, area, active)
	case *apps.MarkdownEditor:
		drawMarkdown(c, a, area)
	case *apps.ChatSession:
		drawChat(c, a, v, area)
	default:
		lines(c, area, staticContent(w.AppID), bodyPaint)
	}
}

// lines writes one string per row, clipped to area.
func lines(c *canvas, area rect, rows []string, p paint) {
	for i, row := range rows {
		if i >= area.height() {
			return
		}
		c.text(area.x0+1, area.y0+i, row, p, area.width()-2)
	}
}

// wrap breaks text to width columns using lipgloss word wrapping.
func wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	out := strings.Split(lipgloss.NewStyle().Width(width).Render(text), "\n")
	for i := range out {
		out[i] = strings.TrimRight(out[i], " ")
	}
	return out
}

func staticContent(id model.AppID) []string {
	switch id {
	case model.AppCalculator:
		return []string{"", "                 0", "", " AC   +/-   %    ÷", " 7    8     9    ×", " 4    5     6    −", " 1    2     3    +", " 0          .    ="}
	case model.AppSafari:
		return []string{"⌕ Search or enter website name", "", "Favorites", "  Apple   Google   Wikipedia   GitHub"}
	case model.AppPhotos:
		return []string{"", "", "            No Photos"}
	case model.AppNotes:
		return []string{"Notes", "", "  Welcome to Notes", "  Shopping list", "  Ideas"}
	case model.AppSettings:
		return []string{"Appearance", "", "  Wallpaper      Sequoia", "  Theme          Dark", "", "General", "", "  About          macOS Sequoia Web"}
	case model.AppAboutMac:
		return []string{"   macOS Sequoia", "   Version 15.0", "", "   Chip    Apple M3 Max", "   Memory  36 GB"}
	}
	return nil
}

// finderRows places the current folder's items in the content area.
func finderRows(area rect, mode apps.ViewMode, n int) []rect {
	x0 := area.x0 + 1
	if area.width() > 40 {
		x0 = area.x0 + sidebarW + 1
	}
	top := area.y0 + 2
	out := make([]rect, 0, n)
	if mode == apps.ViewList {
		for i := 0; i < n && top+i <= area.y1; i++ {
			out = append(out, rect{x0: x0, y0: top + i, x1: area.x1 - 1, y1: top + i})
		}
		return out
	}
	cols := max(1, (area.x1-x0)/finderW)
	for i := 0; i < n; i++ {
		y := top + (i/cols)*2
		if y > area.y1 {
			break
		}
		x := x0 + (i%cols)*finderW
		out = append(out, rect{x0: x, y0: y, x1: x + finderW - 2, y1: y})
	}
	return out
}

func drawFinder(c *canvas, f *apps.Finder, v *windowView, area rect, active bool) {
	var crumbs []string
	for _, n := range f.Breadcrumbs() {
		crumbs = append(crumbs, n.Name)
	}
	nav := func(ok bool) paint {
		if ok {
			return bodyPaint
		}
		return dimPaint
	}
	c.text(area.x0+1, area.y0, "‹", nav(f.CanBack()), -1)
	c.text(area.x0+3, area.y0, "›", nav(f.CanForward()), -1)
	c.text(area.x0+5, area.y0, "↑", bodyPaint, -1)
	c.text(area.x0+8, area.y0, strings.Join(crumbs, " › "), paint{fg: "231", bg: windowBG, bold: true}, area.width()-30)
	search := "⌕ " + f.Query()
	c.text(area.x1-len([]rune(search))-8, area.y0, search, dimPaint, -1)
	c.text(area.x1-5, area.y0, string(f.ViewMode()), dimPaint, -1)
	c.text(area.x0, area.y0+1, strings.Repeat("─", area.width()), paint{fg: "240", bg: windowBG}, -1)

	if area.width() > 40 {
		c.text(area.x0+1, area.y0+2, "Favorites", dimPaint, -1)
		for i, s := range f.Sidebar() {
			p := bodyPaint
			if s.ID == f.Current() {
				p = paint{fg: "39", bg: windowBG, bold: true}
			}
			c.text(area.x0+2, area.y0+3+i, s.Label, p, sidebarW-3)
		}
	}

	items := f.Items()
	if len(items) == 0 {
		c.text(area.x0+sidebarW+1, area.y0+2, "No items", dimPaint, -1)
		return
	}
	v.cursor = clamp(v.cursor, 0, len(items)-1)
	for i, r := range finderRows(area, f.ViewMode(), len(items)) {
		n := items[i]
		glyph, color := iconGlyph(n)
		p := bodyPaint
		if f.IsSelected(n.ID) {
			p = pickPaint
		}
		if active && i == v.cursor {
			p.bold = true
			c.set(r.x0-1, r.y0, '›', paint{fg: "39", bg: windowBG})
		}
		c.text(r.x0, r.y0, glyph, paint{fg: color, bg: p.bg, bold: true}, -1)
		if f.ViewMode() == apps.ViewList {
			c.text(r.x0+4, r.y0, truncateRunes(n.Name, 28), p, -1)
			kind := "Folder"
			if n.IsFile() {
				kind = fmt.Sprintf("%d bytes", len(n.Content))
			}
			c.text(r.x0+34, r.y0, kind, dimPaint, r.width()-34)
			continue
		}
		c.text(r.x0+4, r.y0, truncateRunes(n.Name, finderW-6), p, -1)
	}
}

func drawTerminal(c *canvas, t *apps.Terminal, v *windowView, area rect) {
	term := paint{fg: "252", bg: "16"}
	c.fill(area, term)
	width := area.width() - 2
	var rows []string
	for _, line := range t.Lines() {
		if line == "" {
			rows = append(rows, "")
			continue
		}
		rows = append(rows, wrap(line, width)...)
	}
	rows = append(rows, wrap(t.Prompt()+" "+v.input+"▌", width)...)
	if over := len(rows) - area.height(); over > 0 {
		rows = rows[over:]
	}
	lines(c, area, rows, term)
}

func drawCodeEditor(c *canvas, e *apps.CodeEditor, v *windowView, area rect, active bool) {
	tw := min(treeW, area.width()/2)
	side := paint{fg: "252", bg: "234"}
	c.fill(rect{x0: area.x0, y0: area.y0, x1: area.x0 + tw - 1, y1: area.y1}, side)
	c.text(area.x0+1, area.y0, "EXPLORER", paint{fg: "244", bg: "234"}, -1)

	rows := e.Tree()
	v.cursor = clamp(v.cursor, 0, max(0, len(rows)-1))
	activeFile, hasFile := e.Active()
	for i, row := range rows {
		y := area.y0 + 1 + i
		if y > area.y1 {
			break
		}
		marker := "  "
		if row.Node.IsFolder() {
			marker = "▸ "
			if row.Expanded {
				marker = "▾ "
			}
		}
		p := side
		if hasFile && row.Node.ID == activeFile.ID {
			p.fg = "39"
		}
		if active && v.focus == focusTree && i == v.cursor {
			p = pickPaint
		}
		c.text(area.x0+1+row.Depth*2, y, marker+row.Node.Name, p, tw-2-row.Depth*2)
	}

	edit := rect{x0: area.x0 + tw, y0: area.y0, x1: area.x1, y1: area.y1}
	if !hasFile {
		c.text(edit.x0+2, edit.y0+1, "Select a file to start editing", dimPaint, edit.width()-3)
		return
	}
	c.text(edit.x0+1, edit.y0, activeFile.Name, paint{fg: "231", bg: windowBG, bold: true}, edit.width()-2)
	src := strings.Split(activeFile.Content, "\n")
	first := max(0, len(src)-(edit.height()-1))
	src = src[first:]
	for i, line := range src {
		y := edit.y0 + 1 + i
		c.text(edit.x0+1, y, fmt.Sprintf("%3d", first+i+1), paint{fg: "240", bg: windowBG}, -1)
		c.text(edit.x0+5, y, line, bodyPaint, edit.width()-6)
	}
	if active && v.focus == focusEditor {
		last := len(src) - 1
		x := edit.x0 + 5 + len([]rune(src[last]))
		if x < edit.x1 {
			c.set(x, edit.y0+1+last, '▌', paint{fg: "39", bg: windowBG})
		}
	}
}

func drawMarkdown(c *canvas, md *apps.MarkdownEditor, area rect) {
	themes := map[apps.Theme]paint{
		apps.ThemeGitHub:    {fg: "235", bg: "255"},
		apps.ThemeNight:     {fg: "252", bg: "235"},
		apps.ThemeNewsprint: {fg: "236", bg: "230"},
	}
	page := themes[md.Theme()]
	c.fill(area, page)

	body := area
	if md.SidebarOpen() && area.width() > 40 {
		side := paint{fg: page.fg, bg: "250"}
		if md.Theme() == apps.ThemeNight {
			side.bg = "237"
		}
		c.fill(rect{x0: area.x0, y0: area.y0, x1: area.x0 + outlineW - 1, y1: area.y1}, side)
		c.text(area.x0+1, area.y0, "OUTLINE", paint{fg: side.fg, bg: side.bg, bold: true}, -1)
		for i, h := range md.Outline() {
			if area.y0+1+i >= area.y1 {
				break
			}
			c.text(area.x0+h.Level, area.y0+1+i, h.Text, side, outlineW-h.Level-1)
		}
		body.x0 += outlineW
	}

	width := body.width() - 3
	var rows []string
	for _, line := range strings.Split(md.Content(), "\n") {
		if md.Mode() == apps.ModePreview {
			line = previewLine(line)
		}
		if line == "" {
			rows = append(rows, "")
			continue
		}
		rows = append(rows, wrap(line, width)...)
	}
	if md.Mode() == apps.ModeEdit {
		rows[len(rows)-1] += "▌"
	}
	text := rect{x0: body.x0 + 1, y0: body.y0, x1: body.x1, y1: body.y1 - 1}
	if over := len(rows) - text.height(); over > 0 {
		rows = rows[over:]
	}
	lines(c, text, rows, page)

	st := md.Stats()
	status := fmt.Sprintf("%d words  %d chars  %d min read  %s  %s", st.Words, st.Chars, st.ReadTime, md.Mode(), md.Theme())
	c.text(body.x0+2, body.y1, status, paint{fg: "244", bg: page.bg}, body.width()-3)
}

// previewLine renders one markdown line the way the preview pane shows it.
func previewLine(line string) string {
	trimmed := strings.TrimLeft(line, "#")
	if trimmed != line && strings.HasPrefix(trimmed, " ") {
		return strings.ToUpper(strings.TrimSpace(trimmed))
	}
	for _, bullet := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, bullet) {
			return "• " + line[len(bullet):]
		}
	}
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(line)
}

func drawChat(c *canvas, s *apps.ChatSession, v *windowView, area rect) {
	width := area.width() - 4
	var rows []string
	for _, msg := range s.Messages() {
		who := "Gemini"
		if msg.Role == model.RoleUser {
			who = "You"
		}
		rows = append(rows, wrap(who+": "+msg.Text, width)...)
		rows = append(rows, "")
	}
	if s.Busy() {
		rows = append(rows, "Gemini is thinking...")
	}
	text := rect{x0: area.x0, y0: area.y0, x1: area.x1, y1: area.y1 - 2}
	if over := len(rows) - text.height(); over > 0 {
		rows = rows[over:]
	}
	lines(c, text, rows, bodyPaint)

	c.text(area.x0, area.y1-1, strings.Repeat("─", area.width()), paint{fg: "240", bg: windowBG}, -1)
	prompt := "Ask Gemini anything... "
	if v.input != "" || s.Busy() {
		prompt = "› " + v.input + "▌"
	}
	c.text(area.x0+1, area.y1, prompt, paint{fg: "231", bg: windowBG}, area.width()-2)
}

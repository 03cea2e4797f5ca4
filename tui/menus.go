package tui

import (
	"math"

	"macsim/registry"
	"macsim/shell"
)

const (
	menuAbout    = "About This Mac"
	menuSleep    = "Sleep"
	menuRestart  = "Restart..."
	menuShutDown = "Shut Down..."
	menuLogOut   = "Log Out Guest..."

	menuWidth    = 24
	sideWidth    = 34
	spotlightW   = 52
	spotlightMax = 8
	tileW        = 16
	tileH        = 3
)

// appleMenu lists the apple menu; "" is a separator.
var appleMenu = []string{menuAbout, "", menuSleep, menuRestart, menuShutDown, "", menuLogOut}

func appleMenuRect() rect {
	return rect{x0: 0, y0: 1, x1: menuWidth - 1, y1: len(appleMenu) + 2}
}

func appleMenuItemAt(x, y int) (int, bool) {
	r := appleMenuRect()
	i := y - r.y0 - 1
	if !r.contains(x, y) || i < 0 || i >= len(appleMenu) || appleMenu[i] == "" {
		return 0, false
	}
	return i, true
}

// contextMenuRect places the menu at the pointer, kept on screen.
func contextMenuRect(menu shell.ContextMenu, width, height int) rect {
	h := len(menu.Items) + 2
	x := int(math.Floor(menu.X / cellW))
	y := int(math.Floor(menu.Y / cellH))
	x = clamp(x, 0, max(0, width-menuWidth))
	y = clamp(y, 1, max(1, height-1-h))
	return rect{x0: x, y0: y, x1: x + menuWidth - 1, y1: y + h - 1}
}

func contextMenuItemAt(menu shell.ContextMenu, width, height, x, y int) (string, bool) {
	r := contextMenuRect(menu, width, height)
	i := y - r.y0 - 1
	if !r.contains(x, y) || i < 0 || i >= len(menu.Items) || menu.Items[i].Separator {
		return "", false
	}
	return menu.Items[i].Label, true
}

type menuBar struct {
	apple, spotlight, control, notifications rect
	clockX                                   int
}

// menuBarLayout places the status items on the right of the menu bar:
// "⌕  ◐  ☰  <clock> ".
func menuBarLayout(width int, clock string) menuBar {
	clockX := width - len([]rune(clock)) - 1
	notes := clockX - 3
	control := notes - 3
	search := control - 3
	return menuBar{
		apple:         rect{x0: 0, y0: 0, x1: 2, y1: 0},
		spotlight:     rect{x0: search, y0: 0, x1: search, y1: 0},
		control:       rect{x0: control, y0: 0, x1: control, y1: 0},
		notifications: rect{x0: notes, y0: 0, x1: notes, y1: 0},
		clockX:        clockX,
	}
}

// sidePanelRect is where Control Center and Notification Center open.
func sidePanelRect(width, height int) rect {
	x0 := max(0, width-sideWidth-1)
	return rect{x0: x0, y0: 1, x1: width - 2, y1: max(2, height-dockRows-3)}
}

// spotlightLayout returns the Spotlight box and one row per visible result.
func spotlightLayout(results, width int) (rect, []rect) {
	n := min(results, spotlightMax)
	w := min(spotlightW, max(20, width-4))
	x0 := max(0, (width-w)/2)
	box := rect{x0: x0, y0: 4, x1: x0 + w - 1, y1: 4 + n + 2}
	rows := make([]rect, n)
	for i := range rows {
		y := box.y0 + 2 + i
		rows[i] = rect{x0: box.x0 + 1, y0: y, x1: box.x1 - 1, y1: y}
	}
	if n == 0 {
		box.y1 = box.y0 + 2
	}
	return box, rows
}

type tile struct {
	app registry.App
	r   rect
}

// launchpadLayout lays the apps out in a centered grid below the search row.
func launchpadLayout(list []registry.App, width, height int) []tile {
	cols := max(1, min(6, (width-4)/tileW))
	x0 := max(0, (width-cols*tileW)/2)
	y0 := 5
	out := make([]tile, 0, len(list))
	for i, a := range list {
		x := x0 + (i%cols)*tileW
		y := y0 + (i/cols)*(tileH+1)
		if y+tileH > height-dockRows-1 {
			break
		}
		out = append(out, tile{app: a, r: rect{x0: x, y0: y, x1: x + tileW - 2, y1: y + tileH - 1}})
	}
	return out
}

// contentRect is the inside of a window below the title row.
func contentRect(r rect) rect {
	return rect{x0: r.x0 + 1, y0: r.y0 + 1, x1: r.x1 - 1, y1: r.y1 - 1}
}

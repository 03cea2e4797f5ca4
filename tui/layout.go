package tui

import (
	"math"

	"macsim/model"
	"macsim/registry"
	"macsim/shell"
	"macsim/wm"
)

// One terminal cell stands for cellW x cellH desktop pixels.
const (
	cellW = 8
	cellH = 16

	iconCols = 12
	iconRows = 2

	dockRows = 3
)

// pixelOf returns the desktop pixel at the center of a cell.
func pixelOf(col, row int) (float64, float64) {
	return float64(col*cellW + cellW/2), float64(row*cellH + cellH/2)
}

// span returns the cells whose centers fall inside [start, start+size).
func span(start, size float64, unit int) (int, int) {
	half := float64(unit) / 2
	first := int(math.Ceil((start - half) / float64(unit)))
	last := int(math.Ceil((start+size-half)/float64(unit))) - 1
	return first, last
}

// windowRect is the window's frame in cells, consistent with the pixel
// hit-test of wm.Manager.TopmostAt.
func windowRect(w model.Window, vp wm.Viewport) rect {
	f := wm.Frame(w, vp)
	x0, x1 := span(f.X, f.Width, cellW)
	y0, y1 := span(f.Y, f.Height, cellH)
	return rect{x0: x0, y0: y0, x1: x1, y1: y1}
}

func iconRect(p model.Position) rect {
	x := int(math.Floor(p.X / cellW))
	y := int(math.Floor(p.Y / cellH))
	return rect{x0: x, y0: y, x1: x + iconCols - 1, y1: y + iconRows - 1}
}

// Traffic lights sit on the title row, right after the corner.
const (
	closeOffset    = 2
	minimizeOffset = 4
	maximizeOffset = 6
)

type dockSlot struct {
	app       registry.App
	launchpad bool
	r         rect
}

// dockLayout centers the dock on the rows above the footer.
func dockLayout(items []shell.DockItem, width, height int) (rect, []dockSlot) {
	const slotW = 4
	inner := (len(items) + 1) * slotW
	x0 := max(0, (width-inner-2)/2)
	frame := rect{x0: x0, y0: height - 1 - dockRows, x1: x0 + inner + 1, y1: height - 2}
	row := frame.y0 + 1

	slots := make([]dockSlot, 0, len(items)+1)
	x := x0 + 1
	for i, it := range items {
		if i == 1 {
			slots = append(slots, dockSlot{launchpad: true, r: rect{x0: x, y0: row, x1: x + slotW - 1, y1: row}})
			x += slotW
		}
		slots = append(slots, dockSlot{app: it.App, r: rect{x0: x, y0: row, x1: x + slotW - 1, y1: row}})
		x += slotW
	}
	return frame, slots
}

// viewportFor converts the terminal size to desktop pixels; the footer row
// is not part of the desktop.
func viewportFor(width, height int) wm.Viewport {
	return wm.Viewport{Width: float64(width * cellW), Height: float64(max(0, height-1) * cellH)}
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// paint is the look of one cell. It is comparable so runs of equal cells can
// be rendered together.
type paint struct {
	fg   lipgloss.Color
	bg   lipgloss.Color
	bold bool
}

func (p paint) style() lipgloss.Style {
	s := lipgloss.NewStyle().Bold(p.bold)
	if p.fg != "" {
		s = s.Foreground(p.fg)
	}
	if p.bg != "" {
		s = s.Background(p.bg)
	}
	return s
}

type cell struct {
	r rune
	p paint
}

type rect struct {
	x0, y0, x1, y1 int // inclusive
}

func (r rect) contains(x, y int) bool {
	return x >= r.x0 && x <= r.x1 && y >= r.y0 && y <= r.y1
}

func (r rect) width() int  { return r.x1 - r.x0 + 1 }
func (r rect) height() int { return r.y1 - r.y0 + 1 }

// canvas is a fixed grid the desktop is composed on, back to front.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int, bg paint) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{r: ' ', p: bg}
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) set(x, y int, r rune, p paint) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = cell{r: r, p: p}
}

// text writes s from (x, y), clipped to max columns and the canvas.
func (c *canvas) text(x, y int, s string, p paint, max int) {
	i := 0
	for _, r := range s {
		if max >= 0 && i >= max {
			return
		}
		c.set(x+i, y, r, p)
		i++
	}
}

func (c *canvas) fill(r rect, p paint) {
	for y := r.y0; y <= r.y1; y++ {
		for x := r.x0; x <= r.x1; x++ {
			c.set(x, y, ' ', p)
		}
	}
}

// box fills r and draws a rounded border around it.
func (c *canvas) box(r rect, fill, border paint) {
	c.fill(r, fill)
	b := lipgloss.RoundedBorder()
	for x := r.x0 + 1; x < r.x1; x++ {
		c.set(x, r.y0, firstRune(b.Top), border)
		c.set(x, r.y1, firstRune(b.Bottom), border)
	}
	for y := r.y0 + 1; y < r.y1; y++ {
		c.set(r.x0, y, firstRune(b.Left), border)
		c.set(r.x1, y, firstRune(b.Right), border)
	}
	c.set(r.x0, r.y0, firstRune(b.TopLeft), border)
	c.set(r.x1, r.y0, firstRune(b.TopRight), border)
	c.set(r.x0, r.y1, firstRune(b.BottomLeft), border)
	c.set(r.x1, r.y1, firstRune(b.BottomRight), border)
}

func (c *canvas) String() string {
	var sb strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].p == row[start].p {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, cl := range row[start:x] {
				run = append(run, cl.r)
			}
			sb.WriteString(row[start].p.style().Render(string(run)))
			start = x
		}
	}
	return sb.String()
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ' '
}

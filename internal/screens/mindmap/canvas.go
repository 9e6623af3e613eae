package mindmap

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/mindmap"
	"github.com/abhisek/capsulemed/internal/ui/theme"
	"github.com/abhisek/capsulemed/internal/viewport"
)

// Logical space is measured in pixels like the viewport constants; a
// terminal cell stands for cellW x cellH of them.
const (
	cellW = 8.0
	cellH = 16.0

	columnPx   = 240.0 // horizontal distance between depths
	rowPx      = cellH
	gapPx      = cellH // blank line between sibling blocks
	labelWords = 4
	labelCols  = 26
	descLines  = 3
)

// placed is a visible node with its logical position (the left end of its
// first line).
type placed struct {
	node   mindmap.Node
	parent string
	x, y   float64
	lines  []string
}

// layoutTree places the visible part of the tree: the root and the
// children of expanded nodes. Leaves stack downwards and each parent sits
// at the middle of its children; the result is shifted so the root is at
// the logical origin.
func layoutTree(root mindmap.Node) []placed {
	var out []placed
	cursor := 0.0

	var place func(n mindmap.Node, parent string) float64
	place = func(n mindmap.Node, parent string) float64 {
		idx := len(out)
		out = append(out, placed{node: n, parent: parent, x: float64(n.Depth) * columnPx, lines: nodeLines(n)})
		height := float64(len(out[idx].lines)) * rowPx

		var y float64
		if n.Expanded && len(n.Children) > 0 {
			first := place(n.Children[0], n.ID)
			last := first
			for _, ch := range n.Children[1:] {
				last = place(ch, n.ID)
			}
			y = (first + last) / 2
			if bottom := y + height + gapPx; bottom > cursor {
				cursor = bottom
			}
		} else {
			y = cursor
			cursor += height + gapPx
		}
		out[idx].y = y
		return y
	}
	rootY := place(root, "")

	for i := range out {
		out[i].y -= rootY
	}
	return out
}

func nodeLines(n mindmap.Node) []string {
	lines := []string{marker(n) + " " + clip(mindmap.DisplayLabel(n.Label, labelWords), labelCols)}
	if n.DescriptionOpen && n.Description != "" {
		wrapped := strings.Split(lipgloss.NewStyle().Width(labelCols).Render(n.Description), "\n")
		if len(wrapped) > descLines {
			wrapped = wrapped[:descLines]
			wrapped[descLines-1] = clip(strings.TrimRight(wrapped[descLines-1], " ")+"…", labelCols)
		}
		for _, w := range wrapped {
			lines = append(lines, "  "+strings.TrimRight(w, " "))
		}
	}
	return lines
}

func marker(n mindmap.Node) string {
	switch {
	case n.Loading:
		return "…"
	case !n.CanExpand():
		return "•"
	case n.Expanded:
		return "▾"
	}
	return "▸"
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// box returns the screen-space rectangle of a placed node's label line.
func (p placed) box(vp viewport.Viewport) viewport.Rect {
	sx, sy := vp.ToScreen(p.x, p.y)
	return viewport.Rect{X: sx, Y: sy, W: float64(len([]rune(p.lines[0]))) * cellW, H: cellH}
}

type cellStyle int

const (
	styleBlank cellStyle = iota
	styleEdge
	styleLabel
	styleRoot
	styleSelected
	styleTour
	styleDesc
)

var cellStyles = map[cellStyle]lipgloss.Style{
	styleBlank:    lipgloss.NewStyle(),
	styleEdge:     lipgloss.NewStyle().Foreground(theme.Border),
	styleLabel:    lipgloss.NewStyle().Foreground(theme.Text),
	styleRoot:     lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
	styleSelected: lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Highlight).Bold(true),
	styleTour:     lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Underline(true),
	styleDesc:     lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true),
}

type cell struct {
	r  rune
	st cellStyle
}

// canvas is a character grid the map is drawn on.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		c.cells[y] = make([]cell, w)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{r: ' '}
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, st cellStyle, overwrite bool) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	if !overwrite && c.cells[y][x].r != ' ' {
		return
	}
	c.cells[y][x] = cell{r: r, st: st}
}

func (c *canvas) text(x, y int, s string, st cellStyle) {
	for _, r := range s {
		c.set(x, y, r, st, true)
		x++
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].st == row[start].st {
				continue
			}
			var run strings.Builder
			for _, cl := range row[start:x] {
				run.WriteRune(cl.r)
			}
			if row[start].st == styleBlank {
				b.WriteString(run.String())
			} else {
				b.WriteString(cellStyles[row[start].st].Render(run.String()))
			}
			start = x
		}
	}
	return b.String()
}

func toCell(sx, sy float64) (int, int) {
	return int(sx / cellW), int(sy / cellH)
}

// drawMap renders the placed nodes through the viewport. selected and tour
// are node ids to highlight.
func drawMap(nodes []placed, vp viewport.Viewport, w, h int, selected, tour string) string {
	c := newCanvas(w, h)
	pos := make(map[string]placed, len(nodes))
	for _, p := range nodes {
		pos[p.node.ID] = p
	}

	for _, p := range nodes {
		parent, ok := pos[p.parent]
		if !ok {
			continue
		}
		px, py := toCell(vp.ToScreen(parent.x, parent.y))
		px += len([]rune(parent.lines[0])) + 1
		cx, cy := toCell(vp.ToScreen(p.x, p.y))
		mid := px + (cx-px)/2
		for x := px; x < mid; x++ {
			c.set(x, py, '─', styleEdge, false)
		}
		lo, hi := py, cy
		if lo > hi {
			lo, hi = hi, lo
		}
		for y := lo; y <= hi; y++ {
			c.set(mid, y, '│', styleEdge, false)
		}
		for x := mid + 1; x < cx-1; x++ {
			c.set(x, cy, '─', styleEdge, false)
		}
	}

	for _, p := range nodes {
		x, y := toCell(vp.ToScreen(p.x, p.y))
		st := styleLabel
		switch {
		case p.node.ID == selected:
			st = styleSelected
		case p.node.ID == tour:
			st = styleTour
		case p.node.Depth == 0:
			st = styleRoot
		}
		c.text(x, y, p.lines[0], st)
		for i, line := range p.lines[1:] {
			c.text(x, y+i+1, line, styleDesc)
		}
	}
	return c.String()
}

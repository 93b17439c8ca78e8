package views

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/EddieRydell/vibetracker/internal/gesture"
	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/show"
	"github.com/EddieRydell/vibetracker/internal/thumbs"
	"github.com/EddieRydell/vibetracker/internal/timeline"
	"github.com/EddieRydell/vibetracker/internal/types"
)

const timelineHelp = "space: play | a: add | d/y/p: cut/copy/paste | u: undo | R: region | t: tool | tab: view"

// RenderTimelineView renders the stacked fixture rows with the gutter on the
// left. Only the rows the viewport reaches are drawn; everything scrolled
// out costs nothing.
func RenderTimelineView(m *model.Model) string {
	styles := getCommonStyles()
	var content strings.Builder

	name := "untitled"
	seqCount := 0
	if sh := m.Store.Show; sh != nil {
		if sh.Name != "" {
			name = sh.Name
		}
		seqCount = len(sh.Sequences)
	}
	seqName := ""
	if seq := m.CurrentSequence(); seq != nil {
		seqName = seq.Name
	}
	dirty := ""
	if m.Store.Dirty() {
		dirty = " *"
	}
	left := styles.Title.Render(fmt.Sprintf("%s [%s %d/%d]%s", name, seqName, m.CurrentSeq+1, seqCount, dirty))
	content.WriteString(RenderHeader(m, left, transportStatus(m)))

	viewport := m.ContentViewportHeight()
	width := m.CanvasWidth()
	for sy := 0; sy < viewport; sy++ {
		content.WriteString(renderContentLine(m, styles, m.ScrollY+sy, width))
		content.WriteString("\n")
	}

	content.WriteString(RenderFooter(m, viewport, timelineHelp))
	return content.String()
}

// renderContentLine renders one screen row of the content area: the gutter
// cell and the lane of whichever fixture row covers content line cy.
func renderContentLine(m *model.Model, styles *ViewStyles, cy, width int) string {
	if len(m.Rows) == 0 || cy >= timeline.ContentHeight(m.Offsets) {
		cells := blankCells(width)
		overlayPlayhead(m, cells)
		return strings.Repeat(" ", types.GutterWidth) + renderCells(cells)
	}
	row := timeline.RowAtY(m.Offsets, cy)
	lane := cy - m.Offsets[row].Top
	return renderGutterCell(m, styles, row, lane) + renderRowLane(m, row, lane, width)
}

// renderGutterCell labels a fixture row on its first lane line: cursor
// arrow, fixture name, and the live output level meter.
func renderGutterCell(m *model.Model, styles *ViewStyles, row, lane int) string {
	if lane != 0 {
		return strings.Repeat(" ", types.GutterWidth)
	}
	r := m.Rows[row]
	name := r.FixtureID
	if f := m.Store.Show.FixtureByID(r.FixtureID); f != nil && f.Name != "" {
		name = f.Name
	}
	text := padTo(name, types.GutterWidth-4)
	arrow := " "
	cell := styles.Normal.Render(text)
	if row == m.CurrentRow {
		arrow = "▶"
		cell = styles.Selected.Render(text)
	}
	return arrow + " " + cell + " " + levelCell(m, row)
}

// levelCell shows the engine-reported output level for the fixture as a
// single block character. Fixtures are reported in document order, the same
// order rows stack in.
func levelCell(m *model.Model, row int) string {
	if row >= len(m.Levels) {
		return " "
	}
	v := float64(m.Levels[row])
	if v <= 0 {
		return " "
	}
	idx := int(v * 8)
	if idx > 7 {
		idx = 7
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(string(waveChars[idx]))
}

func renderRowLane(m *model.Model, row, lane, width int) string {
	cells := blankCells(width)
	r := m.Rows[row]
	d := m.Gest.Active()

	for _, p := range r.Effects {
		if p.Lane != lane {
			continue
		}
		start, end := p.StartSec, p.EndSec()
		if d != nil && d.Key == p.Key {
			switch d.Kind {
			case gesture.DragResize:
				start, end = d.PreviewStart, d.PreviewEnd
			case gesture.DragMove:
				if d.Moved {
					continue // drawn as a ghost on the target row
				}
			}
		}
		paintBar(m, cells, p, start, end)
	}

	if d != nil && d.Kind == gesture.DragMove && d.Moved && lane == 0 && d.PreviewRow == row {
		paintGhost(m, cells, d.PreviewStart, d.PreviewEnd)
	}
	if d != nil && d.Kind == gesture.DragMarquee && d.Moved {
		paintMarquee(m, cells, d, m.Offsets[row].Top+lane)
	}
	overlayPlayhead(m, cells)
	return renderCells(cells)
}

// paintBar draws one effect bar between start and end seconds. Cell colors
// come from the cached thumbnail when the async render has landed, else a
// flat fallback from the effect's own color parameter.
func paintBar(m *model.Model, cells []cell, p timeline.PlacedEffect, start, end float64) {
	width := len(cells)
	c0 := int(m.Map.TimeToPx(start)) - m.ScrollX
	c1 := int(math.Ceil(m.Map.TimeToPx(end))) - 1 - m.ScrollX
	if c1 < 0 || c0 >= width {
		return
	}
	barLen := c1 - c0 + 1

	eff, ok := m.Store.EffectAt(m.CurrentSeq, p.TrackIndex, p.EffectIndex)
	if !ok {
		return
	}
	var strip *image.RGBA
	if img, cached := m.Thumbs.Get(m.ThumbKeyFor(p)); cached {
		strip = thumbs.ScaleToCells(img, barLen, 1)
	}
	selected := m.SelectionContains(p.Key)
	label := []rune(string(eff.Kind))

	for i := 0; i < barLen; i++ {
		x := c0 + i
		if x < 0 || x >= width {
			continue
		}
		col := barCellColor(strip, eff, i)
		if selected {
			col = col.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, 0.4)
		}
		ch := ' '
		if barLen >= len(label)+2 && i >= 1 && i-1 < len(label) {
			ch = label[i-1]
		}
		fg := "0"
		if luminance(col) < 0.5 {
			fg = "15"
		}
		cells[x] = cell{ch: ch, fg: fg, bg: col.Clamped().Hex()}
	}

	if selected {
		if c0 >= 0 && c0 < width {
			cells[c0].ch = '▌'
			cells[c0].fg = "15"
		}
		if c1 >= 0 && c1 < width {
			cells[c1].ch = '▐'
			cells[c1].fg = "15"
		}
	}
}

func barCellColor(strip *image.RGBA, eff show.EffectInstance, i int) colorful.Color {
	if strip != nil {
		o := strip.PixOffset(i, 0)
		return colorful.Color{
			R: float64(strip.Pix[o]) / 255,
			G: float64(strip.Pix[o+1]) / 255,
			B: float64(strip.Pix[o+2]) / 255,
		}
	}
	rgb := show.ColorOr(eff.Params, "color", [3]float64{0.5, 0.5, 0.5})
	return colorful.Color{R: rgb[0] * 0.6, G: rgb[1] * 0.6, B: rgb[2] * 0.6}
}

func luminance(c colorful.Color) float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// paintGhost shades the span a move drag would land on.
func paintGhost(m *model.Model, cells []cell, start, end float64) {
	width := len(cells)
	c0 := int(m.Map.TimeToPx(start)) - m.ScrollX
	c1 := int(math.Ceil(m.Map.TimeToPx(end))) - 1 - m.ScrollX
	for x := c0; x <= c1; x++ {
		if x < 0 || x >= width {
			continue
		}
		cells[x] = cell{ch: '▒', fg: "7", bg: cells[x].bg}
	}
}

// paintMarquee dots the empty cells of the selection rectangle crossing
// content line cy. Drag coordinates are content space.
func paintMarquee(m *model.Model, cells []cell, d *gesture.Drag, cy int) {
	y0, y1 := d.StartY, d.LastY
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if cy < y0 || cy > y1 {
		return
	}
	x0, x1 := d.StartX, d.LastX
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		sx := x - m.ScrollX
		if sx < 0 || sx >= len(cells) {
			continue
		}
		if cells[sx].ch == ' ' && cells[sx].bg == "" {
			cells[sx] = cell{ch: '·', fg: "8"}
		}
	}
}

func overlayPlayhead(m *model.Model, cells []cell) {
	col := m.PlayheadCell() - m.ScrollX
	if col < 0 || col >= len(cells) {
		return
	}
	cells[col] = cell{ch: '│', fg: "9", bg: cells[col].bg}
}

package views

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/EddieRydell/vibetracker/internal/gesture"
	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// Common styles used across all views
type ViewStyles struct {
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Label    lipgloss.Style
	Title    lipgloss.Style
	Playback lipgloss.Style
	Status   lipgloss.Style
	Group    lipgloss.Style
}

// getCommonStyles returns the standard style definitions used across views
func getCommonStyles() *ViewStyles {
	return &ViewStyles{
		Selected: lipgloss.NewStyle().Background(lipgloss.Color("7")).Foreground(lipgloss.Color("0")),
		Normal:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Title:    lipgloss.NewStyle().Bold(true),
		Playback: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Group:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// cell is one styled screen character. Empty fg and bg render unstyled.
type cell struct {
	ch rune
	fg string
	bg string
}

func blankCells(n int) []cell {
	cs := make([]cell, n)
	for i := range cs {
		cs[i].ch = ' '
	}
	return cs
}

// renderCells batches runs of identically styled cells into single lipgloss
// renders, so a mostly-empty canvas line costs a handful of escape sequences
// instead of one per column.
func renderCells(cells []cell) string {
	var b strings.Builder
	var run strings.Builder
	flush := func(fg, bg string) {
		if run.Len() == 0 {
			return
		}
		s := run.String()
		run.Reset()
		if fg == "" && bg == "" {
			b.WriteString(s)
			return
		}
		st := lipgloss.NewStyle()
		if fg != "" {
			st = st.Foreground(lipgloss.Color(fg))
		}
		if bg != "" {
			st = st.Background(lipgloss.Color(bg))
		}
		b.WriteString(st.Render(s))
	}
	curFg, curBg := "", ""
	for i, c := range cells {
		if i > 0 && (c.fg != curFg || c.bg != curBg) {
			flush(curFg, curBg)
		}
		curFg, curBg = c.fg, c.bg
		run.WriteRune(c.ch)
	}
	flush(curFg, curBg)
	return b.String()
}

// padTo truncates or pads s to exactly w cells.
func padTo(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > w {
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}

func truncTo(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > w {
		return string(r[:w])
	}
	return s
}

// formatTime renders seconds as m:ss.cc.
func formatTime(t float64) string {
	if t < 0 {
		t = 0
	}
	min := int(t) / 60
	return fmt.Sprintf("%d:%05.2f", min, t-float64(min*60))
}

func playIndicator(m *model.Model) string {
	if m.Engine.Playing() {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("▶")
	}
	return ""
}

// transportStatus is the right side of the title bar: playhead over
// duration, zoom, and the loop flag.
func transportStatus(m *model.Model) string {
	s := fmt.Sprintf("%s / %s  %.3g px/s",
		formatTime(m.Engine.CurrentTime()), formatTime(m.Engine.Duration()), m.Map.PxPerSec)
	if m.Engine.Looping() {
		s += "  loop"
	}
	return s
}

// RenderHeader renders the three chrome lines above the content area: the
// title bar, the audio overview strip, and the time ruler. Every view uses
// it so pointer row math never depends on which view is up.
func RenderHeader(m *model.Model, leftContent, rightContent string) string {
	var content strings.Builder

	indicator := playIndicator(m)
	availableWidth := m.TermWidth
	leftLen := lipgloss.Width(leftContent)
	rightLen := lipgloss.Width(rightContent)
	indicatorLen := 0
	if indicator != "" {
		indicatorLen = 2 // space + arrow
	}
	paddingSize := availableWidth - leftLen - rightLen - indicatorLen
	if paddingSize < 1 {
		paddingSize = 1
	}
	fullHeader := leftContent
	if rightContent != "" {
		fullHeader += strings.Repeat(" ", paddingSize) + rightContent
	}
	if indicator != "" {
		fullHeader += " " + indicator
	}
	content.WriteString(fullHeader)
	content.WriteString("\n")

	content.WriteString(renderWaveLine(m))
	content.WriteString("\n")
	content.WriteString(renderRulerLine(m))
	content.WriteString("\n")

	return content.String()
}

func renderRulerLine(m *model.Model) string {
	styles := getCommonStyles()
	toolName := "select"
	if m.Tool == types.ToolSwipe {
		toolName = "swipe"
	}
	gutter := styles.Label.Render(padTo("tool:"+toolName, types.GutterWidth))
	return gutter + renderRuler(m)
}

// renderRuler draws tick marks with time labels, the loop region band, and
// the playhead chevron across the canvas width.
func renderRuler(m *model.Model) string {
	width := m.CanvasWidth()
	if width <= 0 {
		return ""
	}
	cells := blankCells(width)

	step := m.Map.TickSpacing(types.RulerIdealTickPx)
	t0 := m.Map.PxToTime(float64(m.ScrollX))
	t1 := m.Map.PxToTime(float64(m.ScrollX + width))
	for k := int(math.Ceil(t0 / step)); float64(k)*step <= t1; k++ {
		t := float64(k) * step
		col := int(m.Map.TimeToPx(t)) - m.ScrollX
		if col < 0 || col >= width {
			continue
		}
		cells[col] = cell{ch: '|', fg: "8"}
		for i, ch := range tickLabel(t, step) {
			x := col + 1 + i
			if x >= width {
				break
			}
			cells[x] = cell{ch: ch, fg: "8"}
		}
	}

	// Loop region band. While a ruler drag is live, show its preview
	// instead of the committed region.
	region := m.Engine.Region()
	if d := m.Gest.Active(); d != nil && d.Kind == gesture.DragRegion && d.Moved {
		region = &[2]float64{d.PreviewStart, d.PreviewEnd}
	}
	if region != nil {
		a := int(m.Map.TimeToPx(region[0])) - m.ScrollX
		b := int(m.Map.TimeToPx(region[1])) - m.ScrollX
		for x := a; x <= b; x++ {
			if x < 0 || x >= width {
				continue
			}
			cells[x].fg = "0"
			cells[x].bg = "3"
		}
	}

	if col := m.PlayheadCell() - m.ScrollX; col >= 0 && col < width {
		cells[col] = cell{ch: '▼', fg: "9", bg: cells[col].bg}
	}
	return renderCells(cells)
}

func tickLabel(t, step float64) string {
	if step >= 1 {
		return fmt.Sprintf("%d:%02d", int(t)/60, int(t)%60)
	}
	return fmt.Sprintf("%.2f", t)
}

// RenderFooter pads the view to the full terminal height, then renders the
// key help line and the status line. A live prompt replaces the status.
func RenderFooter(m *model.Model, contentLines int, helpText string) string {
	styles := getCommonStyles()
	var content strings.Builder

	viewport := m.ContentViewportHeight()
	for i := contentLines; i < viewport; i++ {
		content.WriteString("\n")
	}

	content.WriteString(styles.Label.Render(truncTo(helpText, m.TermWidth)))
	content.WriteString("\n")

	if m.Prompt != types.PromptNone {
		content.WriteString(styles.Normal.Render(promptLabel(m.Prompt)))
		content.WriteString(m.PromptInput.View())
	} else if m.StatusMsg != "" {
		content.WriteString(styles.Status.Render(truncTo(m.StatusMsg, m.TermWidth)))
	}
	return content.String()
}

func promptLabel(p types.Prompt) string {
	switch p {
	case types.PromptOpenShow:
		return "open: "
	case types.PromptSaveShowAs:
		return "save as: "
	case types.PromptRenameTrack:
		return "rename: "
	}
	return ""
}

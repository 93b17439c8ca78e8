package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/EddieRydell/vibetracker/internal/gesture"
	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// HandleMouse routes pointer events on the timeline view. Wheel events
// scroll or zoom, the left button drives the gesture machine, and clicks on
// the chrome rows seek or scrub the region.
func HandleMouse(m *model.Model, msg tea.MouseMsg) tea.Cmd {
	if m.ViewMode != types.TimelineView {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown,
		tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
		handleWheel(m, msg)
		return nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			handlePress(m, msg)
		}
	case tea.MouseActionMotion:
		if m.Gest.Dragging() {
			cx, cy, _ := m.ScreenToContent(msg.X, msg.Y)
			m.Gest.Update(cx, cy)
		}
	case tea.MouseActionRelease:
		if m.Gest.Dragging() {
			cx, cy, _ := m.ScreenToContent(msg.X, msg.Y)
			m.Gest.End(cx, cy)
			m.RebuildLayout()
		}
	}
	return nil
}

func handleWheel(m *model.Model, msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Ctrl {
			m.Zoom(true)
		} else if msg.Shift {
			m.ScrollBy(-4, 0)
		} else {
			m.ScrollBy(0, -3)
		}
	case tea.MouseButtonWheelDown:
		if msg.Ctrl {
			m.Zoom(false)
		} else if msg.Shift {
			m.ScrollBy(4, 0)
		} else {
			m.ScrollBy(0, 3)
		}
	case tea.MouseButtonWheelLeft:
		m.ScrollBy(-4, 0)
	case tea.MouseButtonWheelRight:
		m.ScrollBy(4, 0)
	}
}

func handlePress(m *model.Model, msg tea.MouseMsg) {
	cx, cy, inCanvas := m.ScreenToContent(msg.X, msg.Y)

	// Chrome rows: the ruler scrubs the loop region, the wave strip seeks.
	if msg.X >= types.GutterWidth {
		if m.OnRuler(msg.Y) {
			m.Gest.BeginRegion(cx, 0)
			return
		}
		if m.OnWaveStrip(msg.Y) {
			m.Seek(m.Map.PxToTime(float64(cx)))
			return
		}
	}

	// Gutter click: jump the row cursor to the clicked fixture.
	if msg.X < types.GutterWidth && msg.Y >= types.HeaderLines && msg.Y < m.TermHeight-types.FooterLines {
		if row := rowAtContentY(m, cy); row >= 0 {
			m.CurrentRow = row
			m.EnsureRowVisible(row)
		}
		return
	}

	if !inCanvas {
		return
	}

	additive := msg.Shift || msg.Ctrl
	if m.Tool == types.ToolSwipe {
		m.Gest.BeginSwipe(cx, cy)
		return
	}

	hit, found := m.Gest.HitTest(cx, cy)
	switch {
	case found && !additive && hit.Edge != gesture.EdgeNone:
		m.Gest.BeginResize(hit, cx, cy)
	case found:
		m.Gest.BeginMove(hit, cx, cy, additive)
	default:
		m.Gest.BeginMarquee(cx, cy, additive)
	}
}

func rowAtContentY(m *model.Model, cy int) int {
	for i, off := range m.Offsets {
		if cy >= off.Top && cy < off.Bottom {
			return i
		}
	}
	return -1
}

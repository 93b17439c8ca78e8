package model

// Viewport manipulation helper functions

// ScrollBy pans the canvas by whole cells, clamped to the content bounds.
func (m *Model) ScrollBy(dx, dy int) {
	m.ScrollX += dx
	m.ScrollY += dy
	m.clampScroll()
}

// Zoom changes the horizontal scale while keeping the time under the
// playhead at the same screen column, so zooming never loses the spot
// being edited.
func (m *Model) Zoom(in bool) {
	anchor := m.Engine.CurrentTime()
	anchorCol := m.Map.TimeToPx(anchor) - float64(m.ScrollX)
	if in {
		m.Map.ZoomIn()
	} else {
		m.Map.ZoomOut()
	}
	m.ScrollX = int(m.Map.TimeToPx(anchor) - anchorCol)
	m.clampScroll()
	m.Gest.Map = &m.Map
}

// ZoomFit rescales so the whole sequence spans the canvas.
func (m *Model) ZoomFit() {
	m.Map.ZoomToFit(m.CanvasWidth())
	m.ScrollX = 0
	m.clampScroll()
	m.Gest.Map = &m.Map
}

// CellSeconds is the time covered by one canvas cell at the current zoom.
func (m *Model) CellSeconds() float64 {
	if m.Map.PxPerSec <= 0 {
		return 0
	}
	return 1.0 / m.Map.PxPerSec
}

// MoveCursor moves the keyboard row cursor and keeps it on screen.
func (m *Model) MoveCursor(delta int) {
	m.CurrentRow += delta
	m.clampCursor()
	m.EnsureRowVisible(m.CurrentRow)
}

// EnsureRowVisible scrolls vertically just enough to show the row.
func (m *Model) EnsureRowVisible(row int) {
	if row < 0 || row >= len(m.Offsets) {
		return
	}
	top := m.Offsets[row].Top
	bottom := m.Offsets[row].Bottom
	viewport := m.ContentViewportHeight()
	if top < m.ScrollY {
		m.ScrollY = top
	} else if bottom > m.ScrollY+viewport {
		m.ScrollY = bottom - viewport
	}
	m.clampScroll()
}

// FollowPlayhead recenters the canvas when the playhead runs off screen
// during playback.
func (m *Model) FollowPlayhead() {
	if !m.Engine.Playing() {
		return
	}
	col := m.PlayheadCell()
	width := m.CanvasWidth()
	if width <= 0 {
		return
	}
	if col < m.ScrollX || col >= m.ScrollX+width {
		m.ScrollX = col - width/2
		m.clampScroll()
	}
}

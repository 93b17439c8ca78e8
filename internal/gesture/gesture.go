// Package gesture turns low-level pointer events in timeline content
// coordinates into editing operations. One drag is live at a time; it is
// previewed while the pointer moves and committed only on release.
package gesture

import (
	"errors"
	"log"
	"math"

	"github.com/EddieRydell/vibetracker/internal/show"
	"github.com/EddieRydell/vibetracker/internal/timeline"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// Mutator is the slice of the editing store a drag commit needs. All track
// and effect indices refer to the sequence the Machine is currently bound to.
type Mutator interface {
	EnsureTrackForFixture(fixtureID string) (int, bool, error)
	UpdateEffectTimeRange(track, effect int, start, end float64) (int, error)
	MoveEffectToTrack(from, effect, to int) (int, error)
}

// Selection mutates the editor's selected-effect set, keyed by show.KeyFor.
type Selection interface {
	ReplaceSelection(keys []string)
	AddToSelection(key string)
	RemoveFromSelection(key string)
	ToggleSelection(key string)
	SelectionContains(key string) bool
	SelectionSnapshot() []string
}

// Transport receives the playhead and loop-region side effects of clicks
// and ruler drags.
type Transport interface {
	SeekTo(t float64)
	ApplyRegion(r *[2]float64)
}

type DragKind int

const (
	DragResize DragKind = iota
	DragMove
	DragMarquee
	DragSwipe
	DragRegion
)

type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
)

// Drag is the live gesture. Views read the preview fields to draw ghosts;
// only End writes anything through the Mutator.
type Drag struct {
	Kind   DragKind
	StartX int
	StartY int
	LastX  int
	LastY  int
	Moved  bool

	// resize and move
	Key          string
	Track        int
	Effect       int
	Edge         Edge
	OrigStart    float64
	OrigEnd      float64
	OrigRow      int
	PreviewStart float64
	PreviewEnd   float64
	PreviewRow   int
	Additive     bool

	// marquee
	BaseSel []string

	// swipe
	RemoveMode bool
	Touched    map[string]struct{}

	// region
	AnchorTime float64
}

// Hit identifies the effect cell under a content coordinate.
type Hit struct {
	Key    string
	Track  int
	Effect int
	Row    int
	Start  float64
	End    float64
	Edge   Edge
}

// Machine runs one gesture at a time against the current sequence layout.
// The model refreshes Map, Rows, Offsets and Duration whenever the layout
// is rebuilt.
type Machine struct {
	Map      *timeline.Mapper
	Rows     []timeline.StackedRow
	Offsets  []timeline.RowOffset
	Duration float64

	Mut   Mutator
	Sel   Selection
	Trans Transport

	active *Drag
}

// Active returns the live drag, or nil.
func (m *Machine) Active() *Drag { return m.active }

func (m *Machine) Dragging() bool { return m.active != nil }

// HitTest finds the effect occupying the given content cell. Edge is set
// when the cell is the first or last of an effect wide enough to grab.
func (m *Machine) HitTest(x, y int) (Hit, bool) {
	row := timeline.RowAtY(m.Offsets, y)
	if row < 0 || row >= len(m.Rows) {
		return Hit{}, false
	}
	lane := y - m.Offsets[row].Top
	if lane < 0 || lane >= m.Rows[row].LaneCount {
		return Hit{}, false
	}
	for _, e := range m.Rows[row].Effects {
		if e.Lane != lane {
			continue
		}
		startCell, endCell := m.cellSpan(e.StartSec, e.EndSec())
		if x < startCell || x > endCell {
			continue
		}
		h := Hit{
			Key:    e.Key,
			Track:  e.TrackIndex,
			Effect: e.EffectIndex,
			Row:    row,
			Start:  e.StartSec,
			End:    e.EndSec(),
		}
		if endCell-startCell+1 >= 3 {
			switch x {
			case startCell:
				h.Edge = EdgeLeft
			case endCell:
				h.Edge = EdgeRight
			}
		}
		return h, true
	}
	return Hit{}, false
}

func (m *Machine) cellSpan(start, end float64) (int, int) {
	startCell := int(m.Map.TimeToPx(start))
	endCell := int(math.Ceil(m.Map.TimeToPx(end))) - 1
	if endCell < startCell {
		endCell = startCell
	}
	return startCell, endCell
}

// BeginResize starts an edge drag. Returns false if a gesture is already live.
func (m *Machine) BeginResize(h Hit, x, y int) bool {
	if m.active != nil || h.Edge == EdgeNone {
		return false
	}
	m.active = &Drag{
		Kind:         DragResize,
		StartX:       x,
		StartY:       y,
		LastX:        x,
		LastY:        y,
		Key:          h.Key,
		Track:        h.Track,
		Effect:       h.Effect,
		Edge:         h.Edge,
		OrigStart:    h.Start,
		OrigEnd:      h.End,
		OrigRow:      h.Row,
		PreviewStart: h.Start,
		PreviewEnd:   h.End,
		PreviewRow:   h.Row,
	}
	return true
}

// BeginMove starts a body drag. A release without movement falls back to a
// selection click, honoring the additive modifier.
func (m *Machine) BeginMove(h Hit, x, y int, additive bool) bool {
	if m.active != nil {
		return false
	}
	m.active = &Drag{
		Kind:         DragMove,
		StartX:       x,
		StartY:       y,
		LastX:        x,
		LastY:        y,
		Key:          h.Key,
		Track:        h.Track,
		Effect:       h.Effect,
		OrigStart:    h.Start,
		OrigEnd:      h.End,
		OrigRow:      h.Row,
		PreviewStart: h.Start,
		PreviewEnd:   h.End,
		PreviewRow:   h.Row,
		Additive:     additive,
	}
	return true
}

func (m *Machine) BeginMarquee(x, y int, additive bool) bool {
	if m.active != nil {
		return false
	}
	var base []string
	if additive {
		base = m.Sel.SelectionSnapshot()
	}
	m.active = &Drag{
		Kind:     DragMarquee,
		StartX:   x,
		StartY:   y,
		LastX:    x,
		LastY:    y,
		BaseSel:  base,
		Additive: additive,
	}
	return true
}

// BeginSwipe starts paint-selection. The effect under the press decides the
// mode: swiping from a selected effect removes, otherwise it adds.
func (m *Machine) BeginSwipe(x, y int) bool {
	if m.active != nil {
		return false
	}
	d := &Drag{
		Kind:    DragSwipe,
		StartX:  x,
		StartY:  y,
		LastX:   x,
		LastY:   y,
		Touched: map[string]struct{}{},
	}
	m.active = d
	if h, ok := m.HitTest(x, y); ok {
		d.RemoveMode = m.Sel.SelectionContains(h.Key)
		m.swipeApply(d, h.Key)
	}
	return true
}

func (m *Machine) BeginRegion(x, y int) bool {
	if m.active != nil {
		return false
	}
	t := m.timeAt(x)
	m.active = &Drag{
		Kind:         DragRegion,
		StartX:       x,
		StartY:       y,
		LastX:        x,
		LastY:        y,
		AnchorTime:   t,
		PreviewStart: t,
		PreviewEnd:   t,
	}
	return true
}

// Update advances the live drag to a new pointer position.
func (m *Machine) Update(x, y int) {
	d := m.active
	if d == nil {
		return
	}
	if abs(x-d.StartX) >= types.DragThresholdCells || abs(y-d.StartY) >= types.DragThresholdCells {
		d.Moved = true
	}
	d.LastX, d.LastY = x, y

	switch d.Kind {
	case DragResize:
		dt := m.timeAt(x) - m.timeAt(d.StartX)
		if d.Edge == EdgeLeft {
			d.PreviewStart = clamp(d.OrigStart+dt, 0, d.OrigEnd-types.MinEffectDuration)
		} else {
			d.PreviewEnd = clamp(d.OrigEnd+dt, d.OrigStart+types.MinEffectDuration, m.Duration)
		}
	case DragMove:
		dt := m.timeAt(x) - m.timeAt(d.StartX)
		dur := d.OrigEnd - d.OrigStart
		start := clamp(d.OrigStart+dt, 0, m.Duration-dur)
		d.PreviewStart = start
		d.PreviewEnd = start + dur
		if row := timeline.RowAtY(m.Offsets, y); row >= 0 {
			d.PreviewRow = row
		}
	case DragSwipe:
		if h, ok := m.HitTest(x, y); ok {
			m.swipeApply(d, h.Key)
		}
	case DragRegion:
		t := m.timeAt(x)
		d.PreviewStart = math.Min(d.AnchorTime, t)
		d.PreviewEnd = math.Max(d.AnchorTime, t)
	}
}

// End releases the pointer, committing the drag or running its click
// fallback. Effects that vanished mid-drag (an undo landed) are dropped
// silently.
func (m *Machine) End(x, y int) {
	d := m.active
	if d == nil {
		return
	}
	m.Update(x, y)
	m.active = nil

	switch d.Kind {
	case DragResize:
		if !d.Moved {
			m.clickSelect(d.Key, false)
			return
		}
		m.commitResize(d)
	case DragMove:
		if !d.Moved {
			m.clickSelect(d.Key, d.Additive)
			return
		}
		m.commitMove(d)
	case DragMarquee:
		if !d.Moved {
			if !d.Additive {
				m.Sel.ReplaceSelection(nil)
			}
			m.Trans.SeekTo(m.timeAt(x))
			return
		}
		m.Sel.ReplaceSelection(m.marqueeKeys(d))
	case DragSwipe:
		// selection already applied while swiping
	case DragRegion:
		if !d.Moved {
			m.Trans.ApplyRegion(nil)
			m.Trans.SeekTo(m.timeAt(x))
			return
		}
		r := [2]float64{d.PreviewStart, d.PreviewEnd}
		m.Trans.ApplyRegion(&r)
	}
}

// Cancel drops the live drag without committing.
func (m *Machine) Cancel() { m.active = nil }

func (m *Machine) clickSelect(key string, additive bool) {
	if additive {
		m.Sel.ToggleSelection(key)
		return
	}
	m.Sel.ReplaceSelection([]string{key})
}

func (m *Machine) commitResize(d *Drag) {
	idx, err := m.Mut.UpdateEffectTimeRange(d.Track, d.Effect, d.PreviewStart, d.PreviewEnd)
	if err != nil {
		if !errors.Is(err, show.ErrNotFound) {
			log.Printf("Error resizing effect: %v", err)
		}
		return
	}
	m.Sel.ReplaceSelection([]string{show.KeyFor(d.Track, idx)})
}

func (m *Machine) commitMove(d *Drag) {
	track := d.Track
	effect := d.Effect
	if d.PreviewRow != d.OrigRow && d.PreviewRow >= 0 && d.PreviewRow < len(m.Rows) {
		dest, _, err := m.Mut.EnsureTrackForFixture(m.Rows[d.PreviewRow].FixtureID)
		if err != nil {
			log.Printf("Error resolving destination track: %v", err)
			return
		}
		idx, err := m.Mut.MoveEffectToTrack(track, effect, dest)
		if err != nil {
			if !errors.Is(err, show.ErrNotFound) {
				log.Printf("Error moving effect: %v", err)
			}
			return
		}
		track, effect = dest, idx
	}
	idx, err := m.Mut.UpdateEffectTimeRange(track, effect, d.PreviewStart, d.PreviewEnd)
	if err != nil {
		if !errors.Is(err, show.ErrNotFound) {
			log.Printf("Error moving effect: %v", err)
		}
		return
	}
	m.Sel.ReplaceSelection([]string{show.KeyFor(track, idx)})
}

// marqueeKeys collects effects whose cells intersect the drag rectangle,
// keeping any additive base selection in place.
func (m *Machine) marqueeKeys(d *Drag) []string {
	xMin, xMax := d.StartX, d.LastX
	if xMax < xMin {
		xMin, xMax = xMax, xMin
	}
	yMin, yMax := d.StartY, d.LastY
	if yMax < yMin {
		yMin, yMax = yMax, yMin
	}
	tA := m.timeAt(xMin)
	tB := m.timeAt(xMax + 1)

	seen := map[string]struct{}{}
	keys := make([]string, 0, len(d.BaseSel))
	for _, k := range d.BaseSel {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for r, row := range m.Rows {
		if r >= len(m.Offsets) {
			break
		}
		for _, e := range row.Effects {
			laneY := m.Offsets[r].Top + e.Lane
			if laneY < yMin || laneY > yMax {
				continue
			}
			if e.StartSec >= tB || e.EndSec() <= tA {
				continue
			}
			if _, ok := seen[e.Key]; ok {
				continue
			}
			seen[e.Key] = struct{}{}
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func (m *Machine) swipeApply(d *Drag, key string) {
	if _, ok := d.Touched[key]; ok {
		return
	}
	d.Touched[key] = struct{}{}
	if d.RemoveMode {
		m.Sel.RemoveFromSelection(key)
		return
	}
	m.Sel.AddToSelection(key)
}

func (m *Machine) timeAt(x int) float64 {
	return m.Map.PxToTime(float64(x))
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

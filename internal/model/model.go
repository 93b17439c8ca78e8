// Package model holds the whole editor state: the undoable show document,
// the viewport onto the current sequence, playback, selection and the live
// gesture. Views render from it; input mutates it.
package model

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/EddieRydell/vibetracker/internal/engine"
	"github.com/EddieRydell/vibetracker/internal/gesture"
	"github.com/EddieRydell/vibetracker/internal/history"
	"github.com/EddieRydell/vibetracker/internal/playback"
	"github.com/EddieRydell/vibetracker/internal/show"
	"github.com/EddieRydell/vibetracker/internal/thumbs"
	"github.com/EddieRydell/vibetracker/internal/timeline"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// ClipItem is one copied effect plus the track it came from, so paste can
// put it back on the same track at the playhead.
type ClipItem struct {
	Track  int
	Effect show.EffectInstance
}

type Model struct {
	// Document
	Store      *history.Store
	ShowPath   string
	CurrentSeq int

	// Selection, keyed by show.KeyFor
	Selected map[string]struct{}

	// Viewport onto the current sequence
	Map     timeline.Mapper
	Rows    []timeline.StackedRow
	Offsets []timeline.RowOffset
	ScrollX int
	ScrollY int

	// Keyboard cursors
	CurrentRow   int
	InspectorRow int

	ViewMode   types.ViewMode
	Tool       types.Tool
	AddKind    show.EffectKind
	TermWidth  int
	TermHeight int
	StatusMsg  string

	// Text prompt state
	Prompt      types.Prompt
	PromptInput textinput.Model
	PromptTrack int

	// Playback
	Engine  *playback.Engine
	Audio   *playback.Player
	Arbiter *playback.Arbiter
	Link    *engine.Client
	FPS     int

	// Per-fixture output levels reported by the engine
	Levels []float32

	// Audio strip source and its window cache
	WavePath string
	waveKey  waveKey
	waveData []int16

	Gest   *gesture.Machine
	Thumbs *thumbs.Fetcher

	Clipboard []ClipItem
}

func NewModel(sh *show.Show, showPath string, fps int, link *engine.Client) *Model {
	if fps <= 0 {
		fps = types.DefaultFPS
	}
	duration := 60.0
	if seq := sh.SequenceAt(0); seq != nil {
		duration = seq.Validated().Duration
	}

	eng := playback.NewEngine(duration)
	audio := playback.NewPlayer()

	m := &Model{
		Store:    history.NewStore(sh),
		ShowPath: showPath,
		Selected: map[string]struct{}{},
		Map:      timeline.NewMapper(duration),
		Engine:   eng,
		Audio:    audio,
		Arbiter:  playback.NewArbiter(eng, audio),
		Link:     link,
		FPS:      fps,
		AddKind:  show.KindSolid,
		Thumbs:   thumbs.NewFetcher(types.ThumbCacheSize, types.ThumbFetchPermits),
	}
	m.Gest = &gesture.Machine{Mut: m, Sel: m, Trans: m}
	m.RebuildLayout()
	return m
}

// CurrentSequence returns the sequence under edit, or nil when the show has
// none.
func (m *Model) CurrentSequence() *show.Sequence {
	if m.Store == nil || m.Store.Show == nil {
		return nil
	}
	return m.Store.Show.SequenceAt(m.CurrentSeq)
}

// RebuildLayout recomputes rows and offsets from the document and points the
// gesture machine at the fresh layout. Call after any structural edit.
func (m *Model) RebuildLayout() {
	seq := m.CurrentSequence()
	if seq == nil {
		m.Rows = nil
		m.Offsets = nil
	} else {
		v := seq.Validated()
		m.Map.Duration = v.Duration
		m.Engine.SetDuration(v.Duration)
		m.Rows = timeline.BuildRows(m.Store.Show, seq)
		m.Offsets = timeline.CumulativeOffsets(m.Rows)
	}
	m.clampScroll()
	m.clampCursor()
	m.Gest.Map = &m.Map
	m.Gest.Rows = m.Rows
	m.Gest.Offsets = m.Offsets
	m.Gest.Duration = m.Map.Duration
}

// ContentViewportHeight is the rows area between header and footer.
func (m *Model) ContentViewportHeight() int {
	h := m.TermHeight - types.HeaderLines - types.FooterLines
	if h < 0 {
		h = 0
	}
	return h
}

// CanvasWidth is the cell width right of the gutter.
func (m *Model) CanvasWidth() int {
	w := m.TermWidth - types.GutterWidth
	if w < 0 {
		w = 0
	}
	return w
}

// VisibleRows returns the half-open row range to render, overscan included.
func (m *Model) VisibleRows() (int, int) {
	return timeline.VisibleRange(m.Offsets, m.ScrollY, m.ContentViewportHeight(), types.OverscanRows)
}

// ScreenToContent maps a terminal cell to timeline content coordinates.
// ok is false outside the canvas area.
func (m *Model) ScreenToContent(x, y int) (int, int, bool) {
	cx := x - types.GutterWidth + m.ScrollX
	cy := y - types.HeaderLines + m.ScrollY
	ok := x >= types.GutterWidth && x < m.TermWidth &&
		y >= types.HeaderLines && y < m.TermHeight-types.FooterLines
	return cx, cy, ok
}

// OnRuler reports whether a terminal row is the tick ruler.
func (m *Model) OnRuler(y int) bool { return y == types.HeaderLines-1 }

// OnWaveStrip reports whether a terminal row is the audio overview strip.
func (m *Model) OnWaveStrip(y int) bool { return y == 1 }

// PlayheadCell is the content column of the playhead at the current scale.
func (m *Model) PlayheadCell() int {
	return int(m.Map.TimeToPx(m.Engine.CurrentTime()))
}

func (m *Model) clampScroll() {
	maxX := int(m.Map.ContentWidth()) - m.CanvasWidth()
	if maxX < 0 {
		maxX = 0
	}
	if m.ScrollX > maxX {
		m.ScrollX = maxX
	}
	if m.ScrollX < 0 {
		m.ScrollX = 0
	}
	maxY := timeline.ContentHeight(m.Offsets) - m.ContentViewportHeight()
	if maxY < 0 {
		maxY = 0
	}
	if m.ScrollY > maxY {
		m.ScrollY = maxY
	}
	if m.ScrollY < 0 {
		m.ScrollY = 0
	}
}

func (m *Model) clampCursor() {
	if len(m.Rows) == 0 {
		m.CurrentRow = 0
		return
	}
	if m.CurrentRow >= len(m.Rows) {
		m.CurrentRow = len(m.Rows) - 1
	}
	if m.CurrentRow < 0 {
		m.CurrentRow = 0
	}
}

// ThumbKeyFor builds the cache key for a placed effect at its current
// revision, so stale renders never draw.
func (m *Model) ThumbKeyFor(p timeline.PlacedEffect) thumbs.Key {
	return thumbs.Key{
		Seq:    m.CurrentSeq,
		Track:  p.TrackIndex,
		Effect: p.EffectIndex,
		Rev:    m.Store.Revision(m.CurrentSeq, p.TrackIndex, p.EffectIndex),
	}
}

// Selection implementation used by gestures and keyboard handlers.

func (m *Model) ReplaceSelection(keys []string) {
	m.Selected = map[string]struct{}{}
	for _, k := range keys {
		m.Selected[k] = struct{}{}
	}
}

func (m *Model) AddToSelection(key string)      { m.Selected[key] = struct{}{} }
func (m *Model) RemoveFromSelection(key string) { delete(m.Selected, key) }

func (m *Model) ToggleSelection(key string) {
	if _, ok := m.Selected[key]; ok {
		delete(m.Selected, key)
		return
	}
	m.Selected[key] = struct{}{}
}

func (m *Model) SelectionContains(key string) bool {
	_, ok := m.Selected[key]
	return ok
}

func (m *Model) SelectionSnapshot() []string {
	out := make([]string, 0, len(m.Selected))
	for k := range m.Selected {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *Model) ClearSelection() { m.Selected = map[string]struct{}{} }

// PrimarySelected resolves the single selected effect, for the inspector.
func (m *Model) PrimarySelected() (int, int, bool) {
	if len(m.Selected) != 1 {
		return 0, 0, false
	}
	for k := range m.Selected {
		if track, effect, ok := show.ParseKey(k); ok {
			return track, effect, true
		}
	}
	return 0, 0, false
}

// Mutator implementation bridging gestures onto the undoable store.

// EnsureTrackForFixture finds the track addressing exactly this fixture, or
// appends one. The bool reports whether a track was created.
func (m *Model) EnsureTrackForFixture(fixtureID string) (int, bool, error) {
	seq := m.CurrentSequence()
	if seq == nil {
		return 0, false, fmt.Errorf("no sequence selected")
	}
	if idx, ok := seq.SingleFixtureTrack(fixtureID); ok {
		return idx, false, nil
	}
	name := fixtureID
	if f := m.Store.Show.FixtureByID(fixtureID); f != nil {
		name = f.Name
	}
	idx, err := m.Store.AddTrack(m.CurrentSeq, name, show.FixturesTarget(fixtureID))
	if err != nil {
		return 0, false, err
	}
	return idx, true, nil
}

func (m *Model) UpdateEffectTimeRange(track, effect int, start, end float64) (int, error) {
	return m.Store.UpdateEffectTimeRange(m.CurrentSeq, track, effect, start, end)
}

func (m *Model) MoveEffectToTrack(from, effect, to int) (int, error) {
	return m.Store.MoveEffectToTrack(m.CurrentSeq, from, effect, to)
}

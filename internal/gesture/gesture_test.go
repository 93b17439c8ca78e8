package gesture

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EddieRydell/vibetracker/internal/show"
	"github.com/EddieRydell/vibetracker/internal/timeline"
)

type updateCall struct {
	track, effect int
	start, end    float64
}

type fakeMutator struct {
	ensureCalls []string
	ensureIdx   int
	moves       [][3]int
	moveIdx     int
	updates     []updateCall
	updateIdx   int
	updateErr   error
}

func (f *fakeMutator) EnsureTrackForFixture(id string) (int, bool, error) {
	f.ensureCalls = append(f.ensureCalls, id)
	return f.ensureIdx, false, nil
}

func (f *fakeMutator) MoveEffectToTrack(from, effect, to int) (int, error) {
	f.moves = append(f.moves, [3]int{from, effect, to})
	return f.moveIdx, nil
}

func (f *fakeMutator) UpdateEffectTimeRange(track, effect int, start, end float64) (int, error) {
	f.updates = append(f.updates, updateCall{track, effect, start, end})
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	return f.updateIdx, nil
}

type fakeSelection struct {
	keys map[string]struct{}
}

func newFakeSelection(keys ...string) *fakeSelection {
	s := &fakeSelection{keys: map[string]struct{}{}}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

func (s *fakeSelection) ReplaceSelection(keys []string) {
	s.keys = map[string]struct{}{}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
}

func (s *fakeSelection) AddToSelection(key string)      { s.keys[key] = struct{}{} }
func (s *fakeSelection) RemoveFromSelection(key string) { delete(s.keys, key) }

func (s *fakeSelection) ToggleSelection(key string) {
	if _, ok := s.keys[key]; ok {
		delete(s.keys, key)
		return
	}
	s.keys[key] = struct{}{}
}

func (s *fakeSelection) SelectionContains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s *fakeSelection) SelectionSnapshot() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *fakeSelection) sorted() []string { return s.SelectionSnapshot() }

type fakeTransport struct {
	seeks   []float64
	regions []*[2]float64
}

func (f *fakeTransport) SeekTo(t float64)          { f.seeks = append(f.seeks, t) }
func (f *fakeTransport) ApplyRegion(r *[2]float64) { f.regions = append(f.regions, r) }

func eff(start, end float64) show.EffectInstance {
	tr, _ := show.NewTimeRange(start, end)
	return show.NewEffect(show.KindSolid, tr)
}

// testMachine lays out two single-fixture rows at 4 px per second:
// row 0 (f1, track 0) holds [0,5) and [8,10); row 1 (f2, track 1) holds [2,4).
func testMachine() (*Machine, *fakeMutator, *fakeSelection, *fakeTransport) {
	sh := &show.Show{Fixtures: []show.FixtureDef{
		{ID: "f1", Name: "Wash", PixelCount: 16},
		{ID: "f2", Name: "Beam", PixelCount: 8},
	}}
	seq := &show.Sequence{Name: "main", Duration: 60, FrameRate: 30, Tracks: []show.Track{
		{Name: "Wash", Target: show.FixturesTarget("f1"), Effects: []show.EffectInstance{eff(0, 5), eff(8, 10)}},
		{Name: "Beam", Target: show.FixturesTarget("f2"), Effects: []show.EffectInstance{eff(2, 4)}},
	}}
	rows := timeline.BuildRows(sh, seq)
	mapper := timeline.NewMapper(60)

	mut := &fakeMutator{}
	sel := newFakeSelection()
	trans := &fakeTransport{}
	mach := &Machine{
		Map:      &mapper,
		Rows:     rows,
		Offsets:  timeline.CumulativeOffsets(rows),
		Duration: 60,
		Mut:      mut,
		Sel:      sel,
		Trans:    trans,
	}
	return mach, mut, sel, trans
}

func TestHitTest(t *testing.T) {
	m, _, _, _ := testMachine()

	t.Run("body and edges of a wide effect", func(t *testing.T) {
		h, ok := m.HitTest(10, 0)
		assert.True(t, ok)
		assert.Equal(t, "0:0", h.Key)
		assert.Equal(t, EdgeNone, h.Edge)

		h, ok = m.HitTest(0, 0)
		assert.True(t, ok)
		assert.Equal(t, EdgeLeft, h.Edge)

		h, ok = m.HitTest(19, 0)
		assert.True(t, ok)
		assert.Equal(t, EdgeRight, h.Edge)
	})

	t.Run("second row resolves by lane", func(t *testing.T) {
		h, ok := m.HitTest(9, 1)
		assert.True(t, ok)
		assert.Equal(t, "1:0", h.Key)
		assert.Equal(t, 1, h.Row)
	})

	t.Run("gaps and rows below the content miss", func(t *testing.T) {
		_, ok := m.HitTest(25, 0)
		assert.False(t, ok)
		_, ok = m.HitTest(10, 9)
		assert.False(t, ok, "clamped row rejects out-of-lane y")
	})
}

func TestExclusivity(t *testing.T) {
	m, _, _, _ := testMachine()
	h, _ := m.HitTest(10, 0)

	assert.True(t, m.BeginMove(h, 10, 0, false))
	assert.False(t, m.BeginMarquee(25, 0, false))
	assert.False(t, m.BeginSwipe(25, 0))
	assert.False(t, m.BeginRegion(25, 0))
	assert.False(t, m.BeginMove(h, 10, 0, false))
	assert.True(t, m.Dragging())

	m.Cancel()
	assert.Nil(t, m.Active())
	assert.True(t, m.BeginMarquee(25, 0, false))
}

func TestResizeDrag(t *testing.T) {
	t.Run("left edge clamps against the minimum duration", func(t *testing.T) {
		m, mut, sel, _ := testMachine()
		h, _ := m.HitTest(0, 0)
		assert.True(t, m.BeginResize(h, 0, 0))

		m.Update(30, 0) // 7.5s, past the 4.9s limit
		d := m.Active()
		assert.InDelta(t, 4.9, d.PreviewStart, 1e-9)
		assert.InDelta(t, 5.0, d.PreviewEnd, 1e-9)

		mut.updateIdx = 0
		m.End(30, 0)
		assert.Len(t, mut.updates, 1)
		assert.Equal(t, 0, mut.updates[0].track)
		assert.InDelta(t, 4.9, mut.updates[0].start, 1e-9)
		assert.Equal(t, []string{"0:0"}, sel.sorted())
	})

	t.Run("right edge clamps to the sequence duration", func(t *testing.T) {
		m, mut, _, _ := testMachine()
		h, _ := m.HitTest(19, 0)
		assert.True(t, m.BeginResize(h, 19, 0))

		m.Update(500, 0)
		assert.InDelta(t, 60.0, m.Active().PreviewEnd, 1e-9)
		assert.InDelta(t, 0.0, m.Active().PreviewStart, 1e-9)

		m.End(500, 0)
		assert.Len(t, mut.updates, 1)
		assert.InDelta(t, 60.0, mut.updates[0].end, 1e-9)
	})

	t.Run("click on an edge just selects", func(t *testing.T) {
		m, mut, sel, _ := testMachine()
		h, _ := m.HitTest(0, 0)
		m.BeginResize(h, 0, 0)
		m.End(0, 0)
		assert.Empty(t, mut.updates)
		assert.Equal(t, []string{"0:0"}, sel.sorted())
	})

	t.Run("rejects a body hit", func(t *testing.T) {
		m, _, _, _ := testMachine()
		h, _ := m.HitTest(10, 0)
		assert.False(t, m.BeginResize(h, 10, 0))
	})
}

func TestMoveDrag(t *testing.T) {
	t.Run("same row shift preserves duration and clamps at zero", func(t *testing.T) {
		m, mut, sel, _ := testMachine()
		h, _ := m.HitTest(33, 0) // [8,10)
		assert.True(t, m.BeginMove(h, 33, 0, false))

		m.Update(1, 0) // -8s, clamped to start 0
		d := m.Active()
		assert.InDelta(t, 0.0, d.PreviewStart, 1e-9)
		assert.InDelta(t, 2.0, d.PreviewEnd, 1e-9)
		assert.Equal(t, 0, d.PreviewRow)

		mut.updateIdx = 0
		m.End(1, 0)
		assert.Empty(t, mut.ensureCalls)
		assert.Empty(t, mut.moves)
		assert.Equal(t, []updateCall{{0, 1, 0, 2}}, mut.updates)
		assert.Equal(t, []string{"0:0"}, sel.sorted())
	})

	t.Run("cross row move re-homes the effect and selects it", func(t *testing.T) {
		m, mut, sel, _ := testMachine()
		h, _ := m.HitTest(33, 0) // [8,10) on row 0
		assert.True(t, m.BeginMove(h, 33, 0, false))

		m.Update(13, 1) // -5s and down one row
		d := m.Active()
		assert.InDelta(t, 3.0, d.PreviewStart, 1e-9)
		assert.InDelta(t, 5.0, d.PreviewEnd, 1e-9)
		assert.Equal(t, 1, d.PreviewRow)

		mut.ensureIdx = 1
		mut.moveIdx = 1
		mut.updateIdx = 1
		m.End(13, 1)
		assert.Equal(t, []string{"f2"}, mut.ensureCalls)
		assert.Equal(t, [][3]int{{0, 1, 1}}, mut.moves)
		assert.Equal(t, []updateCall{{1, 1, 3, 5}}, mut.updates)
		assert.Equal(t, []string{"1:1"}, sel.sorted())
	})

	t.Run("click replaces the selection", func(t *testing.T) {
		m, mut, sel, _ := testMachine()
		sel.ReplaceSelection([]string{"1:0"})
		h, _ := m.HitTest(33, 0)
		m.BeginMove(h, 33, 0, false)
		m.End(33, 0)
		assert.Empty(t, mut.updates)
		assert.Equal(t, []string{"0:1"}, sel.sorted())
	})

	t.Run("additive click toggles", func(t *testing.T) {
		m, _, sel, _ := testMachine()
		sel.ReplaceSelection([]string{"0:1"})
		h, _ := m.HitTest(33, 0)
		m.BeginMove(h, 33, 0, true)
		m.End(33, 0)
		assert.Empty(t, sel.sorted(), "toggling a selected effect deselects it")

		m.BeginMove(h, 33, 0, true)
		m.End(33, 0)
		assert.Equal(t, []string{"0:1"}, sel.sorted())
	})

	t.Run("vanished effect is dropped silently", func(t *testing.T) {
		m, mut, sel, _ := testMachine()
		sel.ReplaceSelection([]string{"0:1"})
		mut.updateErr = show.ErrNotFound
		h, _ := m.HitTest(33, 0)
		m.BeginMove(h, 33, 0, false)
		m.Update(37, 0)
		m.End(37, 0)
		assert.Len(t, mut.updates, 1)
		assert.Equal(t, []string{"0:1"}, sel.sorted(), "selection untouched on a dead commit")
	})

	t.Run("cancel commits nothing", func(t *testing.T) {
		m, mut, sel, _ := testMachine()
		h, _ := m.HitTest(10, 0)
		m.BeginMove(h, 10, 0, false)
		m.Update(30, 1)
		m.Cancel()
		assert.Empty(t, mut.updates)
		assert.Empty(t, mut.moves)
		assert.Empty(t, sel.sorted())
		assert.Nil(t, m.Active())
	})
}

func TestMarqueeDrag(t *testing.T) {
	t.Run("selects every effect the rectangle touches", func(t *testing.T) {
		m, _, sel, _ := testMachine()
		assert.True(t, m.BeginMarquee(25, 0, false))
		m.Update(9, 1)
		m.End(9, 1)
		assert.Equal(t, []string{"0:0", "1:0"}, sel.sorted())
	})

	t.Run("additive keeps the base selection", func(t *testing.T) {
		m, _, sel, _ := testMachine()
		sel.ReplaceSelection([]string{"0:1"})
		m.BeginMarquee(25, 0, true)
		m.Update(9, 1)
		m.End(9, 1)
		assert.Equal(t, []string{"0:0", "0:1", "1:0"}, sel.sorted())
	})

	t.Run("narrow rectangle misses rows outside its band", func(t *testing.T) {
		m, _, sel, _ := testMachine()
		m.BeginMarquee(25, 1, false)
		m.Update(9, 1)
		m.End(9, 1)
		assert.Equal(t, []string{"1:0"}, sel.sorted())
	})

	t.Run("click on empty space clears selection and seeks", func(t *testing.T) {
		m, _, sel, trans := testMachine()
		sel.ReplaceSelection([]string{"0:0", "1:0"})
		m.BeginMarquee(24, 0, false)
		m.End(24, 0)
		assert.Empty(t, sel.sorted())
		assert.Equal(t, []float64{6}, trans.seeks)
	})

	t.Run("additive click keeps the selection", func(t *testing.T) {
		m, _, sel, trans := testMachine()
		sel.ReplaceSelection([]string{"0:0"})
		m.BeginMarquee(24, 0, true)
		m.End(24, 0)
		assert.Equal(t, []string{"0:0"}, sel.sorted())
		assert.Len(t, trans.seeks, 1)
	})
}

func TestSwipeDrag(t *testing.T) {
	t.Run("paints selection across effects once each", func(t *testing.T) {
		m, _, sel, _ := testMachine()
		assert.True(t, m.BeginSwipe(10, 0))
		m.Update(33, 0)
		m.Update(34, 0)
		m.Update(25, 0) // gap, no hit
		m.End(25, 0)
		assert.Equal(t, []string{"0:0", "0:1"}, sel.sorted())
	})

	t.Run("starting on a selected effect erases", func(t *testing.T) {
		m, _, sel, _ := testMachine()
		sel.ReplaceSelection([]string{"0:0", "0:1", "1:0"})
		m.BeginSwipe(10, 0)
		m.Update(9, 1)
		m.End(9, 1)
		assert.Equal(t, []string{"0:1"}, sel.sorted())
	})

	t.Run("press on empty space adds whatever it later crosses", func(t *testing.T) {
		m, _, sel, _ := testMachine()
		m.BeginSwipe(25, 0)
		m.Update(33, 0)
		m.End(33, 0)
		assert.Equal(t, []string{"0:1"}, sel.sorted())
	})
}

func TestRegionDrag(t *testing.T) {
	t.Run("drag sets an ordered region", func(t *testing.T) {
		m, _, _, trans := testMachine()
		assert.True(t, m.BeginRegion(40, 0))
		m.Update(20, 0)
		m.End(20, 0)
		assert.Len(t, trans.regions, 1)
		assert.NotNil(t, trans.regions[0])
		assert.InDelta(t, 5.0, trans.regions[0][0], 1e-9)
		assert.InDelta(t, 10.0, trans.regions[0][1], 1e-9)
		assert.Empty(t, trans.seeks)
	})

	t.Run("click clears the region and seeks", func(t *testing.T) {
		m, _, _, trans := testMachine()
		m.BeginRegion(40, 0)
		m.End(40, 0)
		assert.Len(t, trans.regions, 1)
		assert.Nil(t, trans.regions[0])
		assert.Equal(t, []float64{10}, trans.seeks)
	})
}

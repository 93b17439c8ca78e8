package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EddieRydell/vibetracker/internal/show"
)

func testShow() *show.Show {
	mk := func(start, end float64) show.EffectInstance {
		tr, _ := show.NewTimeRange(start, end)
		return show.NewEffect(show.KindSolid, tr)
	}
	return &show.Show{
		Name: "test",
		Fixtures: []show.FixtureDef{
			{ID: "f1", Name: "Wash", PixelCount: 16},
			{ID: "f2", Name: "Beam", PixelCount: 8},
			{ID: "f3", Name: "Strip", PixelCount: 32},
		},
		Sequences: []show.Sequence{
			{
				Name: "main", Duration: 60, FrameRate: 30,
				Tracks: []show.Track{
					{Name: "Wash", Target: show.FixturesTarget("f1"), Effects: []show.EffectInstance{mk(0, 5), mk(8, 10)}},
					{Name: "Beam", Target: show.FixturesTarget("f2"), Effects: []show.EffectInstance{mk(2, 4)}},
				},
			},
			{Name: "encore", Duration: 30, FrameRate: 30},
		},
	}
}

func newTestModel() *Model {
	m := NewModel(testShow(), "", 30, nil)
	m.TermWidth = 120
	m.TermHeight = 40
	return m
}

func TestNewModelWiring(t *testing.T) {
	m := newTestModel()
	assert.Len(t, m.Rows, 3, "one row per declared fixture")
	assert.Equal(t, 60.0, m.Map.Duration)
	assert.Equal(t, 60.0, m.Engine.Duration())
	assert.NotNil(t, m.Gest.Map)
	assert.Same(t, &m.Map, m.Gest.Map)
}

func TestEnsureTrackForFixture(t *testing.T) {
	m := newTestModel()
	seq := m.CurrentSequence()

	t.Run("reuses an existing single fixture track", func(t *testing.T) {
		idx, created, err := m.EnsureTrackForFixture("f1")
		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, 0, idx)
	})

	t.Run("creates a track named after the fixture", func(t *testing.T) {
		idx, created, err := m.EnsureTrackForFixture("f3")
		assert.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, 2, idx)
		assert.Equal(t, "Strip", seq.Tracks[2].Name)
		assert.True(t, seq.Tracks[2].Target.IsSingleFixture("f3"))

		again, created, err := m.EnsureTrackForFixture("f3")
		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, idx, again)
	})
}

func TestScreenToContent(t *testing.T) {
	m := newTestModel()
	m.ScrollX = 5
	m.ScrollY = 2

	cx, cy, ok := m.ScreenToContent(20, 5)
	assert.True(t, ok)
	assert.Equal(t, 9, cx)
	assert.Equal(t, 4, cy)

	_, _, ok = m.ScreenToContent(10, 5)
	assert.False(t, ok, "gutter is not canvas")
	_, _, ok = m.ScreenToContent(20, 1)
	assert.False(t, ok, "header is not canvas")
	_, _, ok = m.ScreenToContent(20, 39)
	assert.False(t, ok, "footer is not canvas")

	assert.True(t, m.OnRuler(2))
	assert.False(t, m.OnRuler(3))
	assert.True(t, m.OnWaveStrip(1))
}

func TestZoomKeepsPlayheadColumn(t *testing.T) {
	m := newTestModel()
	m.Engine.Seek(10)

	colBefore := m.PlayheadCell() - m.ScrollX
	m.Zoom(true)
	assert.Equal(t, colBefore, m.PlayheadCell()-m.ScrollX)
	assert.InDelta(t, 5.0, m.Map.PxPerSec, 1e-9)

	m.Zoom(false)
	assert.Equal(t, colBefore, m.PlayheadCell()-m.ScrollX)
}

func TestScrollClamps(t *testing.T) {
	m := newTestModel()
	m.ScrollBy(-10, -10)
	assert.Equal(t, 0, m.ScrollX)
	assert.Equal(t, 0, m.ScrollY)

	m.ScrollBy(100000, 100000)
	assert.Equal(t, int(m.Map.ContentWidth())-m.CanvasWidth(), m.ScrollX)
	assert.Equal(t, 0, m.ScrollY, "three single-lane rows never outgrow the viewport")
}

func TestAddEffectAtPlayhead(t *testing.T) {
	t.Run("adds on the cursor row at the playhead", func(t *testing.T) {
		m := newTestModel()
		m.Engine.Seek(10)
		m.CurrentRow = 0
		m.AddEffectAtPlayhead(show.KindChase)

		seq := m.CurrentSequence()
		assert.Len(t, seq.Tracks[0].Effects, 3)
		added := seq.Tracks[0].Effects[2]
		assert.Equal(t, show.KindChase, added.Kind)
		assert.InDelta(t, 10.0, added.TimeRange.Start, 1e-9)
		assert.InDelta(t, 14.0, added.TimeRange.End, 1e-9)
		assert.Equal(t, []string{"0:2"}, m.SelectionSnapshot())
	})

	t.Run("clamps against the end of the sequence", func(t *testing.T) {
		m := newTestModel()
		m.Engine.Seek(59.95)
		m.CurrentRow = 1
		m.AddEffectAtPlayhead(show.KindStrobe)

		seq := m.CurrentSequence()
		added := seq.Tracks[1].Effects[len(seq.Tracks[1].Effects)-1]
		assert.InDelta(t, 59.9, added.TimeRange.Start, 1e-9)
		assert.InDelta(t, 60.0, added.TimeRange.End, 1e-9)
	})
}

func TestClipboardRoundTrip(t *testing.T) {
	m := newTestModel()
	m.ReplaceSelection([]string{"0:0", "0:1"})
	m.CopySelection()
	assert.Len(t, m.Clipboard, 2)

	m.Engine.Seek(20)
	m.PasteAtPlayhead()

	seq := m.CurrentSequence()
	assert.Len(t, seq.Tracks[0].Effects, 4)
	assert.Equal(t, []string{"0:2", "0:3"}, m.SelectionSnapshot())

	pasted := seq.Tracks[0].Effects[2]
	assert.InDelta(t, 20.0, pasted.TimeRange.Start, 1e-9)
	assert.InDelta(t, 25.0, pasted.TimeRange.End, 1e-9)
	shifted := seq.Tracks[0].Effects[3]
	assert.InDelta(t, 28.0, shifted.TimeRange.Start, 1e-9, "relative offset preserved")
	assert.InDelta(t, 30.0, shifted.TimeRange.End, 1e-9)
}

func TestPasteCopiesParams(t *testing.T) {
	m := newTestModel()
	m.ReplaceSelection([]string{"0:0"})
	m.CopySelection()

	m.Engine.Seek(20)
	m.PasteAtPlayhead()
	m.Engine.Seek(30)
	m.PasteAtPlayhead()

	seq := m.CurrentSequence()
	err := m.Store.SetParam(m.CurrentSeq, 0, 2, "color", show.Color(0, 1, 0))
	assert.NoError(t, err)

	first := seq.Tracks[0].Effects[2].Params["color"].AsColor()
	second := seq.Tracks[0].Effects[3].Params["color"].AsColor()
	assert.Equal(t, [3]float64{0, 1, 0}, first)
	assert.Equal(t, [3]float64{1, 1, 1}, second, "pastes do not share a params map")
}

func TestPasteClampsIntoSequence(t *testing.T) {
	m := newTestModel()
	m.ReplaceSelection([]string{"0:0"}) // [0,5)
	m.CopySelection()
	m.Engine.Seek(58)
	m.PasteAtPlayhead()

	seq := m.CurrentSequence()
	pasted := seq.Tracks[0].Effects[len(seq.Tracks[0].Effects)-1]
	assert.InDelta(t, 55.0, pasted.TimeRange.Start, 1e-9)
	assert.InDelta(t, 60.0, pasted.TimeRange.End, 1e-9)
}

func TestDeleteAndCut(t *testing.T) {
	m := newTestModel()
	m.ReplaceSelection([]string{"0:1", "1:0"})
	m.DeleteSelection()

	seq := m.CurrentSequence()
	assert.Len(t, seq.Tracks[0].Effects, 1)
	assert.Len(t, seq.Tracks[1].Effects, 0)
	assert.Empty(t, m.SelectionSnapshot())

	m.ReplaceSelection([]string{"0:0"})
	m.CutSelection()
	assert.Len(t, seq.Tracks[0].Effects, 0)
	assert.Len(t, m.Clipboard, 1)
}

func TestNudgeSelectionClamps(t *testing.T) {
	m := newTestModel()
	m.ReplaceSelection([]string{"0:0"}) // [0,5)
	m.NudgeSelection(-2)

	seq := m.CurrentSequence()
	assert.InDelta(t, 0.0, seq.Tracks[0].Effects[0].TimeRange.Start, 1e-9)
	assert.InDelta(t, 5.0, seq.Tracks[0].Effects[0].TimeRange.End, 1e-9)

	m.NudgeSelection(9)
	assert.InDelta(t, 9.0, seq.Tracks[0].Effects[1].TimeRange.Start, 1e-9)
	assert.Equal(t, []string{"0:1"}, m.SelectionSnapshot(), "selection follows the re-sorted index")
}

func TestNudgeLeapfrogMovesEachOnce(t *testing.T) {
	m := newTestModel()
	m.ReplaceSelection([]string{"0:0", "0:1"}) // [0,5) and [8,10)
	m.NudgeSelection(9)

	seq := m.CurrentSequence()
	assert.InDelta(t, 9.0, seq.Tracks[0].Effects[0].TimeRange.Start, 1e-9,
		"first effect moves once even after passing its neighbor")
	assert.InDelta(t, 17.0, seq.Tracks[0].Effects[1].TimeRange.Start, 1e-9)
	assert.Equal(t, []string{"0:0", "0:1"}, m.SelectionSnapshot())
}

func TestUndoRedoWrappers(t *testing.T) {
	m := newTestModel()
	m.CurrentRow = 0
	m.AddEffectAtPlayhead(show.KindSolid)
	seq := m.CurrentSequence()
	assert.Len(t, seq.Tracks[0].Effects, 3)

	m.Undo()
	assert.Len(t, seq.Tracks[0].Effects, 2)
	assert.Empty(t, m.SelectionSnapshot())
	assert.True(t, strings.HasPrefix(m.StatusMsg, "Undo: "))

	m.Redo()
	assert.Len(t, seq.Tracks[0].Effects, 3)
	assert.True(t, strings.HasPrefix(m.StatusMsg, "Redo: "))

	m.Store.MarkSaved()
	m.Undo()
	m.Undo()
	assert.Equal(t, "Nothing to undo", m.StatusMsg)
}

func TestSwitchSequence(t *testing.T) {
	m := newTestModel()
	m.ReplaceSelection([]string{"0:0"})
	m.ScrollX = 30
	m.Engine.Seek(10)
	m.Engine.Play()

	m.SwitchSequence(1)
	assert.Equal(t, 1, m.CurrentSeq)
	assert.Equal(t, 30.0, m.Engine.Duration())
	assert.Equal(t, 1, m.Engine.SequenceIndex())
	assert.False(t, m.Engine.Playing())
	assert.Equal(t, 0.0, m.Engine.CurrentTime())
	assert.Equal(t, 0, m.ScrollX)
	assert.Empty(t, m.SelectionSnapshot())

	m.SwitchSequence(5)
	assert.Equal(t, 1, m.CurrentSeq, "out-of-range switch is ignored")
}

func TestPlayRestartsFromParkedEnd(t *testing.T) {
	m := newTestModel()
	m.Engine.Seek(60)
	m.PlayPause()
	assert.True(t, m.Engine.Playing())
	assert.Equal(t, 0.0, m.Engine.CurrentTime())

	m.PlayPause()
	assert.False(t, m.Engine.Playing())

	m.Engine.SetRegion(&[2]float64{10, 20})
	m.Engine.Seek(20)
	m.PlayPause()
	assert.True(t, m.Engine.Playing())
	assert.Equal(t, 10.0, m.Engine.CurrentTime(), "parked at region end restarts at region start")
}

func TestRegionFromSelection(t *testing.T) {
	m := newTestModel()
	m.ReplaceSelection([]string{"0:0", "0:1"})
	m.RegionFromSelection()

	r := m.Engine.Region()
	assert.NotNil(t, r)
	assert.InDelta(t, 0.0, r[0], 1e-9)
	assert.InDelta(t, 10.0, r[1], 1e-9)
}

func TestWaveWindowWithoutAudio(t *testing.T) {
	m := newTestModel()
	assert.Nil(t, m.WaveWindow(80))
}

func TestPrimarySelected(t *testing.T) {
	m := newTestModel()
	_, _, ok := m.PrimarySelected()
	assert.False(t, ok)

	m.ReplaceSelection([]string{"1:0"})
	track, effect, ok := m.PrimarySelected()
	assert.True(t, ok)
	assert.Equal(t, 1, track)
	assert.Equal(t, 0, effect)

	m.AddToSelection("0:0")
	_, _, ok = m.PrimarySelected()
	assert.False(t, ok, "multi-select has no primary")
}

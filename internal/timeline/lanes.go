package timeline

import (
	"sort"

	"github.com/EddieRydell/vibetracker/internal/show"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// PlacedEffect is one effect positioned within a stacked fixture row.
type PlacedEffect struct {
	Key         string
	TrackIndex  int
	EffectIndex int
	StartSec    float64
	DurationSec float64
	Lane        int
}

func (p PlacedEffect) EndSec() float64 { return p.StartSec + p.DurationSec }

// StackedRow is one fixture's row: every effect from every track that
// drives the fixture, packed into non-overlapping lanes.
type StackedRow struct {
	FixtureID string
	Effects   []PlacedEffect
	LaneCount int
	RowHeight int // cells
}

// BuildTrackIndex maps fixture ID to the set of track indices whose target
// includes that fixture. Group targets share one resolve cache so each
// group expands at most once per pass.
func BuildTrackIndex(sh *show.Show, seq *show.Sequence) map[string]map[int]struct{} {
	idx := make(map[string]map[int]struct{}, len(sh.Fixtures))
	add := func(fixtureID string, track int) {
		set, ok := idx[fixtureID]
		if !ok {
			set = make(map[int]struct{})
			idx[fixtureID] = set
		}
		set[track] = struct{}{}
	}
	cache := show.ResolveCache{}
	for ti := range seq.Tracks {
		switch target := seq.Tracks[ti].Target; target.Kind() {
		case show.TargetAll:
			for _, f := range sh.Fixtures {
				add(f.ID, ti)
			}
		case show.TargetFixtures:
			for _, id := range target.Fixtures {
				add(id, ti)
			}
		case show.TargetGroup:
			for id := range show.ResolveGroup(target.Group, sh.Groups, cache, nil) {
				add(id, ti)
			}
		}
	}
	return idx
}

// BuildStackedRow packs one fixture's effects into lanes. Effects are taken
// in ascending track then effect order, sorted by start time (stable, so
// equal starts keep track order), and each is assigned the first lane whose
// last effect has already ended. Count of lanes used is minimal because
// effects are placed in start order.
func BuildStackedRow(fixtureID string, trackSet map[int]struct{}, seq *show.Sequence) StackedRow {
	tracks := make([]int, 0, len(trackSet))
	for ti := range trackSet {
		tracks = append(tracks, ti)
	}
	sort.Ints(tracks)

	var placed []PlacedEffect
	for _, ti := range tracks {
		for ei, eff := range seq.Tracks[ti].Effects {
			placed = append(placed, PlacedEffect{
				Key:         show.KeyFor(ti, ei),
				TrackIndex:  ti,
				EffectIndex: ei,
				StartSec:    eff.TimeRange.Start,
				DurationSec: eff.TimeRange.Duration(),
			})
		}
	}
	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].StartSec < placed[j].StartSec
	})

	var laneEnds []float64
	for i := range placed {
		lane := -1
		for li, end := range laneEnds {
			if end <= placed[i].StartSec {
				lane = li
				break
			}
		}
		if lane == -1 {
			laneEnds = append(laneEnds, 0)
			lane = len(laneEnds) - 1
		}
		laneEnds[lane] = placed[i].EndSec()
		placed[i].Lane = lane
	}

	height := len(laneEnds)*types.LaneHeight + 2*types.RowPadding
	if height < types.MinRowHeight {
		height = types.MinRowHeight
	}
	return StackedRow{
		FixtureID: fixtureID,
		Effects:   placed,
		LaneCount: len(laneEnds),
		RowHeight: height,
	}
}

// BuildRows assembles one stacked row per fixture, in declaration order.
func BuildRows(sh *show.Show, seq *show.Sequence) []StackedRow {
	idx := BuildTrackIndex(sh, seq)
	rows := make([]StackedRow, 0, len(sh.Fixtures))
	for _, f := range sh.Fixtures {
		rows = append(rows, BuildStackedRow(f.ID, idx[f.ID], seq))
	}
	return rows
}

// RowOffset is a row's vertical span in content cells, half open.
type RowOffset struct {
	Top    int
	Bottom int
}

// CumulativeOffsets precomputes each row's top and bottom so scroll math
// never rescans preceding rows.
func CumulativeOffsets(rows []StackedRow) []RowOffset {
	offs := make([]RowOffset, len(rows))
	y := 0
	for i, r := range rows {
		offs[i] = RowOffset{Top: y, Bottom: y + r.RowHeight}
		y += r.RowHeight
	}
	return offs
}

// ContentHeight is the total stacked height in cells.
func ContentHeight(offs []RowOffset) int {
	if len(offs) == 0 {
		return 0
	}
	return offs[len(offs)-1].Bottom
}

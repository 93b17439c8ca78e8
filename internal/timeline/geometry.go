package timeline

import (
	"github.com/EddieRydell/vibetracker/internal/types"
)

// Mapper converts between seconds and content cells at the current zoom.
// X coordinates are content-space: the caller subtracts the gutter and adds
// horizontal scroll before mapping.
type Mapper struct {
	PxPerSec float64
	Duration float64
}

func NewMapper(duration float64) Mapper {
	return Mapper{PxPerSec: types.DefaultPxPerSec, Duration: duration}
}

// TimeToPx maps seconds to content cells.
func (m *Mapper) TimeToPx(t float64) float64 { return t * m.PxPerSec }

// PxToTime maps content cells to seconds, clamped to [0, Duration].
func (m *Mapper) PxToTime(x float64) float64 {
	t := x / m.PxPerSec
	if t < 0 {
		return 0
	}
	if t > m.Duration {
		return m.Duration
	}
	return t
}

// ContentWidth is the full sequence width in cells.
func (m *Mapper) ContentWidth() float64 { return m.Duration * m.PxPerSec }

// SetPxPerSec clamps the scale into its legal range.
func (m *Mapper) SetPxPerSec(v float64) {
	if v < types.MinPxPerSec {
		v = types.MinPxPerSec
	}
	if v > types.MaxPxPerSec {
		v = types.MaxPxPerSec
	}
	m.PxPerSec = v
}

func (m *Mapper) ZoomIn()  { m.SetPxPerSec(m.PxPerSec * types.ZoomInFactor) }
func (m *Mapper) ZoomOut() { m.SetPxPerSec(m.PxPerSec * types.ZoomOutFactor) }

// ZoomToFit scales so the whole sequence spans viewportPx cells.
func (m *Mapper) ZoomToFit(viewportPx int) {
	if m.Duration <= 0 || viewportPx <= 0 {
		return
	}
	m.SetPxPerSec(float64(viewportPx) / m.Duration)
}

// Nice tick steps in seconds, ascending.
var tickSteps = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30, 60}

// TickSpacing picks the smallest nice step whose on-screen spacing is at
// least idealPx cells. Falls back to the largest step when fully zoomed out.
func (m *Mapper) TickSpacing(idealPx float64) float64 {
	need := idealPx / m.PxPerSec
	for _, s := range tickSteps {
		if s >= need {
			return s
		}
	}
	return tickSteps[len(tickSteps)-1]
}

// RowAtY resolves a content Y to a row index. Hits above the first row or
// below the last clamp to the boundary row so drags past the edges still
// land somewhere. Returns -1 only when there are no rows at all.
func RowAtY(offs []RowOffset, y int) int {
	if len(offs) == 0 {
		return -1
	}
	if y < offs[0].Top {
		return 0
	}
	if y >= offs[len(offs)-1].Bottom {
		return len(offs) - 1
	}
	for i, o := range offs {
		if y >= o.Top && y < o.Bottom {
			return i
		}
	}
	return len(offs) - 1
}

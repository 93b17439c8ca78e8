package types

// ViewMode selects which top-level view is rendered.
type ViewMode int

const (
	TimelineView ViewMode = iota
	FixturesView
	InspectorView
)

// Tool selects what a pointer drag on empty timeline background does.
type Tool int

const (
	ToolSelect Tool = iota // marquee rectangle selection
	ToolSwipe              // paint selection under the cursor
)

// Prompt identifies which text prompt is active, if any.
type Prompt int

const (
	PromptNone Prompt = iota
	PromptOpenShow
	PromptSaveShowAs
	PromptRenameTrack
)

// Timeline geometry, in terminal cells. One cell is one pixel.
const (
	LaneHeight   = 1
	RowPadding   = 0
	MinRowHeight = 1

	GutterWidth = 16
)

// Screen chrome around the timeline canvas: title, waveform strip and
// ruler above, status and key help below.
const (
	HeaderLines = 3
	FooterLines = 2
)

// Horizontal scale bounds, cells per second.
const (
	MinPxPerSec     = 0.25
	MaxPxPerSec     = 64.0
	DefaultPxPerSec = 4.0
)

// Zoom steps scale cells-per-second. One zoom-in step shrinks the
// visible span to 0.8 of itself.
const (
	ZoomInFactor  = 1.25
	ZoomOutFactor = 0.8
)

// Gesture tuning.
const (
	DragThresholdCells = 1
	MinEffectDuration  = 0.1 // seconds
)

// Rows rendered beyond the visible viewport on each side.
const OverscanRows = 5

// Ruler ticks are spaced at least this many cells apart.
const RulerIdealTickPx = 10.0

// Native thumbnail render resolution. Cells are downscaled from this.
const (
	ThumbWidth  = 64
	ThumbHeight = 8
)

// Thumbnail pipeline bounds.
const (
	ThumbCacheSize    = 128
	ThumbFetchPermits = 6
)

const DefaultFPS = 30

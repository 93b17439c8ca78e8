package show

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when an operation targets a track or effect
// that no longer exists in the document.
var ErrNotFound = errors.New("target not found")

// FixtureDef describes one addressable fixture (a strip, prop, or pixel run).
type FixtureDef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PixelCount int    `json:"pixel_count"`
}

// GroupMember references either a fixture or a nested group. Exactly one
// field is set.
type GroupMember struct {
	Fixture string `json:"fixture,omitempty"`
	Group   string `json:"group,omitempty"`
}

// FixtureGroup is a named set of fixtures and nested groups.
type FixtureGroup struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Members []GroupMember `json:"members"`
}

// TargetKind discriminates the Target union.
type TargetKind int

const (
	TargetAll TargetKind = iota
	TargetFixtures
	TargetGroup
)

// Target selects which fixtures a track drives.
type Target struct {
	All      bool     `json:"all,omitempty"`
	Fixtures []string `json:"fixtures,omitempty"`
	Group    string   `json:"group,omitempty"`
}

func AllTarget() Target                   { return Target{All: true} }
func FixturesTarget(ids ...string) Target { return Target{Fixtures: ids} }
func GroupTarget(id string) Target        { return Target{Group: id} }

func (t Target) Kind() TargetKind {
	switch {
	case t.All:
		return TargetAll
	case t.Group != "":
		return TargetGroup
	default:
		return TargetFixtures
	}
}

// IsSingleFixture reports whether the target is exactly one fixture.
func (t Target) IsSingleFixture(fixtureID string) bool {
	return t.Kind() == TargetFixtures && len(t.Fixtures) == 1 && t.Fixtures[0] == fixtureID
}

// TimeRange is a half-open [Start, End) span in seconds. Construct through
// NewTimeRange so Start >= 0 and End > Start always hold.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func NewTimeRange(start, end float64) (TimeRange, error) {
	if start < 0 || end <= start {
		return TimeRange{}, fmt.Errorf("invalid time range: start=%v end=%v", start, end)
	}
	return TimeRange{Start: start, End: end}, nil
}

func (r TimeRange) Duration() float64 { return r.End - r.Start }

func (r TimeRange) Contains(t float64) bool { return t >= r.Start && t < r.End }

// Overlaps reports whether the range intersects [start, end).
func (r TimeRange) Overlaps(start, end float64) bool {
	return r.Start < end && r.End > start
}

// Normalize maps t to [0, 1] within the range, clamped.
func (r TimeRange) Normalize(t float64) float64 {
	n := (t - r.Start) / r.Duration()
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// EffectKind names a built-in effect, or KindScript for a scripted one.
type EffectKind string

const (
	KindSolid    EffectKind = "solid"
	KindChase    EffectKind = "chase"
	KindRainbow  EffectKind = "rainbow"
	KindStrobe   EffectKind = "strobe"
	KindGradient EffectKind = "gradient"
	KindTwinkle  EffectKind = "twinkle"
	KindFade     EffectKind = "fade"
	KindWipe     EffectKind = "wipe"
	KindScript   EffectKind = "script"
)

// BuiltinKinds lists every kind except KindScript, in menu order.
func BuiltinKinds() []EffectKind {
	return []EffectKind{
		KindSolid, KindChase, KindRainbow, KindStrobe,
		KindGradient, KindTwinkle, KindFade, KindWipe,
	}
}

// BlendMode controls how an effect composites over the layer below it.
type BlendMode string

const (
	BlendOverride         BlendMode = "override"
	BlendAdd              BlendMode = "add"
	BlendMultiply         BlendMode = "multiply"
	BlendMax              BlendMode = "max"
	BlendAlpha            BlendMode = "alpha"
	BlendSubtract         BlendMode = "subtract"
	BlendMin              BlendMode = "min"
	BlendAverage          BlendMode = "average"
	BlendScreen           BlendMode = "screen"
	BlendMask             BlendMode = "mask"
	BlendIntensityOverlay BlendMode = "intensity_overlay"
)

// BlendModes lists every mode in cycle order.
func BlendModes() []BlendMode {
	return []BlendMode{
		BlendOverride, BlendAdd, BlendMultiply, BlendMax, BlendAlpha,
		BlendSubtract, BlendMin, BlendAverage, BlendScreen, BlendMask,
		BlendIntensityOverlay,
	}
}

// EffectInstance is a placed effect: what happens, when, and how it blends.
type EffectInstance struct {
	Kind EffectKind `json:"kind"`
	// Script names the script when Kind is KindScript.
	Script    string                `json:"script,omitempty"`
	Params    map[string]ParamValue `json:"params,omitempty"`
	TimeRange TimeRange             `json:"time_range"`
	BlendMode BlendMode             `json:"blend_mode"`
	// Opacity 0 is transparent, 1 is fully opaque. Out-of-range values are
	// clamped at evaluation time, never here.
	Opacity float64 `json:"opacity"`
}

// NewEffect builds an instance of kind with schema defaults.
func NewEffect(kind EffectKind, tr TimeRange) EffectInstance {
	return EffectInstance{
		Kind:      kind,
		Params:    DefaultParams(kind),
		TimeRange: tr,
		BlendMode: BlendOverride,
		Opacity:   1.0,
	}
}

// Clone returns a deep copy, params map included.
func (e EffectInstance) Clone() EffectInstance {
	out := e
	if e.Params != nil {
		out.Params = make(map[string]ParamValue, len(e.Params))
		for k, v := range e.Params {
			out.Params[k] = v
		}
	}
	return out
}

// Track targets a set of fixtures and holds effects sorted by start time.
// Tracks layer bottom (index 0) to top.
type Track struct {
	Name    string           `json:"name"`
	Target  Target           `json:"target"`
	Effects []EffectInstance `json:"effects"`
}

// InsertEffect places e at its sorted position and returns the new index.
// Among equal start times the new effect lands last.
func (t *Track) InsertEffect(e EffectInstance) int {
	i := sort.Search(len(t.Effects), func(i int) bool {
		return t.Effects[i].TimeRange.Start > e.TimeRange.Start
	})
	t.Effects = append(t.Effects, EffectInstance{})
	copy(t.Effects[i+1:], t.Effects[i:])
	t.Effects[i] = e
	return i
}

// RemoveEffect deletes the effect at index i and returns it.
func (t *Track) RemoveEffect(i int) (EffectInstance, error) {
	if i < 0 || i >= len(t.Effects) {
		return EffectInstance{}, ErrNotFound
	}
	e := t.Effects[i]
	t.Effects = append(t.Effects[:i], t.Effects[i+1:]...)
	return e, nil
}

// SortEffects restores the sorted-by-start invariant, preserving the
// relative order of equal starts.
func (t *Track) SortEffects() {
	sort.SliceStable(t.Effects, func(i, j int) bool {
		return t.Effects[i].TimeRange.Start < t.Effects[j].TimeRange.Start
	})
}

// Sequence is one timeline: a song or scene with its own tracks and audio.
type Sequence struct {
	Name      string  `json:"name"`
	Duration  float64 `json:"duration"`
	FrameRate float64 `json:"frame_rate"`
	AudioFile string  `json:"audio_file,omitempty"`
	Tracks    []Track `json:"tracks"`
}

// Validated clamps duration and frame rate to positive finite values.
func (s Sequence) Validated() Sequence {
	if !(s.Duration > 0) {
		s.Duration = 30.0
	}
	if !(s.FrameRate > 0) {
		s.FrameRate = 30.0
	}
	return s
}

// SingleFixtureTrack finds the first track targeting exactly the one given
// fixture, scanning bottom to top.
func (s *Sequence) SingleFixtureTrack(fixtureID string) (int, bool) {
	for i := range s.Tracks {
		if s.Tracks[i].Target.IsSingleFixture(fixtureID) {
			return i, true
		}
	}
	return 0, false
}

// Show is the whole document: fixtures, groups, and sequences.
type Show struct {
	Name      string         `json:"name"`
	Fixtures  []FixtureDef   `json:"fixtures"`
	Groups    []FixtureGroup `json:"groups"`
	Sequences []Sequence     `json:"sequences"`
}

func (s *Show) FixtureByID(id string) *FixtureDef {
	for i := range s.Fixtures {
		if s.Fixtures[i].ID == id {
			return &s.Fixtures[i]
		}
	}
	return nil
}

func (s *Show) GroupByID(id string) *FixtureGroup {
	for i := range s.Groups {
		if s.Groups[i].ID == id {
			return &s.Groups[i]
		}
	}
	return nil
}

func (s *Show) SequenceAt(i int) *Sequence {
	if i < 0 || i >= len(s.Sequences) {
		return nil
	}
	return &s.Sequences[i]
}

// KeyFor serializes a (track, effect) pair as the selection key "t:e".
func KeyFor(track, effect int) string {
	return fmt.Sprintf("%d:%d", track, effect)
}

// ParseKey inverts KeyFor.
func ParseKey(key string) (track, effect int, ok bool) {
	if _, err := fmt.Sscanf(key, "%d:%d", &track, &effect); err != nil {
		return 0, 0, false
	}
	return track, effect, true
}

package model

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/EddieRydell/vibetracker/internal/show"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// AddEffectAtPlayhead drops a fresh effect of the given kind on the cursor
// row's fixture, starting at the playhead, and selects it.
func (m *Model) AddEffectAtPlayhead(kind show.EffectKind) {
	if m.CurrentSequence() == nil || len(m.Rows) == 0 {
		m.StatusMsg = "No fixture rows to add onto"
		return
	}
	fixtureID := m.Rows[m.CurrentRow].FixtureID
	track, _, err := m.EnsureTrackForFixture(fixtureID)
	if err != nil {
		log.Printf("Error resolving track for %s: %v", fixtureID, err)
		m.StatusMsg = "Could not add effect"
		return
	}

	duration := m.Map.Duration
	start := m.Engine.CurrentTime()
	if start > duration-types.MinEffectDuration {
		start = duration - types.MinEffectDuration
	}
	if start < 0 {
		start = 0
	}
	end := math.Min(start+4, duration)
	tr, err := show.NewTimeRange(start, end)
	if err != nil {
		m.StatusMsg = "No room for a new effect"
		return
	}

	idx, err := m.Store.AddEffect(m.CurrentSeq, track, show.NewEffect(kind, tr))
	if err != nil {
		log.Printf("Error adding effect: %v", err)
		m.StatusMsg = "Could not add effect"
		return
	}
	m.ReplaceSelection([]string{show.KeyFor(track, idx)})
	m.RebuildLayout()
	m.StatusMsg = fmt.Sprintf("Added %s", kind)
}

// DeleteSelection removes every selected effect in one undo step.
func (m *Model) DeleteSelection() {
	keys := m.SelectionSnapshot()
	if len(keys) == 0 {
		return
	}
	n, err := m.Store.DeleteEffects(m.CurrentSeq, keys)
	if err != nil {
		log.Printf("Error deleting effects: %v", err)
		return
	}
	m.ClearSelection()
	m.RebuildLayout()
	m.StatusMsg = fmt.Sprintf("Deleted %d effects", n)
}

// CopySelection snapshots the selected effects, ordered by track and start
// so a later paste re-inserts them stably.
func (m *Model) CopySelection() {
	keys := m.SelectionSnapshot()
	if len(keys) == 0 {
		return
	}
	items := make([]ClipItem, 0, len(keys))
	for _, k := range keys {
		track, effect, ok := show.ParseKey(k)
		if !ok {
			continue
		}
		eff, ok := m.Store.EffectAt(m.CurrentSeq, track, effect)
		if !ok {
			continue
		}
		items = append(items, ClipItem{Track: track, Effect: eff})
	}
	if len(items) == 0 {
		return
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Track != items[j].Track {
			return items[i].Track < items[j].Track
		}
		return items[i].Effect.TimeRange.Start < items[j].Effect.TimeRange.Start
	})
	m.Clipboard = items
	m.StatusMsg = fmt.Sprintf("Copied %d effects", len(items))
}

func (m *Model) CutSelection() {
	m.CopySelection()
	m.DeleteSelection()
}

// PasteAtPlayhead re-inserts the clipboard with its earliest effect moved to
// the playhead, preserving relative offsets and original tracks.
func (m *Model) PasteAtPlayhead() {
	if len(m.Clipboard) == 0 {
		return
	}
	seq := m.CurrentSequence()
	if seq == nil || len(seq.Tracks) == 0 {
		m.StatusMsg = "Nothing to paste onto"
		return
	}

	earliest := math.Inf(1)
	for _, it := range m.Clipboard {
		if it.Effect.TimeRange.Start < earliest {
			earliest = it.Effect.TimeRange.Start
		}
	}
	shift := m.Engine.CurrentTime() - earliest
	duration := m.Map.Duration

	// Resolve targets first, then insert in ascending start order per track
	// so every insert lands after the ones already collected and their
	// indices stay live.
	type pasteTarget struct {
		track  int
		effect show.EffectInstance
	}
	var targets []pasteTarget
	for _, it := range m.Clipboard {
		track := it.Track
		if track >= len(seq.Tracks) {
			track = len(seq.Tracks) - 1
		}
		d := it.Effect.TimeRange.Duration()
		if d > duration {
			continue
		}
		start := clampF(it.Effect.TimeRange.Start+shift, 0, duration-d)
		tr, err := show.NewTimeRange(start, start+d)
		if err != nil {
			continue
		}
		e := it.Effect.Clone()
		e.TimeRange = tr
		targets = append(targets, pasteTarget{track, e})
	}
	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].track != targets[j].track {
			return targets[i].track < targets[j].track
		}
		return targets[i].effect.TimeRange.Start < targets[j].effect.TimeRange.Start
	})

	var pasted []string
	for _, tgt := range targets {
		idx, err := m.Store.AddEffect(m.CurrentSeq, tgt.track, tgt.effect)
		if err != nil {
			log.Printf("Error pasting effect: %v", err)
			continue
		}
		pasted = append(pasted, show.KeyFor(tgt.track, idx))
	}
	if len(pasted) == 0 {
		return
	}
	m.ReplaceSelection(pasted)
	m.RebuildLayout()
	m.StatusMsg = fmt.Sprintf("Pasted %d effects", len(pasted))
}

// NudgeSelection shifts every selected effect by dt seconds, clamped into
// the sequence individually.
func (m *Model) NudgeSelection(dt float64) {
	keys := m.SelectionSnapshot()
	if len(keys) == 0 {
		return
	}
	perTrack := map[int][]int{}
	for _, k := range keys {
		track, effect, ok := show.ParseKey(k)
		if !ok {
			continue
		}
		perTrack[track] = append(perTrack[track], effect)
	}

	duration := m.Map.Duration
	type pos struct{ track, idx int }
	var moved []pos
	for track, idxs := range perTrack {
		sort.Ints(idxs)
		for i := 0; i < len(idxs); i++ {
			effect := idxs[i]
			eff, ok := m.Store.EffectAt(m.CurrentSeq, track, effect)
			if !ok {
				continue
			}
			d := eff.TimeRange.Duration()
			start := clampF(eff.TimeRange.Start+dt, 0, duration-d)
			newIdx, err := m.Store.UpdateEffectTimeRange(m.CurrentSeq, track, effect, start, start+d)
			if err != nil {
				log.Printf("Error nudging effect: %v", err)
				continue
			}
			// The update removed the effect at its old index and reinserted
			// it at newIdx, shifting every other index on the track.
			shift := func(f int) int {
				if f > effect {
					f--
				}
				if f >= newIdx {
					f++
				}
				return f
			}
			for j := i + 1; j < len(idxs); j++ {
				idxs[j] = shift(idxs[j])
			}
			for j := range moved {
				if moved[j].track == track {
					moved[j].idx = shift(moved[j].idx)
				}
			}
			moved = append(moved, pos{track, newIdx})
		}
	}
	if len(moved) == 0 {
		return
	}
	next := make([]string, 0, len(moved))
	for _, p := range moved {
		next = append(next, show.KeyFor(p.track, p.idx))
	}
	m.ReplaceSelection(next)
	m.RebuildLayout()
}

// SelectAll selects every effect in the current sequence.
func (m *Model) SelectAll() {
	seq := m.CurrentSequence()
	if seq == nil {
		return
	}
	var keys []string
	for ti := range seq.Tracks {
		for ei := range seq.Tracks[ti].Effects {
			keys = append(keys, show.KeyFor(ti, ei))
		}
	}
	m.ReplaceSelection(keys)
	m.StatusMsg = fmt.Sprintf("Selected %d effects", len(keys))
}

func (m *Model) Undo() {
	label, ok := m.Store.Undo()
	if !ok {
		m.StatusMsg = "Nothing to undo"
		return
	}
	m.ClearSelection()
	m.RebuildLayout()
	m.StatusMsg = "Undo: " + label
}

func (m *Model) Redo() {
	label, ok := m.Store.Redo()
	if !ok {
		m.StatusMsg = "Nothing to redo"
		return
	}
	m.ClearSelection()
	m.RebuildLayout()
	m.StatusMsg = "Redo: " + label
}

// OpenPrompt switches the editor into text entry mode.
func (m *Model) OpenPrompt(p types.Prompt, placeholder, value string) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(value)
	ti.CharLimit = 128
	ti.Width = 48
	ti.Focus()
	m.PromptInput = ti
	m.Prompt = p
}

func (m *Model) ClosePrompt() {
	m.Prompt = types.PromptNone
	m.PromptInput.Blur()
}

// OpenRenameTrackPrompt targets the track of the single selected effect.
func (m *Model) OpenRenameTrackPrompt() {
	track, _, ok := m.PrimarySelected()
	if !ok {
		m.StatusMsg = "Select one effect on the track to rename"
		return
	}
	seq := m.CurrentSequence()
	if seq == nil || track < 0 || track >= len(seq.Tracks) {
		return
	}
	m.PromptTrack = track
	m.OpenPrompt(types.PromptRenameTrack, "track name", seq.Tracks[track].Name)
}

func clampF(v, lo, hi float64) float64 {
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

package history

import (
	"fmt"
	"sort"

	"github.com/EddieRydell/vibetracker/internal/show"
)

const maxUndo = 100

// command is one applied mutation with replayable apply and revert sides.
type command struct {
	label  string
	seq    int
	tracks []int // tracks whose thumbnail revisions refresh on apply/revert
	apply  func(st *Store)
	revert func(st *Store)
}

// Store owns the show document and applies every mutation to it, keeping
// an undo/redo stack and per-effect revision numbers for thumbnail
// invalidation. All methods run on the UI goroutine.
type Store struct {
	Show *show.Show

	undo  []command
	redo  []command
	dirty bool

	revCounter int
	revs       map[string]int
}

func NewStore(sh *show.Show) *Store {
	st := &Store{Show: sh, revs: make(map[string]int)}
	for si := range sh.Sequences {
		for ti := range sh.Sequences[si].Tracks {
			st.refreshTrack(si, ti)
		}
	}
	return st
}

func (st *Store) Dirty() bool { return st.dirty }
func (st *Store) MarkSaved() { st.dirty = false }

func (st *Store) CanUndo() bool { return len(st.undo) > 0 }
func (st *Store) CanRedo() bool { return len(st.redo) > 0 }

// Undo reverts the most recent mutation and returns its label.
func (st *Store) Undo() (string, bool) {
	if len(st.undo) == 0 {
		return "", false
	}
	c := st.undo[len(st.undo)-1]
	st.undo = st.undo[:len(st.undo)-1]
	c.revert(st)
	st.refresh(c)
	st.dirty = true
	st.redo = append(st.redo, c)
	return c.label, true
}

// Redo reapplies the most recently undone mutation.
func (st *Store) Redo() (string, bool) {
	if len(st.redo) == 0 {
		return "", false
	}
	c := st.redo[len(st.redo)-1]
	st.redo = st.redo[:len(st.redo)-1]
	c.apply(st)
	st.refresh(c)
	st.dirty = true
	st.undo = append(st.undo, c)
	return c.label, true
}

func (st *Store) push(c command) {
	st.undo = append(st.undo, c)
	if len(st.undo) > maxUndo {
		st.undo = st.undo[1:]
	}
	st.redo = st.redo[:0]
	st.dirty = true
	st.refresh(c)
}

// Revision returns the thumbnail revision of an effect. Zero means the
// effect has never existed at that position.
func (st *Store) Revision(seq, track, effect int) int {
	return st.revs[revKey(seq, track, effect)]
}

func revKey(seq, track, effect int) string {
	return fmt.Sprintf("%d:%d:%d", seq, track, effect)
}

// refreshTrack renumbers every live effect in the track. Stale entries for
// positions beyond the new length are overwritten the next time those
// positions come back to life, so they are left in place.
func (st *Store) refreshTrack(seq, track int) {
	tk := st.trackAt(seq, track)
	if tk == nil {
		return
	}
	for e := range tk.Effects {
		st.revCounter++
		st.revs[revKey(seq, track, e)] = st.revCounter
	}
}

func (st *Store) refresh(c command) {
	for _, ti := range c.tracks {
		st.refreshTrack(c.seq, ti)
	}
}

func (st *Store) bumpEffect(seq, track, effect int) {
	st.revCounter++
	st.revs[revKey(seq, track, effect)] = st.revCounter
}

func (st *Store) sequenceAt(i int) *show.Sequence {
	return st.Show.SequenceAt(i)
}

func (st *Store) trackAt(seq, track int) *show.Track {
	s := st.sequenceAt(seq)
	if s == nil || track < 0 || track >= len(s.Tracks) {
		return nil
	}
	return &s.Tracks[track]
}

func (st *Store) effectAt(seq, track, effect int) *show.EffectInstance {
	tk := st.trackAt(seq, track)
	if tk == nil || effect < 0 || effect >= len(tk.Effects) {
		return nil
	}
	return &tk.Effects[effect]
}

// EffectAt returns a copy of the effect, or false when it does not exist.
func (st *Store) EffectAt(seq, track, effect int) (show.EffectInstance, bool) {
	e := st.effectAt(seq, track, effect)
	if e == nil {
		return show.EffectInstance{}, false
	}
	out := *e
	out.Params = cloneParams(e.Params)
	return out, true
}

func cloneParams(p map[string]show.ParamValue) map[string]show.ParamValue {
	if p == nil {
		return nil
	}
	out := make(map[string]show.ParamValue, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func cloneEffects(effects []show.EffectInstance) []show.EffectInstance {
	out := make([]show.EffectInstance, len(effects))
	copy(out, effects)
	for i := range out {
		out[i].Params = cloneParams(out[i].Params)
	}
	return out
}

func (st *Store) restoreEffects(seq, track int, snap []show.EffectInstance) {
	tk := st.trackAt(seq, track)
	if tk == nil {
		return
	}
	tk.Effects = cloneEffects(snap)
}

// AddTrack appends a track and returns its index.
func (st *Store) AddTrack(seq int, name string, target show.Target) (int, error) {
	s := st.sequenceAt(seq)
	if s == nil {
		return 0, show.ErrNotFound
	}
	idx := len(s.Tracks)
	tk := show.Track{Name: name, Target: target}
	s.Tracks = append(s.Tracks, tk)
	st.push(command{
		label: "add track", seq: seq,
		apply: func(st *Store) {
			if s := st.sequenceAt(seq); s != nil {
				s.Tracks = append(s.Tracks, tk)
			}
		},
		revert: func(st *Store) {
			if s := st.sequenceAt(seq); s != nil && len(s.Tracks) > 0 {
				s.Tracks = s.Tracks[:len(s.Tracks)-1]
			}
		},
	})
	return idx, nil
}

// RenameTrack sets a track's display name.
func (st *Store) RenameTrack(seq, track int, name string) error {
	tk := st.trackAt(seq, track)
	if tk == nil {
		return show.ErrNotFound
	}
	old := tk.Name
	tk.Name = name
	st.push(command{
		label: "rename track", seq: seq,
		apply: func(st *Store) {
			if tk := st.trackAt(seq, track); tk != nil {
				tk.Name = name
			}
		},
		revert: func(st *Store) {
			if tk := st.trackAt(seq, track); tk != nil {
				tk.Name = old
			}
		},
	})
	return nil
}

// AddEffect inserts e at its sorted position and returns the new index.
func (st *Store) AddEffect(seq, track int, e show.EffectInstance) (int, error) {
	tk := st.trackAt(seq, track)
	if tk == nil {
		return 0, show.ErrNotFound
	}
	if _, err := show.NewTimeRange(e.TimeRange.Start, e.TimeRange.End); err != nil {
		return 0, err
	}
	before := cloneEffects(tk.Effects)
	idx := tk.InsertEffect(e)
	after := cloneEffects(tk.Effects)
	st.push(command{
		label: "add effect", seq: seq, tracks: []int{track},
		apply:  func(st *Store) { st.restoreEffects(seq, track, after) },
		revert: func(st *Store) { st.restoreEffects(seq, track, before) },
	})
	return idx, nil
}

// DeleteEffects removes every effect named by keys ("track:effect").
// Unknown keys are skipped. Returns how many effects were deleted.
func (st *Store) DeleteEffects(seq int, keys []string) (int, error) {
	s := st.sequenceAt(seq)
	if s == nil {
		return 0, show.ErrNotFound
	}

	// Group valid targets per track, then delete in descending effect order
	// so earlier removals never shift later ones.
	perTrack := map[int][]int{}
	for _, key := range keys {
		ti, ei, ok := show.ParseKey(key)
		if !ok || st.effectAt(seq, ti, ei) == nil {
			continue
		}
		perTrack[ti] = append(perTrack[ti], ei)
	}
	if len(perTrack) == 0 {
		return 0, nil
	}

	var touched []int
	snaps := map[int][]show.EffectInstance{}
	for ti := range perTrack {
		touched = append(touched, ti)
		snaps[ti] = cloneEffects(s.Tracks[ti].Effects)
	}

	deleted := 0
	for ti, idxs := range perTrack {
		seen := map[int]struct{}{}
		ordered := make([]int, 0, len(idxs))
		for _, ei := range idxs {
			if _, dup := seen[ei]; dup {
				continue
			}
			seen[ei] = struct{}{}
			ordered = append(ordered, ei)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
		for _, ei := range ordered {
			if _, err := s.Tracks[ti].RemoveEffect(ei); err == nil {
				deleted++
			}
		}
	}

	afters := map[int][]show.EffectInstance{}
	for ti := range perTrack {
		afters[ti] = cloneEffects(s.Tracks[ti].Effects)
	}

	st.push(command{
		label: "delete effects", seq: seq, tracks: touched,
		apply: func(st *Store) {
			for ti, snap := range afters {
				st.restoreEffects(seq, ti, snap)
			}
		},
		revert: func(st *Store) {
			for ti, snap := range snaps {
				st.restoreEffects(seq, ti, snap)
			}
		},
	})
	return deleted, nil
}

// UpdateEffectTimeRange moves an effect to a new validated range and
// returns its index after re-sorting.
func (st *Store) UpdateEffectTimeRange(seq, track, effect int, start, end float64) (int, error) {
	tk := st.trackAt(seq, track)
	if tk == nil || effect < 0 || effect >= len(tk.Effects) {
		return 0, show.ErrNotFound
	}
	tr, err := show.NewTimeRange(start, end)
	if err != nil {
		return 0, err
	}

	before := cloneEffects(tk.Effects)
	e, _ := tk.RemoveEffect(effect)
	e.TimeRange = tr
	newIdx := tk.InsertEffect(e)
	after := cloneEffects(tk.Effects)

	st.push(command{
		label: "move effect", seq: seq, tracks: []int{track},
		apply:  func(st *Store) { st.restoreEffects(seq, track, after) },
		revert: func(st *Store) { st.restoreEffects(seq, track, before) },
	})
	return newIdx, nil
}

// MoveEffectToTrack transplants an effect onto another track, keeping its
// time range, and returns its index in the destination.
func (st *Store) MoveEffectToTrack(seq, fromTrack, effect, toTrack int) (int, error) {
	src := st.trackAt(seq, fromTrack)
	dst := st.trackAt(seq, toTrack)
	if src == nil || dst == nil || effect < 0 || effect >= len(src.Effects) {
		return 0, show.ErrNotFound
	}
	if fromTrack == toTrack {
		return effect, nil
	}

	beforeSrc := cloneEffects(src.Effects)
	beforeDst := cloneEffects(dst.Effects)
	e, _ := src.RemoveEffect(effect)
	newIdx := dst.InsertEffect(e)
	afterSrc := cloneEffects(src.Effects)
	afterDst := cloneEffects(dst.Effects)

	st.push(command{
		label: "move effect to track", seq: seq, tracks: []int{fromTrack, toTrack},
		apply: func(st *Store) {
			st.restoreEffects(seq, fromTrack, afterSrc)
			st.restoreEffects(seq, toTrack, afterDst)
		},
		revert: func(st *Store) {
			st.restoreEffects(seq, fromTrack, beforeSrc)
			st.restoreEffects(seq, toTrack, beforeDst)
		},
	})
	return newIdx, nil
}

// SetParam writes one effect parameter.
func (st *Store) SetParam(seq, track, effect int, key string, v show.ParamValue) error {
	e := st.effectAt(seq, track, effect)
	if e == nil {
		return show.ErrNotFound
	}
	old, existed := e.Params[key]
	if e.Params == nil {
		e.Params = map[string]show.ParamValue{}
	}
	e.Params[key] = v
	st.bumpEffect(seq, track, effect)
	st.push(command{
		label: "set " + key, seq: seq,
		apply: func(st *Store) {
			if e := st.effectAt(seq, track, effect); e != nil {
				if e.Params == nil {
					e.Params = map[string]show.ParamValue{}
				}
				e.Params[key] = v
				st.bumpEffect(seq, track, effect)
			}
		},
		revert: func(st *Store) {
			if e := st.effectAt(seq, track, effect); e != nil {
				if existed {
					e.Params[key] = old
				} else {
					delete(e.Params, key)
				}
				st.bumpEffect(seq, track, effect)
			}
		},
	})
	return nil
}

// SetBlendMode writes an effect's blend mode.
func (st *Store) SetBlendMode(seq, track, effect int, mode show.BlendMode) error {
	e := st.effectAt(seq, track, effect)
	if e == nil {
		return show.ErrNotFound
	}
	old := e.BlendMode
	e.BlendMode = mode
	st.bumpEffect(seq, track, effect)
	st.push(command{
		label: "set blend mode", seq: seq,
		apply: func(st *Store) {
			if e := st.effectAt(seq, track, effect); e != nil {
				e.BlendMode = mode
				st.bumpEffect(seq, track, effect)
			}
		},
		revert: func(st *Store) {
			if e := st.effectAt(seq, track, effect); e != nil {
				e.BlendMode = old
				st.bumpEffect(seq, track, effect)
			}
		},
	})
	return nil
}

// SetOpacity writes an effect's opacity, clamped to [0, 1].
func (st *Store) SetOpacity(seq, track, effect int, opacity float64) error {
	e := st.effectAt(seq, track, effect)
	if e == nil {
		return show.ErrNotFound
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	old := e.Opacity
	e.Opacity = opacity
	st.bumpEffect(seq, track, effect)
	st.push(command{
		label: "set opacity", seq: seq,
		apply: func(st *Store) {
			if e := st.effectAt(seq, track, effect); e != nil {
				e.Opacity = opacity
				st.bumpEffect(seq, track, effect)
			}
		},
		revert: func(st *Store) {
			if e := st.effectAt(seq, track, effect); e != nil {
				e.Opacity = old
				st.bumpEffect(seq, track, effect)
			}
		},
	})
	return nil
}

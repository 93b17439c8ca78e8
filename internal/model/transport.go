package model

import (
	"log"
	"path/filepath"

	"github.com/EddieRydell/vibetracker/internal/audio"
	"github.com/EddieRydell/vibetracker/internal/show"
)

// PlayPause toggles playback. Starting from the parked end position rewinds
// to the loop start first, so pressing play always produces motion.
func (m *Model) PlayPause() {
	if m.Engine.Playing() {
		m.Pause()
		return
	}
	m.Play()
}

func (m *Model) Play() {
	end := m.Engine.Duration()
	loopStart := 0.0
	if r := m.Engine.Region(); r != nil {
		if r[1] < end {
			end = r[1]
		}
		loopStart = r[0]
	}
	if m.Engine.CurrentTime() >= end-1e-9 {
		m.Seek(loopStart)
	}
	m.Arbiter.ResetEndLatch()
	m.Engine.Play()
	if m.Audio.Ready() {
		if err := m.Audio.Seek(m.Engine.CurrentTime()); err != nil {
			log.Printf("Error syncing audio before play: %v", err)
		}
		if err := m.Audio.Play(); err != nil {
			log.Printf("Error starting audio: %v", err)
		}
	}
	m.Link.SendPlay(m.Engine.CurrentTime())
}

func (m *Model) Pause() {
	m.Engine.Pause()
	if m.Audio.Ready() {
		if err := m.Audio.Pause(); err != nil {
			log.Printf("Error pausing audio: %v", err)
		}
	}
	m.Link.SendPause(m.Engine.CurrentTime())
}

// Seek moves both clocks and re-arms the end-of-region pause.
func (m *Model) Seek(t float64) {
	m.Engine.Seek(t)
	if m.Audio.Ready() {
		if err := m.Audio.Seek(m.Engine.CurrentTime()); err != nil {
			log.Printf("Error seeking audio: %v", err)
		}
	}
	m.Arbiter.ResetEndLatch()
	m.Link.SendSeek(m.Engine.CurrentTime())
}

// SeekTo implements the gesture transport.
func (m *Model) SeekTo(t float64) { m.Seek(t) }

// ApplyRegion implements the gesture transport. The engine normalizes the
// raw drag bounds; the engine link gets the normalized result.
func (m *Model) ApplyRegion(r *[2]float64) {
	m.Engine.SetRegion(r)
	m.Arbiter.ResetEndLatch()
	m.Link.SendRegion(m.Engine.Region())
}

func (m *Model) ToggleLooping() {
	m.Engine.SetLooping(!m.Engine.Looping())
	m.Link.SendLooping(m.Engine.Looping())
	if m.Engine.Looping() {
		m.StatusMsg = "Looping on"
	} else {
		m.StatusMsg = "Looping off"
	}
}

// RegionFromSelection sets the loop region to the selection's time bounds.
func (m *Model) RegionFromSelection() {
	seq := m.CurrentSequence()
	if seq == nil || len(m.Selected) == 0 {
		return
	}
	lo, hi := 0.0, 0.0
	first := true
	for key := range m.Selected {
		track, effect, ok := show.ParseKey(key)
		if !ok {
			continue
		}
		eff, ok := m.Store.EffectAt(m.CurrentSeq, track, effect)
		if !ok {
			continue
		}
		if first || eff.TimeRange.Start < lo {
			lo = eff.TimeRange.Start
		}
		if first || eff.TimeRange.End > hi {
			hi = eff.TimeRange.End
		}
		first = false
	}
	if first {
		return
	}
	m.ApplyRegion(&[2]float64{lo, hi})
	m.StatusMsg = "Region set from selection"
}

// Blackout tells the engine to drop all outputs without touching playback.
func (m *Model) Blackout() {
	m.Link.SendBlackout()
	m.StatusMsg = "Blackout sent"
}

// LoadAudio attaches a wav file to playback and prepares its overview strip.
func (m *Model) LoadAudio(path string) error {
	if err := m.Audio.Load(path); err != nil {
		return err
	}
	m.WavePath = ""
	m.waveData = nil
	proxy, err := audio.EnsureWaveformFile(path, filepath.Dir(m.ShowPath))
	if err != nil {
		log.Printf("Error preparing waveform file: %v", err)
		return nil
	}
	m.WavePath = proxy
	return nil
}

// UnloadAudio detaches audio playback and the overview strip.
func (m *Model) UnloadAudio() {
	m.Audio.Unload()
	m.WavePath = ""
	m.waveData = nil
}

// SwitchSequence moves the editor onto another sequence: playback stops,
// selection clears and the viewport resets.
func (m *Model) SwitchSequence(i int) {
	sh := m.Store.Show
	if sh == nil || i < 0 || i >= len(sh.Sequences) {
		return
	}
	m.Pause()
	m.CurrentSeq = i
	m.ClearSelection()
	m.ScrollX, m.ScrollY = 0, 0
	m.CurrentRow = 0
	m.Engine.SetSequenceIndex(i)
	m.Engine.Seek(0)
	m.Engine.SetRegion(nil)
	m.Arbiter.ResetEndLatch()

	seq := &sh.Sequences[i]
	if seq.AudioFile != "" {
		if err := m.LoadAudio(m.ResolveMediaPath(seq.AudioFile)); err != nil {
			log.Printf("Error loading audio %s: %v", seq.AudioFile, err)
			m.UnloadAudio()
		}
	} else {
		m.UnloadAudio()
	}

	m.RebuildLayout()
	m.Link.SendSequence(i, seq.Name)
	m.StatusMsg = "Sequence: " + seq.Name
}

// ResolveMediaPath resolves a show-relative media reference against the
// show file's directory.
func (m *Model) ResolveMediaPath(ref string) string {
	if ref == "" || filepath.IsAbs(ref) || m.ShowPath == "" {
		return ref
	}
	return filepath.Join(filepath.Dir(m.ShowPath), ref)
}

package playback

import (
	"log"
	"time"
)

// AudioClock is the audio backend as the arbiter sees it. A nil or
// not-ready clock leaves the engine in charge.
type AudioClock interface {
	Ready() bool
	Playing() bool
	CurrentTime() (float64, bool)
	Play() error
	Pause() error
	Seek(t float64) error
}

// Arbiter reconciles the two clocks once per frame. Audio wins whenever it
// is ready and playing; otherwise the engine advances by the wall-clock
// delta between frames. Region handling on the audio path mirrors the
// engine's: loop back, or clamp to the region end and pause exactly once.
type Arbiter struct {
	Audio  AudioClock
	Engine *Engine

	lastFrame time.Time
	haveFrame bool
	endPaused bool
}

func NewArbiter(engine *Engine, audio AudioClock) *Arbiter {
	return &Arbiter{Audio: audio, Engine: engine}
}

// ResetEndLatch re-arms the one-shot region-end pause. Call on play, seek,
// or region change.
func (a *Arbiter) ResetEndLatch() { a.endPaused = false }

// Frame advances the transport for one animation frame and returns the
// time to display and whether playback is live. The frame timestamp is
// always recorded, even while paused, so resuming never replays the time
// spent paused.
func (a *Arbiter) Frame(now time.Time) (float64, bool) {
	defer func() {
		a.lastFrame = now
		a.haveFrame = true
	}()

	if a.Audio != nil && a.Audio.Ready() && a.Audio.Playing() {
		if t, ok := a.Audio.CurrentTime(); ok {
			return a.audioFrame(t)
		}
	}

	if !a.Engine.Playing() {
		return a.Engine.CurrentTime(), false
	}

	var dt float64
	if a.haveFrame {
		dt = now.Sub(a.lastFrame).Seconds()
	}
	return a.Engine.TickDt(dt)
}

func (a *Arbiter) audioFrame(t float64) (float64, bool) {
	r := a.Engine.Region()
	if r == nil || t < r[1] {
		a.endPaused = false
		a.Engine.Seek(t)
		return t, true
	}

	if a.Engine.Looping() {
		if err := a.Audio.Seek(r[0]); err != nil {
			log.Printf("audio loop seek failed: %v", err)
		}
		a.Engine.Seek(r[0])
		return r[0], true
	}

	if !a.endPaused {
		a.endPaused = true
		if err := a.Audio.Pause(); err != nil {
			log.Printf("audio pause at region end failed: %v", err)
		}
		a.Engine.Pause()
	}
	a.Engine.Seek(r[1])
	return r[1], false
}

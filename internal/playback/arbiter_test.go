package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeAudio struct {
	ready      bool
	playing    bool
	t          float64
	hasTime    bool
	playCalls  int
	pauseCalls int
	seeks      []float64
	// stubborn audio keeps reporting playing after Pause, like an element
	// that has not processed the pause yet
	ignorePause bool
}

func (f *fakeAudio) Ready() bool   { return f.ready }
func (f *fakeAudio) Playing() bool { return f.playing }
func (f *fakeAudio) CurrentTime() (float64, bool) {
	return f.t, f.hasTime
}
func (f *fakeAudio) Play() error {
	f.playCalls++
	f.playing = true
	return nil
}
func (f *fakeAudio) Pause() error {
	f.pauseCalls++
	if !f.ignorePause {
		f.playing = false
	}
	return nil
}
func (f *fakeAudio) Seek(t float64) error {
	f.seeks = append(f.seeks, t)
	f.t = t
	return nil
}

func at(ms int) time.Time {
	return time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond)
}

func TestArbiterAudioWins(t *testing.T) {
	e := NewEngine(60)
	e.Play()
	audio := &fakeAudio{ready: true, playing: true, t: 3.3, hasTime: true}
	arb := NewArbiter(e, audio)

	cur, playing := arb.Frame(at(0))
	assert.Equal(t, 3.3, cur)
	assert.True(t, playing)
	assert.Equal(t, 3.3, e.CurrentTime(), "engine follows the audio clock")
}

func TestArbiterEngineFallback(t *testing.T) {
	t.Run("silent sequence advances by frame delta", func(t *testing.T) {
		e := NewEngine(60)
		e.Play()
		arb := NewArbiter(e, nil)

		cur, _ := arb.Frame(at(0))
		assert.Equal(t, 0.0, cur, "first frame has no delta yet")

		cur, _ = arb.Frame(at(100))
		assert.InDelta(t, 0.1, cur, 1e-9)

		cur, _ = arb.Frame(at(350))
		assert.InDelta(t, 0.35, cur, 1e-9)
	})

	t.Run("audio that is not ready leaves the engine in charge", func(t *testing.T) {
		e := NewEngine(60)
		e.Play()
		arb := NewArbiter(e, &fakeAudio{ready: false, playing: true, t: 42, hasTime: true})

		arb.Frame(at(0))
		cur, _ := arb.Frame(at(200))
		assert.InDelta(t, 0.2, cur, 1e-9)
	})

	t.Run("paused frames still record timestamps", func(t *testing.T) {
		e := NewEngine(60)
		e.Play()
		arb := NewArbiter(e, nil)

		arb.Frame(at(0))
		cur, _ := arb.Frame(at(1000))
		assert.InDelta(t, 1.0, cur, 1e-9)

		e.Pause()
		cur, playing := arb.Frame(at(5000))
		assert.InDelta(t, 1.0, cur, 1e-9, "paused playhead holds still")
		assert.False(t, playing)

		// Resuming must not replay the 4 seconds spent paused.
		e.Play()
		cur, _ = arb.Frame(at(5500))
		assert.InDelta(t, 1.5, cur, 1e-9)
	})
}

func TestArbiterRegionEnd(t *testing.T) {
	t.Run("pauses once at region end", func(t *testing.T) {
		e := NewEngine(60)
		e.SetRegion(&[2]float64{2, 10})
		e.Play()
		audio := &fakeAudio{ready: true, playing: true, t: 9.9, hasTime: true}
		arb := NewArbiter(e, audio)

		cur, playing := arb.Frame(at(0))
		assert.Equal(t, 9.9, cur, "just before the region end audio still wins")
		assert.True(t, playing)

		audio.t = 10.05
		cur, playing = arb.Frame(at(33))
		assert.Equal(t, 10.0, cur, "displayed time clamps to the region end")
		assert.False(t, playing)
		assert.Equal(t, 1, audio.pauseCalls)
		assert.False(t, e.Playing())

		// Frames keep coming; the pause must not repeat.
		arb.Frame(at(66))
		arb.Frame(at(99))
		assert.Equal(t, 1, audio.pauseCalls)
	})

	t.Run("latch holds even if audio is slow to stop", func(t *testing.T) {
		e := NewEngine(60)
		e.SetRegion(&[2]float64{2, 10})
		e.Play()
		audio := &fakeAudio{ready: true, playing: true, t: 10.2, hasTime: true, ignorePause: true}
		arb := NewArbiter(e, audio)

		for ms := 0; ms < 200; ms += 33 {
			cur, _ := arb.Frame(at(ms))
			assert.Equal(t, 10.0, cur)
		}
		assert.Equal(t, 1, audio.pauseCalls, "exactly one pause despite repeated frames")
	})

	t.Run("latch re-arms after seeking back into the region", func(t *testing.T) {
		e := NewEngine(60)
		e.SetRegion(&[2]float64{2, 10})
		e.Play()
		audio := &fakeAudio{ready: true, playing: true, t: 10.2, hasTime: true, ignorePause: true}
		arb := NewArbiter(e, audio)

		arb.Frame(at(0))
		assert.Equal(t, 1, audio.pauseCalls)

		// User seeks back inside the region and plays again.
		audio.t = 5
		e.Play()
		arb.ResetEndLatch()
		cur, playing := arb.Frame(at(100))
		assert.Equal(t, 5.0, cur)
		assert.True(t, playing)

		audio.t = 10.3
		arb.Frame(at(200))
		assert.Equal(t, 2, audio.pauseCalls, "a fresh region hit pauses again")
	})

	t.Run("loops audio back to region start", func(t *testing.T) {
		e := NewEngine(60)
		e.SetRegion(&[2]float64{2, 10})
		e.SetLooping(true)
		e.Play()
		audio := &fakeAudio{ready: true, playing: true, t: 10.1, hasTime: true}
		arb := NewArbiter(e, audio)

		cur, playing := arb.Frame(at(0))
		assert.Equal(t, 2.0, cur)
		assert.True(t, playing)
		assert.Equal(t, []float64{2}, audio.seeks)
		assert.Equal(t, 2.0, e.CurrentTime())
		assert.Zero(t, audio.pauseCalls)
	})
}

func TestArbiterAudioWithoutTime(t *testing.T) {
	// A clock that claims to play but cannot report time falls back to the
	// engine instead of freezing the playhead.
	e := NewEngine(60)
	e.Play()
	arb := NewArbiter(e, &fakeAudio{ready: true, playing: true, hasTime: false})

	arb.Frame(at(0))
	cur, _ := arb.Frame(at(500))
	assert.InDelta(t, 0.5, cur, 1e-9)
}

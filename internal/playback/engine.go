package playback

// Info is the transport snapshot shared with views and the OSC link.
type Info struct {
	CurrentTime   float64     `json:"current_time"`
	Duration      float64     `json:"duration"`
	Playing       bool        `json:"playing"`
	SequenceIndex int         `json:"sequence_index"`
	Region        *[2]float64 `json:"region,omitempty"`
	Looping       bool        `json:"looping"`
}

// Engine is the virtual show clock. It never advances on its own: the
// frame loop feeds it wall-clock deltas through TickDt, so a sequence
// without audio still plays at real-time speed.
type Engine struct {
	duration float64
	seqIndex int
	current  float64
	playing  bool
	region   *[2]float64
	looping  bool
}

func NewEngine(duration float64) *Engine {
	return &Engine{duration: duration}
}

func (e *Engine) Duration() float64 { return e.duration }

// SetDuration updates the clock's end of time, clamping the playhead and
// any region into the new bounds.
func (e *Engine) SetDuration(d float64) {
	if d < 0 {
		d = 0
	}
	e.duration = d
	if e.current > d {
		e.current = d
	}
	e.SetRegion(e.region)
}

func (e *Engine) SequenceIndex() int     { return e.seqIndex }
func (e *Engine) SetSequenceIndex(i int) { e.seqIndex = i }

func (e *Engine) Playing() bool        { return e.playing }
func (e *Engine) CurrentTime() float64 { return e.current }

func (e *Engine) Play()  { e.playing = true }
func (e *Engine) Pause() { e.playing = false }

// Seek moves the playhead, clamped to [0, duration].
func (e *Engine) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	if t > e.duration {
		t = e.duration
	}
	e.current = t
}

// SetRegion installs a loop/stop region, normalized into bounds. A nil,
// inverted, or empty region clears it.
func (e *Engine) SetRegion(r *[2]float64) {
	if r == nil {
		e.region = nil
		return
	}
	start, end := r[0], r[1]
	if start < 0 {
		start = 0
	}
	if end > e.duration {
		end = e.duration
	}
	if end <= start {
		e.region = nil
		return
	}
	e.region = &[2]float64{start, end}
}

func (e *Engine) Region() *[2]float64 {
	if e.region == nil {
		return nil
	}
	r := *e.region
	return &r
}

func (e *Engine) Looping() bool        { return e.looping }
func (e *Engine) SetLooping(loop bool) { e.looping = loop }

// TickDt advances the clock by dt seconds. At the effective end (region
// end if one is set, otherwise the duration) it either loops back to the
// region start (or zero) or clamps there and pauses.
func (e *Engine) TickDt(dt float64) (float64, bool) {
	if !e.playing {
		return e.current, false
	}
	if dt > 0 {
		e.current += dt
	}

	end := e.duration
	loopStart := 0.0
	if e.region != nil {
		if e.region[1] < end {
			end = e.region[1]
		}
		loopStart = e.region[0]
	}
	if e.current >= end {
		if e.looping {
			e.current = loopStart
		} else {
			e.current = end
			e.playing = false
		}
	}
	return e.current, e.playing
}

func (e *Engine) Info() Info {
	return Info{
		CurrentTime:   e.current,
		Duration:      e.duration,
		Playing:       e.playing,
		SequenceIndex: e.seqIndex,
		Region:        e.Region(),
		Looping:       e.looping,
	}
}

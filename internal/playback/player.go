package playback

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/EddieRydell/vibetracker/internal/audio"
)

const (
	playerChannels = 2
	bytesPerFrame  = playerChannels * 2 // 16-bit samples
)

// Player plays a sequence's WAV file through oto and exposes the byte
// offset the stream has consumed as the authoritative audio clock. The oto
// stream runs continuously; the playing flag gates whether Read hands out
// samples or silence, so pause is sample-accurate and there is no device
// start/stop latency.
//
// Construct one Player per process: the underlying audio context cannot be
// rebuilt, so later files are resampled to the first file's rate.
type Player struct {
	mu      sync.Mutex
	ctx     *oto.Context
	out     *oto.Player
	pcm     []byte
	pos     int
	rate    int
	playing bool
	ready   bool
	ended   bool
}

func NewPlayer() *Player { return &Player{} }

// Load decodes a WAV file and makes it the active program. The playhead
// resets to zero and playback stops.
func (p *Player) Load(path string) error {
	samples, rate, err := audio.DecodeStereo16(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: playerChannels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			p.mu.Unlock()
			return fmt.Errorf("audio context: %w", err)
		}
		<-ready
		p.ctx = ctx
		p.rate = rate
	} else if rate != p.rate {
		samples = resampleStereo(samples, rate, p.rate)
	}

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	p.pcm = pcm
	p.pos = 0
	p.playing = false
	p.ended = false
	p.ready = true
	needOut := p.out == nil
	ctx := p.ctx
	p.mu.Unlock()

	// The stream may pull from clockReader as soon as Play is called, so the
	// device is created outside the lock.
	if needOut {
		out := ctx.NewPlayer(&clockReader{p: p})
		out.Play()
		p.mu.Lock()
		p.out = out
		p.mu.Unlock()
	}
	return nil
}

// Unload drops the current program; the clock reports not ready.
func (p *Player) Unload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pcm = nil
	p.pos = 0
	p.playing = false
	p.ended = false
	p.ready = false
}

func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Ended reports that the stream ran off the end of the file. Cleared by
// Seek and Load.
func (p *Player) Ended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ended
}

func (p *Player) CurrentTime() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready || p.rate == 0 {
		return 0, false
	}
	return float64(p.pos/bytesPerFrame) / float64(p.rate), true
}

func (p *Player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rate == 0 {
		return 0
	}
	return float64(len(p.pcm)/bytesPerFrame) / float64(p.rate)
}

func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return nil
	}
	p.playing = true
	p.ended = false
	return nil
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	return nil
}

func (p *Player) Seek(t float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return nil
	}
	frame := int(t * float64(p.rate))
	pos := frame * bytesPerFrame
	if pos < 0 {
		pos = 0
	}
	if pos > len(p.pcm) {
		pos = len(p.pcm)
	}
	p.pos = pos
	p.ended = false
	return nil
}

func (p *Player) Close() {
	p.mu.Lock()
	out := p.out
	p.out = nil
	p.mu.Unlock()
	if out != nil {
		out.Close()
	}
}

// clockReader feeds the oto stream. While paused or exhausted it hands out
// silence so the stream never starves.
type clockReader struct {
	p *Player
}

func (r *clockReader) Read(buf []byte) (int, error) {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		zero(buf)
		return len(buf), nil
	}
	n := copy(buf, p.pcm[p.pos:])
	p.pos += n
	if p.pos >= len(p.pcm) {
		p.playing = false
		p.ended = true
	}
	zero(buf[n:])
	return len(buf), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// resampleStereo converts interleaved stereo frames between sample rates by
// nearest-frame lookup. Good enough for playback sync; this is not a DAW.
func resampleStereo(samples []int16, from, to int) []int16 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}
	frames := len(samples) / playerChannels
	outFrames := int(int64(frames) * int64(to) / int64(from))
	out := make([]int16, 0, outFrames*playerChannels)
	for i := 0; i < outFrames; i++ {
		src := int(int64(i) * int64(from) / int64(to))
		out = append(out, samples[src*playerChannels], samples[src*playerChannels+1])
	}
	return out
}

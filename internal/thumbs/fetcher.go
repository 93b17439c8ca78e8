package thumbs

import (
	"context"
	"image"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/EddieRydell/vibetracker/internal/show"
)

// RenderedMsg delivers a finished render back to the update loop.
type RenderedMsg struct {
	Key      Key
	Img      *image.RGBA
	Canceled bool
}

// Fetcher schedules bounded, cancellable thumbnail renders. The cache and
// pending map are touched only on the UI goroutine; the spawned command
// does nothing but wait for a permit and render.
type Fetcher struct {
	cache   *Cache
	limiter *Limiter
	pending map[Key]context.CancelFunc
}

func NewFetcher(cacheSize, permits int) *Fetcher {
	return &Fetcher{
		cache:   NewCache(cacheSize),
		limiter: NewLimiter(permits),
		pending: make(map[Key]context.CancelFunc),
	}
}

// Get returns a cached thumbnail, refreshing its recency.
func (f *Fetcher) Get(k Key) (*image.RGBA, bool) {
	return f.cache.Get(k)
}

// Pending reports whether a render for k is already in flight.
func (f *Fetcher) Pending(k Key) bool {
	_, ok := f.pending[k]
	return ok
}

// Request schedules a render for k unless it is cached or in flight.
// Returns nil when there is nothing to do.
func (f *Fetcher) Request(k Key, eff show.EffectInstance, w, h int) tea.Cmd {
	if _, ok := f.cache.Get(k); ok {
		return nil
	}
	if _, ok := f.pending[k]; ok {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.pending[k] = cancel
	limiter := f.limiter
	return func() tea.Msg {
		if err := limiter.Acquire(ctx); err != nil {
			return RenderedMsg{Key: k, Canceled: true}
		}
		defer limiter.Release()
		if ctx.Err() != nil {
			return RenderedMsg{Key: k, Canceled: true}
		}
		return RenderedMsg{Key: k, Img: Render(eff, w, h)}
	}
}

// Complete files a finished render. The currentRev callback supplies the
// live revision for the key's position; a render whose revision no longer
// matches is discarded so stale pixels never reach the cache.
func (f *Fetcher) Complete(msg RenderedMsg, currentRev func(seq, track, effect int) int) bool {
	if cancel, ok := f.pending[msg.Key]; ok {
		cancel()
		delete(f.pending, msg.Key)
	}
	if msg.Canceled || msg.Img == nil {
		return false
	}
	if currentRev(msg.Key.Seq, msg.Key.Track, msg.Key.Effect) != msg.Key.Rev {
		return false
	}
	f.cache.Add(msg.Key, msg.Img)
	return true
}

// CancelExcept aborts every in-flight render whose key is not in keep.
// Called when the visible window moves so hidden rows stop competing for
// permits.
func (f *Fetcher) CancelExcept(keep map[Key]struct{}) {
	for k, cancel := range f.pending {
		if _, ok := keep[k]; ok {
			continue
		}
		cancel()
		delete(f.pending, k)
	}
}

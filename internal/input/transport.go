package input

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/thumbs"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// FrameMsg drives the playback and render loop.
type FrameMsg time.Time

// Frame schedules the next frame at the editor's frame rate.
func Frame(fps int) tea.Cmd {
	if fps <= 0 {
		fps = types.DefaultFPS
	}
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// HandleFrame advances the transport by one frame, keeps the viewport
// following the playhead, reports the frame to the engine link, and
// schedules thumbnail renders for the rows on screen. The returned command
// always includes the next frame tick.
func HandleFrame(m *model.Model, msg FrameMsg) tea.Cmd {
	cmds := []tea.Cmd{Frame(m.FPS)}

	t, playing := m.Arbiter.Frame(time.Time(msg))
	if playing {
		m.FollowPlayhead()
	}
	m.Link.SendFrame(t, playing)

	if cmd := requestVisibleThumbs(m); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// HandleRendered files a finished thumbnail render into the cache, dropping
// it when the effect changed while the render was in flight.
func HandleRendered(m *model.Model, msg thumbs.RenderedMsg) {
	m.Thumbs.Complete(msg, func(seq, track, effect int) int {
		return m.Store.Revision(seq, track, effect)
	})
}

// requestVisibleThumbs schedules renders for every effect in the visible
// row window and cancels in-flight renders that scrolled out of it.
func requestVisibleThumbs(m *model.Model) tea.Cmd {
	if len(m.Rows) == 0 {
		return nil
	}
	start, end := m.VisibleRows()
	keep := make(map[thumbs.Key]struct{})
	var cmds []tea.Cmd
	for r := start; r < end; r++ {
		for _, p := range m.Rows[r].Effects {
			k := m.ThumbKeyFor(p)
			keep[k] = struct{}{}
			eff, ok := m.Store.EffectAt(m.CurrentSeq, p.TrackIndex, p.EffectIndex)
			if !ok {
				continue
			}
			if cmd := m.Thumbs.Request(k, eff, types.ThumbWidth, types.ThumbHeight); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	m.Thumbs.CancelExcept(keep)
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

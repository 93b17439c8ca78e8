package model

import (
	"log"

	"github.com/schollz/gowaveform"
)

type waveKey struct {
	path     string
	width    int
	scrollX  int
	pxPerSec float64
}

// WaveWindow returns min/max sample pairs for the visible time window, one
// pair per canvas column. The window regenerates only when scroll, zoom or
// the file change; columns past the end of the audio stay zero.
func (m *Model) WaveWindow(width int) []int16 {
	if m.WavePath == "" || width <= 0 {
		return nil
	}
	key := waveKey{m.WavePath, width, m.ScrollX, m.Map.PxPerSec}
	if key == m.waveKey && m.waveData != nil {
		return m.waveData
	}

	audioDur := m.Audio.Duration()
	start := m.Map.PxToTime(float64(m.ScrollX))
	end := m.Map.PxToTime(float64(m.ScrollX + width))
	span := end - start
	if span <= 0 || audioDur <= 0 || start >= audioDur {
		m.waveKey = key
		m.waveData = []int16{}
		return m.waveData
	}

	cols := width
	if end > audioDur {
		cols = int(float64(width) * (audioDur - start) / span)
		if cols < 1 {
			cols = 1
		}
		end = audioDur
	}

	wf, err := gowaveform.LoadWaveform(m.WavePath)
	if err != nil {
		log.Printf("Error loading waveform: %v", err)
		m.WavePath = ""
		return nil
	}
	view, err := wf.GenerateView(gowaveform.WaveformOptions{
		Start: start,
		End:   end,
		Width: cols,
	})
	if err != nil {
		log.Printf("Error generating waveform view: %v", err)
		m.waveKey = key
		m.waveData = []int16{}
		return m.waveData
	}
	if view == nil || len(view.Data) == 0 {
		m.waveKey = key
		m.waveData = []int16{}
		return m.waveData
	}

	data := make([]int16, 2*width)
	copy(data, view.Data)
	m.waveKey = key
	m.waveData = data
	return m.waveData
}

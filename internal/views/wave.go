package views

import (
	"path/filepath"

	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// Eighth blocks, quietest to loudest.
var waveChars = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// renderWaveLine is the audio overview strip: the loaded file's name in the
// gutter and one block character per canvas column, window-aligned with the
// timeline so a click on the strip seeks to the time under the pointer.
func renderWaveLine(m *model.Model) string {
	styles := getCommonStyles()
	label := "no audio"
	if m.WavePath != "" {
		label = filepath.Base(m.WavePath)
	}
	gutter := styles.Label.Render(padTo(label, types.GutterWidth))
	return gutter + RenderWaveStrip(m, m.CanvasWidth())
}

// RenderWaveStrip draws min/max amplitude pairs from the visible window, one
// column per cell. Columns past the end of the audio stay blank.
func RenderWaveStrip(m *model.Model, width int) string {
	if width <= 0 {
		return ""
	}
	cells := blankCells(width)
	data := m.WaveWindow(width)
	for x := 0; x < width && 2*x+1 < len(data); x++ {
		lo, hi := int(data[2*x]), int(data[2*x+1])
		amp := hi
		if -lo > amp {
			amp = -lo
		}
		if amp <= 0 {
			continue
		}
		level := 1 + amp*7/32767
		if level > 8 {
			level = 8
		}
		cells[x] = cell{ch: waveChars[level-1], fg: "6"}
	}
	if col := m.PlayheadCell() - m.ScrollX; col >= 0 && col < width {
		cells[col] = cell{ch: '│', fg: "9"}
	}
	return renderCells(cells)
}

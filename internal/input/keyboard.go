package input

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/show"
	"github.com/EddieRydell/vibetracker/internal/storage"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// HandleKeyInput routes a key press to the active prompt or view.
func HandleKeyInput(m *model.Model, msg tea.KeyMsg) tea.Cmd {
	if m.Prompt != types.PromptNone {
		return HandlePromptKey(m, msg)
	}
	if cmd, handled := handleGlobalKey(m, msg); handled {
		return cmd
	}
	switch m.ViewMode {
	case types.FixturesView:
		return handleFixturesKey(m, msg)
	case types.InspectorView:
		return handleInspectorKey(m, msg)
	default:
		return handleTimelineKey(m, msg)
	}
}

// handleGlobalKey covers keys that behave the same in every view.
func handleGlobalKey(m *model.Model, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+q":
		return tea.Quit, true
	case " ":
		m.PlayPause()
	case "tab":
		m.ViewMode = nextView(m.ViewMode)
	case "L":
		m.ToggleLooping()
	case "b":
		m.Blackout()
	case "u":
		m.Undo()
	case "ctrl+r":
		m.Redo()
	case "s":
		storage.DoSave(m)
	case "S":
		m.OpenPrompt(types.PromptSaveShowAs, "path/to/show.json", m.ShowPath)
	case "o":
		m.OpenPrompt(types.PromptOpenShow, "path/to/show.json", "")
	case "[":
		m.SwitchSequence(m.CurrentSeq - 1)
	case "]":
		m.SwitchSequence(m.CurrentSeq + 1)
	case "+", "=":
		m.Zoom(true)
	case "-":
		m.Zoom(false)
	case "f":
		m.ZoomFit()
	case "g":
		m.Seek(0)
	case "G":
		m.Seek(m.Engine.Duration())
	case "t":
		if m.Tool == types.ToolSelect {
			m.Tool = types.ToolSwipe
			m.StatusMsg = "Tool: swipe"
		} else {
			m.Tool = types.ToolSelect
			m.StatusMsg = "Tool: select"
		}
	default:
		return nil, false
	}
	return nil, true
}

func nextView(v types.ViewMode) types.ViewMode {
	switch v {
	case types.TimelineView:
		return types.FixturesView
	case types.FixturesView:
		return types.InspectorView
	default:
		return types.TimelineView
	}
}

func handleTimelineKey(m *model.Model, msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "up", "k":
		m.MoveCursor(-1)
	case "down", "j":
		m.MoveCursor(1)
	case "left", "h":
		nudgeOrSeek(m, -m.CellSeconds())
	case "right", "l":
		nudgeOrSeek(m, m.CellSeconds())
	case "shift+left":
		nudgeOrSeek(m, -1.0)
	case "shift+right":
		nudgeOrSeek(m, 1.0)
	case "pgup":
		m.ScrollBy(0, -m.ContentViewportHeight())
	case "pgdown":
		m.ScrollBy(0, m.ContentViewportHeight())
	case "a":
		m.AddEffectAtPlayhead(m.AddKind)
	case "A":
		m.AddKind = nextKind(m.AddKind)
		m.StatusMsg = "Add: " + string(m.AddKind)
	case "d":
		m.CutSelection()
	case "y":
		m.CopySelection()
	case "p":
		m.PasteAtPlayhead()
	case "x", "delete", "backspace":
		m.DeleteSelection()
	case "ctrl+a":
		m.SelectAll()
	case "R":
		m.RegionFromSelection()
	case "r":
		m.ApplyRegion(nil)
		m.StatusMsg = "Region cleared"
	case "n":
		m.OpenRenameTrackPrompt()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.SwitchSequence(int(key[0] - '1'))
	case "esc":
		if m.Gest.Dragging() {
			m.Gest.Cancel()
		} else {
			m.ClearSelection()
		}
	}
	return nil
}

// nudgeOrSeek moves the selection when there is one, the playhead when not.
func nudgeOrSeek(m *model.Model, dt float64) {
	if len(m.Selected) > 0 {
		m.NudgeSelection(dt)
		return
	}
	m.Seek(m.Engine.CurrentTime() + dt)
}

func nextKind(kind show.EffectKind) show.EffectKind {
	kinds := show.BuiltinKinds()
	for i, k := range kinds {
		if k == kind {
			return kinds[(i+1)%len(kinds)]
		}
	}
	return kinds[0]
}

func handleFixturesKey(m *model.Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.MoveCursor(-1)
	case "down", "j":
		m.MoveCursor(1)
	case "enter", "esc":
		m.ViewMode = types.TimelineView
	}
	return nil
}

func handleInspectorKey(m *model.Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.InspectorRow > 0 {
			m.InspectorRow--
		}
	case "down", "j":
		if m.InspectorRow < inspectorFieldCount(m)-1 {
			m.InspectorRow++
		}
	case "left", "h":
		adjustInspectorField(m, -1)
	case "right", "l":
		adjustInspectorField(m, 1)
	case "shift+left":
		adjustInspectorField(m, -10)
	case "shift+right":
		adjustInspectorField(m, 10)
	case "esc":
		m.ViewMode = types.TimelineView
	}
	return nil
}

// inspectorFieldCount is the schema params plus the blend and opacity rows.
func inspectorFieldCount(m *model.Model) int {
	ti, ei, ok := m.PrimarySelected()
	if !ok {
		return 0
	}
	eff, ok := m.Store.EffectAt(m.CurrentSeq, ti, ei)
	if !ok {
		return 0
	}
	return len(show.Schema(eff.Kind)) + 2
}

// adjustInspectorField steps the focused inspector field up or down.
func adjustInspectorField(m *model.Model, dir int) {
	ti, ei, ok := m.PrimarySelected()
	if !ok {
		m.StatusMsg = "Select one effect to edit"
		return
	}
	eff, ok := m.Store.EffectAt(m.CurrentSeq, ti, ei)
	if !ok {
		return
	}
	defs := show.Schema(eff.Kind)
	switch row := m.InspectorRow; {
	case row < len(defs):
		adjustParam(m, ti, ei, eff, defs[row], dir)
	case row == len(defs):
		modes := show.BlendModes()
		i := 0
		for j, mode := range modes {
			if mode == eff.BlendMode {
				i = j
				break
			}
		}
		next := modes[(i+dir+len(modes))%len(modes)]
		if err := m.Store.SetBlendMode(m.CurrentSeq, ti, ei, next); err != nil {
			log.Printf("Error setting blend mode: %v", err)
		}
	default:
		opacity := clampUnit(eff.Opacity + 0.05*float64(dir))
		if err := m.Store.SetOpacity(m.CurrentSeq, ti, ei, opacity); err != nil {
			log.Printf("Error setting opacity: %v", err)
		}
	}
}

// colorPalette is the cycle order for color params.
var colorPalette = [][3]float64{
	{1, 1, 1}, {1, 0, 0}, {1, 0.5, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 1, 1}, {0, 0, 1}, {0.5, 0, 1}, {1, 0, 1},
}

func adjustParam(m *model.Model, track, effect int, eff show.EffectInstance, def show.ParamDef, dir int) {
	var next show.ParamValue
	switch def.Type {
	case show.ParamFloat:
		v := show.FloatOr(eff.Params, def.Key, def.Default.AsFloat())
		next = show.Float(clampRange(v+def.Step*float64(dir), def.Min, def.Max))
	case show.ParamInt:
		v := show.IntOr(eff.Params, def.Key, def.Default.AsInt())
		next = show.Int(int(clampRange(float64(v+dir), def.Min, def.Max)))
	case show.ParamBool:
		next = show.Bool(!show.BoolOr(eff.Params, def.Key, def.Default.AsBool()))
	case show.ParamText:
		if len(def.Options) == 0 {
			return
		}
		cur := show.TextOr(eff.Params, def.Key, def.Default.AsText())
		i := 0
		for j, opt := range def.Options {
			if opt == cur {
				i = j
				break
			}
		}
		next = show.Text(def.Options[(i+dir+len(def.Options))%len(def.Options)])
	case show.ParamColor:
		cur := show.ColorOr(eff.Params, def.Key, def.Default.AsColor())
		i := 0
		for j, c := range colorPalette {
			if c == cur {
				i = j
				break
			}
		}
		c := colorPalette[(i+dir+len(colorPalette))%len(colorPalette)]
		next = show.Color(c[0], c[1], c[2])
	default:
		return
	}
	if err := m.Store.SetParam(m.CurrentSeq, track, effect, def.Key, next); err != nil {
		log.Printf("Error setting %s: %v", def.Key, err)
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUnit(v float64) float64 { return clampRange(v, 0, 1) }

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/show"
)

const inspectorHelp = "j/k: field | h/l: adjust | esc: timeline"

// RenderInspectorView shows the single selected effect's parameters in
// schema order, then blend mode and opacity. The field cursor and the
// h/l adjustments in the input layer walk the same row list.
func RenderInspectorView(m *model.Model) string {
	styles := getCommonStyles()
	var content strings.Builder
	content.WriteString(RenderHeader(m, styles.Title.Render("Inspector"), transportStatus(m)))

	lines := 0
	write := func(s string) {
		content.WriteString(truncTo(s, m.TermWidth))
		content.WriteString("\n")
		lines++
	}

	track, effect, ok := m.PrimarySelected()
	if !ok {
		write("")
		write("  " + styles.Label.Render("Select exactly one effect to edit its parameters"))
		content.WriteString(RenderFooter(m, lines, inspectorHelp))
		return content.String()
	}
	eff, found := m.Store.EffectAt(m.CurrentSeq, track, effect)
	if !found {
		write("")
		write("  " + styles.Label.Render("Selection no longer exists"))
		content.WriteString(RenderFooter(m, lines, inspectorHelp))
		return content.String()
	}

	trackName := fmt.Sprintf("track %d", track)
	if seq := m.CurrentSequence(); seq != nil && track < len(seq.Tracks) {
		trackName = seq.Tracks[track].Name
	}

	write("")
	write(fmt.Sprintf("  %s %s", styles.Label.Render(padTo("Effect:", 12)), styles.Normal.Render(string(eff.Kind))))
	write(fmt.Sprintf("  %s %s", styles.Label.Render(padTo("Track:", 12)), styles.Normal.Render(trackName)))
	write(fmt.Sprintf("  %s %s", styles.Label.Render(padTo("Time:", 12)),
		styles.Normal.Render(fmt.Sprintf("%s to %s (%.2fs)",
			formatTime(eff.TimeRange.Start), formatTime(eff.TimeRange.End), eff.TimeRange.Duration()))))
	write("")

	row := 0
	field := func(label, value string, plain bool) {
		arrow := " "
		valueCell := value
		if !plain {
			valueCell = styles.Normal.Render(value)
			if m.InspectorRow == row {
				valueCell = styles.Selected.Render(value)
			}
		}
		if m.InspectorRow == row {
			arrow = "▶"
		}
		write(fmt.Sprintf(" %s%s %s", arrow, styles.Label.Render(padTo(label+":", 12)), valueCell))
		row++
	}

	for _, def := range show.Schema(eff.Kind) {
		v, has := eff.Params[def.Key]
		if !has {
			v = def.Default
		}
		if def.Type == show.ParamColor {
			field(def.Label, colorSwatch(v.AsColor()), true)
		} else {
			field(def.Label, paramDisplay(def, v), false)
		}
	}
	blend := string(eff.BlendMode)
	if blend == "" {
		blend = string(show.BlendOverride)
	}
	field("Blend", blend, false)
	field("Opacity", fmt.Sprintf("%.2f", eff.Opacity), false)

	content.WriteString(RenderFooter(m, lines, inspectorHelp))
	return content.String()
}

func paramDisplay(def show.ParamDef, v show.ParamValue) string {
	switch def.Type {
	case show.ParamFloat:
		return fmt.Sprintf("%.2f", v.AsFloat())
	case show.ParamInt:
		return fmt.Sprintf("%d", v.AsInt())
	case show.ParamBool:
		if v.AsBool() {
			return "on"
		}
		return "off"
	case show.ParamText:
		return v.AsText()
	}
	return v.String()
}

// colorSwatch renders a colored block pair plus the hex value. The swatch
// carries its own styling, so the caller must not restyle it.
func colorSwatch(rgb [3]float64) string {
	c := colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}.Clamped()
	block := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("██")
	return fmt.Sprintf("%s %s", block, c.Hex())
}

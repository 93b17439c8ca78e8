package views

import (
	"fmt"
	"strings"

	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/show"
)

const fixturesHelp = "j/k: move | enter: timeline | tab: view"

// RenderFixturesView lists the document's fixtures, groups and sequences.
// The cursor walks the fixtures; enter jumps back to that fixture's row on
// the timeline.
func RenderFixturesView(m *model.Model) string {
	styles := getCommonStyles()
	var content strings.Builder
	content.WriteString(RenderHeader(m, styles.Title.Render("Fixtures"), transportStatus(m)))

	lines := 0
	write := func(s string) {
		content.WriteString(truncTo(s, m.TermWidth))
		content.WriteString("\n")
		lines++
	}

	sh := m.Store.Show
	if sh == nil {
		write("")
		write("  " + styles.Label.Render("No show loaded"))
		content.WriteString(RenderFooter(m, lines, fixturesHelp))
		return content.String()
	}

	write(styles.Label.Render("Fixtures"))
	for i, f := range sh.Fixtures {
		arrow := " "
		nameCell := styles.Normal.Render(padTo(f.Name, 18))
		if i == m.CurrentRow {
			arrow = "▶"
			nameCell = styles.Selected.Render(padTo(f.Name, 18))
		}
		effects := 0
		lanes := 0
		if i < len(m.Rows) {
			effects = len(m.Rows[i].Effects)
			lanes = m.Rows[i].LaneCount
		}
		write(fmt.Sprintf("%s %s %s %5d px  %2d effects  %d lanes",
			arrow, styles.Label.Render(padTo(f.ID, 12)), nameCell, f.PixelCount, effects, lanes))
	}

	write("")
	write(styles.Label.Render("Groups"))
	cache := show.ResolveCache{}
	for _, g := range sh.Groups {
		n := len(show.ResolveGroup(g.ID, sh.Groups, cache, nil))
		write(fmt.Sprintf("  %s %s %d fixtures",
			styles.Label.Render(padTo(g.ID, 12)), styles.Group.Render(padTo(g.Name, 18)), n))
	}

	write("")
	write(styles.Label.Render("Sequences"))
	for i, s := range sh.Sequences {
		v := s.Validated()
		mark := " "
		nameCell := styles.Normal.Render(padTo(v.Name, 18))
		if i == m.CurrentSeq {
			mark = "▶"
			nameCell = styles.Selected.Render(padTo(v.Name, 18))
		}
		audio := ""
		if v.AudioFile != "" {
			audio = "  " + v.AudioFile
		}
		write(fmt.Sprintf("%s %s %s %s  %.0f fps  %d tracks%s",
			mark, styles.Label.Render(fmt.Sprintf("%2d", i+1)), nameCell,
			formatTime(v.Duration), v.FrameRate, len(s.Tracks), audio))
	}

	content.WriteString(RenderFooter(m, lines, fixturesHelp))
	return content.String()
}

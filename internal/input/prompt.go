package input

import (
	"log"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/EddieRydell/vibetracker/internal/history"
	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/storage"
	"github.com/EddieRydell/vibetracker/internal/types"
)

// HandlePromptKey feeds keys to the active text prompt. Enter applies,
// escape cancels, everything else edits the input.
func HandlePromptKey(m *model.Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		applyPrompt(m)
		return nil
	case "esc":
		m.ClosePrompt()
		return nil
	}
	var cmd tea.Cmd
	m.PromptInput, cmd = m.PromptInput.Update(msg)
	return cmd
}

func applyPrompt(m *model.Model) {
	value := strings.TrimSpace(m.PromptInput.Value())
	prompt := m.Prompt
	track := m.PromptTrack
	m.ClosePrompt()
	if value == "" {
		return
	}

	switch prompt {
	case types.PromptRenameTrack:
		if err := m.Store.RenameTrack(m.CurrentSeq, track, value); err != nil {
			log.Printf("Error renaming track: %v", err)
			return
		}
		m.RebuildLayout()
		m.StatusMsg = "Track renamed to " + value

	case types.PromptSaveShowAs:
		if err := storage.SaveShowAs(m, value); err != nil {
			log.Printf("Error saving show to %s: %v", value, err)
			m.StatusMsg = "Save failed: " + err.Error()
			return
		}
		m.Link.SendShowPath(m.ShowPath)
		m.StatusMsg = "Saved " + filepath.Base(m.ShowPath)

	case types.PromptOpenShow:
		if err := OpenShowFile(m, value); err != nil {
			log.Printf("Error opening show %s: %v", value, err)
			m.StatusMsg = "Open failed: " + err.Error()
		}
	}
}

// OpenShowFile replaces the edited document with the one at path. The
// editor lands on the first sequence with playback stopped.
func OpenShowFile(m *model.Model, path string) error {
	sh, err := storage.LoadShow(path)
	if err != nil {
		return err
	}
	m.Pause()
	m.Store = history.NewStore(sh)
	m.ShowPath = path
	m.Link.SendShowPath(path)
	m.SwitchSequence(0)
	m.StatusMsg = "Opened " + filepath.Base(path)
	return nil
}

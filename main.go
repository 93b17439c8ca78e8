package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hypebeast/go-osc/osc"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/EddieRydell/vibetracker/internal/engine"
	"github.com/EddieRydell/vibetracker/internal/input"
	"github.com/EddieRydell/vibetracker/internal/midiremote"
	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/show"
	"github.com/EddieRydell/vibetracker/internal/storage"
	"github.com/EddieRydell/vibetracker/internal/thumbs"
	"github.com/EddieRydell/vibetracker/internal/types"
	"github.com/EddieRydell/vibetracker/internal/views"
)

var (
	Version = "dev"

	// Command-line configuration
	config struct {
		show     string
		host     string
		port     int
		fps      int
		debug    string
		midi     string
		noEngine bool
		dump     string // Path to file for periodic terminal dumps
	}
)

// levelsMsg carries per-fixture output levels reported by the engine.
type levelsMsg []float32

// engineStatusMsg is a one-line status report from the engine.
type engineStatusMsg string

// DumpTickMsg triggers periodic dumps to file
type DumpTickMsg struct{}

var rootCmd = &cobra.Command{
	Use:   "vibetracker",
	Short: "A terminal timeline editor for synchronized lighting shows",
	Long: `Vibetracker is a terminal-based timeline editor for lighting shows that
run in sync with music. Effects are arranged on fixture rows against an
audio file and streamed to a playback engine over OSC.

Features:
• Stacked per-fixture timeline with automatic lane packing
• Mouse gestures for moving, resizing and marquee-selecting effects
• Audio-locked playback with loop regions
• Effect thumbnails rendered off the update loop
• MIDI pad remote for transport control from the booth`,
	Version: Version,
	Run:     runEditor,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&config.show, "show", "s", "",
		"Show file to open (empty starts a new show)")
	rootCmd.PersistentFlags().StringVar(&config.host, "host", "127.0.0.1",
		"Host the playback engine listens on")
	rootCmd.PersistentFlags().IntVar(&config.port, "port", 9000,
		"OSC port for playback engine communication")
	rootCmd.PersistentFlags().IntVar(&config.fps, "fps", types.DefaultFPS,
		"UI frame rate")
	rootCmd.PersistentFlags().StringVarP(&config.debug, "log", "l", "",
		"Write debug logs to specified file (empty disables)")
	rootCmd.PersistentFlags().StringVar(&config.midi, "midi", "",
		"MIDI input port substring for the pad remote (empty tries the first port)")
	rootCmd.PersistentFlags().BoolVar(&config.noEngine, "no-engine", false,
		"Edit without sending OSC to a playback engine")
	rootCmd.PersistentFlags().StringVarP(&config.dump, "dump", "d", "",
		"Write terminal frames to specified file every 10 seconds (empty disables)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEditor(cmd *cobra.Command, args []string) {
	// Set up debug logging early
	if config.debug != "" {
		f, err := tea.LogToFile(config.debug, "debug")
		if err != nil {
			log.Printf("Fatal: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
		// Set log flags to include file and line number for clickable links
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		// send log to io.Discard
		log.SetOutput(io.Discard)
	}

	log.Println("Debug logging enabled")
	log.Printf("Engine OSC configured: %s:%d", config.host, config.port)

	em := initialModel()

	// Close dump file when function exits
	if em.dumpFile != nil {
		defer func() {
			if err := em.dumpFile.Close(); err != nil {
				log.Printf("Error closing dump file: %v", err)
			}
		}()
	}

	termenv.DefaultOutput().SetWindowTitle("vibetracker: " + filepath.Base(em.model.ShowPath))

	p := tea.NewProgram(em, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// The engine reports status and levels back on port+1
	d := osc.NewStandardDispatcher()
	d.AddMsgHandler("/vibe/levels", func(msg *osc.Message) {
		levels := make([]float32, 0, len(msg.Arguments))
		for _, a := range msg.Arguments {
			if v, ok := a.(float32); ok {
				levels = append(levels, v)
			}
		}
		p.Send(levelsMsg(levels))
	})
	d.AddMsgHandler("/vibe/status", func(msg *osc.Message) {
		if len(msg.Arguments) == 0 {
			return
		}
		if s, ok := msg.Arguments[0].(string); ok {
			log.Printf("Engine status: %s", s)
			p.Send(engineStatusMsg(s))
		}
	})

	// Start OSC server after p is created but before p.Run()
	server := &osc.Server{Addr: fmt.Sprintf(":%d", config.port+1), Dispatcher: d}
	go func() {
		log.Printf("Starting OSC server on port %d", config.port+1)
		if err := server.ListenAndServe(); err != nil {
			log.Printf("Error starting OSC server: %v", err)
		}
	}()

	// Pad remote; the editor works fine without one
	defer midiremote.Close()
	if stop, err := midiremote.Listen(config.midi, func(msg midiremote.Message) {
		p.Send(msg)
	}); err != nil {
		log.Printf("MIDI remote unavailable: %v", err)
	} else {
		log.Printf("MIDI remote listening")
		defer stop()
	}

	finalModel, err := p.Run()
	if err != nil {
		log.Printf("Error: %v", err)
	}

	// Park unsaved edits on disk on the way out
	if fm, ok := finalModel.(*EditorModel); ok {
		if fm.model.Store.Dirty() && fm.model.ShowPath != "" {
			storage.DoSave(fm.model)
		}
		fm.model.Audio.Close()
	}
}

func initialModel() *EditorModel {
	var link *engine.Client
	if !config.noEngine {
		link = engine.NewClient(config.host, config.port)
	} else {
		log.Printf("Engine OSC disabled (--no-engine flag provided)")
	}

	var sh *show.Show
	showPath := config.show
	if showPath != "" {
		loaded, err := storage.LoadShow(showPath)
		switch {
		case err == nil:
			sh = loaded
			log.Printf("Loaded show from %s", showPath)
		case os.IsNotExist(err):
			sh = storage.StarterShow()
			log.Printf("%s does not exist, starting a new show there", showPath)
		default:
			fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", showPath, err)
			os.Exit(1)
		}
	} else {
		sh = storage.StarterShow()
		showPath = "show.json"
		log.Printf("No show file given, starting a new show at %s", showPath)
	}

	m := model.NewModel(sh, showPath, config.fps, link)
	m.SwitchSequence(0)
	m.Link.SendShowPath(showPath)

	em := &EditorModel{model: m}

	// Open dump file if path is provided
	if config.dump != "" {
		f, err := os.Create(config.dump)
		if err != nil {
			log.Printf("Error opening dump file %s: %v", config.dump, err)
		} else {
			em.dumpFile = f
			log.Printf("Terminal dump enabled: writing to %s every 10 seconds", config.dump)
		}
	}

	return em
}

// EditorModel wraps the model and implements the tea.Model interface
type EditorModel struct {
	model    *model.Model
	dumpFile *os.File
}

// tickDump schedules the next DumpTickMsg for periodic dumps
func tickDump() tea.Cmd {
	return tea.Tick(10*time.Second, func(time.Time) tea.Msg {
		return DumpTickMsg{}
	})
}

func (em *EditorModel) Init() tea.Cmd {
	cmds := []tea.Cmd{input.Frame(em.model.FPS)}

	// Start dump ticker if dump file is enabled
	if em.dumpFile != nil {
		cmds = append(cmds, tickDump())
	}

	return tea.Batch(cmds...)
}

func (em *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		em.model.TermWidth = msg.Width
		em.model.TermHeight = msg.Height
		em.model.RebuildLayout()
		return em, nil

	case tea.KeyMsg:
		cmd := input.HandleKeyInput(em.model, msg)
		em.autoSaveIfDirty()
		return em, cmd

	case tea.MouseMsg:
		cmd := input.HandleMouse(em.model, msg)
		em.autoSaveIfDirty()
		return em, cmd

	case input.FrameMsg:
		// Playback advances only here, on the arbitrated clock.
		return em, input.HandleFrame(em.model, msg)

	case thumbs.RenderedMsg:
		input.HandleRendered(em.model, msg)
		return em, nil

	case levelsMsg:
		em.model.Levels = msg
		return em, nil

	case engineStatusMsg:
		em.model.StatusMsg = string(msg)
		return em, nil

	case midiremote.Message:
		em.handleRemote(msg)
		return em, nil

	case DumpTickMsg:
		// Write current view to dump file
		if em.dumpFile != nil {
			view := em.View()
			timestamp := time.Now().Format("2006-01-02 15:04:05")
			fmt.Fprintf(em.dumpFile, "\n=== Frame at %s ===\n", timestamp)
			fmt.Fprintf(em.dumpFile, "%s\n", view)
			em.dumpFile.Sync()
		}
		// Schedule next dump
		return em, tickDump()
	}

	return em, nil
}

// autoSaveIfDirty schedules a debounced background save after any edit.
func (em *EditorModel) autoSaveIfDirty() {
	if em.model.Store.Dirty() {
		storage.AutoSave(em.model)
	}
}

func (em *EditorModel) handleRemote(msg midiremote.Message) {
	m := em.model
	log.Printf("MIDI remote: %s (note %d)", msg.Action, msg.Note)
	switch msg.Action {
	case midiremote.ActionPlayPause:
		m.PlayPause()
	case midiremote.ActionStop:
		m.Pause()
		m.Seek(0)
	case midiremote.ActionSeekBack:
		m.Seek(m.Engine.CurrentTime() - 5)
	case midiremote.ActionSeekForward:
		m.Seek(m.Engine.CurrentTime() + 5)
	case midiremote.ActionToggleLoop:
		m.ToggleLooping()
	case midiremote.ActionBlackout:
		m.Blackout()
	case midiremote.ActionScrub:
		m.Seek(midiremote.ScrubPosition(msg.Value) * m.Engine.Duration())
	}
}

func (em EditorModel) View() string {
	switch em.model.ViewMode {
	case types.FixturesView:
		return views.RenderFixturesView(em.model)
	case types.InspectorView:
		return views.RenderInspectorView(em.model)
	default: // TimelineView
		return views.RenderTimelineView(em.model)
	}
}

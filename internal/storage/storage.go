// Package storage reads and writes show documents. Shows are plain JSON
// files; a .gz suffix switches to gzip-compressed JSON.
package storage

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/EddieRydell/vibetracker/internal/model"
	"github.com/EddieRydell/vibetracker/internal/show"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadShow reads a show document from path. Sequences are validated on the
// way in so a hand-edited file with a zero duration cannot wedge the editor.
func LoadShow(path string) (*show.Show, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var sh show.Show
	if err := json.NewDecoder(r).Decode(&sh); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(sh.Sequences) == 0 {
		sh.Sequences = []show.Sequence{{Name: "untitled", Duration: 60, FrameRate: 30}}
	}
	for i := range sh.Sequences {
		sh.Sequences[i] = sh.Sequences[i].Validated()
	}
	return &sh, nil
}

// SaveShow writes the document to path, creating parent directories as
// needed. The write goes through a temp file so a crash mid-write never
// truncates the show.
func SaveShow(sh *show.Show, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := encodeShow(sh, strings.HasSuffix(path, ".gz"))
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func encodeShow(sh *show.Show, compress bool) ([]byte, error) {
	if compress {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if err := json.NewEncoder(gz).Encode(sh); err != nil {
			return nil, err
		}
		if err := gz.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return json.MarshalIndent(sh, "", "  ")
}

// DoSave writes the model's show to its current path and clears the dirty
// flag. Errors are logged and surfaced in the status line; the editor keeps
// running either way.
func DoSave(m *model.Model) {
	if m.ShowPath == "" {
		m.StatusMsg = "No show path, use save-as"
		return
	}
	if err := SaveShow(m.Store.Show, m.ShowPath); err != nil {
		log.Printf("Error saving show to %s: %v", m.ShowPath, err)
		m.StatusMsg = "Save failed: " + err.Error()
		return
	}
	m.Store.MarkSaved()
	m.StatusMsg = "Saved " + filepath.Base(m.ShowPath)
}

// SaveShowAs saves to a new path and adopts it as the show's home.
func SaveShowAs(m *model.Model, path string) error {
	if err := SaveShow(m.Store.Show, path); err != nil {
		return err
	}
	m.ShowPath = path
	m.Store.MarkSaved()
	return nil
}

const autoSaveDelay = 1 * time.Second

var autoSave struct {
	sync.Mutex
	timer *time.Timer
	data  []byte
	path  string
}

// AutoSave schedules a background write of the current document. Calls
// within the delay window coalesce into one write of the newest snapshot.
// The document is serialized here on the caller's goroutine; the timer only
// touches the captured bytes, never the live model.
func AutoSave(m *model.Model) {
	if m.ShowPath == "" {
		return
	}
	data, err := encodeShow(m.Store.Show, strings.HasSuffix(m.ShowPath, ".gz"))
	if err != nil {
		log.Printf("Error serializing show for autosave: %v", err)
		return
	}

	autoSave.Lock()
	defer autoSave.Unlock()
	autoSave.data = data
	autoSave.path = m.ShowPath
	if autoSave.timer != nil {
		autoSave.timer.Reset(autoSaveDelay)
		return
	}
	autoSave.timer = time.AfterFunc(autoSaveDelay, flushAutoSave)
}

func flushAutoSave() {
	autoSave.Lock()
	data, path := autoSave.data, autoSave.path
	autoSave.data, autoSave.path = nil, ""
	autoSave.timer = nil
	autoSave.Unlock()

	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Printf("Error creating autosave directory: %v", err)
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		log.Printf("Error writing autosave: %v", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		log.Printf("Error writing autosave: %v", err)
	}
}

// StarterShow builds the document used when no show file exists yet: a
// small rig with a few effects so the timeline is not empty on first run.
func StarterShow() *show.Show {
	span := func(start, end float64) show.TimeRange {
		tr, _ := show.NewTimeRange(start, end)
		return tr
	}

	chase := show.NewEffect(show.KindChase, span(16, 24))
	chase.Params["speed"] = show.Float(2.0)

	strobe := show.NewEffect(show.KindStrobe, span(8, 12))
	strobe.Opacity = 0.8

	return &show.Show{
		Name: "untitled",
		Fixtures: []show.FixtureDef{
			{ID: "wash-l", Name: "Wash L", PixelCount: 60},
			{ID: "wash-r", Name: "Wash R", PixelCount: 60},
			{ID: "beam-l", Name: "Beam L", PixelCount: 1},
			{ID: "beam-r", Name: "Beam R", PixelCount: 1},
		},
		Groups: []show.FixtureGroup{
			{ID: "wash", Name: "Wash", Members: []show.GroupMember{
				{Fixture: "wash-l"}, {Fixture: "wash-r"},
			}},
			{ID: "rig", Name: "Rig", Members: []show.GroupMember{
				{Group: "wash"}, {Fixture: "beam-l"}, {Fixture: "beam-r"},
			}},
		},
		Sequences: []show.Sequence{
			{
				Name:      "demo",
				Duration:  60,
				FrameRate: 30,
				Tracks: []show.Track{
					{
						Name:   "Wash",
						Target: show.GroupTarget("wash"),
						Effects: []show.EffectInstance{
							show.NewEffect(show.KindRainbow, span(0, 16)),
							chase,
						},
					},
					{
						Name:    "Beams",
						Target:  show.FixturesTarget("beam-l", "beam-r"),
						Effects: []show.EffectInstance{strobe},
					},
					{
						Name:   "Rig",
						Target: show.GroupTarget("rig"),
						Effects: []show.EffectInstance{
							show.NewEffect(show.KindFade, span(24, 32)),
						},
					},
				},
			},
		},
	}
}

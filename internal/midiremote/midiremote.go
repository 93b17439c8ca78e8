// Package midiremote maps pads and the mod wheel of a hardware MIDI
// controller to transport actions, so a show can be driven from the booth
// without the keyboard.
package midiremote

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type Action int

const (
	ActionPlayPause Action = iota
	ActionStop
	ActionSeekBack
	ActionSeekForward
	ActionToggleLoop
	ActionBlackout
	ActionScrub
)

func (a Action) String() string {
	switch a {
	case ActionPlayPause:
		return "play/pause"
	case ActionStop:
		return "stop"
	case ActionSeekBack:
		return "seek back"
	case ActionSeekForward:
		return "seek forward"
	case ActionToggleLoop:
		return "toggle loop"
	case ActionBlackout:
		return "blackout"
	case ActionScrub:
		return "scrub"
	}
	return "unknown"
}

// Message is one decoded control event. Note carries the note or controller
// number, Value the velocity or controller value.
type Message struct {
	Action Action
	Note   uint8
	Value  uint8
}

// Pads follow the GM drum row starting at C1, which is where the bottom-left
// pad of most small controllers lands.
func actionFor(note uint8) (Action, bool) {
	switch note {
	case 36:
		return ActionPlayPause, true
	case 37:
		return ActionStop, true
	case 38:
		return ActionSeekBack, true
	case 39:
		return ActionSeekForward, true
	case 40:
		return ActionToggleLoop, true
	case 41:
		return ActionBlackout, true
	}
	return 0, false
}

// scrubController is the mod wheel, the one continuous control every
// keyboard-style controller has.
const scrubController = 1

// ScrubPosition maps a controller value onto a 0..1 position.
func ScrubPosition(value uint8) float64 {
	return float64(value) / 127
}

// Devices lists the names of the connected MIDI input ports.
func Devices() []string {
	ports := midi.GetInPorts()
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

func findInPort(substr string) (drivers.In, error) {
	ports := midi.GetInPorts()
	if substr == "" {
		if len(ports) == 0 {
			return nil, fmt.Errorf("no MIDI input ports")
		}
		return ports[0], nil
	}
	lower := strings.ToLower(substr)
	for _, port := range ports {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q", substr)
}

// Listen decodes pad presses and scrub moves from the first port matching
// substr (or the first port at all when substr is empty) and hands them to
// send. The returned func stops listening.
func Listen(substr string, send func(Message)) (func(), error) {
	port, err := findInPort(substr)
	if err != nil {
		return nil, err
	}
	stop, err := midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		switch {
		case msg.Is(midi.NoteOnMsg):
			var channel, key, velocity uint8
			msg.GetNoteOn(&channel, &key, &velocity)
			if velocity == 0 {
				return
			}
			if action, ok := actionFor(key); ok {
				send(Message{Action: action, Note: key, Value: velocity})
			}
		case msg.Is(midi.ControlChangeMsg):
			var channel, controller, value uint8
			msg.GetControlChange(&channel, &controller, &value)
			if controller == scrubController {
				send(Message{Action: ActionScrub, Note: controller, Value: value})
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return stop, nil
}

// Close releases the MIDI driver. Call once on shutdown.
func Close() {
	midi.CloseDriver()
}

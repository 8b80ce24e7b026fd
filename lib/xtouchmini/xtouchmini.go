// Package xtouchmini decodes and drives a Behringer X-Touch Mini in MC
// mode: 8 push encoders with LED rings, two rows of 8 buttons, and the
// two layer buttons.
package xtouchmini

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

const (
	CCEncoderFirst = 16
	CCEncoderLast  = 23
	CCRingFirst    = 48
	CCRingLast     = 55

	NoteEncoderPushFirst = 32
	NoteEncoderPushLast  = 39
)

// buttonNotes maps the 16 buttons, top row first, to their MC-mode note
// numbers. The layout is the device's, not ours.
var buttonNotes = [16]uint8{
	89, 90, 40, 41, 42, 43, 44, 45,
	87, 88, 91, 92, 86, 93, 94, 95,
}

// layerNotes are the A/B layer buttons.
var layerNotes = [2]uint8{84, 85}

// Rows and columns exposed to callers.
const (
	ButtonRows = 2
	ButtonCols = 8
	Encoders   = 8
	Layers     = 2
)

type Event interface {
	String() string
}

// EncoderEvent is a relative turn of one of the 8 top encoders.
type EncoderEvent struct {
	Encoder uint8
	Delta   int
}

func (e EncoderEvent) String() string {
	return fmt.Sprintf("Encoder %d %+d", e.Encoder, e.Delta)
}

// EncoderPushEvent is a press on an encoder cap.
type EncoderPushEvent struct {
	Encoder uint8
}

func (e EncoderPushEvent) String() string {
	return fmt.Sprintf("Encoder %d pushed", e.Encoder)
}

// ButtonEvent is a press or release in the two button rows.
type ButtonEvent struct {
	Row     uint8
	Col     uint8
	Pressed bool
}

func (e ButtonEvent) String() string {
	action := "released"
	if e.Pressed {
		action = "pressed"
	}
	return fmt.Sprintf("Button %d/%d %s", e.Row, e.Col, action)
}

// LayerEvent is a press of one of the layer buttons.
type LayerEvent struct {
	Layer int
}

func (e LayerEvent) String() string {
	return fmt.Sprintf("Layer %d selected", e.Layer)
}

type Decoder struct{}

// Decode maps one MIDI message to a surface event, or nil when the
// message is not part of the Mini's MC surface.
func (d *Decoder) Decode(msg midi.Message) Event {
	switch {
	case msg.Is(midi.NoteOnMsg):
		var channel, key, velocity uint8
		msg.GetNoteOn(&channel, &key, &velocity)
		return decodeNote(key, velocity)

	case msg.Is(midi.ControlChangeMsg):
		var channel, controller, value uint8
		msg.GetControlChange(&channel, &controller, &value)
		return decodeCC(controller, value)
	}
	return nil
}

func decodeNote(key, velocity uint8) Event {
	for i, note := range layerNotes {
		if key == note {
			if velocity == 0 {
				return nil
			}
			return LayerEvent{Layer: i}
		}
	}
	if key >= NoteEncoderPushFirst && key <= NoteEncoderPushLast {
		if velocity == 0 {
			return nil
		}
		return EncoderPushEvent{Encoder: key - NoteEncoderPushFirst}
	}
	for i, note := range buttonNotes {
		if key == note {
			return ButtonEvent{
				Row:     uint8(i / ButtonCols),
				Col:     uint8(i % ButtonCols),
				Pressed: velocity > 0,
			}
		}
	}
	return nil
}

// decodeCC handles the relative encoder format: 1..7 is a clockwise
// step of that size, 65..71 counter-clockwise.
func decodeCC(controller, value uint8) Event {
	if controller < CCEncoderFirst || controller > CCEncoderLast {
		return nil
	}
	delta := int(value)
	if delta > 64 {
		delta = -(delta - 64)
	}
	return EncoderEvent{Encoder: controller - CCEncoderFirst, Delta: delta}
}

// FindInPort returns the first MIDI input whose name contains substr,
// case-insensitively.
func FindInPort(substr string) (drivers.In, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q", substr)
}

func FindOutPort(substr string) (drivers.Out, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output port matching %q", substr)
}

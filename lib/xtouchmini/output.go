package xtouchmini

import (
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// RingStyle selects how an encoder's LED ring draws its value.
type RingStyle string

const (
	RingSingle RingStyle = "single"
	RingTrim   RingStyle = "trim"
	RingFan    RingStyle = "fan"
	RingSpread RingStyle = "spread"
)

// ringRange maps each style to its base CC value and LED span.
var ringRange = map[RingStyle]struct {
	base uint8
	span uint8
}{
	RingSingle: {1, 11},
	RingTrim:   {17, 9},
	RingFan:    {33, 10},
	RingSpread: {49, 5},
}

type Output struct {
	send func(msg midi.Message) error
}

func NewOutput(port drivers.Out) (*Output, error) {
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output port: %w", err)
	}
	return &Output{send: send}, nil
}

// NewOutputFunc wires the output to an arbitrary send function; tests
// use it to capture the generated messages.
func NewOutputFunc(send func(msg midi.Message) error) *Output {
	return &Output{send: send}
}

// SetRing draws value (0..1) on an encoder's LED ring in the given
// style. Unknown styles fall back to single.
func (o *Output) SetRing(encoder uint8, style RingStyle, value float64) error {
	r, known := ringRange[style]
	if !known {
		r = ringRange[RingSingle]
	}
	step := math.Round(value * float64(r.span))
	step = math.Max(0, math.Min(float64(r.span), step))
	return o.send(midi.ControlChange(0, CCRingFirst+encoder, r.base+uint8(step)))
}

// SetButtonLED lights or clears one of the 16 row buttons.
func (o *Output) SetButtonLED(row, col uint8, on bool) error {
	if row >= ButtonRows || col >= ButtonCols {
		return fmt.Errorf("no button at %d/%d", row, col)
	}
	velocity := uint8(0)
	if on {
		velocity = 127
	}
	return o.send(midi.NoteOn(0, buttonNotes[int(row)*ButtonCols+int(col)], velocity))
}

// SetLayerLED lights the active layer button and clears the other.
func (o *Output) SetLayerLED(layer int) error {
	for i, note := range layerNotes {
		velocity := uint8(0)
		if i == layer {
			velocity = 127
		}
		if err := o.send(midi.NoteOn(0, note, velocity)); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"context"
	"sync"

	"eventdepot/lib/logger"
	"eventdepot/lib/xair"
	"eventdepot/lib/xtouchmini"
)

// unityValue is what an encoder push writes: unity gain on the mixer's
// fader scale.
const unityValue = float32(0.75)

// Bridge maps surface events to mixer parameters and mirrors mixer
// state back onto the surface. The value cache means a layer switch can
// redraw every control without a round of Gets.
type Bridge struct {
	cfg  *Config
	mix  *xair.Client
	out  *xtouchmini.Output
	log  logger.Logger
	dec  xtouchmini.Decoder

	mu    sync.Mutex
	cache map[string]float64
	layer int
}

func NewBridge(cfg *Config, mix *xair.Client, out *xtouchmini.Output, log logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop{}
	}
	return &Bridge{
		cfg:   cfg,
		mix:   mix,
		out:   out,
		log:   log,
		cache: map[string]float64{},
	}
}

// Prime fills the value cache from the mixer and draws the first layer.
// Individual parameter failures are logged and left at zero; the bridge
// still comes up.
func (b *Bridge) Prime(ctx context.Context) {
	for _, addr := range b.cfg.addresses() {
		msg, err := b.mix.Get(ctx, addr)
		if err != nil {
			b.log.Error("initial value for %s: %v", addr, err)
			continue
		}
		if v, ok := msg.Float(); ok {
			b.mu.Lock()
			b.cache[addr] = v
			b.mu.Unlock()
		}
	}
	b.SwitchLayer(0)
}

// HandleEvent processes one decoded surface event.
func (b *Bridge) HandleEvent(ev xtouchmini.Event) {
	switch e := ev.(type) {
	case xtouchmini.LayerEvent:
		b.SwitchLayer(e.Layer)

	case xtouchmini.EncoderEvent:
		b.turnEncoder(e)

	case xtouchmini.EncoderPushEvent:
		layer := b.currentLayer()
		if layer == nil || !layer.EnablePush {
			return
		}
		if addr := layer.encoderAddr(e.Encoder); addr != "" {
			b.setValue(addr, float64(unityValue))
		}

	case xtouchmini.ButtonEvent:
		if !e.Pressed {
			return
		}
		layer := b.currentLayer()
		if layer == nil {
			return
		}
		if addr := layer.buttonAddr(e.Row, e.Col); addr != "" {
			b.toggleButton(addr)
		}
	}
}

// HandleUpdate processes one unsolicited mixer update.
func (b *Bridge) HandleUpdate(msg xair.Message) {
	v, ok := msg.Float()
	if !ok {
		return
	}
	b.mu.Lock()
	_, bound := b.cache[msg.Addr]
	if !bound {
		// Only addresses seen at prime time are ours to track.
		bound = b.isBound(msg.Addr)
	}
	if bound {
		b.cache[msg.Addr] = v
	}
	b.mu.Unlock()
	if bound {
		b.drawAddress(msg.Addr, v)
	}
}

func (b *Bridge) isBound(addr string) bool {
	for _, a := range b.cfg.addresses() {
		if a == addr {
			return true
		}
	}
	return false
}

// SwitchLayer activates a layer and redraws the whole surface from the
// cache.
func (b *Bridge) SwitchLayer(layer int) {
	if layer < 0 || layer >= len(b.cfg.Layers) {
		return
	}
	b.mu.Lock()
	b.layer = layer
	b.mu.Unlock()

	b.log.Info("layer %d (%s) active", layer, b.cfg.Layers[layer].Name)
	b.out.SetLayerLED(layer)
	b.Redraw()
}

// Redraw pushes every cached value of the active layer to the surface.
func (b *Bridge) Redraw() {
	layer := b.currentLayer()
	if layer == nil {
		return
	}
	for i := uint8(0); i < xtouchmini.Encoders; i++ {
		addr := layer.encoderAddr(i)
		if addr == "" {
			continue
		}
		b.out.SetRing(i, xtouchmini.RingStyle(layer.EncoderStyle), b.cachedValue(addr))
	}
	for row := uint8(0); row < xtouchmini.ButtonRows; row++ {
		for col := uint8(0); col < xtouchmini.ButtonCols; col++ {
			addr := layer.buttonAddr(row, col)
			if addr == "" {
				continue
			}
			on := b.cachedValue(addr) != 0
			if layer.InvertButtons {
				on = !on
			}
			b.out.SetButtonLED(row, col, on)
		}
	}
}

func (b *Bridge) turnEncoder(e xtouchmini.EncoderEvent) {
	layer := b.currentLayer()
	if layer == nil {
		return
	}
	addr := layer.encoderAddr(e.Encoder)
	if addr == "" {
		return
	}
	v := b.cachedValue(addr) + float64(e.Delta)/100
	v = min(1, max(0, v))
	b.setValue(addr, v)
}

func (b *Bridge) toggleButton(addr string) {
	on := b.cachedValue(addr) != 0
	next := int32(1)
	if on {
		next = 0
	}
	if err := b.mix.Set(addr, next); err != nil {
		b.log.Error("set %s: %v", addr, err)
		return
	}
	b.mu.Lock()
	b.cache[addr] = float64(next)
	b.mu.Unlock()
	b.drawAddress(addr, float64(next))
}

func (b *Bridge) setValue(addr string, v float64) {
	if err := b.mix.Set(addr, float32(v)); err != nil {
		b.log.Error("set %s: %v", addr, err)
		return
	}
	b.mu.Lock()
	b.cache[addr] = v
	b.mu.Unlock()
	b.drawAddress(addr, v)
}

// drawAddress updates whichever active-layer controls show addr.
func (b *Bridge) drawAddress(addr string, v float64) {
	layer := b.currentLayer()
	if layer == nil {
		return
	}
	for i := uint8(0); i < xtouchmini.Encoders; i++ {
		if layer.encoderAddr(i) == addr {
			b.out.SetRing(i, xtouchmini.RingStyle(layer.EncoderStyle), v)
		}
	}
	for row := uint8(0); row < xtouchmini.ButtonRows; row++ {
		for col := uint8(0); col < xtouchmini.ButtonCols; col++ {
			if layer.buttonAddr(row, col) == addr {
				on := v != 0
				if layer.InvertButtons {
					on = !on
				}
				b.out.SetButtonLED(row, col, on)
			}
		}
	}
}

func (b *Bridge) currentLayer() *Layer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.layer < 0 || b.layer >= len(b.cfg.Layers) {
		return nil
	}
	return &b.cfg.Layers[b.layer]
}

func (b *Bridge) cachedValue(addr string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache[addr]
}

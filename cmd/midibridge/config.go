package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"eventdepot/lib/xtouchmini"
)

// Layer binds the surface's encoders and buttons to mixer parameters.
// Empty addresses leave a control unassigned.
type Layer struct {
	Name string `yaml:"name"`

	// Encoders holds up to 8 OSC addresses, Buttons up to 16 (top row
	// first).
	Encoders []string `yaml:"encoders"`
	Buttons  []string `yaml:"buttons"`

	EncoderStyle  string `yaml:"encoder_style"`
	InvertButtons bool   `yaml:"invert_buttons"`

	// EnablePush makes pressing an encoder cap reset its parameter to
	// unity (0.75 on the mixer's fader scale).
	EnablePush bool `yaml:"enable_push"`
}

type Config struct {
	MIDI struct {
		Input  string `yaml:"input"`
		Output string `yaml:"output"`
	} `yaml:"midi"`
	XAir struct {
		Address string `yaml:"address"`
	} `yaml:"xair"`
	Layers []Layer `yaml:"layers"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.XAir.Address == "" {
		return fmt.Errorf("xair.address is required")
	}
	if len(cfg.Layers) == 0 {
		return fmt.Errorf("at least one layer is required")
	}
	if len(cfg.Layers) > xtouchmini.Layers {
		return fmt.Errorf("at most %d layers are supported", xtouchmini.Layers)
	}
	for i, layer := range cfg.Layers {
		if len(layer.Encoders) > xtouchmini.Encoders {
			return fmt.Errorf("layer %d: more than %d encoders", i, xtouchmini.Encoders)
		}
		if len(layer.Buttons) > xtouchmini.ButtonRows*xtouchmini.ButtonCols {
			return fmt.Errorf("layer %d: more than %d buttons", i, xtouchmini.ButtonRows*xtouchmini.ButtonCols)
		}
	}
	return nil
}

// addresses lists every OSC address bound anywhere in the config, for
// cache priming and update filtering.
func (cfg *Config) addresses() []string {
	seen := map[string]bool{}
	var out []string
	for _, layer := range cfg.Layers {
		for _, addr := range append(append([]string{}, layer.Encoders...), layer.Buttons...) {
			if addr == "" || seen[addr] {
				continue
			}
			seen[addr] = true
			out = append(out, addr)
		}
	}
	return out
}

func (l *Layer) encoderAddr(i uint8) string {
	if int(i) >= len(l.Encoders) {
		return ""
	}
	return l.Encoders[i]
}

func (l *Layer) buttonAddr(row, col uint8) string {
	i := int(row)*xtouchmini.ButtonCols + int(col)
	if i >= len(l.Buttons) {
		return ""
	}
	return l.Buttons[i]
}

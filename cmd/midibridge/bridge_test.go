package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"eventdepot/lib/xair"
	"eventdepot/lib/xtouchmini"
)

func testConfig() *Config {
	cfg := &Config{}
	cfg.XAir.Address = "127.0.0.1"
	cfg.Layers = []Layer{
		{
			Name:         "main",
			EncoderStyle: "fan",
			EnablePush:   true,
			Encoders:     []string{"/lr/mix/fader", "/rtn/aux/mix/fader"},
			Buttons:      []string{"/ch/01/mix/on", "/ch/02/mix/on"},
		},
		{
			Name:     "alt",
			Encoders: []string{"/dca/1/fader"},
		},
	}
	return cfg
}

func setupBridge(t *testing.T) (*xair.MockServer, *Bridge, *[]midi.Message) {
	t.Helper()
	mock, err := xair.NewMockServer()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mock.Close() })

	mix, err := xair.Dial(mock.Addr())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mix.Close() })

	var sent []midi.Message
	out := xtouchmini.NewOutputFunc(func(msg midi.Message) error {
		sent = append(sent, msg)
		return nil
	})

	return mock, NewBridge(testConfig(), mix, out, nil), &sent
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func TestPrimeFillsCache(t *testing.T) {
	mock, bridge, _ := setupBridge(t)
	mock.Values["/lr/mix/fader"] = []any{float32(0.5)}
	mock.Values["/ch/01/mix/on"] = []any{int32(1)}

	bridge.Prime(context.Background())

	if v := bridge.cachedValue("/lr/mix/fader"); v != 0.5 {
		t.Errorf("got cached fader %v, want 0.5", v)
	}
	if v := bridge.cachedValue("/ch/01/mix/on"); v != 1 {
		t.Errorf("got cached mute %v, want 1", v)
	}
}

func TestButtonToggle(t *testing.T) {
	mock, bridge, sent := setupBridge(t)
	bridge.Prime(context.Background())
	*sent = nil

	bridge.HandleEvent(xtouchmini.ButtonEvent{Row: 0, Col: 0, Pressed: true})

	waitFor(t, "mixer set", func() bool {
		_, ok := mock.Value("/ch/01/mix/on")
		return ok
	})
	if v, _ := mock.Value("/ch/01/mix/on"); v != int32(1) {
		t.Errorf("got mixer value %v, want int32(1)", v)
	}
	if bridge.cachedValue("/ch/01/mix/on") != 1 {
		t.Error("cache not updated on toggle")
	}
	if len(*sent) == 0 {
		t.Error("no LED feedback sent")
	}

	// Second press toggles back off.
	bridge.HandleEvent(xtouchmini.ButtonEvent{Row: 0, Col: 0, Pressed: true})
	if bridge.cachedValue("/ch/01/mix/on") != 0 {
		t.Error("second press should toggle off")
	}

	// Releases are ignored.
	before := bridge.cachedValue("/ch/01/mix/on")
	bridge.HandleEvent(xtouchmini.ButtonEvent{Row: 0, Col: 0, Pressed: false})
	if bridge.cachedValue("/ch/01/mix/on") != before {
		t.Error("release changed state")
	}
}

func TestEncoderTurn(t *testing.T) {
	mock, bridge, _ := setupBridge(t)
	mock.Values["/lr/mix/fader"] = []any{float32(0.5)}
	bridge.Prime(context.Background())

	bridge.HandleEvent(xtouchmini.EncoderEvent{Encoder: 0, Delta: 3})

	if v := bridge.cachedValue("/lr/mix/fader"); v != 0.53 {
		t.Errorf("got %v, want 0.53", v)
	}

	// Clamp at the top of the range.
	bridge.HandleEvent(xtouchmini.EncoderEvent{Encoder: 0, Delta: 100})
	if v := bridge.cachedValue("/lr/mix/fader"); v != 1 {
		t.Errorf("got %v, want clamp at 1", v)
	}
}

func TestEncoderPushWritesUnity(t *testing.T) {
	mock, bridge, _ := setupBridge(t)
	bridge.Prime(context.Background())

	bridge.HandleEvent(xtouchmini.EncoderPushEvent{Encoder: 0})

	waitFor(t, "unity write", func() bool {
		v, ok := mock.Value("/lr/mix/fader")
		return ok && v == float32(0.75)
	})
}

func TestEncoderPushDisabledOnLayer(t *testing.T) {
	mock, bridge, _ := setupBridge(t)
	bridge.Prime(context.Background())
	bridge.SwitchLayer(1)

	bridge.HandleEvent(xtouchmini.EncoderPushEvent{Encoder: 0})

	time.Sleep(50 * time.Millisecond)
	if _, ok := mock.Value("/dca/1/fader"); ok {
		t.Error("push should be inert when the layer disables it")
	}
}

func TestHandleUpdateRedraws(t *testing.T) {
	_, bridge, sent := setupBridge(t)
	bridge.Prime(context.Background())
	*sent = nil

	bridge.HandleUpdate(xair.Message{Addr: "/lr/mix/fader", Args: []any{float32(0.9)}})

	if v := bridge.cachedValue("/lr/mix/fader"); v != 0.9 {
		t.Errorf("got %v, want 0.9", v)
	}
	if len(*sent) == 0 {
		t.Error("update did not redraw the surface")
	}

	// Unbound addresses are ignored.
	*sent = nil
	bridge.HandleUpdate(xair.Message{Addr: "/ch/09/mix/fader", Args: []any{float32(0.1)}})
	if len(*sent) != 0 {
		t.Error("unbound update drew on the surface")
	}
}

func TestSwitchLayerRedraws(t *testing.T) {
	_, bridge, sent := setupBridge(t)
	bridge.Prime(context.Background())
	*sent = nil

	bridge.HandleEvent(xtouchmini.LayerEvent{Layer: 1})

	if bridge.currentLayer().Name != "alt" {
		t.Errorf("got layer %q", bridge.currentLayer().Name)
	}
	// Layer LEDs plus the alt layer's one encoder ring.
	if len(*sent) < 3 {
		t.Errorf("got %d messages on layer switch, want at least 3", len(*sent))
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	err := os.WriteFile(path, []byte(`
midi:
  input: x-touch mini
xair:
  address: 10.0.0.5
layers:
  - name: main
    encoder_style: fan
    enable_push: true
    invert_buttons: true
    encoders: [/lr/mix/fader]
    buttons: [/ch/01/mix/on, /ch/02/mix/on]
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MIDI.Input != "x-touch mini" || cfg.XAir.Address != "10.0.0.5" {
		t.Errorf("got %+v", cfg)
	}
	layer := cfg.Layers[0]
	if layer.EncoderStyle != "fan" || !layer.EnablePush || !layer.InvertButtons {
		t.Errorf("got layer %+v", layer)
	}
	if got := cfg.addresses(); len(got) != 3 {
		t.Errorf("got addresses %v, want 3", got)
	}
}

func TestLoadConfigRejectsBad(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"no-xair.yaml":   "layers:\n  - name: a\n",
		"no-layers.yaml": "xair:\n  address: 10.0.0.5\n",
		"too-many.yaml":  "xair:\n  address: x\nlayers: [{name: a}, {name: b}, {name: c}]\n",
		"not-yaml.yaml":  "{{{{",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

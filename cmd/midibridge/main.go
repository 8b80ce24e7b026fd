package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"eventdepot/lib/logger"
	"eventdepot/lib/xair"
	"eventdepot/lib/xtouchmini"
)

func main() {
	configPath := flag.String("config", "midibridge.yaml", "path to the layer config")
	list := flag.Bool("list", false, "list MIDI ports and exit")
	flag.Parse()

	defer midi.CloseDriver()

	if *list {
		fmt.Println("Inputs:")
		for _, p := range midi.GetInPorts() {
			fmt.Printf("  %s\n", p)
		}
		fmt.Println("Outputs:")
		for _, p := range midi.GetOutPorts() {
			fmt.Printf("  %s\n", p)
		}
		return
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	inName := cfg.MIDI.Input
	if inName == "" {
		inName = "x-touch mini"
	}
	outName := cfg.MIDI.Output
	if outName == "" {
		outName = inName
	}

	inPort, err := xtouchmini.FindInPort(inName)
	if err != nil {
		fmt.Println("Available MIDI input ports:")
		for _, p := range midi.GetInPorts() {
			fmt.Printf("  %s\n", p)
		}
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}
	outPort, err := xtouchmini.FindOutPort(outName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	out, err := xtouchmini.NewOutput(outPort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mix, err := xair.Dial(cfg.XAir.Address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer mix.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lg := logger.New(log.Default())
	bridge := NewBridge(cfg, mix, out, lg)
	bridge.Prime(ctx)

	go mix.Subscribe(ctx)
	go func() {
		for msg := range mix.Updates() {
			bridge.HandleUpdate(msg)
		}
	}()

	stop, err := midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		if ev := bridge.dec.Decode(msg); ev != nil {
			bridge.HandleEvent(ev)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listening: %v\n", err)
		os.Exit(1)
	}
	defer stop()

	lg.Info("bridging %s <-> %s", inPort, cfg.XAir.Address)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println()
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"eventdepot/lib/xtouchmini"
)

// Surface event monitor: prints every decoded X-Touch Mini event, for
// checking a unit's mode and wiring before pointing midibridge at it.
func main() {
	defer midi.CloseDriver()

	port, err := xtouchmini.FindInPort("x-touch mini")
	if err != nil {
		fmt.Println("Available MIDI input ports:")
		for _, p := range midi.GetInPorts() {
			fmt.Printf("  %s\n", p)
		}
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	dec := &xtouchmini.Decoder{}

	fmt.Printf("Listening on: %s\n", port)

	stop, err := midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		if event := dec.Decode(msg); event != nil {
			fmt.Println(event)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listening: %v\n", err)
		os.Exit(1)
	}
	defer stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println()
}

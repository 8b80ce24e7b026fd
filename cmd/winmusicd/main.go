package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"eventdepot/lib/logger"
	"eventdepot/lib/winmusic"
)

func main() {
	musicDir := flag.String("m", ".", "music library directory")
	interval := flag.Duration("i", 5*time.Second, "window scan interval")
	host := flag.String("H", "0.0.0.0", "HTTP listen host")
	port := flag.Int("p", 7373, "HTTP listen port")
	threshold := flag.Int("l", 3, "edit distance threshold per title part")
	titlesCmd := flag.String("titles-command", "wmctrl -l -x", "command that prints one window title per line")
	flag.Parse()

	log := logger.New(nil)

	songs, err := winmusic.ScanLibrary(*musicDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info("%d songs in %s", len(songs), *musicDir)

	fields := strings.Fields(*titlesCmd)
	if len(fields) == 0 {
		fmt.Fprintf(os.Stderr, "Error: empty titles command\n")
		os.Exit(1)
	}

	watcher := &winmusic.Watcher{
		Library:   songs,
		Source:    winmusic.CommandSource{Name: fields[0], Args: fields[1:]},
		Threshold: *threshold,
	}

	go watch(watcher, *interval, log)

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	log.Info("listening on %s", addr)
	if err := http.ListenAndServe(addr, watcher.Handler()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func watch(w *winmusic.Watcher, interval time.Duration, log logger.Logger) {
	ctx := context.Background()
	for {
		if err := w.Refresh(ctx); err != nil {
			log.Error("scan windows: %v", err)
		}
		time.Sleep(interval)
	}
}

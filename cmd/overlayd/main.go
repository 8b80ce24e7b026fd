package main

import (
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"eventdepot/lib/logger"
)

//go:embed static
var staticFS embed.FS

func main() {
	addr := flag.String("listen", ":8080", "HTTP listen address")
	tz := flag.String("tz", "", "IANA timezone for schedule times (default local)")
	maxSessions := flag.Int("max-sessions", 64, "maximum concurrent overlay sessions")
	flag.Parse()

	loc := time.Local
	if *tz != "" {
		var err error
		loc, err = time.LoadLocation(*tz)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(nil)
	srv := NewServer(log, loc, *maxSessions)

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(sub)))
	mux.HandleFunc("/api/scene", srv.HandleScene)
	mux.HandleFunc("/api/events", srv.HandleEvents)
	mux.HandleFunc("/api/preview.png", srv.HandlePreview)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("%s %s", r.Method, r.URL)
		mux.ServeHTTP(w, r)
	})

	log.Info("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

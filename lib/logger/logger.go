// Package logger is the shared leveled logging surface for the eventdepot
// daemons. Cycle failures in the overlay pipeline are logged and swallowed,
// so callers that need to assert on them use the capturing Recorder.
package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
)

type Logger interface {
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
}

// Standard wraps a stdlib *log.Logger with level prefixes.
type Standard struct {
	l *log.Logger
}

func New(l *log.Logger) *Standard {
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Standard{l: l}
}

func (s *Standard) Info(format string, args ...any) {
	s.l.Printf("[INFO] "+format, args...)
}

func (s *Standard) Warning(format string, args ...any) {
	s.l.Printf("[WARN] "+format, args...)
}

func (s *Standard) Error(format string, args ...any) {
	s.l.Printf("[ERROR] "+format, args...)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Info(string, ...any)    {}
func (Nop) Warning(string, ...any) {}
func (Nop) Error(string, ...any)   {}

// Recorder keeps formatted messages per level for tests.
type Recorder struct {
	mu       sync.Mutex
	Infos    []string
	Warnings []string
	Errors   []string
}

func (r *Recorder) Info(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Infos = append(r.Infos, fmt.Sprintf(format, args...))
}

func (r *Recorder) Warning(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Recorder) Error(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Recorder) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors)
}

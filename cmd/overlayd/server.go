package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"eventdepot/lib/logger"
	"eventdepot/lib/overlay"
	"eventdepot/lib/preview"
)

// eventsPollPeriod is how often a websocket session checks the scene
// version for a push.
const eventsPollPeriod = 100 * time.Millisecond

// Server owns one overlay session per distinct page configuration. A
// session is keyed by its normalized query string, so two browser tabs
// with the same parameters share one poller and one scene.
type Server struct {
	log         logger.Logger
	loc         *time.Location
	maxSessions int

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	orch   *overlay.Orchestrator
	cancel context.CancelFunc
}

func NewServer(log logger.Logger, loc *time.Location, maxSessions int) *Server {
	if log == nil {
		log = logger.Nop{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Server{
		log:         log,
		loc:         loc,
		maxSessions: maxSessions,
		sessions:    map[string]*session{},
	}
}

// Close stops every session's poll loop.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.cancel()
	}
	s.sessions = map[string]*session{}
}

// session returns the overlay session for the request's query,
// starting it on first use.
func (s *Server) session(r *http.Request) (*session, error) {
	q := r.URL.Query()
	key := q.Encode()

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		return sess, nil
	}
	if len(s.sessions) >= s.maxSessions {
		return nil, fmt.Errorf("session limit of %d reached", s.maxSessions)
	}

	orch := overlay.New(overlay.ConfigFromQuery(q), s.log, s.loc)
	ctx, cancel := context.WithCancel(context.Background())
	go orch.Run(ctx)

	sess := &session{orch: orch, cancel: cancel}
	s.sessions[key] = sess
	s.log.Info("session started for %q", key)
	return sess, nil
}

func (s *Server) HandleScene(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(sess.orch.Scene().Snapshot()); err != nil {
		s.log.Error("write scene: %v", err)
	}
}

// HandleEvents streams scene snapshots over a websocket, one message
// per version change, starting with the current state.
func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Error("websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	sc := sess.orch.Scene()

	snap := sc.Snapshot()
	if err := wsjson.Write(ctx, conn, snap); err != nil {
		return
	}
	last := snap.Version

	ticker := time.NewTicker(eventsPollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if sc.Version() == last {
			continue
		}
		snap = sc.Snapshot()
		if err := wsjson.Write(ctx, conn, snap); err != nil {
			return
		}
		last = snap.Version
	}
}

func (s *Server) HandlePreview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := preview.PNG(w, sess.orch.Scene().Snapshot()); err != nil {
		s.log.Error("write preview: %v", err)
	}
}

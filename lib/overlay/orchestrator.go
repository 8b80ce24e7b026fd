package overlay

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"eventdepot/lib/logger"
	"eventdepot/lib/ontime"
	"eventdepot/lib/scene"
	"eventdepot/lib/winmusic"
)

// Orchestrator owns one overlay session: its configuration, scene, and
// poll loops. All cycle failures are logged and skipped; the scene keeps
// its last-good state until a later cycle succeeds. An always-on
// broadcast display never shows an error dialog.
type Orchestrator struct {
	cfg   Config
	sc    *scene.Scene
	rec   *Reconciler
	sched *ontime.Client
	music *winmusic.Client
	log   logger.Logger

	inflight      atomic.Bool
	musicInflight atomic.Bool
}

func New(cfg Config, log logger.Logger, loc *time.Location) *Orchestrator {
	if log == nil {
		log = logger.Nop{}
	}
	if loc == nil {
		loc = time.Local
	}
	sc := scene.New()
	return &Orchestrator{
		cfg:   cfg,
		sc:    sc,
		rec:   &Reconciler{Scene: sc, Loc: loc},
		sched: ontime.NewClient(cfg.OnTimeURL),
		music: &winmusic.Client{URL: cfg.WinMusicURL},
		log:   log,
	}
}

func (o *Orchestrator) Scene() *scene.Scene {
	return o.sc
}

func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Run performs an immediate cycle, then repeats on the configured
// interval until ctx is cancelled. The winmusic poll runs on its own
// interval in the same loop.
func (o *Orchestrator) Run(ctx context.Context) {
	o.Cycle(ctx)

	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()

	var musicTicks <-chan time.Time
	if o.cfg.WinMusicURL != "" {
		o.MusicCycle(ctx)
		musicTicker := time.NewTicker(o.cfg.WinMusicInterval)
		defer musicTicker.Stop()
		musicTicks = musicTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Cycle(ctx)
		case <-musicTicks:
			o.MusicCycle(ctx)
		}
	}
}

// Cycle runs one poll-and-reconcile pass. Cycles are single-flight: a
// tick that lands while a slow poll is still running is skipped rather
// than run concurrently.
func (o *Orchestrator) Cycle(ctx context.Context) {
	if !o.inflight.CompareAndSwap(false, true) {
		return
	}
	defer o.inflight.Store(false)

	o.rec.ApplyStatic(o.cfg)

	result, err := o.sched.Poll(ctx)
	switch {
	case errors.Is(err, ontime.ErrNoBaseURL):
		// Override-only mode: render what the page gave us.
		o.rec.ApplyTitles(o.cfg, nil)
		o.rec.ApplySessions(nil, nil)
		return
	case err != nil:
		o.log.Error("poll failed, keeping last state: %v", err)
		return
	}

	o.rec.ApplyTitles(o.cfg, result.Now())
	o.rec.ApplySessions(result.Now(), result.Next())
}

// MusicCycle runs one winmusic poll-and-reconcile pass.
func (o *Orchestrator) MusicCycle(ctx context.Context) {
	if !o.musicInflight.CompareAndSwap(false, true) {
		return
	}
	defer o.musicInflight.Store(false)

	np, err := o.music.Fetch(ctx)
	switch {
	case errors.Is(err, winmusic.ErrNoURL):
		return
	case err != nil:
		o.log.Error("winmusic poll failed, keeping last state: %v", err)
		return
	}
	o.rec.ApplyMusic(np)
}

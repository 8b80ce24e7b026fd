package overlay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"eventdepot/lib/layout"
	"eventdepot/lib/logger"
	"eventdepot/lib/scene"
)

func int64p(v int64) *int64 { return &v }

func TestFormatTimeRange(t *testing.T) {
	cases := []struct {
		start, end *int64
		want       string
	}{
		{int64p(3600000), int64p(7200000), "01:00 - 02:00"},
		{int64p(3600000), nil, "01:00"},
		{nil, int64p(7200000), ""},
		{nil, nil, ""},
		{int64p(34200000), int64p(36900000), "09:30 - 10:15"},
	}
	for _, c := range cases {
		if got := FormatTimeRange(c.start, c.end, time.UTC); got != c.want {
			t.Errorf("FormatTimeRange(%v, %v) = %q, want %q", c.start, c.end, got, c.want)
		}
	}
}

func TestConfigFromQuery(t *testing.T) {
	q, err := url.ParseQuery("ontime=http://sched:4001&interval=2500&title=Custom&boxes=0,0,0.5,0,0,0,0&big_box=0.8&big_box_x=4&hidebar&winmusic=http://localhost:7373/api/nowplaying")
	if err != nil {
		t.Fatal(err)
	}
	cfg := ConfigFromQuery(q)

	if cfg.OnTimeURL != "http://sched:4001" {
		t.Errorf("got ontime %q", cfg.OnTimeURL)
	}
	if cfg.Interval != 2500*time.Millisecond {
		t.Errorf("got interval %v", cfg.Interval)
	}
	if cfg.TitleOverride != "Custom" || cfg.SpeakerOverride != "" {
		t.Errorf("got overrides %q %q", cfg.TitleOverride, cfg.SpeakerOverride)
	}
	if len(cfg.Boxes) != 1 || cfg.Boxes[0].Size != 0.5 {
		t.Errorf("got boxes %+v", cfg.Boxes)
	}
	if cfg.Big == nil || cfg.Big.Size != 0.8 || cfg.Big.X != 4 {
		t.Errorf("got big %+v", cfg.Big)
	}
	if !cfg.HideBar || cfg.NoBoxes {
		t.Errorf("got hidebar=%v noboxes=%v", cfg.HideBar, cfg.NoBoxes)
	}
	if cfg.WinMusicURL == "" || cfg.WinMusicInterval != DefaultInterval {
		t.Errorf("got winmusic %q interval %v", cfg.WinMusicURL, cfg.WinMusicInterval)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := ConfigFromQuery(url.Values{})

	if cfg.Interval != DefaultInterval {
		t.Errorf("got interval %v, want %v", cfg.Interval, DefaultInterval)
	}
	if cfg.Big != nil || len(cfg.Boxes) != 0 || cfg.HideBar || cfg.NoBoxes {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Interval != millisParam("garbage", DefaultInterval) {
		t.Error("malformed interval should fall back to default")
	}
}

// schedServer serves a fixed poll payload and counts requests.
func schedServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

const payloadKeynote = `{
	"publicEventNow": {
		"title": "Opening Keynote",
		"custom": {"Speakers": "Ada Lovelace"},
		"timeStart": 3600000,
		"timeEnd": 7200000
	},
	"publicEventNext": {"title": "Lightning Talks", "timeStart": 7200000}
}`

func newTestOrchestrator(t *testing.T, cfg Config) (*Orchestrator, *logger.Recorder) {
	t.Helper()
	rec := &logger.Recorder{}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	return New(cfg, rec, time.UTC), rec
}

func TestCycleRendersSessions(t *testing.T) {
	srv, _ := schedServer(t, 200, payloadKeynote)
	o, rec := newTestOrchestrator(t, Config{OnTimeURL: srv.URL})

	o.Cycle(context.Background())

	sc := o.Scene()
	title, _ := sc.Region(scene.Title)
	if title.Text != "Opening Keynote" || !title.Visible {
		t.Errorf("got title %+v", title)
	}
	speaker, _ := sc.Region(scene.Speaker)
	if speaker.Text != "Ada Lovelace" {
		t.Errorf("got speaker %+v", speaker)
	}
	nowTime, _ := sc.Region(scene.NowTime)
	if nowTime.Text != "01:00 - 02:00" {
		t.Errorf("got now time %q, want 01:00 - 02:00", nowTime.Text)
	}
	nextTime, _ := sc.Region(scene.NextTime)
	if nextTime.Text != "02:00" {
		t.Errorf("got next time %q, want 02:00 (open end)", nextTime.Text)
	}
	nextBlock, _ := sc.Region(scene.NextBlock)
	if !nextBlock.Visible || nextBlock.Anim != scene.AnimFade {
		t.Errorf("got next block %+v", nextBlock)
	}
	if rec.ErrorCount() != 0 {
		t.Errorf("unexpected errors: %v", rec.Errors)
	}
}

func TestCycleIdempotent(t *testing.T) {
	srv, _ := schedServer(t, 200, payloadKeynote)
	o, _ := newTestOrchestrator(t, Config{
		OnTimeURL: srv.URL,
		Boxes:     []layout.Box{{Size: 0.5}},
	})

	o.Cycle(context.Background())
	v := o.Scene().Version()

	o.Cycle(context.Background())
	if got := o.Scene().Version(); got != v {
		t.Errorf("identical payload moved scene version from %d to %d", v, got)
	}
}

func TestCycleHTTPErrorKeepsStateLogsOnce(t *testing.T) {
	srv, _ := schedServer(t, 200, payloadKeynote)
	o, rec := newTestOrchestrator(t, Config{OnTimeURL: srv.URL})
	o.Cycle(context.Background())

	// Same orchestrator, endpoint now failing.
	fail, _ := schedServer(t, 500, "boom")
	o.sched.BaseURL = fail.URL

	o.Cycle(context.Background())

	title, _ := o.Scene().Region(scene.Title)
	if title.Text != "Opening Keynote" {
		t.Errorf("failed cycle changed rendered text to %q", title.Text)
	}
	if rec.ErrorCount() != 1 {
		t.Errorf("got %d logged errors, want exactly 1: %v", rec.ErrorCount(), rec.Errors)
	}
}

func TestTitleOverrideAlwaysWins(t *testing.T) {
	srv, _ := schedServer(t, 200, payloadKeynote)
	o, _ := newTestOrchestrator(t, Config{OnTimeURL: srv.URL, TitleOverride: "Tech Check"})

	for range 3 {
		o.Cycle(context.Background())
		title, _ := o.Scene().Region(scene.Title)
		if title.Text != "Tech Check" {
			t.Fatalf("override lost: got %q", title.Text)
		}
	}
}

func TestOverrideOnlyMode(t *testing.T) {
	o, rec := newTestOrchestrator(t, Config{TitleOverride: "Standby"})

	o.Cycle(context.Background())

	title, _ := o.Scene().Region(scene.Title)
	if title.Text != "Standby" || !title.Visible {
		t.Errorf("got title %+v", title)
	}
	// Missing config is "nothing to do", not a failure.
	if rec.ErrorCount() != 0 {
		t.Errorf("unexpected errors: %v", rec.Errors)
	}
}

func TestUnusedBoxSlotsHidden(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{
		Boxes: []layout.Box{{Size: 0.5}, {Size: 0.25, X: 8}},
	})

	o.Cycle(context.Background())

	sc := o.Scene()
	for i := 0; i < 2; i++ {
		r, _ := sc.Region(scene.BoxID(i))
		if !r.Visible || r.Styles["opacity"] != "1" {
			t.Errorf("box %d should be visible: %+v", i+1, r)
		}
	}
	for i := 2; i < scene.MaxBoxes; i++ {
		r, _ := sc.Region(scene.BoxID(i))
		if r.Visible || r.Styles["opacity"] != "0" {
			t.Errorf("box %d should be hidden: %+v", i+1, r)
		}
	}
}

func TestBoxPlacementStyles(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{Boxes: []layout.Box{{Size: 0.5}}})
	o.Cycle(context.Background())

	r, _ := o.Scene().Region(scene.BoxID(0))
	want := map[string]string{
		"left":   "25.000vw",
		"top":    "25.000vh",
		"width":  "50.000vw",
		"height": "50.000vh",
	}
	for k, v := range want {
		if r.Styles[k] != v {
			t.Errorf("style %s = %q, want %q", k, r.Styles[k], v)
		}
	}
}

func TestNoBoxesFlagHidesAll(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{
		Boxes:   []layout.Box{{Size: 0.5}},
		Big:     &layout.BigBox{Size: 0.8},
		NoBoxes: true,
	})
	o.Cycle(context.Background())

	for i := 0; i < scene.MaxBoxes; i++ {
		if r, _ := o.Scene().Region(scene.BoxID(i)); r.Visible {
			t.Errorf("box %d visible despite noboxes", i+1)
		}
	}
	if r, _ := o.Scene().Region(scene.BigBox); r.Visible {
		t.Error("big box visible despite noboxes")
	}
}

func TestHideBar(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{HideBar: true})
	o.Cycle(context.Background())

	if r, _ := o.Scene().Region(scene.Bar); r.Visible {
		t.Error("bar visible despite hidebar")
	}
}

func TestRunPollsOnInterval(t *testing.T) {
	srv, calls := schedServer(t, 200, payloadKeynote)
	o, _ := newTestOrchestrator(t, Config{
		OnTimeURL: srv.URL,
		Interval:  10 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	o.Run(ctx)

	if n := calls.Load(); n < 3 {
		t.Errorf("got %d polls in 120ms at 10ms interval, want at least 3", n)
	}
}

func TestMusicCycle(t *testing.T) {
	music := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"author": "Kevin MacLeod", "title": "Cipher"}`))
	}))
	t.Cleanup(music.Close)

	o, _ := newTestOrchestrator(t, Config{WinMusicURL: music.URL})
	o.MusicCycle(context.Background())

	r, _ := o.Scene().Region(scene.Music)
	if r.Text != "Kevin MacLeod - Cipher" || !r.Visible {
		t.Errorf("got music region %+v", r)
	}
}

func TestMusicCycleNoMatchHides(t *testing.T) {
	music := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(music.Close)

	o, _ := newTestOrchestrator(t, Config{WinMusicURL: music.URL})
	o.MusicCycle(context.Background())

	if r, _ := o.Scene().Region(scene.Music); r.Visible {
		t.Errorf("music region should be hidden: %+v", r)
	}
}

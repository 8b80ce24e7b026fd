package overlay

import (
	"net/url"
	"strconv"
	"time"

	"eventdepot/lib/layout"
)

// DefaultInterval is the poll period when the page does not set one.
const DefaultInterval = 5000 * time.Millisecond

// Config is the overlay configuration carried by the page's query
// parameters. It is parsed once per overlay session.
type Config struct {
	// OnTimeURL is the scheduling service base URL. Empty degrades the
	// overlay to override-only display.
	OnTimeURL string
	Interval  time.Duration

	// TitleOverride and SpeakerOverride, when set, always win over
	// polled event values.
	TitleOverride   string
	SpeakerOverride string

	Boxes   []layout.Box
	Big     *layout.BigBox
	NoBoxes bool
	HideBar bool

	WinMusicURL      string
	WinMusicInterval time.Duration
}

// ConfigFromQuery decodes the overlay page's query parameters. Every
// parameter is optional; malformed values fall back to defaults rather
// than failing, since the overlay must come up with whatever it has.
func ConfigFromQuery(q url.Values) Config {
	cfg := Config{
		OnTimeURL:        q.Get("ontime"),
		Interval:         millisParam(q.Get("interval"), DefaultInterval),
		TitleOverride:    q.Get("title"),
		SpeakerOverride:  q.Get("speaker"),
		Boxes:            layout.ParseBoxes(q.Get("boxes")),
		NoBoxes:          q.Has("noboxes"),
		HideBar:          q.Has("hidebar"),
		WinMusicURL:      q.Get("winmusic"),
		WinMusicInterval: millisParam(q.Get("winmusic-interval"), DefaultInterval),
	}

	if q.Has("big_box") {
		big := layout.BigBox{
			Size:        floatParam(q.Get("big_box"), 0),
			AspectRatio: floatParam(q.Get("big_box_aspect_ratio"), 0),
			X:           floatParam(q.Get("big_box_x"), 0),
			Y:           floatParam(q.Get("big_box_y"), 0),
		}
		cfg.Big = &big
	}

	return cfg
}

func millisParam(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	ms, err := strconv.Atoi(s)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func floatParam(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

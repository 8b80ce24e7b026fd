// Package scene models the overlay's rendered surface as an owned struct:
// named regions with style properties, text, and a transition directive.
// The browser page applies snapshots verbatim; all decisions about whether
// and how to animate are made here.
package scene

import (
	"strconv"
	"strings"
	"sync"
)

// Region identifiers for the rendered surface.
const (
	Bar         = "bar"
	Title       = "title"
	Speaker     = "speaker"
	NowBlock    = "now"
	NowTitle    = "now-title"
	NowSpeaker  = "now-speaker"
	NowTime     = "now-time"
	NextBlock   = "next"
	NextTitle   = "next-title"
	NextSpeaker = "next-speaker"
	NextTime    = "next-time"
	BigBox      = "bigbox"
	Music       = "music"
)

// MaxBoxes is the number of mini-box slots on the surface.
const MaxBoxes = 4

// BoxID returns the region ID of mini-box slot i (0-based).
func BoxID(i int) string {
	return "box" + strconv.Itoa(i+1)
}

// Anim tells the renderer how to transition into a new region state.
type Anim string

const (
	// AnimNone applies the state instantly.
	AnimNone Anim = ""
	// AnimFade runs the hide, swap, reveal block sequence.
	AnimFade Anim = "fade"
	// AnimTicker runs the character-level text transition.
	AnimTicker Anim = "ticker"
	// AnimEase tweens numeric style values to their new targets.
	AnimEase Anim = "ease"
)

// Region is the full desired state of one surface target. A region is
// replaced atomically; there is never a partially applied region.
type Region struct {
	Text    string            `json:"text,omitempty"`
	Styles  map[string]string `json:"styles,omitempty"`
	Visible bool              `json:"visible"`
	Anim    Anim              `json:"anim,omitempty"`
}

// styleEpsilon absorbs float jitter between poll cycles that would
// otherwise retrigger transitions on visually identical layouts.
const styleEpsilon = 0.05

// StyleEqual compares two style values approximately: values with a unit
// suffix are parsed back to floats and compared within a fixed epsilon.
// Non-numeric or malformed values compare exactly.
func StyleEqual(a, b string) bool {
	if a == b {
		return true
	}
	av, au, aok := splitUnit(a)
	bv, bu, bok := splitUnit(b)
	if !aok || !bok || au != bu {
		return false
	}
	d := av - bv
	if d < 0 {
		d = -d
	}
	return d < styleEpsilon
}

func splitUnit(s string) (value float64, unit string, ok bool) {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
	if err != nil {
		return 0, "", false
	}
	return v, s[i:], true
}

// Equal reports whether two regions render identically. Text and
// visibility compare exactly, styles approximately. Anim is a directive,
// not state, and is excluded.
func (r Region) Equal(other Region) bool {
	if r.Text != other.Text || r.Visible != other.Visible {
		return false
	}
	if len(r.Styles) != len(other.Styles) {
		return false
	}
	for k, v := range r.Styles {
		ov, present := other.Styles[k]
		if !present || !StyleEqual(v, ov) {
			return false
		}
	}
	return true
}

// Scene is the overlay's current visual state. Safe for concurrent use:
// the orchestrator writes, HTTP handlers snapshot.
type Scene struct {
	mu      sync.Mutex
	version uint64
	regions map[string]Region
}

func New() *Scene {
	return &Scene{regions: map[string]Region{}}
}

// Apply replaces a region's state. If the new state is indistinguishable
// from the current one it does nothing and reports false, so an unchanged
// poll cycle never retriggers an animation.
func (s *Scene) Apply(id string, next Region) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, exists := s.regions[id]; exists && cur.Equal(next) {
		return false
	}
	if next.Styles != nil {
		copied := make(map[string]string, len(next.Styles))
		for k, v := range next.Styles {
			copied[k] = v
		}
		next.Styles = copied
	}
	s.regions[id] = next
	s.version++
	return true
}

// Region returns a copy of the named region's current state.
func (s *Scene) Region(id string) (Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, exists := s.regions[id]
	if exists && r.Styles != nil {
		copied := make(map[string]string, len(r.Styles))
		for k, v := range r.Styles {
			copied[k] = v
		}
		r.Styles = copied
	}
	return r, exists
}

func (s *Scene) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Snapshot is a point-in-time copy of the whole scene for serving.
type Snapshot struct {
	Version uint64            `json:"version"`
	Regions map[string]Region `json:"regions"`
}

func (s *Scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	regions := make(map[string]Region, len(s.regions))
	for id, r := range s.regions {
		if r.Styles != nil {
			copied := make(map[string]string, len(r.Styles))
			for k, v := range r.Styles {
				copied[k] = v
			}
			r.Styles = copied
		}
		regions[id] = r
	}
	return Snapshot{Version: s.version, Regions: regions}
}

// Package winmusic identifies the song an application is currently
// playing by fuzzy-matching window titles against a local music library,
// and serves the result for the overlay's attribution line.
package winmusic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
)

// NowPlaying is the served identification. PURL and License carry the
// attribution metadata some licenses require on stream.
type NowPlaying struct {
	Author  string `json:"author"`
	Title   string `json:"title"`
	PURL    string `json:"purl,omitempty"`
	License string `json:"license,omitempty"`
}

// titleSplit breaks a window title into candidate artist/title parts.
var titleSplit = regexp.MustCompile(`\s*[-|]\s*`)

// matchPrefixLen bounds the compared prefix; player windows append
// arbitrary suffixes (bitrate, app name) past the first few words.
const matchPrefixLen = 10

// Identify scans window titles for a song from the library. A song
// matches when both its author and its title are within the edit-distance
// threshold of some part of a title. First match wins; nil when none.
func Identify(songs []Song, titles []string, threshold int) *Song {
	for _, title := range titles {
		parts := titleSplit.Split(title, -1)
		if len(parts) < 2 {
			continue
		}
		cleaned := make([]string, len(parts))
		for i, p := range parts {
			cleaned[i] = prefix(strings.ToLower(strings.TrimSpace(p)))
		}

		for i := range songs {
			song := &songs[i]
			if matchesAll(cleaned, song, threshold) {
				return song
			}
		}
	}
	return nil
}

func matchesAll(parts []string, song *Song, threshold int) bool {
	for _, want := range []string{
		prefix(strings.ToLower(song.Author)),
		prefix(strings.ToLower(song.Title)),
	} {
		if want == "" {
			return false
		}
		found := false
		for _, part := range parts {
			if levenshtein.ComputeDistance(part, want) <= threshold {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func prefix(s string) string {
	if len(s) > matchPrefixLen {
		return s[:matchPrefixLen]
	}
	return s
}

// TitleSource enumerates the desktop's current window titles.
type TitleSource interface {
	Titles(ctx context.Context) ([]string, error)
}

// Watcher repeatedly identifies the playing song and keeps the latest
// result for the HTTP handler. A failed pass keeps the previous result.
type Watcher struct {
	Library   []Song
	Source    TitleSource
	Threshold int

	mu      sync.Mutex
	current *NowPlaying
}

func (w *Watcher) Refresh(ctx context.Context) error {
	titles, err := w.Source.Titles(ctx)
	if err != nil {
		return err
	}
	song := Identify(w.Library, titles, w.Threshold)

	w.mu.Lock()
	defer w.mu.Unlock()
	if song == nil {
		w.current = nil
		return nil
	}
	w.current = &NowPlaying{
		Author:  song.Author,
		Title:   song.Title,
		PURL:    song.PURL,
		License: song.License,
	}
	return nil
}

// Current returns the latest identification, or nil when no song matched.
func (w *Watcher) Current() *NowPlaying {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	copied := *w.current
	return &copied
}

// Handler serves the current identification as JSON. No match serves an
// empty object so pollers can distinguish "no song" from failure.
func (w *Watcher) Handler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		np := w.Current()
		if np == nil {
			rw.Write([]byte("{}\n"))
			return
		}
		enc := json.NewEncoder(rw)
		enc.SetIndent("", "  ")
		enc.Encode(np)
	})
}

// Client polls a winmusic endpoint from the overlay side.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// ErrNoURL mirrors the overlay's missing-config handling: nothing to do.
var ErrNoURL = errors.New("winmusic: no endpoint configured")

// Fetch returns the endpoint's current identification, or nil when the
// endpoint reports no match.
func (c *Client) Fetch(ctx context.Context) (*NowPlaying, error) {
	if c.URL == "" {
		return nil, ErrNoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("winmusic: endpoint returned HTTP %d", resp.StatusCode)
	}

	var np NowPlaying
	if err := json.NewDecoder(resp.Body).Decode(&np); err != nil {
		return nil, fmt.Errorf("winmusic: invalid response body: %w", err)
	}
	if np.Author == "" && np.Title == "" {
		return nil, nil
	}
	return &np, nil
}

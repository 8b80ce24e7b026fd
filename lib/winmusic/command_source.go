package winmusic

import (
	"context"
	"os/exec"
	"strings"
)

// CommandSource gets window titles from an external command, one title
// per output line (e.g. wmctrl -l with a cut, or a platform helper).
// Window enumeration is OS glue; keeping it behind a command keeps the
// daemon portable.
type CommandSource struct {
	Name string
	Args []string
}

func (s CommandSource) Titles(ctx context.Context) ([]string, error) {
	out, err := exec.CommandContext(ctx, s.Name, s.Args...).Output()
	if err != nil {
		return nil, err
	}
	var titles []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			titles = append(titles, line)
		}
	}
	return titles, nil
}

// StaticSource returns a fixed title list; used by tests.
type StaticSource []string

func (s StaticSource) Titles(ctx context.Context) ([]string, error) {
	return s, nil
}

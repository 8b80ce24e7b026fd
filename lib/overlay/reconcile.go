package overlay

import (
	"fmt"
	"time"

	"eventdepot/lib/layout"
	"eventdepot/lib/ontime"
	"eventdepot/lib/scene"
	"eventdepot/lib/winmusic"
)

// Reconciler turns polled schedule state into scene mutations. Every
// apply goes through the scene's equality check, so reapplying an
// unchanged state is free and triggers no animation.
type Reconciler struct {
	Scene *scene.Scene
	Loc   *time.Location
}

// ApplyStatic applies the configuration-driven parts of the surface that
// do not depend on polled data.
func (r *Reconciler) ApplyStatic(cfg Config) {
	r.Scene.Apply(scene.Bar, scene.Region{Visible: !cfg.HideBar})
	r.ApplyBoxes(cfg)
}

// ApplyTitles applies the headline title and speaker regions. Literal
// overrides from the page always win over the polled event.
func (r *Reconciler) ApplyTitles(cfg Config, now *ontime.Event) {
	title := cfg.TitleOverride
	speaker := cfg.SpeakerOverride
	if title == "" && now != nil {
		title = now.Title
	}
	if speaker == "" && now != nil {
		speaker = now.Custom.Speakers
	}
	r.Scene.Apply(scene.Title, scene.Region{
		Text:    title,
		Visible: title != "",
		Anim:    scene.AnimTicker,
	})
	r.Scene.Apply(scene.Speaker, scene.Region{
		Text:    speaker,
		Visible: speaker != "",
		Anim:    scene.AnimTicker,
	})
}

// ApplySessions applies the "now" and "next" session blocks.
func (r *Reconciler) ApplySessions(now, next *ontime.Event) {
	r.applySession(scene.NowBlock, scene.NowTitle, scene.NowSpeaker, scene.NowTime, now)
	r.applySession(scene.NextBlock, scene.NextTitle, scene.NextSpeaker, scene.NextTime, next)
}

// applySession drives the block's fade sequence: the block region fades
// as a unit while its text sub-regions use the character transition.
func (r *Reconciler) applySession(block, titleID, speakerID, timeID string, ev *ontime.Event) {
	if ev == nil {
		r.Scene.Apply(block, scene.Region{Anim: scene.AnimFade})
		r.Scene.Apply(titleID, scene.Region{})
		r.Scene.Apply(speakerID, scene.Region{})
		r.Scene.Apply(timeID, scene.Region{})
		return
	}

	r.Scene.Apply(block, scene.Region{Visible: true, Anim: scene.AnimFade})
	r.Scene.Apply(titleID, scene.Region{
		Text:    ev.Title,
		Visible: ev.Title != "",
		Anim:    scene.AnimTicker,
	})
	r.Scene.Apply(speakerID, scene.Region{
		Text:    ev.Custom.Speakers,
		Visible: ev.Custom.Speakers != "",
		Anim:    scene.AnimTicker,
	})
	timeText := FormatTimeRange(ev.TimeStart, ev.TimeEnd, r.Loc)
	r.Scene.Apply(timeID, scene.Region{
		Text:    timeText,
		Visible: timeText != "",
		Anim:    scene.AnimTicker,
	})
}

// ApplyBoxes lays out the configured mini-boxes and the big box. Slots
// past the configured list are explicitly hidden.
func (r *Reconciler) ApplyBoxes(cfg Config) {
	for i := 0; i < scene.MaxBoxes; i++ {
		var p layout.Placement
		if !cfg.NoBoxes && i < len(cfg.Boxes) {
			p = layout.Place(cfg.Boxes[i])
		}
		r.Scene.Apply(scene.BoxID(i), placementRegion(p))
	}

	var big layout.Placement
	if !cfg.NoBoxes && cfg.Big != nil {
		big = layout.PlaceBig(*cfg.Big)
	}
	r.Scene.Apply(scene.BigBox, placementRegion(big))
}

func placementRegion(p layout.Placement) scene.Region {
	if !p.Visible {
		return scene.Region{
			Styles: map[string]string{"opacity": "0"},
			Anim:   scene.AnimEase,
		}
	}
	return scene.Region{
		Visible: true,
		Styles: map[string]string{
			"left":    vw(p.Left),
			"top":     vh(p.Top),
			"width":   vw(p.Width),
			"height":  vh(p.Height),
			"opacity": "1",
		},
		Anim: scene.AnimEase,
	}
}

func vw(frac float64) string {
	return fmt.Sprintf("%.3fvw", frac*100)
}

func vh(frac float64) string {
	return fmt.Sprintf("%.3fvh", frac*100)
}

// ApplyMusic applies the attribution line for the currently playing song.
func (r *Reconciler) ApplyMusic(np *winmusic.NowPlaying) {
	if np == nil {
		r.Scene.Apply(scene.Music, scene.Region{Anim: scene.AnimFade})
		return
	}
	r.Scene.Apply(scene.Music, scene.Region{
		Text:    np.Author + " - " + np.Title,
		Visible: true,
		Anim:    scene.AnimFade,
	})
}

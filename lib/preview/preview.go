// Package preview rasterizes a scene snapshot into a 16:9 frame so the
// overlay can be eyeballed from a multiviewer or dashboard without a
// browser pointed at the switcher output.
package preview

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"eventdepot/lib/scene"
)

const (
	frameW = 640
	frameH = 360
)

var (
	background = color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xFF}
	boxFill    = color.RGBA{R: 0x2A, G: 0x4A, B: 0x6A, A: 0xFF}
	boxEdge    = color.RGBA{R: 0x8A, G: 0xB4, B: 0xD8, A: 0xFF}
	barFill    = color.RGBA{R: 0x20, G: 0x20, B: 0x2C, A: 0xFF}
	textColor  = color.RGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}
	dimColor   = color.RGBA{R: 0xA0, G: 0xA0, B: 0xA8, A: 0xFF}
)

// Render draws the snapshot into a new frame.
func Render(snap scene.Snapshot) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	if r, ok := snap.Regions[scene.BigBox]; ok && r.Visible {
		drawBox(img, r)
	}
	for i := 0; i < scene.MaxBoxes; i++ {
		if r, ok := snap.Regions[scene.BoxID(i)]; ok && r.Visible {
			drawBox(img, r)
		}
	}

	if bar, ok := snap.Regions[scene.Bar]; ok && bar.Visible {
		barRect := image.Rect(0, frameH-64, frameW, frameH)
		draw.Draw(img, barRect, &image.Uniform{barFill}, image.Point{}, draw.Src)
		drawText(img, 12, frameH-44, textColor, regionText(snap, scene.Title))
		drawText(img, 12, frameH-28, dimColor, regionText(snap, scene.Speaker))
		drawText(img, 12, frameH-12, dimColor, regionText(snap, scene.Music))
	}

	drawSession(img, snap, scene.NowBlock, scene.NowTitle, scene.NowSpeaker, scene.NowTime, 12, 16, "NOW")
	drawSession(img, snap, scene.NextBlock, scene.NextTitle, scene.NextSpeaker, scene.NextTime, frameW/2+12, 16, "NEXT")

	return img
}

// PNG renders the snapshot and writes it PNG-encoded.
func PNG(w io.Writer, snap scene.Snapshot) error {
	return png.Encode(w, Render(snap))
}

func drawSession(img *image.RGBA, snap scene.Snapshot, block, titleID, speakerID, timeID string, x, y int, label string) {
	r, ok := snap.Regions[block]
	if !ok || !r.Visible {
		return
	}
	drawText(img, x, y, dimColor, label+"  "+regionText(snap, timeID))
	drawText(img, x, y+16, textColor, regionText(snap, titleID))
	drawText(img, x, y+32, dimColor, regionText(snap, speakerID))
}

func regionText(snap scene.Snapshot, id string) string {
	r, ok := snap.Regions[id]
	if !ok || !r.Visible {
		return ""
	}
	return r.Text
}

func drawBox(img *image.RGBA, r scene.Region) {
	left, lok := styleFrac(r.Styles["left"])
	top, tok := styleFrac(r.Styles["top"])
	width, wok := styleFrac(r.Styles["width"])
	height, hok := styleFrac(r.Styles["height"])
	if !lok || !tok || !wok || !hok {
		return
	}

	rect := image.Rect(
		int(left*frameW), int(top*frameH),
		int((left+width)*frameW), int((top+height)*frameH),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return
	}

	draw.Draw(img, rect, &image.Uniform{boxFill}, image.Point{}, draw.Src)
	for x := rect.Min.X; x < rect.Max.X; x++ {
		img.Set(x, rect.Min.Y, boxEdge)
		img.Set(x, rect.Max.Y-1, boxEdge)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		img.Set(rect.Min.X, y, boxEdge)
		img.Set(rect.Max.X-1, y, boxEdge)
	}
}

// styleFrac parses a percentage style value ("25.000vw") back to a 0..1
// screen fraction.
func styleFrac(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(s, "vw"), "vh"), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}

func drawText(img *image.RGBA, x, y int, c color.Color, text string) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{c},
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

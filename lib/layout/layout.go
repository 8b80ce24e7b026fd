// Package layout converts normalized picture-in-picture box descriptors
// into screen-space placements for the video switcher scene. Coordinates
// use the switcher's grid: x spans ±32 units, y ±18 (a 1080p frame at 60px
// per unit), size and crop are 0..1 fractions.
package layout

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	unitsX = 32.0
	unitsY = 18.0

	screenAspect = 16.0 / 9.0

	minVisibleSize = 0.01

	// The two max thresholds intentionally differ; both came in from
	// upstream switcher config as sentinel guards.
	maxMiniSize = 99.9
	maxBigSize  = 9.999
)

// Box is one mini-box descriptor: position, size, and inward crop.
type Box struct {
	X          float64
	Y          float64
	Size       float64
	CropTop    float64
	CropBottom float64
	CropLeft   float64
	CropRight  float64
}

// BigBox is the single full-frame box: no crop, its own aspect ratio.
type BigBox struct {
	Size        float64
	AspectRatio float64
	X           float64
	Y           float64
}

// Placement is a box resolved to screen fractions (0..1 of each axis).
type Placement struct {
	Left    float64
	Top     float64
	Width   float64
	Height  float64
	Visible bool
}

// Place resolves one mini-box. Order is fixed: crop first (shrinking the
// visible rectangle and shifting its edges inward in proportion to size),
// then overall size, then position offset.
func Place(b Box) Placement {
	if b.Size <= minVisibleSize || b.Size >= maxMiniSize {
		return Placement{}
	}
	return Placement{
		Left:    b.CropLeft/unitsX*b.Size + (1-b.Size)/2 + b.X/unitsX,
		Width:   b.Size - (b.CropLeft+b.CropRight)/unitsX*b.Size,
		Top:     b.CropTop/unitsY*b.Size + (1-b.Size)/2 - b.Y/unitsY,
		Height:  b.Size - (b.CropTop+b.CropBottom)/unitsY*b.Size,
		Visible: true,
	}
}

// PlaceBig resolves the big box: centered at size, corrected for its
// aspect ratio against the 16:9 frame, then offset.
func PlaceBig(b BigBox) Placement {
	if b.Size <= minVisibleSize || b.Size >= maxBigSize {
		return Placement{}
	}
	ar := b.AspectRatio
	if ar <= 0 {
		ar = screenAspect
	}
	height := b.Size * screenAspect / ar
	return Placement{
		Left:    (1-b.Size)/2 + b.X/unitsX,
		Width:   b.Size,
		Top:     (1-height)/2 - b.Y/unitsY,
		Height:  height,
		Visible: true,
	}
}

// ParseBoxes decodes the boxes configuration parameter: either a JSON
// array of 7-tuples or a flat comma-separated float list grouped by 7.
// Malformed input degrades to no boxes; the overlay hides every slot.
func ParseBoxes(s string) []Box {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, "[") {
		var tuples [][]float64
		if err := json.Unmarshal([]byte(s), &tuples); err != nil {
			return nil
		}
		var boxes []Box
		for _, tuple := range tuples {
			if b, ok := boxFromTuple(tuple); ok {
				boxes = append(boxes, b)
			}
		}
		return boxes
	}

	parts := strings.Split(s, ",")
	var values []float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil
		}
		values = append(values, v)
	}
	var boxes []Box
	for i := 0; i+7 <= len(values); i += 7 {
		if b, ok := boxFromTuple(values[i : i+7]); ok {
			boxes = append(boxes, b)
		}
	}
	return boxes
}

func boxFromTuple(t []float64) (Box, bool) {
	if len(t) != 7 {
		return Box{}, false
	}
	return Box{
		X:          t[0],
		Y:          t[1],
		Size:       t[2],
		CropTop:    t[3],
		CropBottom: t[4],
		CropLeft:   t[5],
		CropRight:  t[6],
	}, true
}

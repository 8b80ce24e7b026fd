package layout

import (
	"math"
	"testing"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPlaceCenteredHalf(t *testing.T) {
	p := Place(Box{Size: 0.5})

	if !p.Visible {
		t.Fatal("expected a visible placement")
	}
	if !almost(p.Left, 0.25) || !almost(p.Top, 0.25) {
		t.Errorf("got left=%v top=%v, want 0.25 0.25", p.Left, p.Top)
	}
	if !almost(p.Width, 0.5) || !almost(p.Height, 0.5) {
		t.Errorf("got width=%v height=%v, want 0.5 0.5", p.Width, p.Height)
	}
}

func TestPlaceCrop(t *testing.T) {
	b := Box{Size: 0.5, CropLeft: 4, CropRight: 4, CropTop: 2, CropBottom: 2}
	p := Place(b)

	// Crop shifts the left edge inward by cropLeft/32*size and narrows
	// the box by (cropLeft+cropRight)/32*size.
	if !almost(p.Left, 4.0/32*0.5+0.25) {
		t.Errorf("got left=%v", p.Left)
	}
	if !almost(p.Width, 0.5-8.0/32*0.5) {
		t.Errorf("got width=%v", p.Width)
	}
	if !almost(p.Top, 2.0/18*0.5+0.25) {
		t.Errorf("got top=%v", p.Top)
	}
	if !almost(p.Height, 0.5-4.0/18*0.5) {
		t.Errorf("got height=%v", p.Height)
	}
}

func TestPlaceOffset(t *testing.T) {
	p := Place(Box{Size: 0.5, X: 8, Y: 4.5})

	if !almost(p.Left, 0.25+8.0/32) {
		t.Errorf("got left=%v", p.Left)
	}
	// Positive y moves the box up.
	if !almost(p.Top, 0.25-4.5/18) {
		t.Errorf("got top=%v", p.Top)
	}
}

func TestPlaceVisibilityThresholds(t *testing.T) {
	cases := []struct {
		size    float64
		visible bool
	}{
		{0.0, false},
		{0.01, false},
		{0.02, true},
		{1.0, true},
		{99.9, false},
		{100.0, false},
	}
	for _, c := range cases {
		if got := Place(Box{Size: c.size}).Visible; got != c.visible {
			t.Errorf("size %v: got visible=%v, want %v", c.size, got, c.visible)
		}
	}
}

func TestPlaceBig(t *testing.T) {
	p := PlaceBig(BigBox{Size: 0.5})

	if !p.Visible {
		t.Fatal("expected a visible placement")
	}
	// Default aspect matches the frame, so height mirrors width.
	if !almost(p.Width, 0.5) || !almost(p.Height, 0.5) {
		t.Errorf("got width=%v height=%v, want 0.5 0.5", p.Width, p.Height)
	}
	if !almost(p.Left, 0.25) || !almost(p.Top, 0.25) {
		t.Errorf("got left=%v top=%v, want 0.25 0.25", p.Left, p.Top)
	}
}

func TestPlaceBigSquareAspect(t *testing.T) {
	p := PlaceBig(BigBox{Size: 0.5, AspectRatio: 1})

	// A square box on a 16:9 frame spans more of the vertical axis.
	if !almost(p.Height, 0.5*16.0/9.0) {
		t.Errorf("got height=%v, want %v", p.Height, 0.5*16.0/9.0)
	}
}

func TestPlaceBigThresholdsDifferFromMini(t *testing.T) {
	// The big box goes invisible past 9.999 where a mini box would still
	// be visible; both literals are preserved from upstream config.
	if PlaceBig(BigBox{Size: 10}).Visible {
		t.Error("big box at size 10 should be invisible")
	}
	if !Place(Box{Size: 10}).Visible {
		t.Error("mini box at size 10 should still be visible")
	}
	if PlaceBig(BigBox{Size: 0.01}).Visible {
		t.Error("big box at size 0.01 should be invisible")
	}
}

func TestParseBoxesComma(t *testing.T) {
	boxes := ParseBoxes("0,0,0.5,0,0,0,0, 8,4.5,0.25,1,1,2,2")

	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}
	if boxes[0].Size != 0.5 {
		t.Errorf("got size %v, want 0.5", boxes[0].Size)
	}
	if boxes[1].X != 8 || boxes[1].CropLeft != 2 {
		t.Errorf("second box parsed wrong: %+v", boxes[1])
	}
}

func TestParseBoxesJSON(t *testing.T) {
	boxes := ParseBoxes(`[[0,0,0.5,0,0,0,0],[8,4.5,0.25,1,1,2,2]]`)

	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}
	if boxes[1].Y != 4.5 {
		t.Errorf("got y %v, want 4.5", boxes[1].Y)
	}
}

func TestParseBoxesMalformed(t *testing.T) {
	for _, s := range []string{"", "not numbers", "[[1,2]", "1,2,3"} {
		if boxes := ParseBoxes(s); len(boxes) != 0 {
			t.Errorf("ParseBoxes(%q) = %v, want none", s, boxes)
		}
	}
}

package annotate

import (
	"math"
	"testing"
)

func TestViewportUpdateCentersImage(t *testing.T) {
	v := NewViewport()
	v.Update(200, 100, 100, 100)
	if v.BaseScale != 1 {
		t.Fatalf("BaseScale = %v, want 1 (height-limited fit)", v.BaseScale)
	}
	if v.OffsetX != 50 || v.OffsetY != 0 {
		t.Errorf("offsets = (%v,%v), want (50,0)", v.OffsetX, v.OffsetY)
	}
}

func TestViewportSkipsZeroDimensionImage(t *testing.T) {
	v := NewViewport()
	v.Update(200, 100, 100, 100)
	before := v
	v.Update(200, 100, 0, 100)
	if v != before {
		t.Error("zero-dimension image must not recompute the transform")
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	v := NewViewport()
	v.PanX = 7
	v.PanY = -3
	v.Zoom = 2
	v.Update(640, 480, 200, 100)

	p := Point{X: 33.5, Y: 71.25}
	got := v.ToImage(v.ToViewport(p))
	if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
		t.Errorf("round trip gave %v, want %v", got, p)
	}
}

func TestToImagePassThroughAtZeroScale(t *testing.T) {
	v := Viewport{}
	p := Point{X: 12, Y: 34}
	if got := v.ToImage(p); got != p {
		t.Errorf("zero-scale ToImage = %v, want pass-through %v", got, p)
	}
}

func TestZoomClamps(t *testing.T) {
	v := NewViewport()
	for i := 0; i < 50; i++ {
		v.WheelZoom(-1)
	}
	if v.Zoom != MaxZoom {
		t.Errorf("repeated zoom-in reached %v, want clamp at %v", v.Zoom, MaxZoom)
	}
	for i := 0; i < 50; i++ {
		v.WheelZoom(1)
	}
	if v.Zoom != MinZoom {
		t.Errorf("repeated zoom-out reached %v, want clamp at %v", v.Zoom, MinZoom)
	}

	v.Zoom = 1
	for i := 0; i < 20; i++ {
		v.ZoomIn()
	}
	if v.Zoom != MaxZoom {
		t.Errorf("button zoom-in reached %v, want %v", v.Zoom, MaxZoom)
	}
	for i := 0; i < 20; i++ {
		v.ZoomOut()
	}
	if v.Zoom != MinZoom {
		t.Errorf("button zoom-out reached %v, want %v", v.Zoom, MinZoom)
	}
}

func TestScrollPan(t *testing.T) {
	v := NewViewport()
	v.Update(100, 100, 100, 100)
	v.ScrollPan(2, false)
	if v.PanY != 60 {
		t.Errorf("vertical pan = %v, want 60", v.PanY)
	}
	v.ScrollPan(-1, true)
	if v.PanX != -30 {
		t.Errorf("horizontal pan = %v, want -30", v.PanX)
	}

	zero := Viewport{}
	zero.ScrollPan(5, false)
	if zero.PanY != 0 {
		t.Error("zero scale must not pan")
	}
}

package annotate

// Zoom limits and step factors shared by the scroll-wheel and toolbar zoom
// controls.
const (
	MinZoom         = 0.25
	MaxZoom         = 4.0
	wheelZoomFactor = 1.15
	buttonZoomStep  = 1.25
	scrollPanStep   = 30.0
)

// Viewport maps between image space and the on-screen drawing surface. It is
// derived state: BaseScale and the offsets are recomputed on every draw while
// Zoom and the pan values persist until explicitly changed.
type Viewport struct {
	BaseScale float64
	Zoom      float64
	Scale     float64
	PanX      float64
	PanY      float64
	OffsetX   float64
	OffsetY   float64
}

// NewViewport returns a viewport at 1:1 zoom with no pan.
func NewViewport() Viewport {
	return Viewport{BaseScale: 1, Zoom: 1, Scale: 1}
}

// Update recomputes the fit scale and centering offsets for the container
// size. Zero-dimension images are skipped so the prior transform survives a
// degenerate resize.
func (v *Viewport) Update(containerW, containerH, imageW, imageH float64) {
	if imageW == 0 || imageH == 0 {
		return
	}
	v.BaseScale = fitScale(containerW, containerH, imageW, imageH)
	v.Scale = v.BaseScale * v.Zoom
	v.OffsetX = (containerW-imageW*v.Scale)/2 - v.PanX*v.Scale
	v.OffsetY = (containerH-imageH*v.Scale)/2 - v.PanY*v.Scale
}

func fitScale(containerW, containerH, imageW, imageH float64) float64 {
	sx := containerW / imageW
	sy := containerH / imageH
	if sx < sy {
		return sx
	}
	return sy
}

// ToImage converts a viewport-space point to image space. When the scale is
// zero the point passes through unchanged to avoid dividing by zero.
func (v Viewport) ToImage(p Point) Point {
	if v.Scale == 0 {
		return p
	}
	return Point{
		X: (p.X - v.OffsetX) / v.Scale,
		Y: (p.Y - v.OffsetY) / v.Scale,
	}
}

// ToViewport converts an image-space point to viewport space.
func (v Viewport) ToViewport(p Point) Point {
	return Point{
		X: p.X*v.Scale + v.OffsetX,
		Y: p.Y*v.Scale + v.OffsetY,
	}
}

// SetZoom clamps and installs a zoom multiplier.
func (v *Viewport) SetZoom(zoom float64) {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	v.Zoom = zoom
}

// ZoomIn applies one toolbar zoom step.
func (v *Viewport) ZoomIn() { v.SetZoom(v.Zoom * buttonZoomStep) }

// ZoomOut applies one toolbar zoom step outward.
func (v *Viewport) ZoomOut() { v.SetZoom(v.Zoom / buttonZoomStep) }

// WheelZoom applies one scroll-wheel zoom step; negative deltas zoom in.
func (v *Viewport) WheelZoom(delta float64) {
	if delta < 0 {
		v.SetZoom(v.Zoom * wheelZoomFactor)
	} else {
		v.SetZoom(v.Zoom / wheelZoomFactor)
	}
}

// ScrollPan converts a wheel delta into an image-space pan adjustment on the
// given axis. A zero scale contributes nothing.
func (v *Viewport) ScrollPan(delta float64, horizontal bool) {
	if v.Scale == 0 {
		return
	}
	amount := delta * scrollPanStep / v.Scale
	if horizontal {
		v.PanX += amount
	} else {
		v.PanY += amount
	}
}

package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	// shapeStroke is the fixed outline width for shape annotations.
	shapeStroke = 3
	// selectionPad expands the selection indicator beyond the bounding box.
	selectionPad = 4.0
	// selection dash pattern: dashOn pixels drawn, dashOff skipped.
	dashOn  = 6
	dashOff = 4
	// handleSize is the side length of the selection corner handles.
	handleSize = 6
)

var (
	// canvasBackground is the neutral fill behind the scaled image.
	canvasBackground = color.NRGBA{51, 51, 51, 255}
	// selectionColor matches a 0.2/0.5/1.0/0.8 RGBA highlight.
	selectionColor = color.NRGBA{51, 128, 255, 204}
)

// SetStyle overrides the canvas and selection colors, normally from a loaded
// theme. Call it before the first Render; frames are not restyled
// retroactively.
func SetStyle(canvas, selection color.NRGBA) {
	canvasBackground = canvas
	selectionColor = selection
}

// Compositor renders the base image plus annotations. Snapshot and Render
// produce interactive preview frames in viewport space; RenderOutput produces
// the canonical image that gets saved or copied, always at the base image's
// native resolution so output never depends on zoom, pan or window size.
type Compositor struct {
	base *image.RGBA
}

// NewCompositor wraps the captured base image.
func NewCompositor(base *image.RGBA) *Compositor {
	return &Compositor{base: base}
}

// BaseSize returns the native dimensions of the captured image.
func (c *Compositor) BaseSize() (int, int) {
	b := c.base.Bounds()
	return b.Dx(), b.Dy()
}

// RenderOutput composites the base image and every annotation in sequence
// order, preserving z-order, with no preview or selection decoration.
func (c *Compositor) RenderOutput(store *Store) *image.RGBA {
	return c.composeScene(store.Annotations())
}

func (c *Compositor) composeScene(anns []Annotation) *image.RGBA {
	out := image.NewRGBA(c.base.Bounds())
	draw.Draw(out, out.Bounds(), c.base, c.base.Bounds().Min, draw.Src)
	for _, ann := range anns {
		renderAnnotation(out, ann)
	}
	return out
}

// Frame is the immutable input of one interactive frame: the target size,
// the captured viewport transform, a deep copy of the annotation sequence
// and the transient preview and selection state. A Frame shares nothing with
// the editor it was captured from, so it can be rendered on a goroutine that
// runs concurrently with further editing.
type Frame struct {
	targetW, targetH int
	viewport         Viewport
	annotations      []Annotation
	preview          Annotation
	hasPreview       bool
	selected         Annotation
	hasSelected      bool
}

// Viewport returns the transform the frame was captured with.
func (f Frame) Viewport() Viewport { return f.viewport }

// Snapshot captures the inputs of one frame at the target size. It must run
// on the goroutine that drives the editor: it recomputes the live viewport's
// fit scale and offsets, so pointer events keep mapping through the same
// transform the frame will be drawn with, then copies everything Render
// reads.
func (c *Compositor) Snapshot(e *Editor, targetW, targetH int) Frame {
	imgW, imgH := c.BaseSize()
	vp := e.Viewport()
	vp.Update(float64(targetW), float64(targetH), float64(imgW), float64(imgH))

	f := Frame{
		targetW:     targetW,
		targetH:     targetH,
		viewport:    *vp,
		annotations: e.Store().Snapshot(),
	}
	f.preview, f.hasPreview = e.PreviewAnnotation()
	if idx := e.SelectedIndex(); idx >= 0 {
		f.selected, f.hasSelected = e.Store().At(idx)
	}
	return f
}

// Render produces the interactive frame described by f: neutral background,
// the composited scene scaled through the captured viewport, and the
// selection indicator on top. The in-progress preview shape, when the frame
// captured an active drag, is composited with the scene so it scales like a
// real annotation. Render reads only the base image and f, never live editor
// state.
func (c *Compositor) Render(f Frame) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, f.targetW, f.targetH))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(canvasBackground), image.Point{}, draw.Src)

	imgW, imgH := c.BaseSize()
	vp := f.viewport

	scene := c.composeScene(f.annotations)
	if f.hasPreview {
		renderAnnotation(scene, f.preview)
	}

	dst := image.Rect(
		int(math.Round(vp.OffsetX)),
		int(math.Round(vp.OffsetY)),
		int(math.Round(vp.OffsetX+float64(imgW)*vp.Scale)),
		int(math.Round(vp.OffsetY+float64(imgH)*vp.Scale)),
	)
	xdraw.NearestNeighbor.Scale(frame, dst, scene, scene.Bounds(), draw.Over, nil)

	if f.hasSelected {
		renderSelectionIndicator(frame, f.selected, vp)
	}
	return frame
}

// renderAnnotation draws one annotation in image-space pixels.
func renderAnnotation(dst *image.RGBA, ann Annotation) {
	col := toNRGBA(ann.Color)
	switch ann.Kind {
	case KindRectangle, KindFilledRectangle:
		x1, y1, x2, y2 := ann.BoundingBox()
		r := image.Rect(round(x1), round(y1), round(x2), round(y2))
		if ann.Kind == KindFilledRectangle {
			fillRect(dst, r, col)
		}
		strokeRect(dst, r, col, shapeStroke)
	case KindCircle, KindFilledCircle:
		x1, y1, x2, y2 := ann.BoundingBox()
		rx := (x2 - x1) / 2
		ry := (y2 - y1) / 2
		if rx <= 0 || ry <= 0 {
			return
		}
		cx := round((x1 + x2) / 2)
		cy := round((y1 + y2) / 2)
		if ann.Kind == KindFilledCircle {
			fillEllipse(dst, cx, cy, round(rx), round(ry), col)
		}
		strokeEllipse(dst, cx, cy, round(rx), round(ry), col, shapeStroke)
	case KindText:
		drawText(dst, ann.P1, ann.Text, col)
	}
}

// renderSelectionIndicator draws a dashed outline and corner handles around
// the padded bounding box, in viewport space. Visual only, never part of the
// hit-test surface.
func renderSelectionIndicator(dst *image.RGBA, ann Annotation, vp Viewport) {
	x1, y1, x2, y2 := ann.BoundingBox()
	tl := vp.ToViewport(Point{X: x1 - selectionPad, Y: y1 - selectionPad})
	br := vp.ToViewport(Point{X: x2 + selectionPad, Y: y2 + selectionPad})
	r := image.Rect(round(tl.X), round(tl.Y), round(br.X), round(br.Y))

	drawDashedRect(dst, r, selectionColor)

	hs := handleSize / 2
	for _, corner := range []image.Point{
		{r.Min.X, r.Min.Y}, {r.Max.X, r.Min.Y},
		{r.Min.X, r.Max.Y}, {r.Max.X, r.Max.Y},
	} {
		fillRect(dst, image.Rect(corner.X-hs, corner.Y-hs, corner.X+hs, corner.Y+hs), selectionColor)
	}
}

func toNRGBA(c Color) color.NRGBA {
	return color.NRGBA{
		R: channelByte(c.R),
		G: channelByte(c.G),
		B: channelByte(c.B),
		A: channelByte(c.A),
	}
}

func channelByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

func round(v float64) int { return int(math.Round(v)) }

// blendPixel composites col over the destination pixel.
func blendPixel(dst *image.RGBA, x, y int, col color.NRGBA) {
	if !(image.Pt(x, y).In(dst.Bounds())) {
		return
	}
	draw.Draw(dst, image.Rect(x, y, x+1, y+1), image.NewUniform(col), image.Point{}, draw.Over)
}

func setThickPixel(dst *image.RGBA, x, y, thick int, col color.NRGBA) {
	r := thick / 2
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			blendPixel(dst, x+dx, y+dy, col)
		}
	}
}

// drawLine draws in the Bresenham style with a square brush of the given
// thickness.
func drawLine(dst *image.RGBA, x0, y0, x1, y1 int, col color.NRGBA, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(dst, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func fillRect(dst *image.RGBA, r image.Rectangle, col color.NRGBA) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

// strokeRect outlines r. Filled rectangles fill first and stroke on top, the
// same compositing order cairo's fill_preserve+stroke produces.
func strokeRect(dst *image.RGBA, r image.Rectangle, col color.NRGBA, thick int) {
	drawLine(dst, r.Min.X, r.Min.Y, r.Max.X, r.Min.Y, col, thick)
	drawLine(dst, r.Max.X, r.Min.Y, r.Max.X, r.Max.Y, col, thick)
	drawLine(dst, r.Max.X, r.Max.Y, r.Min.X, r.Max.Y, col, thick)
	drawLine(dst, r.Min.X, r.Max.Y, r.Min.X, r.Min.Y, col, thick)
}

// strokeEllipse steps the ellipse perimeter with short line segments, radii
// independent per axis.
func strokeEllipse(dst *image.RGBA, cx, cy, rx, ry int, col color.NRGBA, thick int) {
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt(float64(rx*rx+ry*ry))))
	if steps < 8 {
		steps = 8
	}
	var prevX, prevY int
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Cos(angle)*float64(rx))
		y := cy + int(math.Sin(angle)*float64(ry))
		if i > 0 {
			drawLine(dst, prevX, prevY, x, y, col, thick)
		} else {
			setThickPixel(dst, x, y, thick, col)
		}
		prevX, prevY = x, y
	}
}

func fillEllipse(dst *image.RGBA, cx, cy, rx, ry int, col color.NRGBA) {
	if rx <= 0 || ry <= 0 {
		return
	}
	for dy := -ry; dy <= ry; dy++ {
		span := int(float64(rx) * math.Sqrt(1.0-float64(dy*dy)/float64(ry*ry)))
		row := image.Rect(cx-span, cy+dy, cx+span+1, cy+dy+1)
		fillRect(dst, row, col)
	}
}

// drawDashedRect outlines r with the selection dash pattern.
func drawDashedRect(dst *image.RGBA, r image.Rectangle, col color.NRGBA) {
	drawDashedHLine(dst, r.Min.X, r.Max.X, r.Min.Y, col)
	drawDashedHLine(dst, r.Min.X, r.Max.X, r.Max.Y, col)
	drawDashedVLine(dst, r.Min.Y, r.Max.Y, r.Min.X, col)
	drawDashedVLine(dst, r.Min.Y, r.Max.Y, r.Max.X, col)
}

func drawDashedHLine(dst *image.RGBA, x0, x1, y int, col color.NRGBA) {
	for x := x0; x <= x1; x++ {
		if (x-x0)%(dashOn+dashOff) < dashOn {
			blendPixel(dst, x, y, col)
		}
	}
}

func drawDashedVLine(dst *image.RGBA, y0, y1, x int, col color.NRGBA) {
	for y := y0; y <= y1; y++ {
		if (y-y0)%(dashOn+dashOff) < dashOn {
			blendPixel(dst, x, y, col)
		}
	}
}

func drawText(dst *image.RGBA, anchor Point, text string, col color.NRGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: textFace,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(anchor.X * 64)),
			Y: fixed.Int26_6(math.Round(anchor.Y * 64)),
		},
	}
	d.DrawString(text)
}

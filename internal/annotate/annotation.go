// Package annotate implements the annotation editing engine: the annotation
// data model, undo/redo history, hit testing, viewport transforms and the
// compositor that renders the final image.
package annotate

import "unicode/utf8"

// Kind identifies the variant of an annotation.
type Kind int

const (
	KindRectangle Kind = iota
	KindFilledRectangle
	KindCircle
	KindFilledCircle
	KindText
)

// String returns the configuration-file token for the kind.
func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindFilledRectangle:
		return "fill_rectangle"
	case KindCircle:
		return "circle"
	case KindFilledCircle:
		return "fill_circle"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Point is a position in image-space coordinates.
type Point struct {
	X, Y float64
}

// Color is an RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Red is the default annotation color.
var Red = Color{R: 1, A: 1}

// Annotation is one user-drawn mark over the captured image. Shapes store two
// opposite corners of their bounding rectangle in P1/P2 (order independent).
// Text annotations anchor their baseline-left origin at P1, with P2 == P1.
// Annotations carry no identity beyond their position in the sequence: the
// order is the z-order and the hit-test priority.
type Annotation struct {
	Kind   Kind
	P1, P2 Point
	Color  Color
	Text   string
}

// NewShape builds a shape annotation from two drag corners.
func NewShape(kind Kind, start, end Point, col Color) Annotation {
	return Annotation{Kind: kind, P1: start, P2: end, Color: col}
}

// NewText builds a text annotation anchored at pos.
func NewText(text string, pos Point, col Color) Annotation {
	return Annotation{Kind: KindText, P1: pos, P2: pos, Color: col, Text: text}
}

// Text bounding boxes use a fixed per-character metric rather than measuring
// rendered glyphs. The values must stay in sync with the 24 unit font size the
// compositor draws with so hit testing matches what is on screen.
const (
	textAscent    = 24.0
	textDescent   = 4.0
	textCharWidth = 14.0
	textMinWidth  = 20.0
)

// BoundingBox returns the annotation's extent as (minX, minY, maxX, maxY).
// For text the box is synthesized from the fixed metric above.
func (a Annotation) BoundingBox() (x1, y1, x2, y2 float64) {
	if a.Kind == KindText {
		w := float64(utf8.RuneCountInString(a.Text)) * textCharWidth
		if w < textMinWidth {
			w = textMinWidth
		}
		return a.P1.X, a.P1.Y - textAscent, a.P1.X + w, a.P1.Y + textDescent
	}
	x1, x2 = minMax(a.P1.X, a.P2.X)
	y1, y2 = minMax(a.P1.Y, a.P2.Y)
	return x1, y1, x2, y2
}

// hitPadding expands the bounding box on every side during hit testing so
// thin shapes remain clickable.
const hitPadding = 8.0

// Hit reports whether the image-space point lies within the annotation's
// padded bounding box.
func (a Annotation) Hit(p Point) bool {
	x1, y1, x2, y2 := a.BoundingBox()
	return p.X >= x1-hitPadding && p.X <= x2+hitPadding &&
		p.Y >= y1-hitPadding && p.Y <= y2+hitPadding
}

// Translate returns a copy shifted by (dx, dy) in image space.
func (a Annotation) Translate(dx, dy float64) Annotation {
	a.P1.X += dx
	a.P1.Y += dy
	a.P2.X += dx
	a.P2.Y += dy
	return a
}

// samePlace reports whether both annotations occupy identical coordinates.
func (a Annotation) samePlace(other Annotation) bool {
	return a.P1 == other.P1 && a.P2 == other.P2
}

func minMax(a, b float64) (float64, float64) {
	if a <= b {
		return a, b
	}
	return b, a
}

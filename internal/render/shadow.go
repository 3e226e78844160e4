// Package render applies post-capture effects to screenshots.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow applied to a capture.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// ShadowResult is the output of ApplyShadow.
type ShadowResult struct {
	// Image holds the capture composited over its blurred shadow.
	Image *image.RGBA
	// Offset is how far the original content moved while rebasing onto the
	// expanded canvas. Callers tracking on-screen positions can add it to
	// keep the content visually fixed.
	Offset image.Point
}

// DefaultShadowOptions returns the shadow settings used when the caller does
// not override them.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  24,
		Offset:  image.Pt(16, 16),
		Opacity: 0.55,
	}
}

// ApplyShadow draws img over a blurred copy of its alpha channel, expanding
// the canvas as needed. The result is rebased to a zero origin; Offset in the
// result records the translation applied to the content.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) ShadowResult {
	if img == nil {
		return ShadowResult{}
	}
	if img.Bounds().Empty() || opts.Opacity <= 0 {
		return ShadowResult{Image: img}
	}

	opacity := clamp01(opts.Opacity)
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}

	src := img.Bounds()
	halo := src.Inset(-radius)
	shadow := halo.Add(opts.Offset)

	canvas := src.Union(shadow)
	if canvas.Dx() <= 0 || canvas.Dy() <= 0 {
		return ShadowResult{Image: img}
	}

	mask := alphaMask(img, halo)
	blurred := boxBlur(mask, radius)

	dst := image.NewRGBA(canvas.Sub(canvas.Min))
	ink := color.RGBA{A: uint8(opacity*255 + 0.5)}
	if ink.A > 0 {
		at := blurred.Bounds().Add(shadow.Min.Sub(canvas.Min))
		draw.DrawMask(dst, at, image.NewUniform(ink), image.Point{}, blurred, blurred.Bounds().Min, draw.Over)
	}
	draw.Draw(dst, src.Sub(canvas.Min), img, src.Min, draw.Over)

	return ShadowResult{Image: dst, Offset: src.Min.Sub(canvas.Min)}
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

// alphaMask copies the image's alpha channel into a grayscale plane sized to
// the halo rectangle, leaving the blur margin at zero.
func alphaMask(img *image.RGBA, halo image.Rectangle) *image.Gray {
	mask := image.NewGray(halo.Sub(halo.Min))
	src := img.Bounds()
	for y := src.Min.Y; y < src.Max.Y; y++ {
		my := y - halo.Min.Y
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				mask.SetGray(x-halo.Min.X, my, color.Gray{Y: a})
			}
		}
	}
	return mask
}

// boxBlur runs a separable box blur over the mask using running sums, one
// horizontal pass then one vertical pass.
func boxBlur(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	horiz := image.NewGray(src.Bounds())
	line := make([]int, 0, w)
	for y := 0; y < h; y++ {
		line = line[:0]
		for x := 0; x < w; x++ {
			line = append(line, int(src.Pix[y*src.Stride+x]))
		}
		blurLine(line, radius, func(x, v int) {
			horiz.Pix[y*horiz.Stride+x] = uint8(v)
		})
	}

	out := image.NewGray(src.Bounds())
	col := make([]int, 0, h)
	for x := 0; x < w; x++ {
		col = col[:0]
		for y := 0; y < h; y++ {
			col = append(col, int(horiz.Pix[y*horiz.Stride+x]))
		}
		blurLine(col, radius, func(y, v int) {
			out.Pix[y*out.Stride+x] = uint8(v)
		})
	}
	return out
}

// blurLine averages each element of vals with its neighbors within radius,
// truncating the window at the ends, and hands results to set.
func blurLine(vals []int, radius int, set func(i, v int)) {
	n := len(vals)
	sum := 0
	// Prime the window for index 0.
	hi := radius
	if hi >= n {
		hi = n - 1
	}
	for i := 0; i <= hi; i++ {
		sum += vals[i]
	}
	lo := 0
	for i := 0; i < n; i++ {
		set(i, sum/(hi-lo+1))
		if next := i + 1 + radius; next < n {
			sum += vals[next]
			hi = next
		}
		if i+1-radius > 0 {
			sum -= vals[lo]
			lo++
		}
	}
}

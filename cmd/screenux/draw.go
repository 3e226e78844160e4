package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/screenux/internal/annotate"
	"github.com/example/screenux/internal/clipboard"
	"github.com/example/screenux/internal/imageio"
)

// drawCmd adds a single annotation to an image without opening the editor.
type drawCmd struct {
	file          string
	outPath       string
	fromClipboard bool
	toClipboard   bool
	colorSpec     string
	color         annotate.Color
	shape         string
	coords        []int
	text          string
	*root
	fs *flag.FlagSet
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func parseColor(s string) (annotate.Color, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return annotate.Color{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return rgbaToColor(c), nil
	}
	if strings.HasPrefix(spec, "#") && (len(spec) == 7 || len(spec) == 9) {
		var vals [4]uint64
		vals[3] = 255
		for i := 0; i*2+1 < len(spec); i++ {
			v, err := strconv.ParseUint(spec[i*2+1:i*2+3], 16, 8)
			if err != nil {
				return annotate.Color{}, fmt.Errorf("invalid color %q", s)
			}
			vals[i] = v
		}
		return rgbaToColor(color.RGBA{uint8(vals[0]), uint8(vals[1]), uint8(vals[2]), uint8(vals[3])}), nil
	}
	return annotate.Color{}, fmt.Errorf("invalid color %q", s)
}

func rgbaToColor(c color.RGBA) annotate.Color {
	return annotate.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.Usage = usageFunc(d)
	fs.StringVar(&d.file, "file", "", "input image file")
	fs.StringVar(&d.outPath, "output", "", "output file path (defaults to the input file)")
	fs.BoolVar(&d.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&d.fromClipboard, "from-clip", false, "read the input image from the clipboard (alias)")
	fs.BoolVar(&d.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&d.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	fs.StringVar(&d.colorSpec, "color", "red", "stroke or fill color name or hex value")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	positionals := fs.Args()
	if len(positionals) < 1 {
		return nil, &UsageError{of: d}
	}
	d.shape = strings.ToLower(positionals[0])
	remaining := positionals[1:]
	var err error
	switch d.shape {
	case "rect", "fill-rect", "circle", "fill-circle":
		d.coords, err = expectInts(remaining, 4, d.shape)
	case "text":
		if len(remaining) < 3 {
			return nil, fmt.Errorf("text requires x y and content")
		}
		d.coords, err = expectInts(remaining[:2], 2, d.shape)
		if err != nil {
			return nil, err
		}
		d.text = strings.Join(remaining[2:], " ")
		if strings.TrimSpace(d.text) == "" {
			return nil, fmt.Errorf("text content cannot be empty")
		}
	default:
		return nil, fmt.Errorf("unsupported shape %q", d.shape)
	}
	if err != nil {
		return nil, err
	}

	d.color, err = parseColor(d.colorSpec)
	if err != nil {
		return nil, err
	}

	if d.fromClipboard {
		if d.file != "" {
			return nil, fmt.Errorf("-file cannot be used with -from-clipboard")
		}
		if d.outPath == "" && !d.toClipboard {
			return nil, fmt.Errorf("output file is required when reading from the clipboard")
		}
	} else {
		if d.file == "" {
			return nil, fmt.Errorf("input file is required")
		}
		if d.outPath == "" {
			d.outPath = d.file
		}
	}
	return d, nil
}

func expectInts(args []string, n int, shape string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d coordinates", shape, n)
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q for %s", a, shape)
		}
		out[i] = v
	}
	return out, nil
}

func (d *drawCmd) Run() error {
	src, err := d.loadSource()
	if err != nil {
		return err
	}

	store := annotate.NewStore()
	store.Add(d.annotation())
	out := annotate.NewCompositor(src).RenderOutput(store)

	if d.toClipboard {
		if err := clipboard.WriteImage(out); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, "copied result to clipboard")
		d.root.notifyCopy(d.shape)
		if d.outPath == "" {
			return nil
		}
	}

	f, err := os.Create(d.outPath)
	if err != nil {
		return fmt.Errorf("create output %q: %w", d.outPath, err)
	}
	defer f.Close()
	if err := imageio.EncodePNG(f, out); err != nil {
		return fmt.Errorf("write PNG to %q: %w", d.outPath, err)
	}
	d.root.notifySave(d.outPath)
	return nil
}

func (d *drawCmd) annotation() annotate.Annotation {
	p := func(i int) annotate.Point {
		return annotate.Point{X: float64(d.coords[i*2]), Y: float64(d.coords[i*2+1])}
	}
	switch d.shape {
	case "rect":
		return annotate.NewShape(annotate.KindRectangle, p(0), p(1), d.color)
	case "fill-rect":
		return annotate.NewShape(annotate.KindFilledRectangle, p(0), p(1), d.color)
	case "circle":
		return annotate.NewShape(annotate.KindCircle, p(0), p(1), d.color)
	case "fill-circle":
		return annotate.NewShape(annotate.KindFilledCircle, p(0), p(1), d.color)
	default:
		return annotate.NewText(d.text, p(0), d.color)
	}
}

func (d *drawCmd) loadSource() (*image.RGBA, error) {
	if d.fromClipboard {
		img, err := clipboard.ReadImage()
		if err != nil {
			return nil, fmt.Errorf("read image from clipboard: %w", err)
		}
		return imageio.ToRGBA(img), nil
	}
	img, err := imageio.Load(d.file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.file, err)
	}
	return img, nil
}

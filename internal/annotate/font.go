package annotate

import (
	"log"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Annotation text renders at a single fixed size; the bounding-box metrics in
// annotation.go approximate this face.
const textFontSize = 24.0

var textFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	textFace, err = opentype.NewFace(f, &opentype.FaceOptions{
		Size:    textFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

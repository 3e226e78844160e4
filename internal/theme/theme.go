package theme

import (
	"image/color"
)

// Theme defines the color palette for the editor UI.
type Theme struct {
	Name string

	// Canvas
	CanvasBackground color.RGBA // Behind the captured image
	Selection        color.RGBA // Dashed indicator and handles

	// Toolbar
	ToolbarBackground     color.RGBA
	Foreground            color.RGBA // Status and label text
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonBackgroundOn    color.RGBA // Latched tool button
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA
}

// Default returns the hardcoded dark theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		CanvasBackground:      color.RGBA{51, 51, 51, 255},
		Selection:             color.RGBA{51, 128, 255, 204},
		ToolbarBackground:     color.RGBA{40, 40, 40, 255},
		Foreground:            color.RGBA{230, 230, 230, 255},
		ButtonBackground:      color.RGBA{60, 60, 60, 255},
		ButtonBackgroundHover: color.RGBA{75, 75, 75, 255},
		ButtonBackgroundPress: color.RGBA{90, 90, 90, 255},
		ButtonBackgroundOn:    color.RGBA{30, 90, 160, 255},
		ButtonText:            color.RGBA{230, 230, 230, 255},
		ButtonBorder:          color.RGBA{20, 20, 20, 255},
	}
}

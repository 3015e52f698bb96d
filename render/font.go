// Package render draws face locking annotations onto video frames using
// GoCV, bounding boxes with identity labels, landmark keypoints, and the
// lock status overlay.
package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
}

// DefaultFont returns default font settings used for face labels
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
	}
}

// StatusFont returns the larger font settings used for the status overlay
func StatusFont() Font {

	f := DefaultFont()
	f.Scale = 0.7
	f.Thickness = 2

	return f
}

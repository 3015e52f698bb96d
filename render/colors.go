package render

import "image/color"

var (
	// Green marks detected but unlocked faces
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	// Red marks the currently locked face
	Red = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	// Black is used for letterboxing and text backgrounds
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	// White is the default text color
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

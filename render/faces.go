package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/swdee/go-facelock/engine"
)

// boxLabel defines where a face label should be rendered on the image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// FaceBoxes renders the bounding boxes around all detected faces with their
// identity labels.  The currently locked face is drawn in red with double
// line thickness
func FaceBoxes(img *gocv.Mat, frame engine.Frame, font Font,
	lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, face := range frame.Faces {

		useClr := Green
		thickness := lineThickness

		if face.Locked {
			useClr = Red
			thickness = lineThickness * 2
		}

		boxLeft := int(face.Detection.Box.X1)
		boxTop := int(face.Detection.Box.Y1)
		boxRight := int(face.Detection.Box.X2)
		boxBottom := int(face.Detection.Box.Y2)

		// draw rectangle around detected face
		rect := image.Rect(boxLeft, boxTop, boxRight, boxBottom)
		gocv.Rectangle(img, rect, useClr, thickness)

		// create text for label
		text := fmt.Sprintf("%s %.2f", face.Match.Name, face.Match.Similarity)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		centerX := boxLeft + (textSize.X / 2) + font.LeftPad - (thickness / 2)

		// adjust the label position so the text is centered horizontally
		labelPosition := image.Pt(centerX-textSize.X/2, boxTop-font.BottomPad)

		// create box for placing text on
		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			boxTop-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, boxTop)

		boxLabels = append(boxLabels, boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: labelPosition,
		})
	}

	// draw all precalculated box labels so they are the top most layer on
	// the image
	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// FaceLandmarks renders circles at the five landmark keypoints of each
// detected face
func FaceLandmarks(img *gocv.Mat, frame engine.Frame, radius int) {

	for _, face := range frame.Faces {

		useClr := Green

		if face.Locked {
			useClr = Red
		}

		for _, p := range face.Detection.Landmarks {
			gocv.Circle(img, image.Pt(int(p.X), int(p.Y)), radius,
				useClr, -1)
		}
	}
}

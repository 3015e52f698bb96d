package rknn

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	facelock "github.com/swdee/go-facelock"
)

// arcFaceTemplate holds the canonical destination landmark positions for a
// 112x112 aligned face crop used by ArcFace style embedding models
var arcFaceTemplate = facelock.Landmarks{
	{X: 38.2946, Y: 51.6963},
	{X: 73.5318, Y: 51.5014},
	{X: 56.0252, Y: 71.7366},
	{X: 41.5493, Y: 92.3655},
	{X: 70.7299, Y: 92.2041},
}

// templateSize is the crop size the template coordinates are defined for
const templateSize = 112

// AlignFace warps the face given by the five landmarks into an upright
// crop of the given size, using a similarity transform estimated between
// the landmarks and the ArcFace template
func AlignFace(img gocv.Mat, lm facelock.Landmarks,
	size image.Point) (gocv.Mat, error) {

	src := make([]gocv.Point2f, len(lm))
	dst := make([]gocv.Point2f, len(lm))

	// scale the template coordinates to the requested output size
	sx := float32(size.X) / templateSize
	sy := float32(size.Y) / templateSize

	for i, p := range lm {
		src[i] = gocv.Point2f{X: p.X, Y: p.Y}
		dst[i] = gocv.Point2f{
			X: arcFaceTemplate[i].X * sx,
			Y: arcFaceTemplate[i].Y * sy,
		}
	}

	srcVec := gocv.NewPoint2fVectorFromPoints(src)
	defer srcVec.Close()

	dstVec := gocv.NewPoint2fVectorFromPoints(dst)
	defer dstVec.Close()

	m := gocv.EstimateAffinePartial2D(srcVec, dstVec)
	defer m.Close()

	if m.Empty() {
		return gocv.Mat{}, fmt.Errorf("could not estimate similarity transform from landmarks")
	}

	aligned := gocv.NewMat()
	gocv.WarpAffine(img, &aligned, m, size)

	return aligned, nil
}

package facelock

import (
	"math"
)

// Landmark indices into Detection.Landmarks.  The detector returns five
// facial keypoints in this fixed order.
const (
	LeftEye = iota
	RightEye
	Nose
	LeftMouthCorner
	RightMouthCorner
)

// Point represents the x,y pixel coordinates of a facial landmark
type Point struct {
	X, Y float32
}

// Distance returns the euclidean distance to another point
func (p Point) Distance(other Point) float32 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return float32(math.Sqrt(dx*dx + dy*dy))
}

// Landmarks is the ordered five point facial landmark set
type Landmarks [5]Point

// Box is the axis aligned bounding box of a detected face in pixel
// coordinates, where (X1,Y1) is the top left corner and (X2,Y2) is the
// bottom right corner
type Box struct {
	X1, Y1, X2, Y2 float32
}

// Width returns the width of the box
func (b Box) Width() float32 {
	return b.X2 - b.X1
}

// Height returns the height of the box
func (b Box) Height() float32 {
	return b.Y2 - b.Y1
}

// Center returns the center point of the box
func (b Box) Center() Point {
	return Point{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}
}

// Detection is a single face observation in one frame
type Detection struct {
	// Box is the bounding box of the face location
	Box Box
	// Landmarks are the five facial keypoints of the face
	Landmarks Landmarks
	// Score is the detector confidence of the face detected
	Score float32
	// ID is a unique ID assigned to the detection result
	ID int64
}

// Unknown is the identity name reported by a matcher when an embedding is
// not close enough to any enrolled identity
const Unknown = "unknown"

// MatchResult is the outcome of matching a face embedding against the
// enrollment database.  Similarity and Distance are two views of the same
// measurement related by Similarity = 1 - Distance
type MatchResult struct {
	// Name is the matched identity, or Unknown
	Name string
	// Similarity score, higher means more confident
	Similarity float32
	// Distance is the cosine distance, lower means more confident
	Distance float32
}

// NoMatch returns the MatchResult used for a face whose embedding could not
// be computed or matched
func NoMatch() MatchResult {
	return MatchResult{
		Name:       Unknown,
		Similarity: -1,
		Distance:   2,
	}
}

// Candidate pairs a face detection with its identity match result for one
// frame
type Candidate struct {
	Detection Detection
	Match     MatchResult
}

package facelock

import (
	"gocv.io/x/gocv"
)

// FaceDetector detects faces and their five point landmarks in a video
// frame
type FaceDetector interface {
	// Detect returns up to maxFaces face detections found in img
	Detect(img gocv.Mat, maxFaces int) ([]Detection, error)
}

// FaceEmbedder produces an identity embedding vector for a detected face
type FaceEmbedder interface {
	// Embed aligns the face given by det and returns its embedding vector
	Embed(img gocv.Mat, det Detection) ([]float32, error)
}

// IdentityMatcher matches a face embedding against the enrollment database
type IdentityMatcher interface {
	// Match returns the closest enrolled identity for the embedding
	Match(embedding []float32) MatchResult
}

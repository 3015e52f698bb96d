package enroll

import (
	"fmt"
	"math"

	"github.com/coder/hnsw"

	facelock "github.com/swdee/go-facelock"
)

// hnswMaxNeighbors is the M parameter of the HNSW graph
const hnswMaxNeighbors = 16

// Matcher matches face embeddings against the enrollment database using an
// HNSW graph built over each identity's reference embedding.  Safe for use
// from the frame loop, the graph is read only after construction
type Matcher struct {
	graph *hnsw.Graph[string]
	refs  map[string][]float32
	// maxDistance is the cosine distance above which a match is reported
	// as unknown
	maxDistance float32
}

// NewMatcher builds a matcher from the enrollment database.  The database
// must contain at least one enrolled identity
func NewMatcher(db *Database, maxDistance float32) (*Matcher, error) {

	names := db.Names()

	if len(names) == 0 {
		return nil, fmt.Errorf("enrollment database is empty")
	}

	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.CosineDistance

	refs := make(map[string][]float32, len(names))

	for _, name := range names {

		ref, err := db.Reference(name)

		if err != nil {
			return nil, fmt.Errorf("error building matcher index: %w", err)
		}

		g.Add(hnsw.MakeNode(name, ref))
		refs[name] = ref
	}

	return &Matcher{
		graph:       g,
		refs:        refs,
		maxDistance: maxDistance,
	}, nil
}

// Match returns the closest enrolled identity for the embedding, or unknown
// when no identity is within the distance threshold.  The returned result
// always carries both the distance and the equivalent similarity score
func (m *Matcher) Match(embedding []float32) facelock.MatchResult {

	neighbors := m.graph.Search(embedding, 1)

	if len(neighbors) == 0 {
		return facelock.NoMatch()
	}

	name := neighbors[0].Key
	dist := cosineDistance(embedding, m.refs[name])

	result := facelock.MatchResult{
		Name:       name,
		Distance:   dist,
		Similarity: 1 - dist,
	}

	if dist > m.maxDistance {
		result.Name = facelock.Unknown
	}

	return result
}

// cosineDistance returns 1 - cosine similarity, in [0,2], where small
// values mean very similar
func cosineDistance(a, b []float32) float32 {

	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 2
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// clamp against floating point error
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}

	return float32(1 - sim)
}

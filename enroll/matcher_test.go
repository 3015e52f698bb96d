package enroll

import (
	"testing"

	facelock "github.com/swdee/go-facelock"
)

// testDatabase returns a database with two well separated identities
func testDatabase() *Database {
	db := NewDatabase()
	db.Add("alice", []float32{1, 0, 0})
	db.Add("bob", []float32{0, 1, 0})
	return db
}

func TestMatcherRequiresEnrollments(t *testing.T) {

	if _, err := NewMatcher(NewDatabase(), 0.34); err == nil {
		t.Fatal("expected an error for an empty database")
	}
}

func TestMatchKnownIdentity(t *testing.T) {

	m, err := NewMatcher(testDatabase(), 0.34)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// close to alice's reference with a little noise
	result := m.Match([]float32{0.9, 0.1, 0})

	if result.Name != "alice" {
		t.Errorf("expected alice, got %s", result.Name)
	}

	if result.Distance > 0.34 {
		t.Errorf("expected a distance within the threshold, got %v",
			result.Distance)
	}

	result = m.Match([]float32{0.1, 0.9, 0})

	if result.Name != "bob" {
		t.Errorf("expected bob, got %s", result.Name)
	}
}

func TestMatchUnknownBeyondThreshold(t *testing.T) {

	m, err := NewMatcher(testDatabase(), 0.34)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// equally far from both references, cosine distance 0.5
	result := m.Match([]float32{0.5, 0.5, 0.7071})

	if result.Name != facelock.Unknown {
		t.Errorf("expected unknown, got %s", result.Name)
	}

	// the distance and similarity are still reported for display
	if !almostEqual(result.Distance, 0.5, 0.001) {
		t.Errorf("expected distance 0.5, got %v", result.Distance)
	}

	if !almostEqual(result.Similarity, 0.5, 0.001) {
		t.Errorf("expected similarity 0.5, got %v", result.Similarity)
	}
}

func TestSimilarityIsDistanceComplement(t *testing.T) {

	m, err := NewMatcher(testDatabase(), 0.34)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := m.Match([]float32{0.7, 0.3, 0.1})

	if !almostEqual(result.Similarity, 1-result.Distance, 0.0001) {
		t.Errorf("similarity %v is not the complement of distance %v",
			result.Similarity, result.Distance)
	}
}

func TestMatcherUsesReferenceEmbeddings(t *testing.T) {

	// two samples averaging to a diagonal reference
	db := NewDatabase()
	db.Add("alice", []float32{1, 0, 0})
	db.Add("alice", []float32{0, 1, 0})

	m, err := NewMatcher(db, 0.34)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the diagonal query matches the averaged reference exactly
	result := m.Match([]float32{1, 1, 0})

	if result.Name != "alice" {
		t.Fatalf("expected alice, got %s", result.Name)
	}

	if !almostEqual(result.Distance, 0, 0.001) {
		t.Errorf("expected zero distance to the reference, got %v",
			result.Distance)
	}
}

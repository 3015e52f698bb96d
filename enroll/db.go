// Package enroll provides the enrollment database of face embeddings and
// identity matching against it.  The database is loaded once at startup and
// treated as read only while the engine runs.
package enroll

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Database maps enrolled identity names to their face embedding samples
type Database struct {
	// Identities maps an identity name to one or more enrollment sample
	// embeddings
	Identities map[string][][]float32 `json:"identities"`
}

// NewDatabase returns an empty enrollment database
func NewDatabase() *Database {
	return &Database{
		Identities: make(map[string][][]float32),
	}
}

// Load reads an enrollment database from a JSON file
func Load(path string) (*Database, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading enrollment database: %w", err)
	}

	db := NewDatabase()

	if err := json.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("error parsing enrollment database: %w", err)
	}

	return db, nil
}

// Save writes the database to a JSON file
func (d *Database) Save(path string) error {

	data, err := json.MarshalIndent(d, "", "  ")

	if err != nil {
		return fmt.Errorf("error encoding enrollment database: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing enrollment database: %w", err)
	}

	return nil
}

// Names returns the enrolled identity names sorted alphabetically
func (d *Database) Names() []string {

	names := make([]string, 0, len(d.Identities))

	for name := range d.Identities {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Has reports whether the identity has at least one enrollment sample
func (d *Database) Has(name string) bool {
	return len(d.Identities[name]) > 0
}

// Add appends an enrollment sample embedding for the identity
func (d *Database) Add(name string, embedding []float32) {
	d.Identities[name] = append(d.Identities[name], embedding)
}

// Merge copies all identities and samples from other into the database and
// returns the number of samples added
func (d *Database) Merge(other *Database) int {

	added := 0

	for name, samples := range other.Identities {
		for _, s := range samples {
			d.Add(name, s)
			added++
		}
	}

	return added
}

// Reference returns the identity's reference embedding, the L2 normalized
// mean of its enrollment samples
func (d *Database) Reference(name string) ([]float32, error) {

	samples := d.Identities[name]

	if len(samples) == 0 {
		return nil, fmt.Errorf("identity %q is not enrolled", name)
	}

	mean := make([]float64, len(samples[0]))

	for _, s := range samples {
		if len(s) != len(mean) {
			return nil, fmt.Errorf("identity %q has samples of mixed dimension",
				name)
		}
		floats.Add(mean, toFloat64(s))
	}

	floats.Scale(1/float64(len(samples)), mean)

	if norm := floats.Norm(mean, 2); norm > 0 {
		floats.Scale(1/norm, mean)
	}

	return toFloat32(mean), nil
}

// toFloat64 widens a float32 slice
func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// toFloat32 narrows a float64 slice
func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

package testutil

// FixedIDGenerator returns the same operation id every time.
//
// Log output and scenario traces that include operation ids stay
// byte-identical across runs when the service uses a FixedIDGenerator.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator that always returns id.
// If id is empty, Generate() returns "test-op".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-op"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
//
// Implements crud.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

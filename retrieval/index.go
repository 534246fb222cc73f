// Package retrieval implements hybrid statute search: approximate vector
// lookup over-fetches candidates, a relational join attaches metadata, and
// a region filter plus truncation produce the final ranked fragments.
package retrieval

import "context"

// Hit is one vector-index candidate, distance ascending means more similar.
type Hit struct {
	ChunkID  string
	Distance float32
}

// VectorIndex searches an embedding space and returns the closest chunk IDs
// in ascending distance order.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, limit int) ([]Hit, error)
}

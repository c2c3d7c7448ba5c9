// Package embed generates fixed-dimension sentence embeddings for ticket
// texts and queries.
package embed

import (
	"context"
	"math"
)

// Dimensions is the embedding dimension of the sentence model. The
// vector collection is created with this size; every backend must
// produce exactly this many components.
const Dimensions = 312

// DefaultBatchSize bounds the number of texts sent to a backend per
// request.
const DefaultBatchSize = 32

// Embedder generates L2-unit-normalized vector embeddings for text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length. A zero vector is
// returned unchanged.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}

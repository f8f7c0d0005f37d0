package domain

import "context"

// EmbeddingVector is a semantic vector plus token accounting.
type EmbeddingVector struct {
	Vector      []float64
	TotalTokens int
}

// SemanticEncoder defines embedding generation in domain terms. Implementations
// fail with ProviderUnavailableErr or ProviderTimeoutErr.
type SemanticEncoder interface {
	// VectorizeListing generates a semantic vector for one listing, from its
	// canonical embedding text.
	VectorizeListing(ctx context.Context, model string, listing Listing) (EmbeddingVector, error)
}

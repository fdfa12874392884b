package matching

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/tandem-backend/internal/types"
)

// ScoredID is one nearest-neighbor hit from a vector index.
type ScoredID struct {
	ID         uuid.UUID
	Similarity float64
}

// VectorIndex answers "nearest vectors to this query within one category's
// namespace, excluding these users". Backed by an ANN store in production
// and by a linear scan over stored embeddings otherwise.
type VectorIndex interface {
	Search(ctx context.Context, category types.Category, query []float32, topK int, exclude map[uuid.UUID]bool) ([]ScoredID, error)
}

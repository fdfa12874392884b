package vectorindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/tandem-backend/internal/matching"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/platform/pinecone"
	"github.com/yungbote/tandem-backend/internal/types"
)

// PineconeIndex adapts the ANN store to the matching pipeline's index
// interface. One namespace per profile category; vector ID and the user_id
// metadata field both carry the user's uuid.
type PineconeIndex struct {
	log   *logger.Logger
	store pinecone.VectorStore
}

func NewPineconeIndex(log *logger.Logger, store pinecone.VectorStore) (*PineconeIndex, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store required")
	}
	return &PineconeIndex{log: log.With("component", "PineconeIndex"), store: store}, nil
}

func (p *PineconeIndex) Search(ctx context.Context, category types.Category, query []float32, topK int, exclude map[uuid.UUID]bool) ([]matching.ScoredID, error) {
	var filter map[string]any
	if len(exclude) > 0 {
		ids := make([]string, 0, len(exclude))
		for id := range exclude {
			ids = append(ids, id.String())
		}
		filter = map[string]any{"user_id": map[string]any{"$nin": ids}}
	}

	hits, err := p.store.QueryScored(ctx, string(category), query, topK, filter)
	if err != nil {
		return nil, err
	}

	out := make([]matching.ScoredID, 0, len(hits))
	for _, h := range hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			p.log.Warn("Skipping non-uuid vector id from store", "vector_id", h.ID)
			continue
		}
		if exclude[id] {
			continue
		}
		sim := h.Score
		if sim < 0 {
			sim = 0
		}
		if sim > 1 {
			sim = 1
		}
		out = append(out, matching.ScoredID{ID: id, Similarity: sim})
	}
	return out, nil
}

// Upsert writes one user's category vector into the ANN store.
func (p *PineconeIndex) Upsert(ctx context.Context, category types.Category, userID uuid.UUID, vec []float32) error {
	return p.store.Upsert(ctx, string(category), []pinecone.Vector{
		{
			ID:       userID.String(),
			Values:   vec,
			Metadata: map[string]any{"user_id": userID.String()},
		},
	})
}

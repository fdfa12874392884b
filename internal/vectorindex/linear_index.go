package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/tandem-backend/internal/matching"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/repos"
	"github.com/yungbote/tandem-backend/internal/types"
)

// LinearIndex is the ANN-less fallback: a full scan over stored embeddings
// with in-process cosine ranking. Correct but O(population) per query; it
// will not scale past moderate population sizes.
type LinearIndex struct {
	log        *logger.Logger
	embeddings repos.EmbeddingRepo
}

func NewLinearIndex(log *logger.Logger, embeddings repos.EmbeddingRepo) (*LinearIndex, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if embeddings == nil {
		return nil, fmt.Errorf("embedding repo required")
	}
	return &LinearIndex{log: log.With("component", "LinearIndex"), embeddings: embeddings}, nil
}

func (l *LinearIndex) Search(ctx context.Context, category types.Category, query []float32, topK int, exclude map[uuid.UUID]bool) ([]matching.ScoredID, error) {
	rows, err := l.embeddings.GetAllByCategory(ctx, nil, category)
	if err != nil {
		return nil, err
	}

	scored := make([]matching.ScoredID, 0, len(rows))
	for _, row := range rows {
		if exclude[row.UserID] {
			continue
		}
		var vec []float32
		if err := json.Unmarshal(row.Vector, &vec); err != nil {
			l.log.Warn("Skipping undecodable embedding row",
				"user_id", row.UserID,
				"category", category,
				"error", err,
			)
			continue
		}
		sim, err := matching.Cosine(query, vec)
		if err != nil {
			l.log.Warn("Skipping embedding with mismatched dimension",
				"user_id", row.UserID,
				"category", category,
				"error", err,
			)
			continue
		}
		if sim < 0 {
			sim = 0
		}
		scored = append(scored, matching.ScoredID{ID: row.UserID, Similarity: sim})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].ID.String() < scored[j].ID.String()
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

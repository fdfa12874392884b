package matching

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/types"
)

// Candidate is a prospective counterpart surfaced by one or more generation
// strategies, before scoring and allocation. Never persisted.
type Candidate struct {
	UserID         uuid.UUID
	CandidateID    uuid.UUID
	Reason         types.MatchReason
	Similarity     float64
	StrategyWeight float64
	BaseScore      float64
}

type GeneratorConfig struct {
	ComplementaryLimit  int
	GoalsLimit          int
	ValuesLimit         int
	ComplementaryWeight float64
	GoalsWeight         float64
	ValuesWeight        float64
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		ComplementaryLimit:  20,
		GoalsLimit:          20,
		ValuesLimit:         10,
		ComplementaryWeight: 0.4,
		GoalsWeight:         0.4,
		ValuesWeight:        0.2,
	}
}

type CandidateGenerator struct {
	log   *logger.Logger
	index VectorIndex
	cfg   GeneratorConfig
}

func NewCandidateGenerator(log *logger.Logger, index VectorIndex, cfg GeneratorConfig) *CandidateGenerator {
	return &CandidateGenerator{
		log:   log.With("component", "CandidateGenerator"),
		index: index,
		cfg:   cfg,
	}
}

type strategyQuery struct {
	queryCategory  types.Category
	searchCategory types.Category
	reason         types.MatchReason
	limit          int
	weight         float64
}

// Generate runs the weighted strategies for one user and merges the hits
// into a deduplicated candidate pool. A single strategy failing (or the
// user lacking that category's embedding) is non-fatal: the remaining
// strategies still produce a partial pool.
func (g *CandidateGenerator) Generate(
	ctx context.Context,
	user *types.UserProfile,
	embeddings map[types.Category][]float32,
	exclude map[uuid.UUID]bool,
) ([]Candidate, error) {
	strategies := []strategyQuery{
		// Complementary runs both directions under one combined weight:
		// my needs against others' strengths, and my strengths against
		// others' needs.
		{types.CategoryNeeds, types.CategoryStrengths, types.ReasonComplementaryStrengths, g.cfg.ComplementaryLimit, g.cfg.ComplementaryWeight},
		{types.CategoryStrengths, types.CategoryNeeds, types.ReasonComplementaryNeeds, g.cfg.ComplementaryLimit, g.cfg.ComplementaryWeight},
		{types.CategoryGoals, types.CategoryGoals, types.ReasonSharedGoals, g.cfg.GoalsLimit, g.cfg.GoalsWeight},
		{types.CategoryValues, types.CategoryValues, types.ReasonAlignedValues, g.cfg.ValuesLimit, g.cfg.ValuesWeight},
	}

	selfExclude := map[uuid.UUID]bool{user.ID: true}
	for id := range exclude {
		selfExclude[id] = true
	}

	// Merge policy: a candidate surfaced by multiple strategies keeps the
	// highest similarity and that strategy's reason. Uniform across paths.
	best := make(map[uuid.UUID]Candidate)
	ran := 0

	for _, s := range strategies {
		query, ok := embeddings[s.queryCategory]
		if !ok || len(query) == 0 {
			g.log.Debug("Skipping strategy, no embedding for category",
				"user_id", user.ID,
				"category", s.queryCategory,
			)
			continue
		}

		hits, err := g.index.Search(ctx, s.searchCategory, query, s.limit, selfExclude)
		if err != nil {
			g.log.Warn("Candidate strategy failed, continuing with partial pool",
				"user_id", user.ID,
				"reason", s.reason,
				"error", err,
			)
			continue
		}
		ran++

		for _, h := range hits {
			sim := clamp01(h.Similarity)
			prev, seen := best[h.ID]
			if seen && prev.Similarity >= sim {
				continue
			}
			best[h.ID] = Candidate{
				UserID:         user.ID,
				CandidateID:    h.ID,
				Reason:         s.reason,
				Similarity:     sim,
				StrategyWeight: s.weight,
				BaseScore:      sim * s.weight,
			}
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].CandidateID.String() < out[j].CandidateID.String()
	})

	g.log.Debug("Candidate pool generated",
		"user_id", user.ID,
		"strategies_run", ran,
		"pool_size", len(out),
	)
	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

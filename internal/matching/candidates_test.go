package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/types"
)

type stubIndex struct {
	// hits maps search category to the results every query returns.
	hits     map[types.Category][]ScoredID
	failures map[types.Category]error
	queries  []types.Category
}

func (s *stubIndex) Search(_ context.Context, category types.Category, _ []float32, topK int, exclude map[uuid.UUID]bool) ([]ScoredID, error) {
	s.queries = append(s.queries, category)
	if err := s.failures[category]; err != nil {
		return nil, err
	}
	out := make([]ScoredID, 0)
	for _, h := range s.hits[category] {
		if exclude[h.ID] {
			continue
		}
		out = append(out, h)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func TestGenerateComplementaryScenario(t *testing.T) {
	user := profileWith(types.RoleSeeker, "", 5, 5, nil, []string{"UX research"}, nil, nil)
	candidateID := uuid.New()

	idx := &stubIndex{hits: map[types.Category][]ScoredID{
		types.CategoryStrengths: {{ID: candidateID, Similarity: 0.91}},
	}}
	gen := NewCandidateGenerator(testLogger(t), idx, DefaultGeneratorConfig())

	got, err := gen.Generate(context.Background(), user,
		map[types.Category][]float32{types.CategoryNeeds: {1, 0}},
		nil,
	)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates: want 1 got %d", len(got))
	}
	c := got[0]
	if c.CandidateID != candidateID {
		t.Fatalf("candidate id mismatch")
	}
	if c.Reason != types.ReasonComplementaryStrengths && c.Reason != types.ReasonComplementaryNeeds {
		t.Fatalf("reason: want a complementary reason, got %s", c.Reason)
	}
	if c.BaseScore <= 0 {
		t.Fatalf("base score: want > 0 got %v", c.BaseScore)
	}
}

func TestGenerateHighestSimilarityWinsOnDedupe(t *testing.T) {
	user := profileWith(types.RoleBoth, "", 5, 5,
		[]string{"mentoring"}, []string{"design"}, []string{"launch"}, []string{"craft"})
	dup := uuid.New()

	idx := &stubIndex{hits: map[types.Category][]ScoredID{
		types.CategoryStrengths: {{ID: dup, Similarity: 0.60}},
		types.CategoryGoals:     {{ID: dup, Similarity: 0.95}},
		types.CategoryValues:    {{ID: dup, Similarity: 0.70}},
	}}
	gen := NewCandidateGenerator(testLogger(t), idx, DefaultGeneratorConfig())

	embs := map[types.Category][]float32{
		types.CategoryNeeds:     {1, 0},
		types.CategoryStrengths: {0, 1},
		types.CategoryGoals:     {1, 1},
		types.CategoryValues:    {0.5, 0.5},
	}
	got, err := gen.Generate(context.Background(), user, embs, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("dedupe: want 1 candidate got %d", len(got))
	}
	if got[0].Similarity != 0.95 {
		t.Fatalf("dedupe policy: want highest similarity 0.95, got %v", got[0].Similarity)
	}
	if got[0].Reason != types.ReasonSharedGoals {
		t.Fatalf("dedupe policy: want winning strategy's reason shared_goals, got %s", got[0].Reason)
	}
}

func TestGenerateStrategyFailureProducesPartialPool(t *testing.T) {
	user := profileWith(types.RoleBoth, "", 5, 5, nil, []string{"design"}, []string{"launch"}, nil)
	goalMate := uuid.New()

	idx := &stubIndex{
		hits: map[types.Category][]ScoredID{
			types.CategoryGoals: {{ID: goalMate, Similarity: 0.8}},
		},
		failures: map[types.Category]error{
			types.CategoryStrengths: fmt.Errorf("vector store unavailable"),
		},
	}
	gen := NewCandidateGenerator(testLogger(t), idx, DefaultGeneratorConfig())

	embs := map[types.Category][]float32{
		types.CategoryNeeds: {1, 0},
		types.CategoryGoals: {0, 1},
	}
	got, err := gen.Generate(context.Background(), user, embs, nil)
	if err != nil {
		t.Fatalf("Generate must not fail on a single strategy error: %v", err)
	}
	if len(got) != 1 || got[0].CandidateID != goalMate {
		t.Fatalf("partial pool: want the shared-goals hit, got %+v", got)
	}
}

func TestGenerateExcludesSelfAndMatched(t *testing.T) {
	user := profileWith(types.RoleBoth, "", 5, 5, nil, nil, []string{"launch"}, nil)
	already := uuid.New()
	fresh := uuid.New()

	idx := &stubIndex{hits: map[types.Category][]ScoredID{
		types.CategoryGoals: {
			{ID: user.ID, Similarity: 0.99},
			{ID: already, Similarity: 0.9},
			{ID: fresh, Similarity: 0.8},
		},
	}}
	gen := NewCandidateGenerator(testLogger(t), idx, DefaultGeneratorConfig())

	got, err := gen.Generate(context.Background(), user,
		map[types.Category][]float32{types.CategoryGoals: {1, 0}},
		map[uuid.UUID]bool{already: true},
	)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 || got[0].CandidateID != fresh {
		t.Fatalf("exclusion: want only the fresh candidate, got %+v", got)
	}
}

func TestGenerateSkipsStrategiesWithoutEmbeddings(t *testing.T) {
	user := profileWith(types.RoleBoth, "", 5, 5, nil, nil, nil, nil)
	idx := &stubIndex{}
	gen := NewCandidateGenerator(testLogger(t), idx, DefaultGeneratorConfig())

	got, err := gen.Generate(context.Background(), user, map[types.Category][]float32{}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("no embeddings: want empty pool got %d", len(got))
	}
	if len(idx.queries) != 0 {
		t.Fatalf("no embeddings: index should never be queried, saw %d queries", len(idx.queries))
	}
}

package vectorindex

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

type staticEmbeddingRepo struct {
	rows []*types.ProfileEmbedding
}

func (r *staticEmbeddingRepo) Upsert(_ context.Context, _ *gorm.DB, _ *types.ProfileEmbedding) error {
	return nil
}

func (r *staticEmbeddingRepo) GetByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.ProfileEmbedding, error) {
	return nil, nil
}

func (r *staticEmbeddingRepo) GetByUserCategory(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ types.Category) (*types.ProfileEmbedding, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *staticEmbeddingRepo) GetAllByCategory(_ context.Context, _ *gorm.DB, category types.Category) ([]*types.ProfileEmbedding, error) {
	var out []*types.ProfileEmbedding
	for _, row := range r.rows {
		if row.Category == category {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *staticEmbeddingRepo) MarkStale(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ types.Category) error {
	return nil
}

func embRow(userID uuid.UUID, category types.Category, vec []float32) *types.ProfileEmbedding {
	raw, _ := json.Marshal(vec)
	return &types.ProfileEmbedding{
		UserID:   userID,
		Category: category,
		Vector:   datatypes.JSON(raw),
	}
}

func newLinearIndex(t *testing.T, rows ...*types.ProfileEmbedding) *LinearIndex {
	t.Helper()
	idx, err := NewLinearIndex(testLogger(t), &staticEmbeddingRepo{rows: rows})
	if err != nil {
		t.Fatalf("NewLinearIndex: %v", err)
	}
	return idx
}

func TestLinearSearchRanksByCosine(t *testing.T) {
	aligned := uuid.New()
	partial := uuid.New()
	opposed := uuid.New()

	idx := newLinearIndex(t,
		embRow(partial, types.CategoryGoals, []float32{1, 1, 0}),
		embRow(opposed, types.CategoryGoals, []float32{-1, 0, 0}),
		embRow(aligned, types.CategoryGoals, []float32{1, 0, 0}),
	)

	got, err := idx.Search(context.Background(), types.CategoryGoals, []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 results got %d", len(got))
	}
	if got[0].ID != aligned || got[1].ID != partial || got[2].ID != opposed {
		t.Fatalf("wrong ranking: %v", got)
	}
	if got[0].Similarity < 0.999 {
		t.Fatalf("identical direction should score ~1, got %v", got[0].Similarity)
	}
	if got[2].Similarity != 0 {
		t.Fatalf("negative cosine should floor at 0, got %v", got[2].Similarity)
	}
}

func TestLinearSearchHonorsTopK(t *testing.T) {
	rows := make([]*types.ProfileEmbedding, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, embRow(uuid.New(), types.CategoryGoals, []float32{1, float32(i) * 0.1, 0}))
	}
	idx := newLinearIndex(t, rows...)

	got, err := idx.Search(context.Background(), types.CategoryGoals, []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("topK=2: want 2 results got %d", len(got))
	}
}

func TestLinearSearchExcludes(t *testing.T) {
	self := uuid.New()
	other := uuid.New()
	idx := newLinearIndex(t,
		embRow(self, types.CategoryGoals, []float32{1, 0, 0}),
		embRow(other, types.CategoryGoals, []float32{0.9, 0.1, 0}),
	)

	got, err := idx.Search(context.Background(), types.CategoryGoals, []float32{1, 0, 0}, 10, map[uuid.UUID]bool{self: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != other {
		t.Fatalf("excluded user leaked into results: %v", got)
	}
}

func TestLinearSearchSkipsBadRows(t *testing.T) {
	good := uuid.New()
	undecodable := &types.ProfileEmbedding{
		UserID:   uuid.New(),
		Category: types.CategoryGoals,
		Vector:   datatypes.JSON([]byte(`not json`)),
	}
	wrongDim := embRow(uuid.New(), types.CategoryGoals, []float32{1, 0})

	idx := newLinearIndex(t,
		undecodable,
		wrongDim,
		embRow(good, types.CategoryGoals, []float32{1, 0, 0}),
	)

	got, err := idx.Search(context.Background(), types.CategoryGoals, []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("bad rows must be skipped, not fatal: %v", err)
	}
	if len(got) != 1 || got[0].ID != good {
		t.Fatalf("want only the healthy row, got %v", got)
	}
}

func TestLinearSearchOtherCategoriesInvisible(t *testing.T) {
	idx := newLinearIndex(t,
		embRow(uuid.New(), types.CategoryValues, []float32{1, 0, 0}),
	)

	got, err := idx.Search(context.Background(), types.CategoryGoals, []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("categories are isolated namespaces, got %v", got)
	}
}

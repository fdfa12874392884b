package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/tandem-backend/internal/matching"
	errs "github.com/yungbote/tandem-backend/internal/pkg/errors"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/platform/openai"
	"github.com/yungbote/tandem-backend/internal/repos"
	"github.com/yungbote/tandem-backend/internal/types"
)

// BatchResult is one item's outcome from BatchGenerate. A bad item does not
// abort the batch; it carries its own error instead.
type BatchResult struct {
	Index  int
	Vector []float32
	Err    error
}

// VectorUpserter mirrors embeddings into an external ANN index. Nil when
// running on the linear-scan fallback, which reads the repo directly.
type VectorUpserter interface {
	Upsert(ctx context.Context, category types.Category, userID uuid.UUID, vec []float32) error
}

type EmbeddingService interface {
	// Generate validates, truncates, embeds, and unit-normalizes one text.
	// Empty-after-trim input fails with a validation error before any
	// network call.
	Generate(ctx context.Context, text string) ([]float32, error)
	// BatchGenerate embeds items sequentially with a small inter-call delay
	// to respect provider rate limiting, isolating per-item failures.
	BatchGenerate(ctx context.Context, texts []string) []BatchResult
	// EnsureFresh returns the user's current per-category vectors,
	// regenerating any that are stale or missing.
	EnsureFresh(ctx context.Context, profile *types.UserProfile) (map[types.Category][]float32, error)
	RefreshUserEmbeddings(ctx context.Context, profile *types.UserProfile) (map[types.Category][]float32, error)
	// InvalidateCategory marks one (user, category) vector stale after a
	// profile edit; regeneration is lazy.
	InvalidateCategory(ctx context.Context, userID uuid.UUID, category types.Category) error
}

type EmbeddingConfig struct {
	// MaxInputChars bounds text sent to the model, a character-level stand-in
	// for the model's token limit.
	MaxInputChars int
	// BatchDelay spaces sequential embedding calls.
	BatchDelay time.Duration
}

func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		MaxInputChars: 8000,
		BatchDelay:    100 * time.Millisecond,
	}
}

type embeddingService struct {
	log        *logger.Logger
	ai         openai.Client
	embeddings repos.EmbeddingRepo
	upserter   VectorUpserter
	cfg        EmbeddingConfig
}

func NewEmbeddingService(
	log *logger.Logger,
	ai openai.Client,
	embeddings repos.EmbeddingRepo,
	upserter VectorUpserter,
	cfg EmbeddingConfig,
) (EmbeddingService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ai == nil {
		return nil, fmt.Errorf("openai client required")
	}
	if embeddings == nil {
		return nil, fmt.Errorf("embedding repo required")
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultEmbeddingConfig().MaxInputChars
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	return &embeddingService{
		log:        log.With("service", "EmbeddingService"),
		ai:         ai,
		embeddings: embeddings,
		upserter:   upserter,
		cfg:        cfg,
	}, nil
}

func (s *embeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errs.Validation("Text to embed must not be empty.", fmt.Errorf("empty embedding input"))
	}
	if len(trimmed) > s.cfg.MaxInputChars {
		// Back up to a rune start so truncation never splits a multi-byte
		// character.
		cut := s.cfg.MaxInputChars
		for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
			cut--
		}
		trimmed = trimmed[:cut]
	}

	vectors, err := s.ai.Embed(ctx, []string{trimmed})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding service returned %d vectors for one input", len(vectors))
	}
	return matching.Normalize(vectors[0]), nil
}

func (s *embeddingService) BatchGenerate(ctx context.Context, texts []string) []BatchResult {
	results := make([]BatchResult, 0, len(texts))
	for i, text := range texts {
		if i > 0 && s.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				results = append(results, BatchResult{Index: i, Err: ctx.Err()})
				continue
			case <-time.After(s.cfg.BatchDelay):
			}
		}
		vec, err := s.Generate(ctx, text)
		if err != nil {
			s.log.Warn("Batch embedding item failed, continuing",
				"index", i,
				"error", err,
			)
			results = append(results, BatchResult{Index: i, Err: err})
			continue
		}
		results = append(results, BatchResult{Index: i, Vector: vec})
	}
	return results
}

func (s *embeddingService) EnsureFresh(ctx context.Context, profile *types.UserProfile) (map[types.Category][]float32, error) {
	existing, err := s.embeddings.GetByUser(ctx, nil, profile.ID)
	if err != nil {
		return nil, errs.Database(err)
	}
	current := make(map[types.Category]*types.ProfileEmbedding, len(existing))
	for _, row := range existing {
		current[row.Category] = row
	}

	out := make(map[types.Category][]float32)
	for _, category := range types.AllCategories() {
		items := profile.CategoryList(category)
		if len(items) == 0 {
			continue
		}
		row, ok := current[category]
		if ok && !row.Stale {
			vec, decodeErr := decodeVector(row.Vector)
			if decodeErr == nil {
				out[category] = vec
				continue
			}
			s.log.Warn("Stored embedding undecodable, regenerating",
				"user_id", profile.ID,
				"category", category,
				"error", decodeErr,
			)
		}
		vec, err := s.refreshCategory(ctx, profile, category, items)
		if err != nil {
			return nil, err
		}
		out[category] = vec
	}
	return out, nil
}

func (s *embeddingService) RefreshUserEmbeddings(ctx context.Context, profile *types.UserProfile) (map[types.Category][]float32, error) {
	out := make(map[types.Category][]float32)
	for _, category := range types.AllCategories() {
		items := profile.CategoryList(category)
		if len(items) == 0 {
			continue
		}
		vec, err := s.refreshCategory(ctx, profile, category, items)
		if err != nil {
			return nil, err
		}
		out[category] = vec
	}
	return out, nil
}

func (s *embeddingService) refreshCategory(ctx context.Context, profile *types.UserProfile, category types.Category, items []string) ([]float32, error) {
	vec, err := s.Generate(ctx, strings.Join(items, ". "))
	if err != nil {
		return nil, err
	}

	if err := s.embeddings.Upsert(ctx, nil, &types.ProfileEmbedding{
		UserID:   profile.ID,
		Category: category,
		Vector:   encodeVector(vec),
		Model:    "text-embedding",
		Stale:    false,
	}); err != nil {
		return nil, errs.Database(err)
	}

	if s.upserter != nil {
		if err := s.upserter.Upsert(ctx, category, profile.ID, vec); err != nil {
			// The repo row is the source of truth; an ANN mirror failure
			// degrades retrieval freshness, not correctness.
			s.log.Warn("ANN index upsert failed",
				"user_id", profile.ID,
				"category", category,
				"error", err,
			)
		}
	}
	return vec, nil
}

func (s *embeddingService) InvalidateCategory(ctx context.Context, userID uuid.UUID, category types.Category) error {
	if err := s.embeddings.MarkStale(ctx, nil, userID, category); err != nil {
		return errs.Database(err)
	}
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/tandem-backend/internal/matching"
	errs "github.com/yungbote/tandem-backend/internal/pkg/errors"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/platform/redislock"
	"github.com/yungbote/tandem-backend/internal/repos"
	"github.com/yungbote/tandem-backend/internal/types"
)

const populationRunLock = "population_allocation"

// UserRunResult is one user's outcome from an allocation run. A failed user
// never aborts the surrounding batch; the failure travels here instead.
type UserRunResult struct {
	UserID         uuid.UUID `json:"user_id"`
	MatchesCreated int       `json:"matches_created"`
	Err            error     `json:"-"`
}

type PopulationRunResult struct {
	Processed int             `json:"processed"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []UserRunResult `json:"results"`
}

type PipelineConfig struct {
	// BatchSize bounds concurrent users per batch; batches run sequentially
	// so outbound embedding calls stay capped.
	BatchSize           int
	ExplorationFraction float64
	// MatchTTL is how long a pending match lives before auto-expiry.
	MatchTTL   time.Duration
	RunLockTTL time.Duration
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BatchSize:           10,
		ExplorationFraction: 0.15,
		MatchTTL:            14 * 24 * time.Hour,
		RunLockTTL:          10 * time.Minute,
	}
}

type PipelineService interface {
	RunForUser(ctx context.Context, userID uuid.UUID) UserRunResult
	RunPopulation(ctx context.Context) (*PopulationRunResult, error)
}

type pipelineService struct {
	log        *logger.Logger
	profiles   repos.ProfileRepo
	matches    repos.MatchRepo
	embeddings EmbeddingService
	generator  *matching.CandidateGenerator
	allocator  *matching.Allocator
	classifier *errs.Classifier
	locker     redislock.Locker
	cfg        PipelineConfig
	now        func() time.Time
}

func NewPipelineService(
	log *logger.Logger,
	profiles repos.ProfileRepo,
	matches repos.MatchRepo,
	embeddings EmbeddingService,
	generator *matching.CandidateGenerator,
	allocator *matching.Allocator,
	classifier *errs.Classifier,
	locker redislock.Locker,
	cfg PipelineConfig,
) (PipelineService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if profiles == nil || matches == nil {
		return nil, fmt.Errorf("profile and match repos required")
	}
	if embeddings == nil {
		return nil, fmt.Errorf("embedding service required")
	}
	if generator == nil || allocator == nil {
		return nil, fmt.Errorf("candidate generator and allocator required")
	}
	if classifier == nil {
		classifier = errs.NewClassifier(nil)
	}
	def := DefaultPipelineConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.ExplorationFraction < 0 || cfg.ExplorationFraction > 1 {
		cfg.ExplorationFraction = def.ExplorationFraction
	}
	if cfg.MatchTTL <= 0 {
		cfg.MatchTTL = def.MatchTTL
	}
	if cfg.RunLockTTL <= 0 {
		cfg.RunLockTTL = def.RunLockTTL
	}
	return &pipelineService{
		log:        log.With("service", "PipelineService"),
		profiles:   profiles,
		matches:    matches,
		embeddings: embeddings,
		generator:  generator,
		allocator:  allocator,
		classifier: classifier,
		locker:     locker,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// allocQueries binds match persistence to the allocator's capacity checks.
type allocQueries struct {
	matches repos.MatchRepo
}

func (q allocQueries) ActivePairExists(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return q.matches.ActivePairExists(ctx, nil, a, b)
}

func (q allocQueries) AllocatedThisWeek(ctx context.Context, userID uuid.UUID, week int) (int, error) {
	n, err := q.matches.CountAllocatedInWeek(ctx, nil, userID, week)
	return int(n), err
}

func (s *pipelineService) RunForUser(ctx context.Context, userID uuid.UUID) UserRunResult {
	result := UserRunResult{UserID: userID}

	profile, err := s.profiles.GetByID(ctx, nil, userID)
	if err != nil {
		result.Err = s.fail(userID, "load profile", errs.Database(err))
		return result
	}

	if !hasEmbeddableContent(profile) {
		s.log.Warn("User has no category data; nothing to match on", "user_id", userID)
		return result
	}

	embeddings, err := s.embeddings.EnsureFresh(ctx, profile)
	if err != nil {
		result.Err = s.fail(userID, "ensure embeddings", err)
		return result
	}
	if len(embeddings) == 0 {
		return result
	}

	counterparts, err := s.matches.ActiveCounterpartIDs(ctx, nil, userID)
	if err != nil {
		result.Err = s.fail(userID, "load active counterparts", errs.Database(err))
		return result
	}
	exclude := make(map[uuid.UUID]bool, len(counterparts))
	for _, id := range counterparts {
		exclude[id] = true
	}

	candidates, err := s.generator.Generate(ctx, profile, embeddings, exclude)
	if err != nil {
		result.Err = s.fail(userID, "generate candidates", err)
		return result
	}
	if len(candidates) == 0 {
		return result
	}

	scored, candidateProfiles, err := s.scoreCandidates(ctx, profile, candidates)
	if err != nil {
		result.Err = s.fail(userID, "score candidates", err)
		return result
	}

	matching.SortByScore(scored)
	rng := rand.New(rand.NewSource(s.now().UnixNano()))
	diversified := matching.Diversify(scored, s.allocator.PerRunCap(), s.cfg.ExplorationFraction, rng)

	now := s.now()
	week := types.AllocationWeekOf(now)
	accepted, err := s.allocator.Allocate(ctx, userID, diversified, week, allocQueries{matches: s.matches})
	if err != nil {
		result.Err = s.fail(userID, "allocate", errs.Database(err))
		return result
	}
	if len(accepted) == 0 {
		return result
	}

	rows := make([]*types.Match, 0, len(accepted))
	for _, sc := range accepted {
		counterpart := candidateProfiles[sc.CandidateID]
		if counterpart == nil {
			continue
		}
		explanation := matching.Explain(profile, counterpart, sc)
		features, _ := json.Marshal(sc.Features)
		rows = append(rows, &types.Match{
			UserAID:        userID,
			UserBID:        sc.CandidateID,
			Score:          sc.Score,
			Reason:         sc.Reason,
			Explanation:    explanation.Narrative,
			EvidenceA:      explanation.EvidenceA,
			EvidenceB:      explanation.EvidenceB,
			Confidence:     explanation.Confidence,
			Features:       features,
			Status:         types.MatchPending,
			AllocationWeek: week,
			ExpiresAt:      now.Add(s.cfg.MatchTTL),
		})
	}

	created, err := s.matches.Create(ctx, nil, rows)
	if err != nil {
		result.Err = s.fail(userID, "persist matches", errs.Database(err))
		return result
	}

	result.MatchesCreated = len(created)
	s.log.Info("Allocation run finished for user",
		"user_id", userID,
		"candidates", len(candidates),
		"matches_created", len(created),
		"week", week,
	)
	return result
}

func (s *pipelineService) scoreCandidates(
	ctx context.Context,
	profile *types.UserProfile,
	candidates []matching.Candidate,
) ([]matching.ScoredCandidate, map[uuid.UUID]*types.UserProfile, error) {
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.CandidateID)
	}
	counterparts, err := s.profiles.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, nil, errs.Database(err)
	}
	byID := make(map[uuid.UUID]*types.UserProfile, len(counterparts))
	for _, p := range counterparts {
		byID[p.ID] = p
	}

	scored := make([]matching.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		counterpart := byID[c.CandidateID]
		if counterpart == nil || !counterpart.Active {
			continue
		}
		prior, err := s.matches.CountPair(ctx, nil, profile.ID, c.CandidateID)
		if err != nil {
			return nil, nil, errs.Database(err)
		}
		features := matching.ComputeFeatures(profile, counterpart, c.BaseScore, int(prior))
		scored = append(scored, matching.ScoredCandidate{
			Candidate: c,
			Features:  features,
			Score:     features.Score(),
		})
	}
	return scored, byID, nil
}

// RunPopulation processes all active, onboarded users in fixed-size batches:
// concurrent within a batch, sequential across batches. One user's failure
// is recorded and the run continues.
func (s *pipelineService) RunPopulation(ctx context.Context) (*PopulationRunResult, error) {
	if s.locker != nil {
		release, acquired, err := s.locker.Acquire(ctx, populationRunLock, s.cfg.RunLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !acquired {
			return nil, fmt.Errorf("population allocation already running")
		}
		defer release()
	}

	users, err := s.profiles.GetActiveOnboarded(ctx, nil)
	if err != nil {
		return nil, errs.Database(err)
	}

	out := &PopulationRunResult{Results: make([]UserRunResult, 0, len(users))}
	var mu sync.Mutex

	for start := 0; start < len(users); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(users) {
			end = len(users)
		}
		batch := users[start:end]

		g, gctx := errgroup.WithContext(ctx)
		for _, user := range batch {
			user := user
			g.Go(func() error {
				res := s.RunForUser(gctx, user.ID)
				mu.Lock()
				out.Results = append(out.Results, res)
				mu.Unlock()
				// Per-user failures are recorded, never propagated, so the
				// rest of the batch keeps going.
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return out, err
		}
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
	}

	for _, r := range out.Results {
		out.Processed++
		if r.Err != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}

	s.log.Info("Population allocation run complete",
		"processed", out.Processed,
		"succeeded", out.Succeeded,
		"failed", out.Failed,
	)
	return out, nil
}

func (s *pipelineService) fail(userID uuid.UUID, stage string, err error) error {
	classified := s.classifier.Classify(err)
	s.log.Error("Allocation stage failed",
		"user_id", userID,
		"stage", stage,
		"kind", classified.Kind,
		"severity", classified.Severity,
		"retryable", classified.Retryable,
		"error", classified,
	)
	return classified
}

func hasEmbeddableContent(p *types.UserProfile) bool {
	for _, c := range types.AllCategories() {
		if len(p.CategoryList(c)) > 0 {
			return true
		}
	}
	return false
}

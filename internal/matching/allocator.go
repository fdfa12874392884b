package matching

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/tandem-backend/internal/platform/logger"
)

type AllocatorConfig struct {
	// WeeklyCap is the most new active matches either party may hold for
	// one allocation week.
	WeeklyCap int
	// PerRunCap is the most matches one run may create for the user.
	PerRunCap int
}

func DefaultAllocatorConfig() AllocatorConfig {
	return AllocatorConfig{WeeklyCap: 3, PerRunCap: 3}
}

// AllocationQueries is the slice of match persistence the allocator needs
// for duplicate and capacity checks.
type AllocationQueries interface {
	ActivePairExists(ctx context.Context, a, b uuid.UUID) (bool, error)
	AllocatedThisWeek(ctx context.Context, userID uuid.UUID, week int) (int, error)
}

// Allocator greedily assigns matches from a diversified, score-ordered
// candidate list. This is a deliberate heuristic, not an optimal capacitated
// bipartite assignment; the greedy semantics are part of the contract.
type Allocator struct {
	log *logger.Logger
	cfg AllocatorConfig
}

func NewAllocator(log *logger.Logger, cfg AllocatorConfig) *Allocator {
	if cfg.WeeklyCap <= 0 {
		cfg.WeeklyCap = DefaultAllocatorConfig().WeeklyCap
	}
	if cfg.PerRunCap <= 0 {
		cfg.PerRunCap = DefaultAllocatorConfig().PerRunCap
	}
	return &Allocator{log: log.With("component", "Allocator"), cfg: cfg}
}

// PerRunCap reports how many matches a single run can create; callers size
// the diversification window to it.
func (a *Allocator) PerRunCap() int {
	return a.cfg.PerRunCap
}

// Allocate walks the ranked list and accepts candidates until the per-run
// cap is hit, skipping duplicates within the run, pairs that already hold an
// active/pending match, and anyone out of weekly capacity on either side.
func (a *Allocator) Allocate(
	ctx context.Context,
	userID uuid.UUID,
	ranked []ScoredCandidate,
	week int,
	q AllocationQueries,
) ([]ScoredCandidate, error) {
	userUsed, err := q.AllocatedThisWeek(ctx, userID, week)
	if err != nil {
		return nil, err
	}
	userRemaining := a.cfg.WeeklyCap - userUsed
	if userRemaining <= 0 {
		a.log.Debug("User already at weekly capacity", "user_id", userID, "week", week)
		return nil, nil
	}

	accepted := make([]ScoredCandidate, 0, a.cfg.PerRunCap)
	usedThisRun := make(map[uuid.UUID]bool)

	for _, c := range ranked {
		if len(accepted) >= a.cfg.PerRunCap || userRemaining <= 0 {
			break
		}
		if usedThisRun[c.CandidateID] {
			continue
		}

		exists, err := q.ActivePairExists(ctx, userID, c.CandidateID)
		if err != nil {
			return nil, err
		}
		if exists {
			usedThisRun[c.CandidateID] = true
			continue
		}

		candUsed, err := q.AllocatedThisWeek(ctx, c.CandidateID, week)
		if err != nil {
			return nil, err
		}
		if a.cfg.WeeklyCap-candUsed <= 0 {
			usedThisRun[c.CandidateID] = true
			continue
		}

		accepted = append(accepted, c)
		usedThisRun[c.CandidateID] = true
		userRemaining--
	}

	return accepted, nil
}

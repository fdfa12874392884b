package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/yungbote/tandem-backend/internal/pkg/errors"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/repos"
	"github.com/yungbote/tandem-backend/internal/types"
)

// MatchService owns match lifecycle after allocation: user-driven
// accept/decline transitions and time-driven expiry. Score and explanation
// are never touched here; they are fixed at creation.
type MatchService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Match, error)
	Accept(ctx context.Context, matchID uuid.UUID) error
	Decline(ctx context.Context, matchID uuid.UUID) error
	// ExpireSweep moves pending matches past their expiry to expired and
	// returns how many moved.
	ExpireSweep(ctx context.Context) (int64, error)
}

type matchService struct {
	log     *logger.Logger
	matches repos.MatchRepo
	now     func() time.Time
}

func NewMatchService(log *logger.Logger, matches repos.MatchRepo) (MatchService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if matches == nil {
		return nil, fmt.Errorf("match repo required")
	}
	return &matchService{
		log:     log.With("service", "MatchService"),
		matches: matches,
		now:     time.Now,
	}, nil
}

func (s *matchService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Match, error) {
	results, err := s.matches.GetForUser(ctx, nil, userID)
	if err != nil {
		return nil, errs.Database(err)
	}
	return results, nil
}

func (s *matchService) Accept(ctx context.Context, matchID uuid.UUID) error {
	return s.transition(ctx, matchID, types.MatchAccepted)
}

func (s *matchService) Decline(ctx context.Context, matchID uuid.UUID) error {
	return s.transition(ctx, matchID, types.MatchDeclined)
}

// transition only ever moves a match out of pending; accepted, declined,
// and expired are terminal for user actions.
func (s *matchService) transition(ctx context.Context, matchID uuid.UUID, to types.MatchStatus) error {
	moved, err := s.matches.UpdateStatus(ctx, nil, matchID, types.MatchPending, to)
	if err != nil {
		return errs.Database(err)
	}
	if !moved {
		return errs.Validation(
			"This match can no longer be updated.",
			fmt.Errorf("match %s not pending", matchID),
		)
	}
	s.log.Info("Match transitioned", "match_id", matchID, "status", to)
	return nil
}

func (s *matchService) ExpireSweep(ctx context.Context) (int64, error) {
	moved, err := s.matches.ExpirePending(ctx, nil, s.now())
	if err != nil {
		return 0, errs.Database(err)
	}
	if moved > 0 {
		s.log.Info("Expired stale pending matches", "count", moved)
	}
	return moved, nil
}

package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/types"
)

var activeStatuses = []types.MatchStatus{types.MatchPending, types.MatchAccepted}

type MatchRepo interface {
	Create(ctx context.Context, tx *gorm.DB, matches []*types.Match) ([]*types.Match, error)
	GetByID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*types.Match, error)
	GetForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Match, error)
	// ActivePairExists answers "does an active/pending match exist for this
	// unordered pair?" — the duplicate guard for allocation.
	ActivePairExists(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) (bool, error)
	// ActiveCounterpartIDs lists everyone the user currently has an
	// active/pending match with, for candidate exclusion.
	ActiveCounterpartIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	// CountAllocatedInWeek counts still-active matches created for the user
	// in the given allocation week, for weekly capacity enforcement.
	CountAllocatedInWeek(ctx context.Context, tx *gorm.DB, userID uuid.UUID, week int) (int64, error)
	// CountPair counts every match the pair has ever had, any status,
	// feeding the novelty penalty.
	CountPair(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, from, to types.MatchStatus) (bool, error)
	ExpirePending(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type matchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMatchRepo(db *gorm.DB, baseLog *logger.Logger) MatchRepo {
	return &matchRepo{db: db, log: baseLog.With("repo", "MatchRepo")}
}

func (r *matchRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts allocation results, canonicalizing each pair. A row whose
// pair already holds an active match lands on the idx_match_active_pair
// unique index and is skipped; only rows actually inserted are returned.
func (r *matchRepo) Create(ctx context.Context, tx *gorm.DB, matches []*types.Match) ([]*types.Match, error) {
	created := make([]*types.Match, 0, len(matches))
	for _, m := range matches {
		m.UserAID, m.UserBID = types.CanonicalPair(m.UserAID, m.UserBID)
		res := r.conn(tx).WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:     []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
				TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "status IN ('pending','accepted')"}}},
				DoNothing:   true,
			}).
			Create(m)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			r.log.Warn("Skipped duplicate active pair",
				"user_a_id", m.UserAID,
				"user_b_id", m.UserBID,
			)
			continue
		}
		created = append(created, m)
	}
	return created, nil
}

func (r *matchRepo) GetByID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*types.Match, error) {
	var result types.Match
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", matchID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *matchRepo) GetForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Match, error) {
	var results []*types.Match
	if err := r.conn(tx).WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *matchRepo) ActivePairExists(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) (bool, error) {
	ca, cb := types.CanonicalPair(a, b)
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Match{}).
		Where("user_a_id = ? AND user_b_id = ? AND status IN ?", ca, cb, activeStatuses).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *matchRepo) ActiveCounterpartIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var results []*types.Match
	if err := r.conn(tx).WithContext(ctx).
		Where("(user_a_id = ? OR user_b_id = ?) AND status IN ?", userID, userID, activeStatuses).
		Find(&results).Error; err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(results))
	for _, m := range results {
		if m.UserAID == userID {
			out = append(out, m.UserBID)
		} else {
			out = append(out, m.UserAID)
		}
	}
	return out, nil
}

func (r *matchRepo) CountAllocatedInWeek(ctx context.Context, tx *gorm.DB, userID uuid.UUID, week int) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Match{}).
		Where("(user_a_id = ? OR user_b_id = ?) AND allocation_week = ? AND status IN ?", userID, userID, week, activeStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *matchRepo) CountPair(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) (int64, error) {
	ca, cb := types.CanonicalPair(a, b)
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Match{}).
		Where("user_a_id = ? AND user_b_id = ?", ca, cb).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatus performs a guarded transition and reports whether a row
// actually moved. A stale `from` loses the race quietly.
func (r *matchRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, from, to types.MatchStatus) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.Match{}).
		Where("id = ? AND status = ?", matchID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *matchRepo) ExpirePending(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.Match{}).
		Where("status = ? AND expires_at < ?", types.MatchPending, now).
		Update("status", types.MatchExpired)
	return res.RowsAffected, res.Error
}

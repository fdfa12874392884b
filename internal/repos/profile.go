package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/types"
)

type ProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profiles []*types.UserProfile) ([]*types.UserProfile, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserProfile, error)
	GetActiveOnboarded(ctx context.Context, tx *gorm.DB) ([]*types.UserProfile, error)
	Save(ctx context.Context, tx *gorm.DB, profile *types.UserProfile) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *profileRepo) Create(ctx context.Context, tx *gorm.DB, profiles []*types.UserProfile) ([]*types.UserProfile, error) {
	if len(profiles) == 0 {
		return []*types.UserProfile{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error) {
	var result types.UserProfile
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *profileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserProfile, error) {
	var results []*types.UserProfile
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *profileRepo) GetActiveOnboarded(ctx context.Context, tx *gorm.DB) ([]*types.UserProfile, error) {
	var results []*types.UserProfile
	if err := r.conn(tx).WithContext(ctx).
		Where("active = ? AND onboarded = ?", true, true).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *profileRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.UserProfile) error {
	return r.conn(tx).WithContext(ctx).Save(profile).Error
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/types"
)

type EmbeddingRepo interface {
	// Upsert writes the current vector for (user, category), replacing any
	// previous one. Keyed writes for different users never conflict, so no
	// locking is needed around concurrent regeneration.
	Upsert(ctx context.Context, tx *gorm.DB, emb *types.ProfileEmbedding) error
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ProfileEmbedding, error)
	GetByUserCategory(ctx context.Context, tx *gorm.DB, userID uuid.UUID, category types.Category) (*types.ProfileEmbedding, error)
	GetAllByCategory(ctx context.Context, tx *gorm.DB, category types.Category) ([]*types.ProfileEmbedding, error)
	MarkStale(ctx context.Context, tx *gorm.DB, userID uuid.UUID, category types.Category) error
}

type embeddingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmbeddingRepo(db *gorm.DB, baseLog *logger.Logger) EmbeddingRepo {
	return &embeddingRepo{db: db, log: baseLog.With("repo", "EmbeddingRepo")}
}

func (r *embeddingRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *embeddingRepo) Upsert(ctx context.Context, tx *gorm.DB, emb *types.ProfileEmbedding) error {
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector", "model", "stale", "updated_at"}),
		}).
		Create(emb).Error
}

func (r *embeddingRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ProfileEmbedding, error) {
	var results []*types.ProfileEmbedding
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *embeddingRepo) GetByUserCategory(ctx context.Context, tx *gorm.DB, userID uuid.UUID, category types.Category) (*types.ProfileEmbedding, error) {
	var result types.ProfileEmbedding
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *embeddingRepo) GetAllByCategory(ctx context.Context, tx *gorm.DB, category types.Category) ([]*types.ProfileEmbedding, error) {
	var results []*types.ProfileEmbedding
	if err := r.conn(tx).WithContext(ctx).
		Where("category = ? AND stale = ?", category, false).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *embeddingRepo) MarkStale(ctx context.Context, tx *gorm.DB, userID uuid.UUID, category types.Category) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.ProfileEmbedding{}).
		Where("user_id = ? AND category = ?", userID, category).
		Update("stale", true).Error
}

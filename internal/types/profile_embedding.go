package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Category is the profile attribute a vector was generated from.
type Category string

const (
	CategoryStrengths Category = "strengths"
	CategoryNeeds     Category = "needs"
	CategoryGoals     Category = "goals"
	CategoryValues    Category = "values"
)

// AllCategories lists every embedded profile attribute in a stable order.
func AllCategories() []Category {
	return []Category{CategoryStrengths, CategoryNeeds, CategoryGoals, CategoryValues}
}

// ProfileEmbedding holds the current vector for one (user, category) pair.
// Regeneration upserts in place; there is never more than one current row.
type ProfileEmbedding struct {
	ID       uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_profile_embedding_user_category,unique,priority:1" json:"user_id"`
	Category Category       `gorm:"column:category;not null;index:idx_profile_embedding_user_category,unique,priority:2" json:"category"`
	Vector   datatypes.JSON `gorm:"column:vector;type:jsonb;not null" json:"vector"` // []float32, unit-normalized
	Model    string         `gorm:"column:model;not null" json:"model"`
	Stale    bool           `gorm:"column:stale;not null;default:false;index" json:"stale"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProfileEmbedding) TableName() string { return "profile_embedding" }

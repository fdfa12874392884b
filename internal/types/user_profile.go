package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Role describes which side of an introduction a user wants to sit on.
type Role string

const (
	RoleGiver  Role = "giver"
	RoleSeeker Role = "seeker"
	RoleBoth   Role = "both"
)

type UserProfile struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Strengths datatypes.JSON `gorm:"column:strengths;type:jsonb" json:"strengths"` // []string
	Needs     datatypes.JSON `gorm:"column:needs;type:jsonb" json:"needs"`         // []string
	Goals     datatypes.JSON `gorm:"column:goals;type:jsonb" json:"goals"`         // []string
	Values    datatypes.JSON `gorm:"column:values_list;type:jsonb" json:"values"`  // []string

	Role                    Role   `gorm:"column:role;not null;default:'both'" json:"role"`
	Location                string `gorm:"column:location" json:"location"`
	WeeklyAvailabilityHours int    `gorm:"column:weekly_availability_hours;not null;default:0" json:"weekly_availability_hours"`
	ReadinessLevel          int    `gorm:"column:readiness_level;not null;default:0" json:"readiness_level"` // 0-10

	Active    bool      `gorm:"column:active;not null;default:true;index" json:"active"`
	Onboarded bool      `gorm:"column:onboarded;not null;default:false;index" json:"onboarded"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MatchReason is the strategy that originally surfaced the counterpart.
type MatchReason string

const (
	ReasonComplementaryStrengths MatchReason = "complementary_strengths"
	ReasonComplementaryNeeds     MatchReason = "complementary_needs"
	ReasonSharedGoals            MatchReason = "shared_goals"
	ReasonAlignedValues          MatchReason = "aligned_values"
)

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchAccepted MatchStatus = "accepted"
	MatchDeclined MatchStatus = "declined"
	MatchExpired  MatchStatus = "expired"
)

// Match is one allocated introduction between an unordered pair of users.
// UserAID/UserBID are stored canonically ordered (see CanonicalPair) so the
// at-most-one-active-match-per-pair invariant is a plain uniqueness check.
// Score and explanation are fixed at creation; a changed profile produces a
// new match in a later allocation cycle, never an edit.
type Match struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserAID uuid.UUID `gorm:"type:uuid;not null;index:idx_match_pair,priority:1;index:idx_match_user_a" json:"user_a_id"`
	UserBID uuid.UUID `gorm:"type:uuid;not null;index:idx_match_pair,priority:2;index:idx_match_user_b" json:"user_b_id"`

	Score       float64     `gorm:"column:score;not null" json:"score"` // [0,1]
	Reason      MatchReason `gorm:"column:reason;not null" json:"reason"`
	Explanation string      `gorm:"column:explanation;type:text" json:"explanation"`
	EvidenceA   string      `gorm:"column:evidence_a" json:"evidence_a"`
	EvidenceB   string      `gorm:"column:evidence_b" json:"evidence_b"`
	Confidence  float64     `gorm:"column:confidence;not null" json:"confidence"` // [0.1,0.95]
	Features    datatypes.JSON `gorm:"column:features;type:jsonb" json:"features,omitempty"`

	Status         MatchStatus `gorm:"column:status;not null;default:'pending';index" json:"status"`
	AllocationWeek int         `gorm:"column:allocation_week;not null;index" json:"allocation_week"`
	ExpiresAt      time.Time   `gorm:"column:expires_at;not null" json:"expires_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Match) TableName() string { return "match" }

// Active reports whether the match still blocks a new allocation for its pair.
func (m *Match) Active() bool {
	return m.Status == MatchPending || m.Status == MatchAccepted
}

// CanonicalPair orders two user IDs deterministically so an unordered pair
// always maps to the same (UserAID, UserBID) columns.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) <= 0 {
		return a, b
	}
	return b, a
}

// AllocationWeekOf encodes a timestamp's ISO week as year*100+week, the key
// used for weekly capacity accounting.
func AllocationWeekOf(t time.Time) int {
	year, week := t.UTC().ISOWeek()
	return year*100 + week
}

package matching

import (
	"strings"

	"github.com/yungbote/tandem-backend/internal/types"
)

// FeatureVector holds the named signals computed for one (user, candidate)
// pair. It is serialized into the resulting match's audit column and never
// persisted on its own.
type FeatureVector struct {
	BaseSimilarity          float64 `json:"base_similarity"`
	NeedStrengthReciprocity float64 `json:"need_strength_reciprocity"`
	StrengthNeedReciprocity float64 `json:"strength_need_reciprocity"`
	ReadinessGap            float64 `json:"readiness_gap"`
	AvailabilityOverlap     float64 `json:"availability_overlap"`
	LocationBonus           float64 `json:"location_bonus"`
	RoleCompatibility       float64 `json:"role_compatibility"`
	TagOverlap              float64 `json:"tag_overlap"`
	ReputationScore         float64 `json:"reputation_score"`
	NoveltyPenalty          float64 `json:"novelty_penalty"`
}

// Fixed linear-model weights. ReadinessGap and NoveltyPenalty count against
// the pair; everything else counts for it. The combined score is clamped to
// [0,1] whatever the feature extremes.
const (
	weightBaseSimilarity      = 0.25
	weightNeedStrengthRecip   = 0.15
	weightStrengthNeedRecip   = 0.15
	weightReadinessGap        = -0.03
	weightAvailabilityOverlap = 0.01
	weightLocationBonus       = 0.05
	weightRoleCompatibility   = 0.10
	weightTagOverlap          = 0.10
	weightReputationScore     = 0.05
	weightNoveltyPenalty      = -0.15
)

// reputationDefault is a placeholder until a reputation subsystem exists.
const reputationDefault = 0.5

// ComputeFeatures derives the feature vector for a pair. priorMatches is the
// number of matches the pair has had before, feeding the novelty penalty.
func ComputeFeatures(user, candidate *types.UserProfile, baseScore float64, priorMatches int) FeatureVector {
	userNeeds := normalizeTags(types.StringList(user.Needs))
	userStrengths := normalizeTags(types.StringList(user.Strengths))
	candNeeds := normalizeTags(types.StringList(candidate.Needs))
	candStrengths := normalizeTags(types.StringList(candidate.Strengths))

	novelty := float64(priorMatches) / 10.0
	if novelty > 1 {
		novelty = 1
	}

	return FeatureVector{
		BaseSimilarity:          baseScore,
		NeedStrengthReciprocity: jaccard(userNeeds, candStrengths),
		StrengthNeedReciprocity: jaccard(userStrengths, candNeeds),
		ReadinessGap:            absInt(user.ReadinessLevel - candidate.ReadinessLevel),
		AvailabilityOverlap:     float64(minInt(user.WeeklyAvailabilityHours, candidate.WeeklyAvailabilityHours)),
		LocationBonus:           locationBonus(user.Location, candidate.Location),
		RoleCompatibility:       roleCompatibility(user.Role, candidate.Role),
		TagOverlap:              jaccard(allTags(user), allTags(candidate)),
		ReputationScore:         reputationDefault,
		NoveltyPenalty:          novelty,
	}
}

// Score reduces the feature vector to one linear score clamped to [0,1].
func (f FeatureVector) Score() float64 {
	s := weightBaseSimilarity*f.BaseSimilarity +
		weightNeedStrengthRecip*f.NeedStrengthReciprocity +
		weightStrengthNeedRecip*f.StrengthNeedReciprocity +
		weightReadinessGap*f.ReadinessGap +
		weightAvailabilityOverlap*f.AvailabilityOverlap +
		weightLocationBonus*f.LocationBonus +
		weightRoleCompatibility*f.RoleCompatibility +
		weightTagOverlap*f.TagOverlap +
		weightReputationScore*f.ReputationScore +
		weightNoveltyPenalty*f.NoveltyPenalty
	return clamp01(s)
}

func locationBonus(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a != "" && a == b {
		return 1
	}
	return 0
}

// roleCompatibility favors complementary giver/seeker pairings, treats
// "both" as universally compatible, and tolerates identical roles.
func roleCompatibility(a, b types.Role) float64 {
	if a == types.RoleBoth || b == types.RoleBoth {
		return 1
	}
	if (a == types.RoleGiver && b == types.RoleSeeker) || (a == types.RoleSeeker && b == types.RoleGiver) {
		return 1
	}
	if a == b {
		return 0.5
	}
	return 0.2
}

func allTags(p *types.UserProfile) []string {
	var tags []string
	tags = append(tags, types.StringList(p.Strengths)...)
	tags = append(tags, types.StringList(p.Needs)...)
	tags = append(tags, types.StringList(p.Goals)...)
	tags = append(tags, types.StringList(p.Values)...)
	return normalizeTags(tags)
}

func normalizeTags(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// jaccard computes |A∩B| / |A∪B| over normalized tag sets.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	inter := 0
	for s := range setA {
		if setB[s] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func absInt(v int) float64 {
	if v < 0 {
		v = -v
	}
	return float64(v)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

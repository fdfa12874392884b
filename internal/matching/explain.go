package matching

import (
	"fmt"

	"github.com/yungbote/tandem-backend/internal/types"
)

// Explanation is the human-readable rationale attached to a match at
// creation. Immutable once written.
type Explanation struct {
	Narrative  string
	EvidenceA  string
	EvidenceB  string
	Confidence float64
}

const (
	confidenceFloor   = 0.1
	confidenceCeiling = 0.95
)

// Explain derives evidence snippets and a templated narrative for an
// allocated pair. Confidence tracks the base similarity, clamped so the UI
// never shows certainty the model does not have.
func Explain(user, candidate *types.UserProfile, sc ScoredCandidate) Explanation {
	evA, evB := evidence(user, candidate, sc.Reason)

	var narrative string
	switch sc.Reason {
	case types.ReasonComplementaryStrengths:
		narrative = fmt.Sprintf(
			"You mentioned needing help with %q, and they bring strength in %q. Complementary needs and strengths tend to make the most productive introductions.",
			evA, evB,
		)
	case types.ReasonComplementaryNeeds:
		narrative = fmt.Sprintf(
			"Your strength in %q lines up with something they are looking for: %q. Being able to help is as strong a reason to meet as being helped.",
			evA, evB,
		)
	case types.ReasonSharedGoals:
		narrative = fmt.Sprintf(
			"You are both working toward similar goals (%q and %q). People heading the same direction make natural accountability partners.",
			evA, evB,
		)
	case types.ReasonAlignedValues:
		narrative = fmt.Sprintf(
			"You both care about similar things (%q and %q). Shared values make early conversations easier.",
			evA, evB,
		)
	default:
		narrative = "Your profiles suggest a strong overall fit across goals, strengths, and availability."
	}

	return Explanation{
		Narrative:  narrative,
		EvidenceA:  evA,
		EvidenceB:  evB,
		Confidence: clampRange(sc.Similarity, confidenceFloor, confidenceCeiling),
	}
}

// evidence picks one representative string from each side for the reason
// that surfaced the candidate, falling back across categories when a list
// is empty.
func evidence(user, candidate *types.UserProfile, reason types.MatchReason) (string, string) {
	switch reason {
	case types.ReasonComplementaryStrengths:
		return firstOf(user, types.CategoryNeeds), firstOf(candidate, types.CategoryStrengths)
	case types.ReasonComplementaryNeeds:
		return firstOf(user, types.CategoryStrengths), firstOf(candidate, types.CategoryNeeds)
	case types.ReasonSharedGoals:
		return firstOf(user, types.CategoryGoals), firstOf(candidate, types.CategoryGoals)
	case types.ReasonAlignedValues:
		return firstOf(user, types.CategoryValues), firstOf(candidate, types.CategoryValues)
	}
	return firstOf(user, types.CategoryGoals), firstOf(candidate, types.CategoryGoals)
}

func firstOf(p *types.UserProfile, preferred types.Category) string {
	order := []types.Category{preferred, types.CategoryGoals, types.CategoryStrengths, types.CategoryNeeds, types.CategoryValues}
	for _, c := range order {
		if items := p.CategoryList(c); len(items) > 0 {
			return items[0]
		}
	}
	return "your profile"
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package matching

import (
	"strings"
	"testing"

	"github.com/yungbote/tandem-backend/internal/types"
)

func TestExplainComplementaryStrengthsEvidence(t *testing.T) {
	user := profileWith(types.RoleSeeker, "", 5, 5, nil, []string{"public speaking"}, nil, nil)
	cand := profileWith(types.RoleGiver, "", 5, 5, []string{"presentation coaching"}, nil, nil, nil)

	sc := ScoredCandidate{
		Candidate: Candidate{
			UserID:      user.ID,
			CandidateID: cand.ID,
			Reason:      types.ReasonComplementaryStrengths,
			Similarity:  0.8,
		},
		Score: 0.7,
	}
	exp := Explain(user, cand, sc)

	if exp.EvidenceA != "public speaking" {
		t.Fatalf("EvidenceA = %q, want the user's need", exp.EvidenceA)
	}
	if exp.EvidenceB != "presentation coaching" {
		t.Fatalf("EvidenceB = %q, want the candidate's strength", exp.EvidenceB)
	}
	if !strings.Contains(exp.Narrative, "public speaking") || !strings.Contains(exp.Narrative, "presentation coaching") {
		t.Fatalf("narrative should quote both evidence strings: %q", exp.Narrative)
	}
}

func TestExplainSharedGoalsEvidence(t *testing.T) {
	user := profileWith(types.RoleBoth, "", 5, 5, nil, nil, []string{"run a marathon"}, nil)
	cand := profileWith(types.RoleBoth, "", 5, 5, nil, nil, []string{"finish a triathlon"}, nil)

	sc := ScoredCandidate{
		Candidate: Candidate{Reason: types.ReasonSharedGoals, Similarity: 0.6},
	}
	exp := Explain(user, cand, sc)

	if exp.EvidenceA != "run a marathon" || exp.EvidenceB != "finish a triathlon" {
		t.Fatalf("evidence = (%q, %q), want both goals", exp.EvidenceA, exp.EvidenceB)
	}
}

func TestExplainConfidenceClamped(t *testing.T) {
	user := profileWith(types.RoleBoth, "", 5, 5, nil, nil, []string{"a"}, nil)
	cand := profileWith(types.RoleBoth, "", 5, 5, nil, nil, []string{"b"}, nil)

	low := Explain(user, cand, ScoredCandidate{Candidate: Candidate{Reason: types.ReasonSharedGoals, Similarity: 0.01}})
	if low.Confidence != 0.1 {
		t.Fatalf("low confidence = %v, want floor 0.1", low.Confidence)
	}

	high := Explain(user, cand, ScoredCandidate{Candidate: Candidate{Reason: types.ReasonSharedGoals, Similarity: 0.99}})
	if high.Confidence != 0.95 {
		t.Fatalf("high confidence = %v, want ceiling 0.95", high.Confidence)
	}

	mid := Explain(user, cand, ScoredCandidate{Candidate: Candidate{Reason: types.ReasonSharedGoals, Similarity: 0.62}})
	if mid.Confidence != 0.62 {
		t.Fatalf("in-range confidence = %v, want passthrough 0.62", mid.Confidence)
	}
}

func TestExplainEvidenceFallbackAcrossCategories(t *testing.T) {
	// Values are empty on both sides: evidence should fall back to another
	// populated category instead of an empty string.
	user := profileWith(types.RoleBoth, "", 5, 5, []string{"mentoring"}, nil, nil, nil)
	cand := profileWith(types.RoleBoth, "", 5, 5, nil, nil, []string{"grow a network"}, nil)

	exp := Explain(user, cand, ScoredCandidate{Candidate: Candidate{Reason: types.ReasonAlignedValues, Similarity: 0.5}})
	if exp.EvidenceA == "" || exp.EvidenceB == "" {
		t.Fatalf("evidence must never be empty: (%q, %q)", exp.EvidenceA, exp.EvidenceB)
	}
	if exp.EvidenceA != "mentoring" {
		t.Fatalf("EvidenceA = %q, want fallback to the populated category", exp.EvidenceA)
	}
}

func TestExplainEmptyProfilesUsePlaceholder(t *testing.T) {
	user := profileWith(types.RoleBoth, "", 5, 5, nil, nil, nil, nil)
	cand := profileWith(types.RoleBoth, "", 5, 5, nil, nil, nil, nil)

	exp := Explain(user, cand, ScoredCandidate{Candidate: Candidate{Reason: types.ReasonSharedGoals, Similarity: 0.5}})
	if exp.EvidenceA != "your profile" || exp.EvidenceB != "your profile" {
		t.Fatalf("empty profiles should yield placeholder evidence, got (%q, %q)", exp.EvidenceA, exp.EvidenceB)
	}
}

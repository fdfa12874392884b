package matching

import (
	"math"
	"math/rand"
	"sort"

	"github.com/yungbote/tandem-backend/internal/types"
)

// ScoredCandidate couples a candidate with its computed features and final
// linear score, ready for diversification and allocation.
type ScoredCandidate struct {
	Candidate
	Features FeatureVector
	Score    float64
}

// SortByScore orders candidates by descending score with a deterministic
// ID tiebreak.
func SortByScore(cands []ScoredCandidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].CandidateID.String() < cands[j].CandidateID.String()
	})
}

// Diversify reorders a score-sorted list so that the first slots entries mix
// exploitation with exploration: ceil(slots * explorationFraction) of them
// are reserved for the highest-scored candidates whose match reason is not
// already represented in the window, drawn from the whole pool. The window
// feeds the allocator, so exploration picks have to land inside it to ever
// become matches. Once every reason in the pool is covered, leftover
// exploration slots fall back to random picks. The result has the same
// length and members as the input.
func Diversify(sorted []ScoredCandidate, slots int, explorationFraction float64, rng *rand.Rand) []ScoredCandidate {
	n := len(sorted)
	if n == 0 {
		return nil
	}
	out := make([]ScoredCandidate, n)
	copy(out, sorted)
	if explorationFraction <= 0 || slots <= 0 {
		return out
	}
	if explorationFraction > 1 {
		explorationFraction = 1
	}
	if slots > n {
		slots = n
	}

	exploreSlots := int(math.Ceil(float64(slots) * explorationFraction))
	if exploreSlots >= slots {
		exploreSlots = slots - 1
	}
	exploitCount := slots - exploreSlots

	picked := make([]ScoredCandidate, 0, n)
	used := make(map[int]bool, n)
	seenReasons := make(map[types.MatchReason]bool)

	for i := 0; i < exploitCount; i++ {
		picked = append(picked, out[i])
		used[i] = true
		seenReasons[out[i].Reason] = true
	}

	// Exploration scans the whole pool top-down for the best candidate with
	// an unseen reason, so a lower-scored reason can displace a redundant
	// top-scored one inside the window.
	for e := 0; e < exploreSlots; e++ {
		idx := -1
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			if !seenReasons[out[i].Reason] {
				idx = i
				break
			}
		}
		if idx < 0 {
			remaining := make([]int, 0, n-len(picked))
			for i := 0; i < n; i++ {
				if !used[i] {
					remaining = append(remaining, i)
				}
			}
			idx = remaining[rng.Intn(len(remaining))]
		}
		picked = append(picked, out[idx])
		used[idx] = true
		seenReasons[out[idx].Reason] = true
	}

	// Everyone outside the window keeps score order.
	for i := 0; i < n; i++ {
		if !used[i] {
			picked = append(picked, out[i])
		}
	}
	return picked
}

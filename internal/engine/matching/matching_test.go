// internal/engine/matching/matching_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/models"
)

// ==========================
// Blossom Algorithm Tests
// ==========================

func TestMaxWeightMatching_Basics(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		edges    []Edge
		expected []int
	}{
		{
			name:     "empty graph",
			n:        3,
			edges:    nil,
			expected: []int{-1, -1, -1},
		},
		{
			name:     "single edge",
			n:        2,
			edges:    []Edge{{0, 1, 7}},
			expected: []int{1, 0},
		},
		{
			name: "triangle picks the heaviest edge",
			n:    3,
			edges: []Edge{
				{0, 1, 10}, {1, 2, 11}, {0, 2, 12},
			},
			expected: []int{2, -1, 0},
		},
		{
			name: "cardinality beats a single heavy edge",
			n:    4,
			edges: []Edge{
				{0, 1, 1}, {1, 2, 10}, {2, 3, 1},
			},
			expected: []int{1, 0, 3, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaxWeightMatching(tt.n, tt.edges, true))
		})
	}
}

func TestMaxWeightMatching_BlossomFormation(t *testing.T) {
	// Odd cycle 1-2-3 with a pendant; the blossom must be contracted and
	// later augmented through.
	edges := []Edge{
		{1, 2, 8}, {1, 3, 9}, {2, 3, 10}, {3, 4, 7},
	}
	mate := MaxWeightMatching(5, edges, true)
	assert.Equal(t, []int{-1, 2, 1, 4, 3}, mate)
}

func TestMaxWeightMatching_NestedAugmentation(t *testing.T) {
	edges := []Edge{
		{1, 2, 8}, {1, 3, 9}, {2, 3, 10}, {3, 4, 7}, {1, 6, 5}, {4, 5, 6},
	}
	mate := MaxWeightMatching(7, edges, true)
	assert.Equal(t, []int{-1, 6, 3, 2, 5, 4, 1}, mate)
}

func TestMaxWeightMatching_IsValidMatching(t *testing.T) {
	edges := []Edge{
		{0, 1, 6}, {0, 2, 10}, {1, 2, 5}, {1, 3, 4}, {2, 4, 8}, {3, 4, 3}, {3, 5, 9}, {4, 5, 7},
	}
	mate := MaxWeightMatching(6, edges, true)

	for v, m := range mate {
		if m == -1 {
			continue
		}
		assert.Equal(t, v, mate[m], "matching must be an involution")
		assert.NotEqual(t, v, m, "no self-matches")
	}
}

// ==========================
// Solver Tests
// ==========================

func pairScore(a, b string, combined float64) models.PairScore {
	return models.PairScore{
		UserA:    models.UserID(a),
		UserB:    models.UserID(b),
		Combined: combined,
	}
}

func TestSolver_PrefersTotalScoreOverGreedy(t *testing.T) {
	solver := NewSolver()
	users := []models.UserID{"alice", "bob", "carol", "dan"}

	// A greedy matcher grabs bob/carol at 90 and strands the other two;
	// the optimal assignment pairs everyone.
	eligible := []models.PairScore{
		pairScore("alice", "bob", 80),
		pairScore("bob", "carol", 90),
		pairScore("carol", "dan", 80),
	}

	assignments, unmatched := solver.Solve(users, eligible)
	require.Len(t, assignments, 2)
	assert.Empty(t, unmatched)

	total := 0.0
	matched := map[models.UserID]bool{}
	for _, a := range assignments {
		total += a.Score
		assert.False(t, matched[a.UserA], "user assigned twice")
		assert.False(t, matched[a.UserB], "user assigned twice")
		matched[a.UserA] = true
		matched[a.UserB] = true
	}
	assert.InDelta(t, 160.0, total, 1e-9)
}

func TestSolver_UnmatchedUsersAreReported(t *testing.T) {
	solver := NewSolver()
	users := []models.UserID{"alice", "bob", "carol"}

	eligible := []models.PairScore{pairScore("alice", "bob", 70)}

	assignments, unmatched := solver.Solve(users, eligible)
	require.Len(t, assignments, 1)
	assert.Equal(t, []models.UserID{"carol"}, unmatched)
}

func TestSolver_NoEligibleEdgesIsAValidRun(t *testing.T) {
	solver := NewSolver()
	users := []models.UserID{"alice", "bob"}

	assignments, unmatched := solver.Solve(users, nil)
	assert.Empty(t, assignments)
	assert.ElementsMatch(t, []models.UserID{"alice", "bob"}, unmatched)
}

func TestSolver_DeterministicUnderInputOrder(t *testing.T) {
	solver := NewSolver()

	eligible := []models.PairScore{
		pairScore("alice", "bob", 75),
		pairScore("carol", "dan", 75),
		pairScore("alice", "carol", 75),
		pairScore("bob", "dan", 75),
	}
	reversed := []models.PairScore{eligible[3], eligible[2], eligible[1], eligible[0]}

	users := []models.UserID{"dan", "alice", "carol", "bob"}
	first, _ := solver.Solve(users, eligible)
	second, _ := solver.Solve([]models.UserID{"alice", "bob", "carol", "dan"}, reversed)

	assert.Equal(t, first, second)
}

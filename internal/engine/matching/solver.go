// internal/engine/matching/solver.go
package matching

import (
	"sort"

	"match-engine/internal/models"
)

// weightScale converts 0-100 float scores to integer edge weights while
// preserving enough precision that ties in the solver mirror ties in the
// scores.
const weightScale = 1e6

// Solver assigns users to disjoint pairs maximizing total pair score.
type Solver struct{}

func NewSolver() *Solver {
	return &Solver{}
}

// Solve runs maximum weight matching over the eligible dyads. users is the
// full run population; anyone without an assignment comes back in the
// unmatched list. Input order does not matter, vertex numbering is fixed
// by sorted user id.
func (s *Solver) Solve(users []models.UserID, eligible []models.PairScore) ([]models.MatchAssignment, []models.UserID) {
	ids := append([]models.UserID(nil), users...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	index := make(map[models.UserID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	edges := make([]Edge, 0, len(eligible))
	for _, ps := range eligible {
		u, okU := index[ps.UserA]
		v, okV := index[ps.UserB]
		if !okU || !okV || u == v {
			continue
		}
		edges = append(edges, Edge{U: u, V: v, Weight: int64(ps.Combined * weightScale)})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		return edges[i].V < edges[j].V
	})

	scores := make(map[[2]int]float64, len(eligible))
	for _, ps := range eligible {
		u, v := index[ps.UserA], index[ps.UserB]
		if u > v {
			u, v = v, u
		}
		scores[[2]int{u, v}] = ps.Combined
	}

	mate := MaxWeightMatching(len(ids), edges, true)

	var assignments []models.MatchAssignment
	var unmatched []models.UserID
	for i, m := range mate {
		if m == -1 {
			unmatched = append(unmatched, ids[i])
			continue
		}
		if m < i {
			continue
		}
		assignments = append(assignments, models.MatchAssignment{
			UserA: ids[i],
			UserB: ids[m],
			Score: scores[[2]int{i, m}],
		})
	}
	return assignments, unmatched
}

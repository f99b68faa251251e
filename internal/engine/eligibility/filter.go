// internal/engine/eligibility/filter.go
package eligibility

import (
	"fmt"

	"match-engine/internal/common/config"
	"match-engine/internal/models"
)

// Ineligibility reasons surfaced in run diagnostics.
const (
	ReasonBelowMinScore  = "below_min_score"
	ReasonBelowFloorForA = "below_relative_floor_a"
	ReasonBelowFloorForB = "below_relative_floor_b"
)

// Result records one eligibility decision for a scored dyad. Each
// threshold is reported independently; Reasons carries one entry per
// failed threshold, in the order min score, floor for A, floor for B.
type Result struct {
	UserA          models.UserID
	UserB          models.UserID
	Eligible       bool
	MeetsMinScore  bool
	MeetsFloorForA bool
	MeetsFloorForB bool
	Reasons        []string
}

// Filter gates scored dyads before they become matching-graph edges.
type Filter struct {
	cfg config.EngineConfig
}

func NewFilter(cfg config.EngineConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Check applies the absolute minimum and both relative floors. The
// absolute floor gates the combined score; the relative floors gate each
// direction against the owner's best combined score across all their
// scored dyads in this run. All three thresholds are evaluated, so a
// dyad failing more than one reports every failure. Thresholds are
// inclusive: a score exactly at the floor passes.
func (f *Filter) Check(ps models.PairScore, bestA, bestB float64) Result {
	res := Result{UserA: ps.UserA, UserB: ps.UserB}

	res.MeetsMinScore = ps.Combined >= f.cfg.MinPairScore
	if !res.MeetsMinScore {
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("%s: %.1f < %.1f", ReasonBelowMinScore, ps.Combined, f.cfg.MinPairScore))
	}

	floorA := f.cfg.RelativeFloor * bestA
	res.MeetsFloorForA = ps.AToB >= floorA
	if !res.MeetsFloorForA {
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("%s: %.1f < %.1f", ReasonBelowFloorForA, ps.AToB, floorA))
	}

	floorB := f.cfg.RelativeFloor * bestB
	res.MeetsFloorForB = ps.BToA >= floorB
	if !res.MeetsFloorForB {
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("%s: %.1f < %.1f", ReasonBelowFloorForB, ps.BToA, floorB))
	}

	res.Eligible = res.MeetsMinScore && res.MeetsFloorForA && res.MeetsFloorForB
	return res
}

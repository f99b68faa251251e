// internal/engine/scoring/pairscore.go
package scoring

import (
	"math"
	"sort"

	"match-engine/internal/common/config"
	"match-engine/internal/models"
)

// BuildPairScore merges two directional scores into one symmetric pair
// score. The alpha-weighted min term is a mutuality penalty: a dyad where
// one side loves the outcome and the other is indifferent scores lower than
// the naive average. Diagnostics never affect the score.
func BuildPairScore(cfg config.EngineConfig, ab, ba models.DirectionalScore) models.PairScore {
	lo := math.Min(ab.Total, ba.Total)
	hi := math.Max(ab.Total, ba.Total)
	mean := (ab.Total + ba.Total) / 2

	combined := cfg.PairScoreAlpha*lo + (1-cfg.PairScoreAlpha)*mean

	penalty := 0.0
	if hi > 0 {
		penalty = (hi - combined) / hi
	}

	ps := models.PairScore{
		UserA:            ab.Evaluator,
		UserB:            ba.Evaluator,
		AToB:             ab.Total,
		BToA:             ba.Total,
		Combined:         combined,
		MutualityPenalty: penalty,
	}

	ps.LowestQuestions = lowestQuestions(ab.PerQuestion, ba.PerQuestion, cfg.DiagnosticsTop)
	ps.MostAsymmetric = mostAsymmetric(ab.PerQuestion, ba.PerQuestion, cfg.DiagnosticsTop)
	return ps
}

// lowestQuestions collects the n lowest symmetric per-question similarity
// values, ascending, ties broken by question id for determinism.
func lowestQuestions(ab, ba map[string]float64, n int) []models.QuestionDiagnostic {
	out := make([]models.QuestionDiagnostic, 0, len(ab))
	for qid, satA := range ab {
		satB, ok := ba[qid]
		if !ok {
			continue
		}
		out = append(out, models.QuestionDiagnostic{
			QuestionID: qid,
			Value:      (satA + satB) / 2,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].QuestionID < out[j].QuestionID
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// mostAsymmetric collects the n largest cross-direction satisfaction
// differences, descending.
func mostAsymmetric(ab, ba map[string]float64, n int) []models.QuestionDiagnostic {
	out := make([]models.QuestionDiagnostic, 0, len(ab))
	for qid, satA := range ab {
		satB, ok := ba[qid]
		if !ok {
			continue
		}
		diff := math.Abs(satA - satB)
		if diff == 0 {
			continue
		}
		out = append(out, models.QuestionDiagnostic{QuestionID: qid, Value: diff})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].QuestionID < out[j].QuestionID
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

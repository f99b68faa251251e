// internal/engine/scoring/aggregator.go
package scoring

import (
	"match-engine/internal/common/config"
	"match-engine/internal/engine/similarity"
	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

// Aggregator combines per-question satisfaction with importance and section
// weights into one directional 0-100 score.
type Aggregator struct {
	cfg  config.EngineConfig
	reg  *registry.Registry
	calc *similarity.Calculator
}

func NewAggregator(cfg config.EngineConfig, reg *registry.Registry, calc *similarity.Calculator) *Aggregator {
	return &Aggregator{cfg: cfg, reg: reg, calc: calc}
}

// Directional computes the evaluator's one-way score of the partner. Only
// questions the evaluator answered enter the aggregation; each satisfaction
// term is multiplied by the evaluator's importance weight and section
// averages divide by the sum of weights actually applied, not by question
// count.
func (g *Aggregator) Directional(evaluator, partner *models.User) models.DirectionalScore {
	ds := models.DirectionalScore{
		Evaluator:   evaluator.ID,
		Partner:     partner.ID,
		PerQuestion: make(map[string]float64),
		Sections:    make(map[string]float64),
	}

	numerator := map[registry.Section]float64{}
	denominator := map[registry.Section]float64{}

	for _, q := range g.reg.All() {
		if q.HardFilter() || q.Type == registry.TypeAgeRange {
			continue
		}

		resp := evaluator.Response(q.ID)
		if resp == nil || resp.Answer == nil {
			continue
		}
		// Dealbreaker questions are enforced as hard vetoes during
		// prefiltering, never as weighted signals.
		if resp.Dealbreaker {
			continue
		}

		sat, _ := g.calc.Satisfactions(q, resp, partner.Response(q.ID))
		ds.PerQuestion[q.ID] = sat

		weight := g.importanceWeight(resp.Importance)
		numerator[q.Section] += sat * weight
		denominator[q.Section] += weight
	}

	// Combine section averages with the configured section weights,
	// renormalizing over the sections that actually carried weight.
	weightedSum, weightTotal := 0.0, 0.0
	for section, sectionWeight := range g.cfg.SectionWeights {
		den := denominator[registry.Section(section)]
		if den == 0 {
			continue
		}
		avg := numerator[registry.Section(section)] / den
		ds.Sections[section] = avg
		weightedSum += sectionWeight * avg
		weightTotal += sectionWeight
	}

	if weightTotal == 0 {
		ds.Total = g.cfg.NeutralScore * 100
		return ds
	}
	ds.Total = weightedSum / weightTotal * 100
	return ds
}

func (g *Aggregator) importanceWeight(imp models.Importance) float64 {
	if w, ok := g.cfg.ImportanceWeights[string(imp)]; ok {
		return w
	}
	// Unknown importance values degrade to the ordinary weight.
	return g.cfg.ImportanceWeights[config.ImportanceImportant]
}

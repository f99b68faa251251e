// internal/engine/similarity/scales.go
package similarity

import (
	"fmt"
	"math"

	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

// numericInterval scores a fixed Likert question: 1 - |a-b| / (max-min).
// Symmetric; preferences play no role.
func (c *Calculator) numericInterval(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	va, okA := numberOf(a)
	vb, okB := numberOf(b)
	if !okA || !okB {
		return c.neutralMalformed(q, "numeric answer expected")
	}

	span := q.ScaleMax - q.ScaleMin
	if span <= 0 {
		return c.neutralMalformed(q, fmt.Sprintf("degenerate scale [%v,%v]", q.ScaleMin, q.ScaleMax))
	}
	sim := clamp01(1 - math.Abs(va-vb)/span)
	return sim, sim
}

// ordinal maps both answers through the question's encoding table. An
// uncertain sentinel on either side yields the configured uncertainty
// penalty, a deliberately lower constant than the neutral value.
func (c *Calculator) ordinal(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	ta, okA := textOf(a)
	tb, okB := textOf(b)
	if !okA || !okB {
		return c.neutralMalformed(q, "text answer expected")
	}

	if q.UncertainValues[ta] || q.UncertainValues[tb] {
		return c.cfg.UncertaintyPenalty, c.cfg.UncertaintyPenalty
	}

	encA, okA := q.Ordinal[ta]
	encB, okB := q.Ordinal[tb]
	if !okA || !okB {
		return c.neutralMalformed(q, fmt.Sprintf("value not in encoding table: %q / %q", ta, tb))
	}

	span := q.OrdinalRange()
	satA := ordinalSatisfaction(a.Preference, encA, encB, span)
	satB := ordinalSatisfaction(b.Preference, encB, encA, span)
	return satA, satB
}

func ordinalSatisfaction(pref models.Preference, own, partner, span int) float64 {
	if pref.IsNone() || pref.Kind != models.PrefText {
		return 1.0
	}
	switch pref.Text {
	case models.PrefSame:
		if own == partner {
			return 1.0
		}
		return 0.0
	case models.PrefSimilar:
		if span <= 0 {
			return 1.0
		}
		return clamp01(1 - float64(abs(own-partner))/float64(span))
	default:
		return 1.0
	}
}

// categoricalExact is the hard-filter style single accepted value: equal or
// nothing.
func (c *Calculator) categoricalExact(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	ta, okA := textOf(a)
	tb, okB := textOf(b)
	if !okA || !okB {
		return c.neutralMalformed(q, "text answer expected")
	}
	if ta == tb {
		return 1, 1
	}
	return 0, 0
}

// binary is exact equality over the two-valued answer.
func (c *Calculator) binary(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	if a.Answer.Kind != b.Answer.Kind {
		return c.neutralMalformed(q, "mismatched answer shapes")
	}
	equal := false
	switch a.Answer.Kind {
	case models.AnswerText:
		equal = a.Answer.Text == b.Answer.Text
	case models.AnswerNumber:
		equal = a.Answer.Number == b.Answer.Number
	default:
		return c.neutralMalformed(q, "binary answer must be text or number")
	}
	if equal {
		return 1, 1
	}
	return 0, 0
}

// sameSimilar computes the raw numeric similarity and maps it through the
// evaluator's preference-specific response curve.
func (c *Calculator) sameSimilar(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	va, okA := scaledValue(q, a)
	vb, okB := scaledValue(q, b)
	if !okA || !okB {
		return c.neutralMalformed(q, "scalable answer expected")
	}

	span := scaleSpan(q)
	if span <= 0 {
		return c.neutralMalformed(q, "degenerate scale")
	}
	raw := clamp01(1 - math.Abs(va-vb)/span)

	return sameSimilarCurve(a.Preference, raw), sameSimilarCurve(b.Preference, raw)
}

// sameSimilarCurve maps raw similarity through the preference response
// curve: "same" rewards raw >= 0.8, "different" rewards raw <= 0.4,
// "similar" passes raw through unchanged.
func sameSimilarCurve(pref models.Preference, raw float64) float64 {
	if pref.IsNone() || pref.Kind != models.PrefText {
		return 1.0
	}
	switch pref.Text {
	case models.PrefSame:
		if raw >= 0.8 {
			return 1.0
		}
		return raw / 0.8
	case models.PrefDifferent:
		if raw <= 0.4 {
			return 1.0
		}
		return (1 - raw) / 0.6
	case models.PrefSimilar:
		return raw
	default:
		return 1.0
	}
}

// directional compares the partner's answer against the evaluator's own on
// an ordered scale. Two historical variants exist; the active one is chosen
// by configuration as a named strategy (see DirectionalStrategy).
func (c *Calculator) directional(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	va, okA := scaledValue(q, a)
	vb, okB := scaledValue(q, b)
	if !okA || !okB {
		return c.neutralMalformed(q, "scalable answer expected")
	}

	span := scaleSpan(q)
	raw := 1.0
	if span > 0 {
		raw = clamp01(1 - math.Abs(va-vb)/span)
	}

	return c.directionalSatisfaction(a.Preference, va, vb, raw),
		c.directionalSatisfaction(b.Preference, vb, va, raw)
}

func (c *Calculator) directionalSatisfaction(pref models.Preference, own, partner, raw float64) float64 {
	if pref.IsNone() || pref.Kind != models.PrefText {
		return 1.0
	}

	var met bool
	switch pref.Text {
	case models.PrefMore:
		met = partner > own
	case models.PrefLess:
		met = partner < own
	case models.PrefSame:
		met = partner == own
	case models.PrefSimilar:
		met = math.Abs(partner-own) <= 1
	default:
		return 1.0
	}

	if c.cfg.DirectionalStrategy == "soft" {
		if met {
			return clamp01(raw * c.cfg.DirectionalSoftMet)
		}
		return clamp01(raw * c.cfg.DirectionalSoftUnmet)
	}
	if met {
		return 1.0
	}
	return 0.0
}

// scaledValue resolves an answer to a position on the question's scale:
// numeric answers directly, text answers through the ordinal table when one
// exists.
func scaledValue(q registry.QuestionSpec, r *models.Response) (float64, bool) {
	switch r.Answer.Kind {
	case models.AnswerNumber:
		return r.Answer.Number, true
	case models.AnswerText:
		if enc, ok := q.Ordinal[r.Answer.Text]; ok && !q.UncertainValues[r.Answer.Text] {
			return float64(enc), true
		}
	}
	return 0, false
}

func scaleSpan(q registry.QuestionSpec) float64 {
	if len(q.Ordinal) > 0 {
		return float64(q.OrdinalRange())
	}
	return q.ScaleMax - q.ScaleMin
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

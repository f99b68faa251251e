// internal/engine/similarity/special.go
package similarity

import (
	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

// Sleep schedule vocabulary.
const (
	SleepFlexible  = "flexible"
	SleepIrregular = "irregular"
)

// affectionLayers scores the layered affection-language question. The
// answer set holds the two languages a user shows; the preference set holds
// the two they like to receive. One direction blends how much of the
// evaluator's shown affection lands with the partner against how much of
// what the evaluator wants to receive the partner actually shows.
func (c *Calculator) affectionLayers(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	showA, okA := setOf(a)
	showB, okB := setOf(b)
	if !okA || !okB {
		return c.neutralMalformed(q, "set answer expected")
	}

	receiveA := preferenceSet(a.Preference)
	receiveB := preferenceSet(b.Preference)

	satA := c.affectionSatisfaction(showA, receiveA, showB, receiveB)
	satB := c.affectionSatisfaction(showB, receiveB, showA, receiveA)
	return satA, satB
}

func (c *Calculator) affectionSatisfaction(ownShow, ownReceive, partnerShow, partnerReceive []string) float64 {
	shown := coveredFraction(ownShow, partnerReceive)
	received := coveredFraction(ownReceive, partnerShow)
	return clamp01(c.cfg.Affection.ShowWeight*shown + c.cfg.Affection.ReceiveWeight*received)
}

// coveredFraction returns the fraction of values found in the other set.
// An empty base set counts as fully covered.
func coveredFraction(values []string, other []string) float64 {
	if len(values) == 0 {
		return 1.0
	}
	otherSet := toSet(other)
	return float64(intersectionSize(values, otherSet)) / float64(len(toSet(values)))
}

// conflictStyle scores the conflict-style question: 1-2 styles per user
// with a same/compatible preference. "compatible" blends the direct style
// overlap with the mean cross-style compatibility from the static matrix.
func (c *Calculator) conflictStyle(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	stylesA, okA := setOf(a)
	stylesB, okB := setOf(b)
	if !okA || !okB || len(stylesA) == 0 || len(stylesB) == 0 {
		return c.neutralMalformed(q, "nonempty style set expected")
	}

	return c.conflictSatisfaction(a.Preference, stylesA, stylesB),
		c.conflictSatisfaction(b.Preference, stylesB, stylesA)
}

func (c *Calculator) conflictSatisfaction(pref models.Preference, own, partner []string) float64 {
	if pref.IsNone() || pref.Kind != models.PrefText {
		return 1.0
	}

	switch pref.Text {
	case models.PrefSame:
		if setsEqual(own, partner) {
			return 1.0
		}
		return 0.0
	case models.PrefCompatible:
		overlap := overlapRatio(own, partner)
		matrixMean := c.crossStyleMean(own, partner)
		return clamp01(c.cfg.Conflict.OverlapWeight*overlap + c.cfg.Conflict.MatrixWeight*matrixMean)
	}
	return 1.0
}

// overlapRatio is intersection size over the larger of the two sets.
func overlapRatio(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	if larger == 0 {
		return 0
	}
	inter := 0
	for v := range setA {
		if setB[v] {
			inter++
		}
	}
	return float64(inter) / float64(larger)
}

// crossStyleMean averages the matrix compatibility over every
// (own style, partner style) pair. Styles missing from the matrix
// contribute zero rather than failing the dyad.
func (c *Calculator) crossStyleMean(own, partner []string) float64 {
	sum, n := 0.0, 0
	for _, sa := range own {
		row := c.cfg.Conflict.Matrix[sa]
		for _, sb := range partner {
			sum += row[sb]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// sleepSchedule scores schedule compatibility. "flexible" on either side is
// fully compatible; identical regular schedules are fully compatible; two
// irregular sleepers get a middling constant because neither schedule is
// dependable; everything else gets the configured mismatch constant.
func (c *Calculator) sleepSchedule(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	ta, okA := textOf(a)
	tb, okB := textOf(b)
	if !okA || !okB {
		return c.neutralMalformed(q, "text answer expected")
	}

	var sat float64
	switch {
	case ta == SleepFlexible || tb == SleepFlexible:
		sat = 1.0
	case ta == SleepIrregular && tb == SleepIrregular:
		sat = c.cfg.Sleep.BothIrregularScore
	case ta == tb:
		sat = 1.0
	default:
		sat = c.cfg.Sleep.MismatchScore
	}
	return sat, sat
}

func preferenceSet(p models.Preference) []string {
	if p.Kind != models.PrefSet {
		return nil
	}
	return p.Set
}

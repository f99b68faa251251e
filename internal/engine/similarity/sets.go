// internal/engine/similarity/sets.go
package similarity

import (
	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

// categoricalSet scores a single-valued answer against the partner's
// acceptable-value set (or a same/similar string preference). An empty or
// absent preference set is satisfied by anything.
func (c *Calculator) categoricalSet(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	ta, okA := textOf(a)
	tb, okB := textOf(b)
	if !okA || !okB {
		return c.neutralMalformed(q, "text answer expected")
	}

	return categoricalSatisfaction(a.Preference, ta, tb),
		categoricalSatisfaction(b.Preference, tb, ta)
}

func categoricalSatisfaction(pref models.Preference, own, partner string) float64 {
	if pref.IsNone() {
		return 1.0
	}
	switch pref.Kind {
	case models.PrefSet:
		if toSet(pref.Set)[partner] {
			return 1.0
		}
		return 0.0
	case models.PrefText:
		// "same" and "similar" both reduce to equality for single
		// categorical values; there is no distance between categories.
		if pref.Text == models.PrefSame || pref.Text == models.PrefSimilar {
			if partner == own {
				return 1.0
			}
			return 0.0
		}
	}
	return 1.0
}

// multiSelect scores two string-set answers. Without any preference on
// either side the score is the Jaccard index of the two sets; a preference
// on either side switches that side to a satisfaction model.
func (c *Calculator) multiSelect(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	sa, okA := setOf(a)
	sb, okB := setOf(b)
	if !okA || !okB {
		return c.neutralMalformed(q, "set answer expected")
	}

	if a.Preference.IsNone() && b.Preference.IsNone() {
		j := jaccard(sa, sb)
		return j, j
	}

	return multiSelectSatisfaction(a.Preference, sa, sb),
		multiSelectSatisfaction(b.Preference, sb, sa)
}

func multiSelectSatisfaction(pref models.Preference, own, partner []string) float64 {
	if pref.IsNone() {
		return 1.0
	}

	partnerSet := toSet(partner)
	switch pref.Kind {
	case models.PrefSet:
		// A flat acceptable-set preference requires a nonempty
		// intersection between that set and the partner's answer.
		if intersectionSize(pref.Set, partnerSet) > 0 {
			return 1.0
		}
		return 0.0
	case models.PrefText:
		switch pref.Text {
		case models.PrefSame:
			if setsEqual(own, partner) {
				return 1.0
			}
			return 0.0
		case models.PrefSimilar:
			// More generous than Jaccard: intersection over the
			// partner's answer-set size.
			if len(partner) == 0 {
				return 0.0
			}
			inter := intersectionSize(own, partnerSet)
			if inter == 0 {
				return 0.0
			}
			return float64(inter) / float64(len(partner))
		}
	}
	return 1.0
}

// jaccard computes |A n B| / |A u B|, with both-empty defined as 1.0.
func jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}

	inter := 0
	for v := range setA {
		if setB[v] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func setsEqual(a, b []string) bool {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) != len(setB) {
		return false
	}
	for v := range setA {
		if !setB[v] {
			return false
		}
	}
	return true
}

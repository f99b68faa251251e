// internal/engine/similarity/calculator.go
package similarity

import (
	"sync/atomic"

	"match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

// satisfactionFunc computes the two one-way satisfaction terms for one
// question: how satisfied A is with B's answer, and the reverse.
type satisfactionFunc func(q registry.QuestionSpec, a, b *models.Response) (satA, satB float64)

// Calculator scores a single question between two users' responses. It is
// stateless apart from the immutable tuning config and safe for concurrent
// use across dyad workers.
type Calculator struct {
	cfg       config.EngineConfig
	log       logger.Logger
	byType    map[registry.QuestionType]satisfactionFunc
	malformed atomic.Int64
}

func New(cfg config.EngineConfig, log logger.Logger) *Calculator {
	c := &Calculator{cfg: cfg, log: log}
	c.byType = map[registry.QuestionType]satisfactionFunc{
		registry.TypeNumericInterval:  c.numericInterval,
		registry.TypeOrdinal:          c.ordinal,
		registry.TypeCategoricalExact: c.categoricalExact,
		registry.TypeCategoricalSet:   c.categoricalSet,
		registry.TypeMultiSelect:      c.multiSelect,
		registry.TypeSameSimilar:      c.sameSimilar,
		registry.TypeDirectional:      c.directional,
		registry.TypeBinary:           c.binary,
		registry.TypeAffectionLayers:  c.affectionLayers,
		registry.TypeConflictStyle:    c.conflictStyle,
		registry.TypeSleepSchedule:    c.sleepSchedule,
	}
	return c
}

// Score returns the symmetric [0,1] similarity for one question: the mean
// of the two one-way satisfaction terms. Never fails; missing or malformed
// responses degrade to the configured neutral value.
func (c *Calculator) Score(q registry.QuestionSpec, a, b *models.Response) float64 {
	satA, satB := c.Satisfactions(q, a, b)
	return (satA + satB) / 2
}

// Satisfactions returns the per-direction satisfaction terms for one
// question. Hard-filter questions always report 0.0: their eligibility is
// enforced as a population pre-filter, not a weighted signal.
func (c *Calculator) Satisfactions(q registry.QuestionSpec, a, b *models.Response) (float64, float64) {
	if q.HardFilter() || q.Type == registry.TypeAgeRange {
		return 0, 0
	}
	if a == nil || a.Answer == nil || b == nil || b.Answer == nil {
		return c.cfg.NeutralScore, c.cfg.NeutralScore
	}

	fn, ok := c.byType[q.Type]
	if !ok {
		// Unknown types are rejected at registry load; this is a guard
		// against a registry/config version mismatch.
		c.log.Warn("no similarity strategy for question type", map[string]interface{}{
			"questionId": q.ID,
			"type":       int(q.Type),
		})
		return c.cfg.NeutralScore, c.cfg.NeutralScore
	}
	return fn(q, a, b)
}

// MalformedCount reports how many responses were degraded to neutral
// because their shape did not match the question type.
func (c *Calculator) MalformedCount() int64 {
	return c.malformed.Load()
}

// neutralMalformed records a malformed response and returns the neutral pair.
func (c *Calculator) neutralMalformed(q registry.QuestionSpec, detail string) (float64, float64) {
	c.malformed.Add(1)
	metrics.MalformedResponses.WithLabelValues(q.ID).Inc()
	c.log.Warn("malformed response treated as missing", map[string]interface{}{
		"questionId": q.ID,
		"detail":     detail,
	})
	return c.cfg.NeutralScore, c.cfg.NeutralScore
}

// numberOf extracts a numeric answer value.
func numberOf(r *models.Response) (float64, bool) {
	if r.Answer.Kind != models.AnswerNumber {
		return 0, false
	}
	return r.Answer.Number, true
}

// textOf extracts a text answer value.
func textOf(r *models.Response) (string, bool) {
	if r.Answer.Kind != models.AnswerText {
		return "", false
	}
	return r.Answer.Text, true
}

// setOf extracts a string-set answer value.
func setOf(r *models.Response) ([]string, bool) {
	if r.Answer.Kind != models.AnswerSet {
		return nil, false
	}
	return r.Answer.Set, true
}

func toSet(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func intersectionSize(a []string, b map[string]bool) int {
	seen := make(map[string]bool, len(a))
	n := 0
	for _, v := range a {
		if b[v] && !seen[v] {
			n++
			seen[v] = true
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

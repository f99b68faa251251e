// internal/engine/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/engine/eligibility"
	"match-engine/internal/engine/matching"
	"match-engine/internal/engine/scoring"
	"match-engine/internal/engine/similarity"
	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

// Pipeline executes one full matching run: prefilter, dyad scoring,
// eligibility filtering, assignment, diagnostics.
type Pipeline struct {
	cfg    config.EngineConfig
	reg    *registry.Registry
	log    logger.Logger
	calc   *similarity.Calculator
	agg    *scoring.Aggregator
	filter *eligibility.Filter
	solver *matching.Solver
}

func New(cfg config.EngineConfig, reg *registry.Registry, log logger.Logger) *Pipeline {
	calc := similarity.New(cfg, log)
	return &Pipeline{
		cfg:    cfg,
		reg:    reg,
		log:    log,
		calc:   calc,
		agg:    scoring.NewAggregator(cfg, reg, calc),
		filter: eligibility.NewFilter(cfg),
		solver: matching.NewSolver(),
	}
}

type dyad struct {
	a, b *models.User
}

// Run scores every admissible dyad in the population and solves for the
// assignment maximizing total pair score. Output is deterministic for a
// fixed population, registry and configuration regardless of input order
// or worker count.
func (p *Pipeline) Run(ctx context.Context, runID string, users []*models.User) (*models.RunResult, error) {
	if runID == "" {
		runID = uuid.NewString()
	}

	diags := models.RunDiagnostics{
		RunID:          runID,
		ConfigVersion:  p.cfg.Version,
		PopulationSize: len(users),
		PhaseDurations: make(map[string]time.Duration),
		StartedAt:      time.Now().UTC(),
	}

	population := append([]*models.User(nil), users...)
	sort.Slice(population, func(i, j int) bool { return population[i].ID < population[j].ID })

	p.log.Info("matching run started", map[string]interface{}{
		"run_id":     runID,
		"population": len(population),
		"workers":    p.cfg.Workers,
	})

	// Phase 1: enumerate admissible dyads.
	phaseStart := time.Now()
	var dyads []dyad
	for i := 0; i < len(population); i++ {
		for j := i + 1; j < len(population); j++ {
			diags.DyadsConsidered++
			if p.admissible(population[i], population[j]) {
				dyads = append(dyads, dyad{a: population[i], b: population[j]})
			} else {
				diags.DyadsPrefiltered++
			}
		}
	}
	p.recordPhase(&diags, "prefilter", phaseStart)

	// Phase 2: score dyads in parallel. Results land in slots indexed by
	// dyad position so worker scheduling cannot reorder them.
	phaseStart = time.Now()
	pairs, dyadErrs := p.scoreDyads(ctx, dyads)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("matching run %s canceled: %w", runID, err)
	}
	p.recordPhase(&diags, "score", phaseStart)

	scored := make([]models.PairScore, 0, len(pairs))
	for i, ps := range pairs {
		if dyadErrs[i] != nil {
			diags.DyadErrors = append(diags.DyadErrors, *dyadErrs[i])
			metrics.DyadErrors.Inc()
			continue
		}
		scored = append(scored, *ps)
		bucket := int(ps.Combined / 10)
		if bucket > 9 {
			bucket = 9
		}
		diags.ScoreDistribution[bucket]++
		metrics.PairScoreDistribution.Observe(ps.Combined)
	}
	diags.PairsScored = len(scored)
	metrics.PairsScored.Add(float64(len(scored)))

	// Phase 3: eligibility. Needs each user's best score first, so this
	// is a second pass over the scored dyads.
	phaseStart = time.Now()
	best := make(map[models.UserID]float64, len(population))
	for _, ps := range scored {
		if ps.Combined > best[ps.UserA] {
			best[ps.UserA] = ps.Combined
		}
		if ps.Combined > best[ps.UserB] {
			best[ps.UserB] = ps.Combined
		}
	}
	var eligible []models.PairScore
	for _, ps := range scored {
		res := p.filter.Check(ps, best[ps.UserA], best[ps.UserB])
		if res.Eligible {
			eligible = append(eligible, ps)
		} else {
			p.log.Debug("dyad ineligible", map[string]interface{}{
				"run_id":  runID,
				"user_a":  string(ps.UserA),
				"user_b":  string(ps.UserB),
				"reasons": res.Reasons,
			})
		}
	}
	diags.PairsEligible = len(eligible)
	metrics.PairsEligible.Add(float64(len(eligible)))
	p.recordPhase(&diags, "eligibility", phaseStart)

	// Phase 4: assignment. An empty edge set is a valid run where
	// everyone stays unmatched.
	phaseStart = time.Now()
	ids := make([]models.UserID, len(population))
	for i, u := range population {
		ids[i] = u.ID
	}
	assignments, unmatched := p.solver.Solve(ids, eligible)
	p.recordPhase(&diags, "matching", phaseStart)

	diags.UsersMatched = 2 * len(assignments)
	diags.UsersUnmatched = len(unmatched)
	diags.MalformedResponses = int(p.calc.MalformedCount())
	diags.CompletedAt = time.Now().UTC()
	metrics.UsersMatched.Set(float64(diags.UsersMatched))
	metrics.UsersUnmatched.Set(float64(diags.UsersUnmatched))

	p.log.Info("matching run completed", map[string]interface{}{
		"run_id":         runID,
		"pairs_scored":   diags.PairsScored,
		"pairs_eligible": diags.PairsEligible,
		"matched":        diags.UsersMatched,
		"unmatched":      diags.UsersUnmatched,
		"dyad_errors":    len(diags.DyadErrors),
		"duration":       diags.CompletedAt.Sub(diags.StartedAt).String(),
	})

	return &models.RunResult{
		Assignments: assignments,
		Unmatched:   unmatched,
		Diagnostics: diags,
	}, nil
}

// admissible applies the hard filters that remove a dyad before any
// scoring: mutual gender acceptance, mutual age acceptance, and every
// dealbreaker-flagged preference fully satisfied in both directions.
func (p *Pipeline) admissible(a, b *models.User) bool {
	if !a.AcceptsGender(b.Gender) || !b.AcceptsGender(a.Gender) {
		return false
	}
	if !a.AcceptsAge(b.Age) || !b.AcceptsAge(a.Age) {
		return false
	}
	return p.dealbreakersSatisfied(a, b) && p.dealbreakersSatisfied(b, a)
}

func (p *Pipeline) dealbreakersSatisfied(evaluator, partner *models.User) bool {
	const fullySatisfied = 0.999

	for qid, resp := range evaluator.Responses {
		if resp == nil || !resp.Dealbreaker || resp.Preference.IsNone() {
			continue
		}
		q, ok := p.reg.Get(qid)
		if !ok || q.HardFilter() {
			continue
		}
		sat, _ := p.calc.Satisfactions(q, resp, partner.Response(qid))
		if sat < fullySatisfied {
			return false
		}
	}
	return true
}

// scoreDyads fans dyads out over a fixed-size worker pool. Each slot i in
// the returned slices belongs to dyads[i]; a slot holds either a pair
// score or a dyad error, never both.
func (p *Pipeline) scoreDyads(ctx context.Context, dyads []dyad) ([]*models.PairScore, []*models.DyadError) {
	pairs := make([]*models.PairScore, len(dyads))
	errs := make([]*models.DyadError, len(dyads))
	if len(dyads) == 0 {
		return pairs, errs
	}

	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(dyads) {
		workers = len(dyads)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				pairs[i], errs[i] = p.scoreDyad(dyads[i])
			}
		}()
	}

feed:
	for i := range dyads {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return pairs, errs
}

// scoreDyad computes both directional scores and the combined pair score.
// A panic while scoring is converted into a dyad error so one bad dyad
// cannot take down the run.
func (p *Pipeline) scoreDyad(d dyad) (ps *models.PairScore, derr *models.DyadError) {
	defer func() {
		if r := recover(); r != nil {
			ps = nil
			derr = &models.DyadError{
				UserA:  d.a.ID,
				UserB:  d.b.ID,
				Reason: fmt.Sprintf("panic while scoring: %v", r),
			}
			p.log.Error("dyad scoring panicked", map[string]interface{}{
				"user_a": string(d.a.ID),
				"user_b": string(d.b.ID),
				"panic":  fmt.Sprintf("%v", r),
			})
		}
	}()

	ab := p.agg.Directional(d.a, d.b)
	ba := p.agg.Directional(d.b, d.a)
	out := scoring.BuildPairScore(p.cfg, ab, ba)
	return &out, nil
}

func (p *Pipeline) recordPhase(diags *models.RunDiagnostics, phase string, start time.Time) {
	elapsed := time.Since(start)
	diags.PhaseDurations[phase] = elapsed
	metrics.PhaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
}

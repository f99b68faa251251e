// internal/engine/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestPipeline(t *testing.T, cfg config.EngineConfig) *Pipeline {
	return New(cfg, registry.Default(), logger.NewTestLogger(t))
}

// createTestUser builds a respondent whose scored answers all come from the
// given profile values, so identical profiles score 100 against each other.
func createTestUser(id, gender string, acceptedGenders []string, exercise, openness float64) *models.User {
	return &models.User{
		ID:              models.UserID(id),
		Gender:          gender,
		AcceptedGenders: acceptedGenders,
		Responses: map[string]*models.Response{
			"q_exercise": {Answer: models.NumberAnswer(exercise), Importance: models.Important},
			"q_openness": {Answer: models.NumberAnswer(openness), Importance: models.Important},
		},
	}
}

// ==========================
// Run Tests
// ==========================

func TestPipeline_MatchesCompatiblePopulation(t *testing.T) {
	p := createTestPipeline(t, config.DefaultEngine())

	users := []*models.User{
		createTestUser("user-1", "woman", []string{"man"}, 3, 4),
		createTestUser("user-2", "man", []string{"woman"}, 3, 4),
		createTestUser("user-3", "woman", []string{"man"}, 1, 1),
		createTestUser("user-4", "man", []string{"woman"}, 1, 1),
	}

	result, err := p.Run(context.Background(), "run-1", users)
	require.NoError(t, err)

	require.Len(t, result.Assignments, 2)
	assert.Empty(t, result.Unmatched)

	// Same-profile users pair together; the crossed pairs score lower.
	pairs := map[models.UserID]models.UserID{}
	for _, a := range result.Assignments {
		pairs[a.UserA] = a.UserB
		assert.InDelta(t, 100.0, a.Score, 1e-9)
	}
	assert.Equal(t, models.UserID("user-2"), pairs["user-1"])
	assert.Equal(t, models.UserID("user-4"), pairs["user-3"])

	d := result.Diagnostics
	assert.Equal(t, "run-1", d.RunID)
	assert.Equal(t, 4, d.PopulationSize)
	assert.Equal(t, 6, d.DyadsConsidered)
	assert.Equal(t, 2, d.DyadsPrefiltered, "same-gender dyads are inadmissible here")
	assert.Equal(t, 4, d.PairsScored)
	assert.Equal(t, 2, d.PairsEligible, "the crossed pairs fall below the minimum score")
	assert.Equal(t, 4, d.UsersMatched)
	assert.Equal(t, 0, d.UsersUnmatched)
	assert.NotZero(t, d.PhaseDurations["score"])
}

func TestPipeline_ZeroEligibleEdgesIsAValidRun(t *testing.T) {
	cfg := config.DefaultEngine()
	cfg.MinPairScore = 99.5
	p := createTestPipeline(t, cfg)

	users := []*models.User{
		createTestUser("user-1", "woman", nil, 1, 1),
		createTestUser("user-2", "man", nil, 5, 5),
	}

	result, err := p.Run(context.Background(), "run-empty", users)
	require.NoError(t, err)
	assert.Empty(t, result.Assignments)
	assert.Len(t, result.Unmatched, 2)
	assert.Equal(t, 1, result.Diagnostics.PairsScored)
	assert.Equal(t, 0, result.Diagnostics.PairsEligible)
}

func TestPipeline_GenderAndAgePrefilter(t *testing.T) {
	p := createTestPipeline(t, config.DefaultEngine())

	a := createTestUser("user-1", "woman", []string{"man"}, 3, 3)
	b := createTestUser("user-2", "woman", []string{"man"}, 3, 3)
	c := createTestUser("user-3", "man", []string{"woman"}, 3, 3)
	c.Age = 55
	a.AcceptedAges = models.AgeRange{Min: 25, Max: 40}

	result, err := p.Run(context.Background(), "run-prefilter", users(a, b, c))
	require.NoError(t, err)

	// user-1/user-2 fails mutual gender acceptance, user-1/user-3 fails
	// the age window, user-2/user-3 has no age constraint and matches.
	assert.Equal(t, 2, result.Diagnostics.DyadsPrefiltered)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, models.UserID("user-2"), result.Assignments[0].UserA)
	assert.Equal(t, models.UserID("user-3"), result.Assignments[0].UserB)
}

func TestPipeline_DealbreakerVeto(t *testing.T) {
	p := createTestPipeline(t, config.DefaultEngine())

	a := createTestUser("user-1", "woman", nil, 3, 3)
	a.Responses["q_wants_kids"] = &models.Response{
		Answer:      models.TextAnswer("yes"),
		Preference:  models.TextPreference("same"),
		Importance:  models.VeryImportant,
		Dealbreaker: true,
	}
	b := createTestUser("user-2", "man", nil, 3, 3)
	b.Responses["q_wants_kids"] = &models.Response{
		Answer:     models.TextAnswer("no"),
		Importance: models.Important,
	}

	result, err := p.Run(context.Background(), "run-veto", users(a, b))
	require.NoError(t, err)
	assert.Empty(t, result.Assignments)
	assert.Equal(t, 1, result.Diagnostics.DyadsPrefiltered)
	assert.Equal(t, 0, result.Diagnostics.PairsScored)
}

func TestPipeline_DeterministicAcrossOrderAndWorkers(t *testing.T) {
	population := func() []*models.User {
		return []*models.User{
			createTestUser("user-1", "woman", nil, 3, 4),
			createTestUser("user-2", "man", nil, 3, 3),
			createTestUser("user-3", "woman", nil, 2, 4),
			createTestUser("user-4", "man", nil, 4, 2),
			createTestUser("user-5", "woman", nil, 5, 5),
			createTestUser("user-6", "man", nil, 1, 2),
		}
	}

	serial := config.DefaultEngine()
	serial.Workers = 1
	parallel := config.DefaultEngine()
	parallel.Workers = 8

	first, err := createTestPipeline(t, serial).Run(context.Background(), "run-d", population())
	require.NoError(t, err)

	shuffled := population()
	shuffled[0], shuffled[5] = shuffled[5], shuffled[0]
	shuffled[1], shuffled[3] = shuffled[3], shuffled[1]
	second, err := createTestPipeline(t, parallel).Run(context.Background(), "run-d", shuffled)
	require.NoError(t, err)

	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Unmatched, second.Unmatched)
	assert.Equal(t, first.Diagnostics.PairsScored, second.Diagnostics.PairsScored)
	assert.Equal(t, first.Diagnostics.PairsEligible, second.Diagnostics.PairsEligible)
	assert.Equal(t, first.Diagnostics.ScoreDistribution, second.Diagnostics.ScoreDistribution)
}

func TestPipeline_CanceledContext(t *testing.T) {
	p := createTestPipeline(t, config.DefaultEngine())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, "run-canceled", []*models.User{
		createTestUser("user-1", "woman", nil, 3, 3),
		createTestUser("user-2", "man", nil, 3, 3),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func users(us ...*models.User) []*models.User { return us }

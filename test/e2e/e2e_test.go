// test/e2e/e2e_test.go
//
// Full-run tests wiring the shipped registry file, the snapshot file
// loader, the scoring pipeline and the Redis run store together. Uses an
// embedded Redis; no external services required.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/engine/pipeline"
	"match-engine/internal/models"
	"match-engine/internal/runstore"
	"match-engine/internal/snapshot"
	"match-engine/pkg/registry"
)

const snapshotDoc = `[
	{
		"userId": "user-1",
		"responses": {
			"q_gender":   {"answer": "woman", "preference": ["man"]},
			"q_exercise": {"answer": 4, "importance": "important"},
			"q_smoking":  {"answer": "never", "preference": "same", "importance": "very_important"},
			"q_pets":     {"answer": ["dogs"], "importance": "somewhat_important"},
			"q_openness": {"answer": 4, "importance": "important"}
		}
	},
	{
		"userId": "user-2",
		"responses": {
			"q_gender":   {"answer": "man", "preference": ["woman"]},
			"q_exercise": {"answer": 4, "importance": "important"},
			"q_smoking":  {"answer": "never", "importance": "important"},
			"q_pets":     {"answer": ["dogs", "cats"], "importance": "somewhat_important"},
			"q_openness": {"answer": 3, "importance": "important"}
		}
	},
	{
		"userId": "user-3",
		"responses": {
			"q_gender":   {"answer": "man", "preference": ["woman"]},
			"q_exercise": {"answer": 1, "importance": "important"},
			"q_smoking":  {"answer": "regularly", "importance": "important"},
			"q_openness": {"answer": 1, "importance": "important"}
		}
	}
]`

func loadShippedRegistry(t *testing.T) *registry.Registry {
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", "configs", "questions.json"))
	require.NoError(t, err, "shipped registry file must parse")
	return reg
}

func TestEndToEnd_FileSnapshotRun(t *testing.T) {
	reg := loadShippedRegistry(t)
	log := logger.NewTestLogger(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotDoc), 0o644))

	users, err := snapshot.NewFileLoader(path, reg, log).Load()
	require.NoError(t, err)
	require.Len(t, users, 3)

	cfg := config.DefaultEngine()
	result, err := pipeline.New(cfg, reg, log).Run(context.Background(), "e2e-run", users)
	require.NoError(t, err)

	// user-1 and user-2 agree on nearly everything; user-3 clashes with
	// user-1's smoking dealbreaker-free "same" preference and scores low.
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "user-1", string(result.Assignments[0].UserA))
	assert.Equal(t, "user-2", string(result.Assignments[0].UserB))
	assert.Equal(t, []string{"user-3"}, toStrings(result.Unmatched))

	d := result.Diagnostics
	assert.Equal(t, 3, d.PopulationSize)
	assert.Equal(t, 2, d.PairsScored, "the user-2/user-3 same-gender dyad is prefiltered")
	assert.Equal(t, 2, d.UsersMatched)
	assert.Equal(t, 1, d.UsersUnmatched)
}

func TestEndToEnd_ResultPersistedToRedis(t *testing.T) {
	reg := loadShippedRegistry(t)
	log := logger.NewTestLogger(t)

	mr := miniredis.RunT(t)
	store := runstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), config.DefaultEngine(), log)

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotDoc), 0o644))
	users, err := snapshot.NewFileLoader(path, reg, log).Load()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.AcquireLock(ctx, "e2e-snap", "e2e-run"))
	defer store.ReleaseLock(ctx, "e2e-snap", "e2e-run")

	result, err := pipeline.New(config.DefaultEngine(), reg, log).Run(ctx, "e2e-run", users)
	require.NoError(t, err)
	require.NoError(t, store.StoreResult(ctx, result))

	got, err := store.GetResult(ctx, "e2e-run")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, result.Assignments, got.Assignments)

	status, err := store.GetStatus(ctx, "e2e-run")
	require.NoError(t, err)
	assert.Equal(t, runstore.StatusCompleted, status)
}

func toStrings(ids []models.UserID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

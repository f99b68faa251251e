// internal/runstore/runstore_test.go
package runstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/config"
	commonerrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := config.DefaultEngine()
	cfg.RunLockTTLSeconds = 60
	cfg.ResultTTLSeconds = 3600
	return New(client, cfg, logger.NewTestLogger(t)), mr
}

func testResult(runID string) *models.RunResult {
	return &models.RunResult{
		Assignments: []models.MatchAssignment{
			{UserA: "user-a", UserB: "user-b", Score: 87.5},
		},
		Unmatched: []models.UserID{"user-c"},
		Diagnostics: models.RunDiagnostics{
			RunID:          runID,
			PopulationSize: 3,
		},
	}
}

// ==========================
// Run Lock Tests
// ==========================

func TestStore_LockSerializesRuns(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AcquireLock(ctx, "snap-1", "run-1"))

	err := store.AcquireLock(ctx, "snap-1", "run-2")
	require.Error(t, err)
	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeRunLocked, stdErr.Code)
	assert.False(t, stdErr.Retryable)

	// Another snapshot is unaffected.
	assert.NoError(t, store.AcquireLock(ctx, "snap-2", "run-3"))
}

func TestStore_LockExpires(t *testing.T) {
	store, mr := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AcquireLock(ctx, "snap-1", "run-1"))
	mr.FastForward(61 * time.Second)
	assert.NoError(t, store.AcquireLock(ctx, "snap-1", "run-2"))
}

func TestStore_ReleaseLockOnlyByOwner(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AcquireLock(ctx, "snap-1", "run-1"))

	store.ReleaseLock(ctx, "snap-1", "run-other")
	assert.Error(t, store.AcquireLock(ctx, "snap-1", "run-2"), "foreign release must not drop the lock")

	store.ReleaseLock(ctx, "snap-1", "run-1")
	assert.NoError(t, store.AcquireLock(ctx, "snap-1", "run-2"))
}

// ==========================
// Result and Status Tests
// ==========================

func TestStore_ResultRoundTrip(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreResult(ctx, testResult("run-1")))

	got, err := store.GetResult(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.UserID("user-a"), got.Assignments[0].UserA)
	assert.Equal(t, 87.5, got.Assignments[0].Score)
	assert.Equal(t, []models.UserID{"user-c"}, got.Unmatched)

	status, err := store.GetStatus(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
}

func TestStore_MissingResultIsNil(t *testing.T) {
	store, _ := createTestStore(t)

	got, err := store.GetResult(context.Background(), "run-unknown")
	require.NoError(t, err)
	assert.Nil(t, got)

	status, err := store.GetStatus(context.Background(), "run-unknown")
	require.NoError(t, err)
	assert.Empty(t, status)
}

func TestStore_ResultExpires(t *testing.T) {
	store, mr := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreResult(ctx, testResult("run-1")))
	mr.FastForward(3601 * time.Second)

	got, err := store.GetResult(ctx, "run-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_StatusLifecycle(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetStatus(ctx, "run-1", StatusRunning))
	status, err := store.GetStatus(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)

	require.NoError(t, store.SetStatus(ctx, "run-1", StatusFailed))
	status, _ = store.GetStatus(ctx, "run-1")
	assert.Equal(t, StatusFailed, status)
}

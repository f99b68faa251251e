// internal/runstore/runstore.go
package runstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"match-engine/internal/common/config"
	"match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

// Run lifecycle states stored under the status key.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	lockKeyFmt        = "matchrun:lock:%s"
	statusKeyFmt      = "matchrun:status:%s"
	resultKeyFmt      = "matchrun:result:%s"
	diagnosticsKeyFmt = "matchrun:diagnostics:%s"
)

// Store persists run locks, status and results in Redis. The lock
// serializes runs per snapshot so two runners cannot score the same
// population concurrently; everything else is best-effort state for
// operators and downstream consumers.
type Store struct {
	client    *redis.Client
	lockTTL   time.Duration
	resultTTL time.Duration
	log       logger.Logger
}

func New(client *redis.Client, cfg config.EngineConfig, log logger.Logger) *Store {
	return &Store{
		client:    client,
		lockTTL:   time.Duration(cfg.RunLockTTLSeconds) * time.Second,
		resultTTL: time.Duration(cfg.ResultTTLSeconds) * time.Second,
		log:       log,
	}
}

// AcquireLock takes the per-snapshot run lock. Returns a RUN_LOCKED error
// when another run currently holds it. The lock expires on its own so a
// crashed runner cannot wedge the snapshot forever.
func (s *Store) AcquireLock(ctx context.Context, snapshotID, runID string) error {
	key := fmt.Sprintf(lockKeyFmt, snapshotID)
	ok, err := s.client.SetNX(ctx, key, runID, s.lockTTL).Result()
	if err != nil {
		return fmt.Errorf("acquiring run lock: %w", err)
	}
	if !ok {
		return errors.NewRunLockedError(snapshotID)
	}
	return nil
}

// ReleaseLock drops the lock if this run still owns it.
func (s *Store) ReleaseLock(ctx context.Context, snapshotID, runID string) {
	key := fmt.Sprintf(lockKeyFmt, snapshotID)
	holder, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return
	}
	if err != nil {
		s.log.Warn("run lock release check failed", map[string]interface{}{
			"snapshot_id": snapshotID,
			"error":       err.Error(),
		})
		return
	}
	if holder != runID {
		return
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Warn("run lock release failed", map[string]interface{}{
			"snapshot_id": snapshotID,
			"error":       err.Error(),
		})
	}
}

// SetStatus records the run lifecycle state with the result TTL.
func (s *Store) SetStatus(ctx context.Context, runID, status string) error {
	key := fmt.Sprintf(statusKeyFmt, runID)
	if err := s.client.Set(ctx, key, status, s.resultTTL).Err(); err != nil {
		return fmt.Errorf("setting run status: %w", err)
	}
	return nil
}

// GetStatus returns the stored lifecycle state, or empty when unknown.
func (s *Store) GetStatus(ctx context.Context, runID string) (string, error) {
	key := fmt.Sprintf(statusKeyFmt, runID)
	status, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting run status: %w", err)
	}
	return status, nil
}

// StoreResult persists the assignments and diagnostics of a completed run.
func (s *Store) StoreResult(ctx context.Context, result *models.RunResult) error {
	runID := result.Diagnostics.RunID

	payload, err := json.Marshal(result)
	if err != nil {
		return errors.NewResultStoreFailedError(err)
	}
	if err := s.client.Set(ctx, fmt.Sprintf(resultKeyFmt, runID), payload, s.resultTTL).Err(); err != nil {
		return errors.NewResultStoreFailedError(err)
	}

	diags, err := json.Marshal(result.Diagnostics)
	if err != nil {
		return errors.NewResultStoreFailedError(err)
	}
	if err := s.client.Set(ctx, fmt.Sprintf(diagnosticsKeyFmt, runID), diags, s.resultTTL).Err(); err != nil {
		return errors.NewResultStoreFailedError(err)
	}

	return s.SetStatus(ctx, runID, StatusCompleted)
}

// GetResult fetches a stored run result, or nil when absent or expired.
func (s *Store) GetResult(ctx context.Context, runID string) (*models.RunResult, error) {
	payload, err := s.client.Get(ctx, fmt.Sprintf(resultKeyFmt, runID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting run result: %w", err)
	}

	var result models.RunResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decoding run result: %w", err)
	}
	return &result, nil
}

// internal/runstore/runstore_mock_test.go
package runstore

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/config"
	commonerrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
)

func TestStore_StoreResultFailureIsRetryable(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := New(client, config.DefaultEngine(), logger.NewTestLogger(t))

	mock.Regexp().ExpectSet("matchrun:result:run-1", `.*`, store.resultTTL).
		SetErr(errors.New("connection reset"))

	err := store.StoreResult(context.Background(), testResult("run-1"))
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeResultStoreFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AcquireLockTransportError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := New(client, config.DefaultEngine(), logger.NewTestLogger(t))

	mock.ExpectSetNX("matchrun:lock:snap-1", "run-1", store.lockTTL).
		SetErr(errors.New("connection reset"))

	err := store.AcquireLock(context.Background(), "snap-1", "run-1")
	require.Error(t, err)
	var stdErr *commonerrors.StandardError
	assert.False(t, errors.As(err, &stdErr), "transport errors are not run-locked errors")
}

// internal/pipeline/runlock/runlock_test.go
package runlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "growth-assistant/internal/common/errors"
	"growth-assistant/internal/common/logger"
)

func newTestLock(t *testing.T) (*Lock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, time.Minute, logger.NewNoOpLogger()), mr
}

func TestAcquireAndRelease(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "auto-send")
	require.NoError(t, err)
	assert.True(t, mr.Exists("runlock:auto-send"))

	release()
	assert.False(t, mr.Exists("runlock:auto-send"))
}

func TestAcquireWhileHeld(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "auto-send")
	require.NoError(t, err)
	defer release()

	_, err = lock.Acquire(ctx, "auto-send")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRunInProgress, apperrors.CodeOf(err))
}

func TestOperationsLockIndependently(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	releaseScan, err := lock.Acquire(ctx, "auto-send")
	require.NoError(t, err)
	defer releaseScan()

	releaseCheck, err := lock.Acquire(ctx, "revenue-check")
	require.NoError(t, err)
	defer releaseCheck()
}

func TestReleaseIgnoresStolenLease(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "auto-send")
	require.NoError(t, err)

	// Lease expired and another holder took it over.
	mr.Set("runlock:auto-send", "someone-else")

	release()
	assert.True(t, mr.Exists("runlock:auto-send"))
}

// internal/pipeline/runlock/runlock.go

// Package runlock serializes pipeline runs across processes with a Redis
// lease. Two runners kicking off the same scan concurrently would race
// each other between the dedup read and the notification insert; holding
// the lease for the duration of the run closes that window.
package runlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "growth-assistant/internal/common/errors"
	"growth-assistant/internal/common/logger"
)

// releaseScript deletes the lease only if this process still owns it, so
// a run that outlives its TTL cannot release someone else's lease.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type Lock struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func New(client *redis.Client, ttl time.Duration, log logger.Logger) *Lock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Lock{client: client, ttl: ttl, logger: log}
}

// Acquire takes the lease for the named operation. It returns a release
// function on success and a RUN_IN_PROGRESS error when another holder has
// the lease.
func (l *Lock) Acquire(ctx context.Context, operation string) (func(), error) {
	key := "runlock:" + operation
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewRunInProgressError(operation)
	}

	release := func() {
		if _, err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Result(); err != nil {
			l.logger.Warn("Run lock release failed", map[string]interface{}{
				"operation": operation,
				"error":     err.Error(),
			})
		}
	}
	return release, nil
}

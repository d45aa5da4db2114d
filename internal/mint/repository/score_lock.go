package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const scoreLockPrefix = "mintlock:"

// releaseScript deletes the lock only if it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

type redisScoreLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisScoreLock guards the claim step of one score across replicas. The
// ttl must outlive a chain write so a crashed holder cannot block a score forever.
func NewRedisScoreLock(client *redis.Client, ttl time.Duration) domain.ScoreLock {
	return &redisScoreLock{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisScoreLock) Acquire(ctx context.Context, score int64) (func(), error) {
	requestID := middleware.GetRequestID(ctx)
	key := scoreLockPrefix + strconv.FormatInt(score, 10)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		logger.DBLogger.Error("Failed to acquire score lock", zap.String("request_id", requestID), zap.Int64("score", score), zap.Error(err))
		return nil, fmt.Errorf("failed to acquire score lock: %w", err)
	}
	if !ok {
		logger.DBLogger.Info("Score lock held elsewhere", zap.String("request_id", requestID), zap.Int64("score", score))
		return nil, domain.ErrClaimInProgress
	}

	release := func() {
		// the caller's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			logger.DBLogger.Warn("Failed to release score lock", zap.String("request_id", requestID), zap.Int64("score", score), zap.Error(err))
		}
	}
	return release, nil
}

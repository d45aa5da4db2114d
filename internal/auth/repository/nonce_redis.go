package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const noncePrefix = "nonce:"

// redisNonceStore keeps each pending nonce under its own key with a TTL, so
// expiry needs no sweep. The value is the creation time in unix seconds.
type redisNonceStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisNonceStore(client *redis.Client, ttl time.Duration) domain.NonceStore {
	return &redisNonceStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *redisNonceStore) Add(ctx context.Context, token string) error {
	requestID := middleware.GetRequestID(ctx)
	ok, err := s.client.SetNX(ctx, noncePrefix+token, s.now().Unix(), s.ttl).Result()
	if err != nil {
		logger.DBLogger.Error("Failed to store nonce in redis", zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	if !ok {
		return errors.New("failed to store nonce: duplicate token")
	}
	return nil
}

func (s *redisNonceStore) Consume(ctx context.Context, token string) error {
	requestID := middleware.GetRequestID(ctx)
	deleted, err := s.client.Del(ctx, noncePrefix+token).Result()
	if err != nil {
		logger.DBLogger.Error("Failed to consume nonce in redis", zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("failed to consume nonce: %w", err)
	}
	if deleted != 1 {
		logger.DBLogger.Warn("Nonce not pending", zap.String("request_id", requestID))
		return domain.ErrInvalidNonce
	}
	return nil
}

func (s *redisNonceStore) Sweep(context.Context) (int64, error) {
	return 0, nil
}

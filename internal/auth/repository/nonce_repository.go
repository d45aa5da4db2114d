package repository

import (
	"context"
	"fmt"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// nonceRepository keeps pending challenges in the nonces table. Expired rows
// are rejected on read and purged by Sweep.
type nonceRepository struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewNonceRepository(db *gorm.DB, ttl time.Duration) domain.NonceStore {
	return &nonceRepository{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

func (r *nonceRepository) Add(ctx context.Context, token string) error {
	requestID := middleware.GetRequestID(ctx)
	nonce := domain.Nonce{Token: token, CreatedAt: r.now().UTC()}
	if err := r.db.WithContext(ctx).Create(&nonce).Error; err != nil {
		logger.DBLogger.Error("Failed to store nonce", zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	return nil
}

// Consume is a single DELETE so two concurrent logins cannot both use one nonce.
func (r *nonceRepository) Consume(ctx context.Context, token string) error {
	requestID := middleware.GetRequestID(ctx)
	cutoff := r.now().UTC().Add(-r.ttl)
	res := r.db.WithContext(ctx).
		Where("token = ? AND created_at > ?", token, cutoff).
		Delete(&domain.Nonce{})
	if res.Error != nil {
		logger.DBLogger.Error("Failed to consume nonce", zap.String("request_id", requestID), zap.Error(res.Error))
		return fmt.Errorf("failed to consume nonce: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		logger.DBLogger.Warn("Nonce not pending", zap.String("request_id", requestID))
		return domain.ErrInvalidNonce
	}
	return nil
}

func (r *nonceRepository) Sweep(ctx context.Context) (int64, error) {
	cutoff := r.now().UTC().Add(-r.ttl)
	res := r.db.WithContext(ctx).Where("created_at <= ?", cutoff).Delete(&domain.Nonce{})
	if res.Error != nil {
		logger.DBLogger.Error("Failed to sweep nonces", zap.Error(res.Error))
		return 0, fmt.Errorf("failed to sweep nonces: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		logger.DBLogger.Info("Swept expired nonces", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

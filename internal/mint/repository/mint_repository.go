package repository

import (
	"context"
	"errors"
	"fmt"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type mintRepository struct {
	db *gorm.DB
}

func NewMintRepository(db *gorm.DB) domain.MintRepository {
	return &mintRepository{
		db: db,
	}
}

func (r *mintRepository) CreateMintedScore(ctx context.Context, minted *domain.MintedScore) error {
	requestID := middleware.GetRequestID(ctx)
	logger.DBLogger.Info("CreateMintedScore called", zap.String("request_id", requestID), zap.Int64("score", minted.Score), zap.String("user_id", minted.UserID))

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "score"}}, DoNothing: true}).
		Create(minted)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.DBLogger.Info("Score already recorded", zap.String("request_id", requestID), zap.Int64("score", minted.Score))
			return domain.ErrScoreAlreadyRecorded
		}
		logger.DBLogger.Error("Failed to record minted score", zap.String("request_id", requestID), zap.Int64("score", minted.Score), zap.Error(result.Error))
		return fmt.Errorf("failed to record minted score: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.DBLogger.Info("Score already recorded", zap.String("request_id", requestID), zap.Int64("score", minted.Score))
		return domain.ErrScoreAlreadyRecorded
	}
	return nil
}

// GetByScore returns nil without error when the score has no local record.
func (r *mintRepository) GetByScore(ctx context.Context, score int64) (*domain.MintedScore, error) {
	requestID := middleware.GetRequestID(ctx)

	var minted domain.MintedScore
	if err := r.db.WithContext(ctx).Where("score = ?", score).First(&minted).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.DBLogger.Error("Failed to get minted score", zap.String("request_id", requestID), zap.Int64("score", score), zap.Error(err))
		return nil, fmt.Errorf("failed to get minted score: %w", err)
	}
	return &minted, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

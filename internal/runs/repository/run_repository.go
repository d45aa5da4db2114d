package repository

import (
	"context"
	"fmt"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) domain.RunRepository {
	return &runRepository{
		db: db,
	}
}

// FinishRun credits the score to both balances and records the run in one
// transaction.
func (r *runRepository) FinishRun(ctx context.Context, userID string, score int64) (domain.FinishRunResponse, error) {
	requestID := middleware.GetRequestID(ctx)
	logger.DBLogger.Info("FinishRun called", zap.String("request_id", requestID), zap.String("user_id", userID), zap.Int64("score", score))

	var response domain.FinishRunResponse
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		result := tx.Model(&user).
			Clauses(clause.Returning{}).
			Where("uuid = ?", userID).
			UpdateColumns(map[string]interface{}{
				"curr_coins":  gorm.Expr("curr_coins + ?", score),
				"ltime_coins": gorm.Expr("ltime_coins + ?", score),
			})
		if result.Error != nil {
			logger.DBLogger.Error("Failed to credit coins", zap.String("request_id", requestID), zap.String("user_id", userID), zap.Error(result.Error))
			return fmt.Errorf("failed to credit coins: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			logger.DBLogger.Warn("User not found", zap.String("request_id", requestID), zap.String("user_id", userID))
			return domain.ErrUserNotFound
		}

		run := domain.Run{
			Score:  score,
			UserID: userID,
		}
		if err := tx.Create(&run).Error; err != nil {
			logger.DBLogger.Error("Failed to create run", zap.String("request_id", requestID), zap.String("user_id", userID), zap.Error(err))
			return fmt.Errorf("failed to create run record: %w", err)
		}

		response = domain.FinishRunResponse{
			RunID:      run.ID,
			Score:      run.Score,
			NewBalance: user.CurrCoins,
		}
		return nil
	})
	if err != nil {
		return domain.FinishRunResponse{}, err
	}

	logger.DBLogger.Info("Run recorded", zap.String("request_id", requestID), zap.String("user_id", userID), zap.Int64("run_id", response.RunID))
	return response, nil
}

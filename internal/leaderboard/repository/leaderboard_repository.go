package repository

import (
	"context"
	"fmt"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ownerName = "COALESCE(NULLIF(u.display_name, ''), u.username, '') AS owner_name"

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) domain.LeaderboardRepository {
	return &leaderboardRepository{
		db: db,
	}
}

func (r *leaderboardRepository) mintedScores(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("minted_scores AS m").
		Select("m.score, m.tx_hash, m.image_url, m.user_id AS owner_id, " + ownerName).
		Joins("JOIN users AS u ON u.uuid = m.user_id").
		Order("m.score DESC")
}

func (r *leaderboardRepository) TopMintedScores(ctx context.Context, limit int) ([]domain.MintedScoreEntry, error) {
	requestID := middleware.GetRequestID(ctx)

	entries := make([]domain.MintedScoreEntry, 0)
	if err := r.mintedScores(ctx).Limit(limit).Scan(&entries).Error; err != nil {
		logger.DBLogger.Error("Failed to fetch minted leaderboard", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	return entries, nil
}

func (r *leaderboardRepository) UserMintedScores(ctx context.Context, userID string) ([]domain.MintedScoreEntry, error) {
	requestID := middleware.GetRequestID(ctx)

	entries := make([]domain.MintedScoreEntry, 0)
	if err := r.mintedScores(ctx).Where("m.user_id = ?", userID).Scan(&entries).Error; err != nil {
		logger.DBLogger.Error("Failed to fetch user minted scores", zap.String("request_id", requestID), zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch minted scores: %w", err)
	}
	return entries, nil
}

func (r *leaderboardRepository) TopRuns(ctx context.Context, limit int) ([]domain.RunEntry, error) {
	requestID := middleware.GetRequestID(ctx)

	entries := make([]domain.RunEntry, 0)
	err := r.db.WithContext(ctx).
		Table("runs AS r").
		Select("r.id AS run_id, r.score, r.user_id AS owner_id, u.fid AS owner_fid, " + ownerName).
		Joins("JOIN users AS u ON u.uuid = r.user_id").
		Order("r.score DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		logger.DBLogger.Error("Failed to fetch run leaderboard", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}
	return entries, nil
}

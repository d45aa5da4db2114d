package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	requestID := middleware.GetRequestID(ctx)

	var user domain.User
	if err := r.db.WithContext(ctx).Where("uuid = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.DBLogger.Warn("User not found", zap.String("request_id", requestID), zap.String("user_id", userID))
			return nil, domain.ErrUserNotFound
		}
		logger.DBLogger.Error("Failed to get user", zap.String("request_id", requestID), zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// GetByWallet matches the address case-insensitively.
func (r *userRepository) GetByWallet(ctx context.Context, address string) (*domain.User, error) {
	requestID := middleware.GetRequestID(ctx)

	var user domain.User
	err := r.db.WithContext(ctx).
		Where("LOWER(wallet_address) = ?", strings.ToLower(address)).
		Order("created_at").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		logger.DBLogger.Error("Failed to get user by wallet", zap.String("request_id", requestID), zap.String("wallet", address), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) SpendOnUpgrade(ctx context.Context, userID string, kind domain.UpgradeKind, fromLevel int, cost int64) (*domain.User, error) {
	requestID := middleware.GetRequestID(ctx)
	logger.DBLogger.Info("SpendOnUpgrade called",
		zap.String("request_id", requestID),
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.Int("from_level", fromLevel),
		zap.Int64("cost", cost),
	)

	column := levelColumn(kind)
	var user domain.User
	result := r.db.WithContext(ctx).
		Model(&user).
		Clauses(clause.Returning{}).
		Where("uuid = ? AND "+column+" = ? AND curr_coins >= ?", userID, fromLevel, cost).
		UpdateColumns(map[string]interface{}{
			"curr_coins": gorm.Expr("curr_coins - ?", cost),
			column:       gorm.Expr(column + " + 1"),
		})
	if result.Error != nil {
		logger.DBLogger.Error("Failed to spend on upgrade", zap.String("request_id", requestID), zap.String("user_id", userID), zap.Error(result.Error))
		return nil, fmt.Errorf("failed to update user balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.DBLogger.Info("Upgrade guard did not match", zap.String("request_id", requestID), zap.String("user_id", userID))
		return nil, domain.ErrConcurrentUpdate
	}

	logger.DBLogger.Info("Upgrade purchased", zap.String("request_id", requestID), zap.String("user_id", userID), zap.String("kind", string(kind)))
	return &user, nil
}

// LinkWallet stores the address lowercased so lookups stay index friendly.
func (r *userRepository) LinkWallet(ctx context.Context, userID string, address string) error {
	requestID := middleware.GetRequestID(ctx)

	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("uuid = ?", userID).
		Update("wallet_address", strings.ToLower(address))
	if isUniqueViolation(result.Error) {
		logger.DBLogger.Warn("Wallet already linked elsewhere", zap.String("request_id", requestID), zap.String("user_id", userID))
		return domain.ErrWalletTaken
	}
	if result.Error != nil {
		logger.DBLogger.Error("Failed to link wallet", zap.String("request_id", requestID), zap.String("user_id", userID), zap.Error(result.Error))
		return fmt.Errorf("failed to link wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	logger.DBLogger.Info("Wallet linked", zap.String("request_id", requestID), zap.String("user_id", userID))
	return nil
}

func levelColumn(kind domain.UpgradeKind) string {
	if kind == domain.UpgradeCrit {
		return "crit_upgrades"
	}
	return "value_upgrades"
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type authRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) domain.AuthRepository {
	return &authRepository{
		db: db,
	}
}

// UpsertIdentity creates the user on first sign-in. An existing row is only
// touched, never reset: earned coins and upgrade levels survive.
func (r *authRepository) UpsertIdentity(ctx context.Context, fid int64) (*domain.User, error) {
	requestID := middleware.GetRequestID(ctx)
	logger.DBLogger.Info("UpsertIdentity called", zap.String("request_id", requestID), zap.Int64("fid", fid))

	return r.upsert(ctx, newUser(fid), []string{"updated_at"})
}

func (r *authRepository) UpsertProfile(ctx context.Context, fid int64, profile domain.Profile) (*domain.User, error) {
	requestID := middleware.GetRequestID(ctx)
	logger.DBLogger.Info("UpsertProfile called", zap.String("request_id", requestID), zap.Int64("fid", fid))

	user := newUser(fid)
	columns := []string{"updated_at"}
	if profile.Username != "" {
		user.Username = &profile.Username
		columns = append(columns, "username")
	}
	if profile.DisplayName != "" {
		user.DisplayName = &profile.DisplayName
		columns = append(columns, "display_name")
	}
	if profile.PfpURL != "" {
		user.PfpURL = &profile.PfpURL
		columns = append(columns, "pfp_url")
	}
	return r.upsert(ctx, user, columns)
}

func (r *authRepository) upsert(ctx context.Context, user *domain.User, updateColumns []string) (*domain.User, error) {
	requestID := middleware.GetRequestID(ctx)
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "fid"}},
				DoUpdates: clause.AssignmentColumns(updateColumns),
			},
			clause.Returning{},
		).
		Create(user).Error
	if err != nil {
		logger.DBLogger.Error("Error upserting user", zap.String("request_id", requestID), zap.Int64("fid", user.Fid), zap.Error(err))
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	if user.UUID == "" {
		return nil, errors.New("failed to upsert user: no id returned")
	}
	logger.DBLogger.Info("Successfully upsert user", zap.String("request_id", requestID), zap.String("user_id", user.UUID), zap.Int64("fid", user.Fid))
	return user, nil
}

func newUser(fid int64) *domain.User {
	username := fmt.Sprintf("user_%d", fid)
	return &domain.User{
		Fid:           fid,
		Username:      &username,
		CurrCoins:     0,
		LtimeCoins:    0,
		ValueUpgrades: 1,
		CritUpgrades:  1,
	}
}

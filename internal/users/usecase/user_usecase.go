package usecase

import (
	"context"
	"errors"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"
	"scoremint/internal/service/validation"

	"go.uber.org/zap"
)

// upgradeAttempts bounds retries when another request moved the balance or
// level between our read and the guarded update.
const upgradeAttempts = 3

type UserUsecase interface {
	Profile(ctx context.Context, userID string) (domain.ProfileResponse, error)
	Upgrade(ctx context.Context, userID string, kind domain.UpgradeKind) (domain.UpgradeResponse, error)
	LinkWallet(ctx context.Context, userID string, address string) (domain.ProfileResponse, error)
}

type userUsecase struct {
	users domain.UserRepository
}

func NewUserUsecase(users domain.UserRepository) UserUsecase {
	return &userUsecase{
		users: users,
	}
}

func (uc *userUsecase) Profile(ctx context.Context, userID string) (domain.ProfileResponse, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}
	return toProfile(user), nil
}

func (uc *userUsecase) Upgrade(ctx context.Context, userID string, kind domain.UpgradeKind) (domain.UpgradeResponse, error) {
	requestID := middleware.GetRequestID(ctx)

	for attempt := 0; attempt < upgradeAttempts; attempt++ {
		user, err := uc.users.GetByID(ctx, userID)
		if err != nil {
			return domain.UpgradeResponse{}, err
		}

		level := currentLevel(user, kind)
		cost := domain.UpgradeCost(kind, level)
		if user.CurrCoins < cost {
			logger.AccessLogger.Info("Insufficient coins for upgrade",
				zap.String("request_id", requestID),
				zap.String("user_id", userID),
				zap.String("kind", string(kind)),
				zap.Int64("cost", cost),
				zap.Int64("coins", user.CurrCoins),
			)
			return domain.UpgradeResponse{}, domain.ErrInsufficientCoins
		}

		updated, err := uc.users.SpendOnUpgrade(ctx, userID, kind, level, cost)
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			continue
		}
		if err != nil {
			return domain.UpgradeResponse{}, err
		}

		newLevel := currentLevel(updated, kind)
		return domain.UpgradeResponse{
			Kind:           kind,
			NewLevel:       newLevel,
			NewValue:       levelValue(kind, newLevel),
			Cost:           cost,
			RemainingCoins: updated.CurrCoins,
		}, nil
	}

	logger.AccessLogger.Warn("Upgrade kept racing", zap.String("request_id", requestID), zap.String("user_id", userID))
	return domain.UpgradeResponse{}, domain.ErrConcurrentUpdate
}

func (uc *userUsecase) LinkWallet(ctx context.Context, userID string, address string) (domain.ProfileResponse, error) {
	if !validation.ValidateWallet(address) {
		return domain.ProfileResponse{}, domain.ErrInvalidWallet
	}
	if err := uc.users.LinkWallet(ctx, userID, address); err != nil {
		return domain.ProfileResponse{}, err
	}
	return uc.Profile(ctx, userID)
}

func currentLevel(user *domain.User, kind domain.UpgradeKind) int {
	if kind == domain.UpgradeCrit {
		return user.CritUpgrades
	}
	return user.ValueUpgrades
}

func levelValue(kind domain.UpgradeKind, level int) int64 {
	if kind == domain.UpgradeCrit {
		return domain.CritValue(level)
	}
	return domain.TapValue(level)
}

func toProfile(user *domain.User) domain.ProfileResponse {
	profile := domain.ProfileResponse{
		ID:            user.UUID,
		Fid:           user.Fid,
		Username:      user.Name(),
		Coins:         user.CurrCoins,
		LifetimeCoins: user.LtimeCoins,
		ValueUpgrades: user.ValueUpgrades,
		CritUpgrades:  user.CritUpgrades,
	}
	if user.WalletAddress != nil {
		profile.WalletAddress = *user.WalletAddress
	}
	return profile
}

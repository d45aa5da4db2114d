package usecase

import (
	"context"
	"errors"
	"testing"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/users/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const userID = "2b7e1516-28ae-4d2a-a6d2-abf7158809cf"

func TestUpgradeCost(t *testing.T) {
	assert.Equal(t, int64(50), domain.UpgradeCost(domain.UpgradeValue, 1))
	assert.Equal(t, int64(70), domain.UpgradeCost(domain.UpgradeValue, 2))
	assert.Equal(t, int64(150), domain.UpgradeCost(domain.UpgradeCrit, 1))
	assert.Equal(t, int64(270), domain.UpgradeCost(domain.UpgradeCrit, 2))
	assert.Equal(t, int64(50), domain.UpgradeCost(domain.UpgradeValue, 0))

	assert.Equal(t, int64(2), domain.TapValue(1))
	assert.Equal(t, int64(3), domain.TapValue(2))
	assert.Equal(t, int64(1), domain.CritValue(1))
	assert.Equal(t, int64(5), domain.CritValue(3))
}

func TestUpgrade(t *testing.T) {
	logger.AccessLogger = zap.NewNop()
	ctx := context.Background()

	t.Run("Insufficient Coins Mutates Nothing", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		uc := NewUserUsecase(repo)
		repo.On("GetByID", mock.Anything, userID).Return(&domain.User{UUID: userID, CurrCoins: 100, ValueUpgrades: 1, CritUpgrades: 1}, nil)

		_, err := uc.Upgrade(ctx, userID, domain.UpgradeCrit)
		assert.ErrorIs(t, err, domain.ErrInsufficientCoins)
		repo.AssertNotCalled(t, "SpendOnUpgrade", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Value Level One To Two", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		uc := NewUserUsecase(repo)
		repo.On("GetByID", mock.Anything, userID).Return(&domain.User{UUID: userID, CurrCoins: 200, ValueUpgrades: 1, CritUpgrades: 1}, nil)
		repo.On("SpendOnUpgrade", mock.Anything, userID, domain.UpgradeValue, 1, int64(50)).
			Return(&domain.User{UUID: userID, CurrCoins: 150, ValueUpgrades: 2, CritUpgrades: 1}, nil)

		resp, err := uc.Upgrade(ctx, userID, domain.UpgradeValue)
		require.NoError(t, err)
		assert.Equal(t, domain.UpgradeResponse{
			Kind: domain.UpgradeValue, NewLevel: 2, NewValue: 3, Cost: 50, RemainingCoins: 150,
		}, resp)
	})

	t.Run("Retries After Concurrent Change", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		uc := NewUserUsecase(repo)
		repo.On("GetByID", mock.Anything, userID).Return(&domain.User{UUID: userID, CurrCoins: 500, CritUpgrades: 1}, nil).Once()
		repo.On("GetByID", mock.Anything, userID).Return(&domain.User{UUID: userID, CurrCoins: 500, CritUpgrades: 2}, nil).Once()
		repo.On("SpendOnUpgrade", mock.Anything, userID, domain.UpgradeCrit, 1, int64(150)).Return(nil, domain.ErrConcurrentUpdate).Once()
		repo.On("SpendOnUpgrade", mock.Anything, userID, domain.UpgradeCrit, 2, int64(270)).
			Return(&domain.User{UUID: userID, CurrCoins: 230, CritUpgrades: 3}, nil).Once()

		resp, err := uc.Upgrade(ctx, userID, domain.UpgradeCrit)
		require.NoError(t, err)
		assert.Equal(t, 3, resp.NewLevel)
		assert.Equal(t, int64(5), resp.NewValue)
		assert.Equal(t, int64(230), resp.RemainingCoins)
		repo.AssertExpectations(t)
	})

	t.Run("Gives Up After Repeated Races", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		uc := NewUserUsecase(repo)
		repo.On("GetByID", mock.Anything, userID).Return(&domain.User{UUID: userID, CurrCoins: 500, ValueUpgrades: 1}, nil)
		repo.On("SpendOnUpgrade", mock.Anything, userID, domain.UpgradeValue, 1, int64(50)).Return(nil, domain.ErrConcurrentUpdate)

		_, err := uc.Upgrade(ctx, userID, domain.UpgradeValue)
		assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
		repo.AssertNumberOfCalls(t, "SpendOnUpgrade", upgradeAttempts)
	})

	t.Run("Unknown User", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		uc := NewUserUsecase(repo)
		repo.On("GetByID", mock.Anything, userID).Return(nil, domain.ErrUserNotFound)

		_, err := uc.Upgrade(ctx, userID, domain.UpgradeValue)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestLinkWallet(t *testing.T) {
	logger.AccessLogger = zap.NewNop()
	ctx := context.Background()
	address := "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"

	t.Run("Success", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		uc := NewUserUsecase(repo)
		stored := "0xabcdef0123456789abcdef0123456789abcdef01"
		repo.On("LinkWallet", mock.Anything, userID, address).Return(nil)
		repo.On("GetByID", mock.Anything, userID).Return(&domain.User{UUID: userID, WalletAddress: &stored}, nil)

		profile, err := uc.LinkWallet(ctx, userID, address)
		require.NoError(t, err)
		assert.Equal(t, stored, profile.WalletAddress)
	})

	t.Run("Malformed Address", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		uc := NewUserUsecase(repo)

		_, err := uc.LinkWallet(ctx, userID, "0x123")
		assert.ErrorIs(t, err, domain.ErrInvalidWallet)
		repo.AssertNotCalled(t, "LinkWallet", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Store Failure", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		uc := NewUserUsecase(repo)
		repo.On("LinkWallet", mock.Anything, userID, address).Return(errors.New("connection reset"))

		_, err := uc.LinkWallet(ctx, userID, address)
		assert.Error(t, err)
	})
}

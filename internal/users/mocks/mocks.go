package mocks

import (
	"context"

	"scoremint/domain"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByWallet(ctx context.Context, address string) (*domain.User, error) {
	args := m.Called(ctx, address)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) SpendOnUpgrade(ctx context.Context, userID string, kind domain.UpgradeKind, fromLevel int, cost int64) (*domain.User, error) {
	args := m.Called(ctx, userID, kind, fromLevel, cost)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) LinkWallet(ctx context.Context, userID string, address string) error {
	args := m.Called(ctx, userID, address)
	return args.Error(0)
}

type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) Profile(ctx context.Context, userID string) (domain.ProfileResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.ProfileResponse), args.Error(1)
}

func (m *MockUserUsecase) Upgrade(ctx context.Context, userID string, kind domain.UpgradeKind) (domain.UpgradeResponse, error) {
	args := m.Called(ctx, userID, kind)
	return args.Get(0).(domain.UpgradeResponse), args.Error(1)
}

func (m *MockUserUsecase) LinkWallet(ctx context.Context, userID string, address string) (domain.ProfileResponse, error) {
	args := m.Called(ctx, userID, address)
	return args.Get(0).(domain.ProfileResponse), args.Error(1)
}

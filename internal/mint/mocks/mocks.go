package mocks

import (
	"context"

	"scoremint/domain"

	"github.com/stretchr/testify/mock"
)

type MockMintRepository struct {
	mock.Mock
}

func (m *MockMintRepository) CreateMintedScore(ctx context.Context, minted *domain.MintedScore) error {
	args := m.Called(ctx, minted)
	return args.Error(0)
}

func (m *MockMintRepository) GetByScore(ctx context.Context, score int64) (*domain.MintedScore, error) {
	args := m.Called(ctx, score)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.MintedScore), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockChainGateway struct {
	mock.Mock
}

func (m *MockChainGateway) IsClaimed(ctx context.Context, score int64) (bool, error) {
	args := m.Called(ctx, score)
	return args.Bool(0), args.Error(1)
}

func (m *MockChainGateway) OwnerOf(ctx context.Context, score int64) (string, error) {
	args := m.Called(ctx, score)
	return args.String(0), args.Error(1)
}

func (m *MockChainGateway) Claim(ctx context.Context, score int64, to string) (string, error) {
	args := m.Called(ctx, score, to)
	return args.String(0), args.Error(1)
}

type MockAssetEnricher struct {
	mock.Mock
}

func (m *MockAssetEnricher) Enrich(ctx context.Context, score int64, owner *domain.User) string {
	args := m.Called(ctx, score, owner)
	return args.String(0)
}

type MockScoreLock struct {
	mock.Mock
}

func (m *MockScoreLock) Acquire(ctx context.Context, score int64) (func(), error) {
	args := m.Called(ctx, score)
	if args.Get(0) != nil {
		return args.Get(0).(func()), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockMintUsecase struct {
	mock.Mock
}

func (m *MockMintUsecase) Mint(ctx context.Context, userID string, score int64) (domain.MintResult, error) {
	args := m.Called(ctx, userID, score)
	return args.Get(0).(domain.MintResult), args.Error(1)
}

func (m *MockMintUsecase) CheckScore(ctx context.Context, score int64) (domain.ScoreStatus, error) {
	args := m.Called(ctx, score)
	return args.Get(0).(domain.ScoreStatus), args.Error(1)
}

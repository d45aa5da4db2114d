package mocks

import (
	"context"

	"scoremint/domain"

	"github.com/stretchr/testify/mock"
)

type MockLeaderboardRepository struct {
	mock.Mock
}

func (m *MockLeaderboardRepository) TopMintedScores(ctx context.Context, limit int) ([]domain.MintedScoreEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.MintedScoreEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaderboardRepository) UserMintedScores(ctx context.Context, userID string) ([]domain.MintedScoreEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.MintedScoreEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaderboardRepository) TopRuns(ctx context.Context, limit int) ([]domain.RunEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.RunEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLeaderboardUsecase struct {
	mock.Mock
}

func (m *MockLeaderboardUsecase) TopMintedScores(ctx context.Context, limit int) ([]domain.MintedScoreEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.MintedScoreEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaderboardUsecase) UserMintedScores(ctx context.Context, userID string) ([]domain.MintedScoreEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.MintedScoreEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaderboardUsecase) TopRuns(ctx context.Context, limit int) ([]domain.RunEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.RunEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

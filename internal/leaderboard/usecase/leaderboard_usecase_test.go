package usecase

import (
	"context"
	"testing"

	"scoremint/domain"
	"scoremint/internal/leaderboard/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLimitClamping(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		requested int
		applied   int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{5000, MaxLimit},
	}
	for _, tc := range cases {
		repo := new(mocks.MockLeaderboardRepository)
		repo.On("TopMintedScores", mock.Anything, tc.applied).Return([]domain.MintedScoreEntry{}, nil)
		repo.On("TopRuns", mock.Anything, tc.applied).Return([]domain.RunEntry{}, nil)
		uc := NewLeaderboardUsecase(repo)

		_, err := uc.TopMintedScores(ctx, tc.requested)
		require.NoError(t, err)
		_, err = uc.TopRuns(ctx, tc.requested)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	}
}

func TestUserMintedScores(t *testing.T) {
	repo := new(mocks.MockLeaderboardRepository)
	repo.On("UserMintedScores", mock.Anything, "user-1").Return([]domain.MintedScoreEntry{{Score: 9}, {Score: 3}}, nil)

	entries, err := NewLeaderboardUsecase(repo).UserMintedScores(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEmptyBoardIsNotNil(t *testing.T) {
	repo := new(mocks.MockLeaderboardRepository)
	repo.On("TopRuns", mock.Anything, DefaultLimit).Return(nil, nil)

	entries, err := NewLeaderboardUsecase(repo).TopRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

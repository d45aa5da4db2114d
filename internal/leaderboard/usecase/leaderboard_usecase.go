package usecase

import (
	"context"

	"scoremint/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type LeaderboardUsecase interface {
	TopMintedScores(ctx context.Context, limit int) ([]domain.MintedScoreEntry, error)
	UserMintedScores(ctx context.Context, userID string) ([]domain.MintedScoreEntry, error)
	TopRuns(ctx context.Context, limit int) ([]domain.RunEntry, error)
}

type leaderboardUsecase struct {
	repo domain.LeaderboardRepository
}

func NewLeaderboardUsecase(repo domain.LeaderboardRepository) LeaderboardUsecase {
	return &leaderboardUsecase{
		repo: repo,
	}
}

func (uc *leaderboardUsecase) TopMintedScores(ctx context.Context, limit int) ([]domain.MintedScoreEntry, error) {
	entries, err := uc.repo.TopMintedScores(ctx, clamp(limit))
	if err != nil {
		return nil, err
	}
	return nonNil(entries), nil
}

func (uc *leaderboardUsecase) UserMintedScores(ctx context.Context, userID string) ([]domain.MintedScoreEntry, error) {
	entries, err := uc.repo.UserMintedScores(ctx, userID)
	if err != nil {
		return nil, err
	}
	return nonNil(entries), nil
}

func (uc *leaderboardUsecase) TopRuns(ctx context.Context, limit int) ([]domain.RunEntry, error) {
	entries, err := uc.repo.TopRuns(ctx, clamp(limit))
	if err != nil {
		return nil, err
	}
	return nonNil(entries), nil
}

// nonNil keeps empty boards encoding as [] rather than null.
func nonNil[T any](entries []T) []T {
	if entries == nil {
		return []T{}
	}
	return entries
}

// clamp maps non-positive limits to the default and caps the rest.
func clamp(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

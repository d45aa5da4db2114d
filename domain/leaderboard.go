package domain

import "context"

type MintedScoreEntry struct {
	Score     int64  `json:"score"`
	TxHash    string `json:"txHash"`
	ImageURL  string `json:"imageUrl"`
	OwnerID   string `json:"ownerId"`
	OwnerName string `json:"ownerName"`
}

type RunEntry struct {
	RunID     int64  `json:"runId"`
	Score     int64  `json:"score"`
	OwnerID   string `json:"ownerId"`
	OwnerName string `json:"ownerName"`
	OwnerFid  int64  `json:"ownerFid"`
}

type LeaderboardRepository interface {
	TopMintedScores(ctx context.Context, limit int) ([]MintedScoreEntry, error)
	UserMintedScores(ctx context.Context, userID string) ([]MintedScoreEntry, error)
	TopRuns(ctx context.Context, limit int) ([]RunEntry, error)
}

package domain

import (
	"context"
	"time"
)

type MintedScore struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"-"`
	Score     int64     `gorm:"type:bigint;uniqueIndex;not null;column:score" json:"score"`
	UserID    string    `gorm:"type:uuid;not null;index;column:user_id" json:"userId"`
	TxHash    string    `gorm:"type:varchar(66);column:tx_hash" json:"txHash"`
	ImageURL  string    `gorm:"type:text;column:image_url" json:"imageUrl"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	User      User      `gorm:"foreignkey:UserID;references:UUID" json:"-"`
}

type MintStatus string

const (
	// MintStatusMinted is a fresh claim that is also recorded locally.
	MintStatusMinted MintStatus = "minted"
	// MintStatusAlreadyOwned is a retry for a score this user already holds on chain.
	MintStatusAlreadyOwned MintStatus = "already_owned"
	// MintStatusPartial means the chain write went through but the local record did not.
	MintStatusPartial MintStatus = "partial"
)

type MintRequest struct {
	Score int64 `json:"score"`
}

type MintResult struct {
	Success  bool       `json:"success"`
	Score    int64      `json:"score"`
	TxHash   string     `json:"txHash"`
	ImageURL string     `json:"imageUrl"`
	Status   MintStatus `json:"status"`
}

type ScoreStatus struct {
	Available bool   `json:"available"`
	Owner     string `json:"owner,omitempty"`
}

// ClaimCheckPolicy decides what a failed IsClaimed read means.
type ClaimCheckPolicy string

const (
	// AvailabilityBiasedCheck treats an unreadable claim flag as "not claimed"
	// and leaves the final word to the contract.
	AvailabilityBiasedCheck ClaimCheckPolicy = "availability"
	// StrictCheck refuses to proceed when the claim flag cannot be read.
	StrictCheck ClaimCheckPolicy = "strict"
)

type MintRepository interface {
	// CreateMintedScore fails with ErrScoreAlreadyRecorded when the score row exists.
	CreateMintedScore(ctx context.Context, minted *MintedScore) error
	GetByScore(ctx context.Context, score int64) (*MintedScore, error)
}

type ChainGateway interface {
	IsClaimed(ctx context.Context, score int64) (bool, error)
	// OwnerOf returns ErrTokenNotFound when the contract reverts for an unminted score.
	OwnerOf(ctx context.Context, score int64) (string, error)
	// Claim returns the tx hash once the node accepts the transaction. On
	// ErrChainOutcomeUnknown the hash is still returned.
	Claim(ctx context.Context, score int64, to string) (string, error)
}

type AssetEnricher interface {
	// Enrich never fails; it falls back to a placeholder URL.
	Enrich(ctx context.Context, score int64, owner *User) string
}

// ScoreLock serialises claim attempts for one score across backend replicas.
type ScoreLock interface {
	Acquire(ctx context.Context, score int64) (release func(), err error)
}

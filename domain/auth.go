package domain

import (
	"context"
	"time"
)

type User struct {
	UUID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid();column:uuid" json:"id"`
	Fid           int64     `gorm:"uniqueIndex;not null;column:fid" json:"fid"`
	Username      *string   `gorm:"type:varchar(64);column:username" json:"username"`
	DisplayName   *string   `gorm:"type:varchar(128);column:display_name" json:"displayName"`
	PfpURL        *string   `gorm:"type:text;column:pfp_url" json:"pfpUrl"`
	WalletAddress *string   `gorm:"type:varchar(42);uniqueIndex;column:wallet_address" json:"walletAddress"`
	CurrCoins     int64     `gorm:"type:bigint;not null;column:curr_coins" json:"coins"`
	LtimeCoins    int64     `gorm:"type:bigint;not null;column:ltime_coins" json:"lifetimeCoins"`
	ValueUpgrades int       `gorm:"type:int;not null;column:value_upgrades" json:"valueUpgrades"`
	CritUpgrades  int       `gorm:"type:int;not null;column:crit_upgrades" json:"critUpgrades"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// Name is what leaderboards show for the user.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return ""
}

type Nonce struct {
	Token     string    `gorm:"type:varchar(64);primaryKey;column:token" json:"token"`
	CreatedAt time.Time `gorm:"not null;index;column:created_at" json:"createdAt"`
}

type LoginRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
}

// SilentLoginRequest carries identity asserted by the embedding client.
// Nothing in it is signed: it is only as trustworthy as the channel it came over.
type SilentLoginRequest struct {
	Fid         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PfpURL      string `json:"pfpUrl"`
}

type Profile struct {
	Username    string
	DisplayName string
	PfpURL      string
}

type SignInRequest struct {
	Message   string
	Signature string
	Nonce     string
	Domain    string
}

type Session struct {
	Token     string    `json:"accessToken"`
	UserID    string    `json:"userId"`
	Fid       int64     `json:"fid"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthRepository interface {
	UpsertIdentity(ctx context.Context, fid int64) (*User, error)
	UpsertProfile(ctx context.Context, fid int64, profile Profile) (*User, error)
}

// NonceStore is the pending set of sign-in challenges.
type NonceStore interface {
	Add(ctx context.Context, token string) error
	// Consume removes the token and fails with ErrInvalidNonce if it was
	// never issued, already consumed or expired.
	Consume(ctx context.Context, token string) error
	Sweep(ctx context.Context) (int64, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, req SignInRequest) (int64, error)
}

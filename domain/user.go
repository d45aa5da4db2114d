package domain

import (
	"context"
	"math"
)

type UpgradeKind string

const (
	UpgradeValue UpgradeKind = "value"
	UpgradeCrit  UpgradeKind = "crit"
)

const (
	baseValueCost       = 50
	valueCostMultiplier = 1.4
	baseCritCost        = 150
	critCostMultiplier  = 1.8
)

// UpgradeCost is the price of moving from currentLevel to currentLevel+1.
func UpgradeCost(kind UpgradeKind, currentLevel int) int64 {
	if currentLevel < 1 {
		currentLevel = 1
	}
	switch kind {
	case UpgradeCrit:
		return int64(math.Floor(baseCritCost * math.Pow(critCostMultiplier, float64(currentLevel-1))))
	default:
		return int64(math.Floor(baseValueCost * math.Pow(valueCostMultiplier, float64(currentLevel-1))))
	}
}

func TapValue(level int) int64 {
	return int64(math.Floor(1 + float64(level)*1.1))
}

func CritValue(level int) int64 {
	return 1 + int64(level-1)*2
}

type ProfileResponse struct {
	ID            string `json:"id"`
	Fid           int64  `json:"fid"`
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress"`
	Coins         int64  `json:"coins"`
	LifetimeCoins int64  `json:"lifetimeCoins"`
	ValueUpgrades int    `json:"valueUpgrades"`
	CritUpgrades  int    `json:"critUpgrades"`
}

type UpgradeResponse struct {
	Kind           UpgradeKind `json:"kind"`
	NewLevel       int         `json:"newLevel"`
	NewValue       int64       `json:"newValue"`
	Cost           int64       `json:"cost"`
	RemainingCoins int64       `json:"remainingCoins"`
}

type LinkWalletRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByWallet(ctx context.Context, address string) (*User, error)
	// SpendOnUpgrade atomically debits cost and bumps the level, provided the
	// balance covers it and the level is still fromLevel.
	SpendOnUpgrade(ctx context.Context, userID string, kind UpgradeKind, fromLevel int, cost int64) (*User, error)
	LinkWallet(ctx context.Context, userID string, address string) error
}

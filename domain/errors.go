package domain

import "errors"

// Validation failures: the caller must retry with corrected input.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidScore   = errors.New("score must be a non-negative integer")
	ErrInvalidWallet  = errors.New("invalid wallet address")
	ErrInvalidProfile = errors.New("invalid profile")
)

// Auth failures: the caller must restart the challenge flow.
var (
	ErrInvalidNonce       = errors.New("invalid or expired nonce")
	ErrVerificationFailed = errors.New("sign-in verification failed")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrMissingToken       = errors.New("missing session token")
	ErrSilentLoginOff     = errors.New("silent login is disabled")
)

// Rejections raised before any chain write.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrNoWallet          = errors.New("please connect your wallet first")
	ErrAlreadyClaimed    = errors.New("score is already minted")
	ErrClaimInProgress   = errors.New("score claim already in progress")
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrWalletTaken       = errors.New("wallet is linked to another account")
)

// Upstream failures.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMintFailed          = errors.New("blockchain transaction failed")
	ErrChainWriteFailed    = errors.New("chain write failed")
	ErrChainReverted       = errors.New("contract reverted")
	ErrChainOutcomeUnknown = errors.New("chain write outcome unknown")
	ErrTokenNotFound       = errors.New("token does not exist")
)

// Store level conditions.
var (
	ErrScoreAlreadyRecorded = errors.New("score already recorded")
	ErrConcurrentUpdate     = errors.New("concurrent update")
)

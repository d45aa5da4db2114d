package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"
	"scoremint/internal/service/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// mintBudget bounds one shared mint run, chain write included.
const mintBudget = 2 * time.Minute

type MintUsecase interface {
	Mint(ctx context.Context, userID string, score int64) (domain.MintResult, error)
	CheckScore(ctx context.Context, score int64) (domain.ScoreStatus, error)
}

type mintUsecase struct {
	users    domain.UserRepository
	mints    domain.MintRepository
	chain    domain.ChainGateway
	enricher domain.AssetEnricher
	lock     domain.ScoreLock
	policy   domain.ClaimCheckPolicy
	inflight singleflight.Group
}

// NewMintUsecase wires the reconciler. lock may be nil when only one replica runs.
func NewMintUsecase(
	users domain.UserRepository,
	mints domain.MintRepository,
	chain domain.ChainGateway,
	enricher domain.AssetEnricher,
	lock domain.ScoreLock,
	policy domain.ClaimCheckPolicy,
) MintUsecase {
	return &mintUsecase{
		users:    users,
		mints:    mints,
		chain:    chain,
		enricher: enricher,
		lock:     lock,
		policy:   policy,
	}
}

// Mint moves a score from the game onto the chain and into the local record.
// Concurrent calls for the same user and score share one execution.
func (uc *mintUsecase) Mint(ctx context.Context, userID string, score int64) (domain.MintResult, error) {
	if !validation.ValidateScore(score) {
		return domain.MintResult{}, domain.ErrInvalidScore
	}

	key := userID + ":" + strconv.FormatInt(score, 10)
	v, err, shared := uc.inflight.Do(key, func() (interface{}, error) {
		// Joined callers must not inherit the first caller's cancellation, and
		// a hang-up must not abort a claim that may already be on the wire.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mintBudget)
		defer cancel()
		return uc.mint(ctx, userID, score)
	})
	if shared {
		logger.AccessLogger.Info("Joined in-flight mint",
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.String("user_id", userID),
			zap.Int64("score", score),
		)
	}
	if err != nil {
		return domain.MintResult{}, err
	}
	return v.(domain.MintResult), nil
}

func (uc *mintUsecase) mint(ctx context.Context, userID string, score int64) (domain.MintResult, error) {
	requestID := middleware.GetRequestID(ctx)

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.MintResult{}, domain.ErrNoWallet
		}
		return domain.MintResult{}, err
	}
	if user.WalletAddress == nil || *user.WalletAddress == "" {
		logger.AccessLogger.Warn("Mint without wallet", zap.String("request_id", requestID), zap.String("user_id", userID))
		return domain.MintResult{}, domain.ErrNoWallet
	}
	wallet := strings.ToLower(*user.WalletAddress)

	if uc.lock != nil {
		release, err := uc.lock.Acquire(ctx, score)
		switch {
		case err == nil:
			defer release()
		case errors.Is(err, domain.ErrClaimInProgress):
			return domain.MintResult{}, err
		case uc.policy == domain.StrictCheck:
			return domain.MintResult{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		default:
			logger.AccessLogger.Warn("Claim guard unavailable, relying on contract",
				zap.String("request_id", requestID),
				zap.Int64("score", score),
				zap.Error(err),
			)
		}
	}

	claimed, err := uc.chain.IsClaimed(ctx, score)
	if err != nil {
		if uc.policy == domain.StrictCheck {
			return domain.MintResult{}, err
		}
		logger.ChainLogger.Warn("Claim flag unreadable, assuming unclaimed",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.Error(err),
		)
		claimed = false
	}

	if claimed {
		owner, err := uc.chain.OwnerOf(ctx, score)
		switch {
		case err != nil:
			logger.ChainLogger.Warn("Owner unreadable for claimed score, continuing",
				zap.String("request_id", requestID),
				zap.Int64("score", score),
				zap.Error(err),
			)
		default:
			return uc.settleHeld(ctx, user, score, owner)
		}
	}

	txHash, err := uc.chain.Claim(ctx, score, wallet)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrChainOutcomeUnknown):
		if err := uc.confirmOwner(ctx, user, score, txHash); err != nil {
			return domain.MintResult{}, err
		}
	case errors.Is(err, domain.ErrChainReverted):
		return uc.settleRevert(ctx, user, score, err)
	default:
		return domain.MintResult{}, fmt.Errorf("%w: %w", domain.ErrMintFailed, err)
	}

	// The token exists from here on; the budget deadline must not stop the record.
	ctx = context.WithoutCancel(ctx)
	imageURL := uc.enricher.Enrich(ctx, score, user)

	status := domain.MintStatusMinted
	err = uc.mints.CreateMintedScore(ctx, &domain.MintedScore{
		Score:    score,
		UserID:   user.UUID,
		TxHash:   txHash,
		ImageURL: imageURL,
	})
	switch {
	case err == nil, errors.Is(err, domain.ErrScoreAlreadyRecorded):
	default:
		status = domain.MintStatusPartial
		logger.ChainLogger.Error("Minted score not recorded",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.String("user_id", user.UUID),
			zap.String("wallet", wallet),
			zap.String("tx_hash", txHash),
			zap.String("image_url", imageURL),
			zap.Error(err),
		)
	}

	logger.AccessLogger.Info("Score minted",
		zap.String("request_id", requestID),
		zap.Int64("score", score),
		zap.String("user_id", user.UUID),
		zap.String("tx_hash", txHash),
		zap.String("status", string(status)),
	)
	return domain.MintResult{
		Success:  true,
		Score:    score,
		TxHash:   txHash,
		ImageURL: imageURL,
		Status:   status,
	}, nil
}

// confirmOwner settles a submission whose outcome is unknown by asking the
// contract who holds the token now.
func (uc *mintUsecase) confirmOwner(ctx context.Context, user *domain.User, score int64, txHash string) error {
	requestID := middleware.GetRequestID(ctx)
	owner, err := uc.chain.OwnerOf(ctx, score)
	if err != nil {
		logger.ChainLogger.Warn("Mint outcome still unknown",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.String("tx_hash", txHash),
			zap.Error(err),
		)
		return fmt.Errorf("%w: tx %s", domain.ErrChainOutcomeUnknown, txHash)
	}
	mine, err := uc.heldBy(ctx, owner, user)
	if err != nil {
		return fmt.Errorf("%w: tx %s: %v", domain.ErrChainOutcomeUnknown, txHash, err)
	}
	if !mine {
		return domain.ErrAlreadyClaimed
	}
	logger.ChainLogger.Info("Unknown outcome resolved as ours",
		zap.String("request_id", requestID),
		zap.Int64("score", score),
		zap.String("tx_hash", txHash),
	)
	return nil
}

// settleRevert re-reads ownership after the contract refused the claim. A
// competing claimant that got there first is a conflict, not a chain failure.
func (uc *mintUsecase) settleRevert(ctx context.Context, user *domain.User, score int64, claimErr error) (domain.MintResult, error) {
	owner, err := uc.chain.OwnerOf(ctx, score)
	if err != nil {
		return domain.MintResult{}, fmt.Errorf("%w: %w", domain.ErrMintFailed, claimErr)
	}
	return uc.settleHeld(ctx, user, score, owner)
}

// settleHeld answers a mint for a score that already has an on-chain owner.
func (uc *mintUsecase) settleHeld(ctx context.Context, user *domain.User, score int64, owner string) (domain.MintResult, error) {
	mine, err := uc.heldBy(ctx, owner, user)
	if err != nil {
		return domain.MintResult{}, err
	}
	if mine {
		return uc.alreadyOwned(ctx, user, score)
	}
	logger.AccessLogger.Info("Score held by another owner",
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.Int64("score", score),
		zap.String("owner", owner),
	)
	return domain.MintResult{}, domain.ErrAlreadyClaimed
}

// heldBy maps the on-chain owner to a local user and reports whether that
// user is the caller. An owner no one here has linked belongs to someone else.
func (uc *mintUsecase) heldBy(ctx context.Context, owner string, user *domain.User) (bool, error) {
	holder, err := uc.users.GetByWallet(ctx, owner)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return holder.UUID == user.UUID, nil
}

// alreadyOwned answers a retry for a score the caller holds on chain. A
// missing local row is backfilled without a tx reference.
func (uc *mintUsecase) alreadyOwned(ctx context.Context, user *domain.User, score int64) (domain.MintResult, error) {
	requestID := middleware.GetRequestID(ctx)
	result := domain.MintResult{
		Success: true,
		Score:   score,
		Status:  domain.MintStatusAlreadyOwned,
	}

	record, err := uc.mints.GetByScore(ctx, score)
	if err != nil {
		return domain.MintResult{}, err
	}
	if record != nil {
		if record.UserID != user.UUID {
			return domain.MintResult{}, domain.ErrAlreadyClaimed
		}
		result.TxHash = record.TxHash
		result.ImageURL = record.ImageURL
		return result, nil
	}

	result.ImageURL = uc.enricher.Enrich(ctx, score, user)
	err = uc.mints.CreateMintedScore(ctx, &domain.MintedScore{
		Score:    score,
		UserID:   user.UUID,
		ImageURL: result.ImageURL,
	})
	if err != nil && !errors.Is(err, domain.ErrScoreAlreadyRecorded) {
		result.Status = domain.MintStatusPartial
		logger.ChainLogger.Error("Minted score not recorded",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.String("user_id", user.UUID),
			zap.Error(err),
		)
	}
	return result, nil
}

// CheckScore reports whether a score is still claimable and, if not, who holds it.
func (uc *mintUsecase) CheckScore(ctx context.Context, score int64) (domain.ScoreStatus, error) {
	requestID := middleware.GetRequestID(ctx)
	if !validation.ValidateScore(score) {
		return domain.ScoreStatus{}, domain.ErrInvalidScore
	}

	owner, err := uc.chain.OwnerOf(ctx, score)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) || uc.policy != domain.StrictCheck {
			return domain.ScoreStatus{Available: true}, nil
		}
		return domain.ScoreStatus{}, err
	}

	status := domain.ScoreStatus{Available: false, Owner: owner}
	user, err := uc.users.GetByWallet(ctx, owner)
	switch {
	case err == nil && user.Name() != "":
		status.Owner = user.Name()
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		logger.AccessLogger.Warn("Owner lookup failed", zap.String("request_id", requestID), zap.Error(err))
	}
	return status, nil
}

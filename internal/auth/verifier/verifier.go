package verifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// farcasterVerifier checks a Sign In With Farcaster message: the message must
// be for our domain and nonce, be signed by the address it names, and that
// address must be the custody address of the fid in its resources.
type farcasterVerifier struct {
	custody CustodyReader
	timeout time.Duration
	now     func() time.Time
}

func NewFarcasterVerifier(custody CustodyReader, timeout time.Duration) domain.IdentityVerifier {
	return &farcasterVerifier{
		custody: custody,
		timeout: timeout,
		now:     time.Now,
	}
}

func (v *farcasterVerifier) Verify(ctx context.Context, req domain.SignInRequest) (int64, error) {
	requestID := middleware.GetRequestID(ctx)

	msg, err := ParseMessage(req.Message)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	if !strings.EqualFold(msg.Domain, req.Domain) {
		return 0, fmt.Errorf("%w: domain mismatch", domain.ErrVerificationFailed)
	}
	if msg.Nonce != req.Nonce {
		return 0, fmt.Errorf("%w: nonce mismatch", domain.ErrVerificationFailed)
	}
	now := v.now()
	if msg.ExpirationTime != nil && !now.Before(*msg.ExpirationTime) {
		return 0, fmt.Errorf("%w: message expired", domain.ErrVerificationFailed)
	}
	if msg.NotBefore != nil && now.Before(*msg.NotBefore) {
		return 0, fmt.Errorf("%w: message not yet valid", domain.ErrVerificationFailed)
	}
	fid, err := msg.Fid()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}

	signer, err := recoverSigner(req.Message, req.Signature)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	if !common.IsHexAddress(msg.Address) || signer != common.HexToAddress(msg.Address) {
		return 0, fmt.Errorf("%w: signature does not match address", domain.ErrVerificationFailed)
	}

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	custody, err := v.custody.CustodyOf(callCtx, fid)
	if err != nil {
		logger.ChainLogger.Error("Custody lookup failed", zap.String("request_id", requestID), zap.Int64("fid", fid), zap.Error(err))
		return 0, fmt.Errorf("%w: custody lookup: %v", domain.ErrUpstreamUnavailable, err)
	}
	if custody != signer {
		logger.ChainLogger.Warn("Signer is not custody address",
			zap.String("request_id", requestID),
			zap.Int64("fid", fid),
			zap.String("signer", signer.Hex()),
			zap.String("custody", custody.Hex()),
		)
		return 0, fmt.Errorf("%w: signer does not hold fid", domain.ErrVerificationFailed)
	}

	return fid, nil
}

func recoverSigner(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, err
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errors.New("bad signature length")
	}
	// wallets produce v in {27, 28}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

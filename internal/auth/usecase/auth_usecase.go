package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"scoremint/domain"
	"scoremint/internal/auth/verifier"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"
	"scoremint/internal/service/validation"

	"go.uber.org/zap"
)

const nonceBytes = 16

type AuthUsecase interface {
	IssueChallenge(ctx context.Context) (string, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error)
	LoginSilent(ctx context.Context, req domain.SilentLoginRequest) (domain.Session, error)
}

type Options struct {
	Domain           string
	SessionTTL       time.Duration
	AllowSilentLogin bool
}

type authUsecase struct {
	authRepository domain.AuthRepository
	nonces         domain.NonceStore
	verifier       domain.IdentityVerifier
	jwtToken       middleware.JwtTokenService
	opts           Options
	now            func() time.Time
}

func NewAuthUsecase(
	authRepository domain.AuthRepository,
	nonces domain.NonceStore,
	identityVerifier domain.IdentityVerifier,
	jwtToken middleware.JwtTokenService,
	opts Options,
) AuthUsecase {
	return &authUsecase{
		authRepository: authRepository,
		nonces:         nonces,
		verifier:       identityVerifier,
		jwtToken:       jwtToken,
		opts:           opts,
		now:            time.Now,
	}
}

func (uc *authUsecase) IssueChallenge(ctx context.Context) (string, error) {
	requestID := middleware.GetRequestID(ctx)
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		logger.AccessLogger.Error("Failed to generate nonce", zap.String("request_id", requestID), zap.Error(err))
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)
	if err := uc.nonces.Add(ctx, nonce); err != nil {
		return "", err
	}
	return nonce, nil
}

// Login consumes the nonce before checking the signature: a failed attempt
// burns the challenge and the client has to ask for a new one.
func (uc *authUsecase) Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error) {
	requestID := middleware.GetRequestID(ctx)

	if !validation.ValidateMessage(req.Message) || !validation.ValidateSignature(req.Signature) {
		logger.AccessLogger.Warn("Malformed login request", zap.String("request_id", requestID))
		return domain.Session{}, domain.ErrInvalidInput
	}

	nonce := req.Nonce
	embedded := verifier.NonceOf(req.Message)
	switch {
	case nonce == "":
		nonce = embedded
	case embedded != "" && embedded != nonce:
		logger.AccessLogger.Warn("Nonce does not match message", zap.String("request_id", requestID))
		return domain.Session{}, domain.ErrInvalidNonce
	}
	if !validation.ValidateNonce(nonce) {
		logger.AccessLogger.Warn("Malformed nonce", zap.String("request_id", requestID))
		return domain.Session{}, domain.ErrInvalidNonce
	}

	if err := uc.nonces.Consume(ctx, nonce); err != nil {
		return domain.Session{}, err
	}

	fid, err := uc.verifier.Verify(ctx, domain.SignInRequest{
		Message:   req.Message,
		Signature: req.Signature,
		Nonce:     nonce,
		Domain:    uc.opts.Domain,
	})
	if err != nil {
		logger.AccessLogger.Warn("Sign-in verification failed", zap.String("request_id", requestID), zap.Error(err))
		return domain.Session{}, err
	}

	user, err := uc.authRepository.UpsertIdentity(ctx, fid)
	if err != nil {
		return domain.Session{}, err
	}
	return uc.issue(ctx, user)
}

// LoginSilent trusts the fid and profile supplied by the embedding client.
// It is only as safe as the channel the request arrives on.
func (uc *authUsecase) LoginSilent(ctx context.Context, req domain.SilentLoginRequest) (domain.Session, error) {
	requestID := middleware.GetRequestID(ctx)

	if !uc.opts.AllowSilentLogin {
		return domain.Session{}, domain.ErrSilentLoginOff
	}
	if !validation.ValidateFid(req.Fid) {
		logger.AccessLogger.Warn("Invalid fid", zap.String("request_id", requestID), zap.Int64("fid", req.Fid))
		return domain.Session{}, domain.ErrInvalidInput
	}
	if !validation.ValidateUsername(req.Username) || !validation.ValidateDisplayName(req.DisplayName) || !validation.ValidatePfpURL(req.PfpURL) {
		logger.AccessLogger.Warn("Invalid profile fields", zap.String("request_id", requestID), zap.Int64("fid", req.Fid))
		return domain.Session{}, domain.ErrInvalidProfile
	}

	user, err := uc.authRepository.UpsertProfile(ctx, req.Fid, domain.Profile{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		PfpURL:      req.PfpURL,
	})
	if err != nil {
		return domain.Session{}, err
	}
	return uc.issue(ctx, user)
}

func (uc *authUsecase) issue(ctx context.Context, user *domain.User) (domain.Session, error) {
	requestID := middleware.GetRequestID(ctx)
	expiresAt := uc.now().Add(uc.opts.SessionTTL)
	token, err := uc.jwtToken.Create(user.UUID, user.Fid, expiresAt.Unix())
	if err != nil {
		logger.AccessLogger.Error("Failed to create JWT token", zap.String("request_id", requestID), zap.Error(err))
		return domain.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	logger.AccessLogger.Info("Session issued", zap.String("request_id", requestID), zap.String("user_id", user.UUID), zap.Int64("fid", user.Fid))
	return domain.Session{
		Token:     token,
		UserID:    user.UUID,
		Fid:       user.Fid,
		ExpiresAt: expiresAt,
	}, nil
}

package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"scoremint/domain"
	"scoremint/internal/auth/usecase"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

type AuthHandler struct {
	usecase   usecase.AuthUsecase
	sanitizer *bluemonday.Policy
}

func NewAuthHandler(usecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{
		usecase:   usecase,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (h *AuthHandler) GetNonce(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	logger.AccessLogger.Info("Received GetNonce request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
	)

	nonce, err := h.usecase.IssueChallenge(ctx)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"nonce": nonce}, requestID)

	logger.AccessLogger.Info("Completed GetNonce request",
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)),
		zap.Int("status", http.StatusOK),
	)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	logger.AccessLogger.Info("Received Login request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
	)

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.AccessLogger.Warn("Failed to decode request body",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		h.handleError(w, domain.ErrInvalidInput, requestID)
		return
	}

	session, err := h.usecase.Login(ctx, req)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, session, requestID)

	logger.AccessLogger.Info("Completed Login request",
		zap.String("request_id", requestID),
		zap.String("user_id", session.UserID),
		zap.Duration("duration", time.Since(start)),
		zap.Int("status", http.StatusOK),
	)
}

func (h *AuthHandler) LoginSilent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	logger.AccessLogger.Info("Received LoginSilent request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
	)

	var req domain.SilentLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.AccessLogger.Warn("Failed to decode request body",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		h.handleError(w, domain.ErrInvalidInput, requestID)
		return
	}

	req.Username = h.sanitizer.Sanitize(req.Username)
	req.DisplayName = h.sanitizer.Sanitize(req.DisplayName)
	req.PfpURL = h.sanitizer.Sanitize(req.PfpURL)

	session, err := h.usecase.LoginSilent(ctx, req)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, session, requestID)

	logger.AccessLogger.Info("Completed LoginSilent request",
		zap.String("request_id", requestID),
		zap.String("user_id", session.UserID),
		zap.Duration("duration", time.Since(start)),
		zap.Int("status", http.StatusOK),
	)
}

func (h *AuthHandler) handleError(w http.ResponseWriter, err error, requestID string) {
	logger.AccessLogger.Error("Handling error",
		zap.String("request_id", requestID),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidProfile):
		middleware.WriteError(w, http.StatusBadRequest, err, requestID)
	case errors.Is(err, domain.ErrInvalidNonce), errors.Is(err, domain.ErrVerificationFailed):
		middleware.WriteError(w, http.StatusUnauthorized, err, requestID)
	case errors.Is(err, domain.ErrSilentLoginOff):
		middleware.WriteError(w, http.StatusForbidden, err, requestID)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		middleware.WriteError(w, http.StatusServiceUnavailable, err, requestID)
	default:
		middleware.WriteError(w, http.StatusInternalServerError, errors.New("internal server error"), requestID)
	}
}

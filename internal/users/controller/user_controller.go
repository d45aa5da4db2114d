package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"
	"scoremint/internal/users/usecase"

	"go.uber.org/zap"
)

type UserHandler struct {
	usecase usecase.UserUsecase
}

func NewUserHandler(usecase usecase.UserUsecase) *UserHandler {
	return &UserHandler{
		usecase: usecase,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	session, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, domain.ErrMissingToken, requestID)
		return
	}

	profile, err := h.usecase.Profile(ctx, session.UserID)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, profile, requestID)
}

func (h *UserHandler) UpgradeCrit(w http.ResponseWriter, r *http.Request) {
	h.upgrade(w, r, domain.UpgradeCrit)
}

func (h *UserHandler) UpgradeValue(w http.ResponseWriter, r *http.Request) {
	h.upgrade(w, r, domain.UpgradeValue)
}

func (h *UserHandler) upgrade(w http.ResponseWriter, r *http.Request, kind domain.UpgradeKind) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	logger.AccessLogger.Info("Received Upgrade request",
		zap.String("request_id", requestID),
		zap.String("kind", string(kind)),
	)

	session, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, domain.ErrMissingToken, requestID)
		return
	}

	resp, err := h.usecase.Upgrade(ctx, session.UserID, kind)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, resp, requestID)

	logger.AccessLogger.Info("Completed Upgrade request",
		zap.String("request_id", requestID),
		zap.String("kind", string(kind)),
		zap.Int("new_level", resp.NewLevel),
		zap.Duration("duration", time.Since(start)),
	)
}

func (h *UserHandler) LinkWallet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	session, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, domain.ErrMissingToken, requestID)
		return
	}

	var req domain.LinkWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, domain.ErrInvalidInput, requestID)
		return
	}

	profile, err := h.usecase.LinkWallet(ctx, session.UserID, strings.TrimSpace(req.WalletAddress))
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, profile, requestID)
}

func (h *UserHandler) handleError(w http.ResponseWriter, err error, requestID string) {
	logger.AccessLogger.Error("Handling error",
		zap.String("request_id", requestID),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidWallet):
		middleware.WriteError(w, http.StatusBadRequest, err, requestID)
	case errors.Is(err, domain.ErrInsufficientCoins):
		middleware.WriteError(w, http.StatusPaymentRequired, err, requestID)
	case errors.Is(err, domain.ErrUserNotFound):
		middleware.WriteError(w, http.StatusNotFound, err, requestID)
	case errors.Is(err, domain.ErrConcurrentUpdate), errors.Is(err, domain.ErrWalletTaken):
		middleware.WriteError(w, http.StatusConflict, err, requestID)
	default:
		middleware.WriteError(w, http.StatusInternalServerError, errors.New("internal server error"), requestID)
	}
}

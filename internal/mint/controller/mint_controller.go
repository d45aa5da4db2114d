package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"scoremint/domain"
	"scoremint/internal/mint/usecase"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type MintHandler struct {
	usecase usecase.MintUsecase
}

func NewMintHandler(usecase usecase.MintUsecase) *MintHandler {
	return &MintHandler{
		usecase: usecase,
	}
}

func (h *MintHandler) Mint(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	logger.AccessLogger.Info("Received Mint request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
	)

	session, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, domain.ErrMissingToken, requestID)
		return
	}

	var req domain.MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.AccessLogger.Warn("Failed to decode request body",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		h.handleError(w, domain.ErrInvalidScore, requestID)
		return
	}

	result, err := h.usecase.Mint(ctx, session.UserID, req.Score)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result, requestID)

	logger.AccessLogger.Info("Completed Mint request",
		zap.String("request_id", requestID),
		zap.String("status", string(result.Status)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("status_code", http.StatusOK),
	)
}

func (h *MintHandler) CheckScore(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	score, err := strconv.ParseInt(mux.Vars(r)["score"], 10, 64)
	if err != nil {
		h.handleError(w, domain.ErrInvalidScore, requestID)
		return
	}

	status, err := h.usecase.CheckScore(ctx, score)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, status, requestID)
}

func (h *MintHandler) handleError(w http.ResponseWriter, err error, requestID string) {
	logger.AccessLogger.Error("Handling error",
		zap.String("request_id", requestID),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, domain.ErrInvalidScore), errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNoWallet):
		middleware.WriteError(w, http.StatusBadRequest, err, requestID)
	case errors.Is(err, domain.ErrAlreadyClaimed), errors.Is(err, domain.ErrClaimInProgress):
		middleware.WriteError(w, http.StatusConflict, err, requestID)
	case errors.Is(err, domain.ErrMintFailed):
		middleware.WriteError(w, http.StatusBadGateway, domain.ErrMintFailed, requestID)
	case errors.Is(err, domain.ErrChainOutcomeUnknown):
		middleware.WriteError(w, http.StatusGatewayTimeout, err, requestID)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		middleware.WriteError(w, http.StatusServiceUnavailable, domain.ErrUpstreamUnavailable, requestID)
	default:
		middleware.WriteError(w, http.StatusInternalServerError, errors.New("internal server error"), requestID)
	}
}

package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"scoremint/domain"
	"scoremint/internal/runs/usecase"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"go.uber.org/zap"
)

type RunHandler struct {
	usecase usecase.RunUsecase
}

func NewRunHandler(usecase usecase.RunUsecase) *RunHandler {
	return &RunHandler{
		usecase: usecase,
	}
}

func (h *RunHandler) FinishRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	session, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, domain.ErrMissingToken, requestID)
		return
	}

	var req domain.FinishRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, domain.ErrInvalidScore, requestID)
		return
	}

	resp, err := h.usecase.FinishRun(ctx, session.UserID, req.Score)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, resp, requestID)

	logger.AccessLogger.Info("Completed FinishRun request",
		zap.String("request_id", requestID),
		zap.Int64("run_id", resp.RunID),
		zap.Duration("duration", time.Since(start)),
	)
}

func (h *RunHandler) handleError(w http.ResponseWriter, err error, requestID string) {
	logger.AccessLogger.Error("Handling error",
		zap.String("request_id", requestID),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, domain.ErrInvalidScore):
		middleware.WriteError(w, http.StatusBadRequest, err, requestID)
	case errors.Is(err, domain.ErrUserNotFound):
		middleware.WriteError(w, http.StatusNotFound, err, requestID)
	default:
		middleware.WriteError(w, http.StatusInternalServerError, errors.New("internal server error"), requestID)
	}
}

package controller

import (
	"errors"
	"net/http"
	"strconv"

	"scoremint/domain"
	"scoremint/internal/leaderboard/usecase"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"go.uber.org/zap"
)

type LeaderboardHandler struct {
	usecase usecase.LeaderboardUsecase
}

func NewLeaderboardHandler(usecase usecase.LeaderboardUsecase) *LeaderboardHandler {
	return &LeaderboardHandler{
		usecase: usecase,
	}
}

func (h *LeaderboardHandler) MintedLeaderboard(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	limit, err := parseLimit(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, domain.ErrInvalidInput, requestID)
		return
	}

	entries, err := h.usecase.TopMintedScores(ctx, limit)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, entries, requestID)
}

func (h *LeaderboardHandler) MyMintedScores(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	session, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, domain.ErrMissingToken, requestID)
		return
	}

	entries, err := h.usecase.UserMintedScores(ctx, session.UserID)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, entries, requestID)
}

func (h *LeaderboardHandler) TopRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	ctx, cancel := middleware.WithTimeout(r.Context())
	defer cancel()

	limit, err := parseLimit(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, domain.ErrInvalidInput, requestID)
		return
	}

	entries, err := h.usecase.TopRuns(ctx, limit)
	if err != nil {
		h.handleError(w, err, requestID)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, entries, requestID)
}

// parseLimit reads the optional ?limit= parameter; absent means default.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (h *LeaderboardHandler) handleError(w http.ResponseWriter, err error, requestID string) {
	logger.AccessLogger.Error("Handling error",
		zap.String("request_id", requestID),
		zap.Error(err),
	)
	middleware.WriteError(w, http.StatusInternalServerError, errors.New("internal server error"), requestID)
}

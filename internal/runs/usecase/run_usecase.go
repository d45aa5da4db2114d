package usecase

import (
	"context"

	"scoremint/domain"
	"scoremint/internal/service/validation"
)

type RunUsecase interface {
	FinishRun(ctx context.Context, userID string, score int64) (domain.FinishRunResponse, error)
}

type runUsecase struct {
	runs domain.RunRepository
}

func NewRunUsecase(runs domain.RunRepository) RunUsecase {
	return &runUsecase{
		runs: runs,
	}
}

func (uc *runUsecase) FinishRun(ctx context.Context, userID string, score int64) (domain.FinishRunResponse, error) {
	if !validation.ValidateScore(score) {
		return domain.FinishRunResponse{}, domain.ErrInvalidScore
	}
	return uc.runs.FinishRun(ctx, userID, score)
}

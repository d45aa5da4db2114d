package mocks

import (
	"context"

	"scoremint/domain"

	"github.com/stretchr/testify/mock"
)

type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) FinishRun(ctx context.Context, userID string, score int64) (domain.FinishRunResponse, error) {
	args := m.Called(ctx, userID, score)
	return args.Get(0).(domain.FinishRunResponse), args.Error(1)
}

type MockRunUsecase struct {
	mock.Mock
}

func (m *MockRunUsecase) FinishRun(ctx context.Context, userID string, score int64) (domain.FinishRunResponse, error) {
	args := m.Called(ctx, userID, score)
	return args.Get(0).(domain.FinishRunResponse), args.Error(1)
}

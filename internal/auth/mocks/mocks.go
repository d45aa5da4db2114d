package mocks

import (
	"context"

	"scoremint/domain"
	"scoremint/internal/service/middleware"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/mock"
)

type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) UpsertIdentity(ctx context.Context, fid int64) (*domain.User, error) {
	args := m.Called(ctx, fid)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthRepository) UpsertProfile(ctx context.Context, fid int64, profile domain.Profile) (*domain.User, error) {
	args := m.Called(ctx, fid, profile)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNonceStore struct {
	mock.Mock
}

func (m *MockNonceStore) Add(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockNonceStore) Consume(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockNonceStore) Sweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, req domain.SignInRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) IssueChallenge(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAuthUsecase) Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *MockAuthUsecase) LoginSilent(ctx context.Context, req domain.SilentLoginRequest) (domain.Session, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Session), args.Error(1)
}

type MockJwtTokenService struct {
	mock.Mock
}

func (m *MockJwtTokenService) Create(userID string, fid int64, tokenExpTime int64) (string, error) {
	args := m.Called(userID, fid, tokenExpTime)
	return args.String(0), args.Error(1)
}

func (m *MockJwtTokenService) Validate(tokenString string) (*middleware.JwtClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) != nil {
		return args.Get(0).(*middleware.JwtClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJwtTokenService) ParseSecretGetter(token *jwt.Token) (interface{}, error) {
	args := m.Called(token)
	return args.Get(0), args.Error(1)
}

package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scoremint/domain"
	"scoremint/internal/auth/mocks"
	"scoremint/internal/service/logger"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHandler(uc *mocks.MockAuthUsecase) *AuthHandler {
	return &AuthHandler{usecase: uc, sanitizer: bluemonday.UGCPolicy()}
}

func TestGetNonce(t *testing.T) {
	logger.AccessLogger = zap.NewNop()

	t.Run("Success", func(t *testing.T) {
		mockUsecase := new(mocks.MockAuthUsecase)
		h := newHandler(mockUsecase)
		mockUsecase.On("IssueChallenge", mock.Anything).Return("0123456789abcdef0123456789abcdef", nil)

		r, w := createTestRequest(http.MethodGet, "/api/auth/nonce", nil)
		h.GetNonce(w, r)

		resp := w.Result()
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "0123456789abcdef0123456789abcdef", body["nonce"])
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Store Failure", func(t *testing.T) {
		mockUsecase := new(mocks.MockAuthUsecase)
		h := newHandler(mockUsecase)
		mockUsecase.On("IssueChallenge", mock.Anything).Return("", errors.New("redis down"))

		r, w := createTestRequest(http.MethodGet, "/api/auth/nonce", nil)
		h.GetNonce(w, r)

		resp := w.Result()
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "internal server error", body["error"])
	})
}

func TestLogin(t *testing.T) {
	logger.AccessLogger = zap.NewNop()

	req := domain.LoginRequest{Message: "msg", Signature: "0xsig", Nonce: "abc"}

	t.Run("Success", func(t *testing.T) {
		mockUsecase := new(mocks.MockAuthUsecase)
		h := newHandler(mockUsecase)
		expires := time.Date(2026, 10, 22, 12, 0, 0, 0, time.UTC)
		mockUsecase.On("Login", mock.Anything, req).Return(domain.Session{
			Token: "signed-token", UserID: "user-123", Fid: 42, ExpiresAt: expires,
		}, nil)

		requestBody, _ := json.Marshal(req)
		r, w := createTestRequest(http.MethodPost, "/api/auth/login", requestBody)
		h.Login(w, r)

		resp := w.Result()
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "signed-token", body["accessToken"])
		assert.Equal(t, "user-123", body["userId"])
		assert.Equal(t, float64(42), body["fid"])
		mockUsecase.AssertExpectations(t)
	})

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"Invalid Nonce", domain.ErrInvalidNonce, http.StatusUnauthorized},
		{"Verification Failed", domain.ErrVerificationFailed, http.StatusUnauthorized},
		{"Malformed Input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"Verifier Unreachable", domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{"Unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockUsecase := new(mocks.MockAuthUsecase)
			h := newHandler(mockUsecase)
			mockUsecase.On("Login", mock.Anything, req).Return(domain.Session{}, tc.err)

			requestBody, _ := json.Marshal(req)
			r, w := createTestRequest(http.MethodPost, "/api/auth/login", requestBody)
			h.Login(w, r)

			resp := w.Result()
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}

	t.Run("Bad Body", func(t *testing.T) {
		mockUsecase := new(mocks.MockAuthUsecase)
		h := newHandler(mockUsecase)

		r, w := createTestRequest(http.MethodPost, "/api/auth/login", []byte("{not json"))
		h.Login(w, r)

		resp := w.Result()
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockUsecase.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestLoginSilent(t *testing.T) {
	logger.AccessLogger = zap.NewNop()

	t.Run("Sanitizes Profile", func(t *testing.T) {
		mockUsecase := new(mocks.MockAuthUsecase)
		h := newHandler(mockUsecase)
		mockUsecase.On("LoginSilent", mock.Anything, domain.SilentLoginRequest{
			Fid: 7, Username: "alice", DisplayName: "Alice",
		}).Return(domain.Session{Token: "silent-token", UserID: "user-7", Fid: 7}, nil)

		requestBody, _ := json.Marshal(domain.SilentLoginRequest{
			Fid: 7, Username: "alice", DisplayName: "<script>alert(1)</script>Alice",
		})
		r, w := createTestRequest(http.MethodPost, "/api/auth/login-silent", requestBody)
		h.LoginSilent(w, r)

		resp := w.Result()
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Disabled", func(t *testing.T) {
		mockUsecase := new(mocks.MockAuthUsecase)
		h := newHandler(mockUsecase)
		mockUsecase.On("LoginSilent", mock.Anything, mock.Anything).Return(domain.Session{}, domain.ErrSilentLoginOff)

		requestBody, _ := json.Marshal(domain.SilentLoginRequest{Fid: 7})
		r, w := createTestRequest(http.MethodPost, "/api/auth/login-silent", requestBody)
		h.LoginSilent(w, r)

		resp := w.Result()
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func createTestRequest(method, url string, body []byte) (*http.Request, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(method, url, bytes.NewReader(body))
	w := httptest.NewRecorder()
	return r, w
}

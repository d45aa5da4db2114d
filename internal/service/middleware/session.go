package middleware

import (
	"context"
	"net/http"
	"strings"

	"scoremint/domain"
	"scoremint/internal/service/logger"

	"go.uber.org/zap"
)

type SessionInfo struct {
	UserID string
	Fid    int64
}

func WithSession(ctx context.Context, info SessionInfo) context.Context {
	return context.WithValue(ctx, sessionKey, info)
}

func GetSession(ctx context.Context) (SessionInfo, bool) {
	info, ok := ctx.Value(sessionKey).(SessionInfo)
	return info, ok && info.UserID != ""
}

// BearerToken reads "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", domain.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// RequireSession rejects requests without a valid session token and stores
// the session in the request context.
func RequireSession(jwtToken JwtTokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			tokenString, err := BearerToken(r)
			if err != nil {
				writeUnauthorized(w, err, requestID)
				return
			}
			claims, err := jwtToken.Validate(tokenString)
			if err != nil {
				logger.AccessLogger.Warn("Token verification failed", zap.String("request_id", requestID), zap.Error(err))
				writeUnauthorized(w, domain.ErrInvalidToken, requestID)
				return
			}
			ctx := WithSession(r.Context(), SessionInfo{UserID: claims.UserId, Fid: claims.Fid})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, err error, requestID string) {
	WriteError(w, http.StatusUnauthorized, err, requestID)
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/boardsync/internal/server/handlers"
)

// SessionMiddleware создает middleware для проверки сессионного JWT.
// Токен ожидается в заголовке "Authorization: Bearer <token>" либо,
// для websocket-подключений (браузер не может выставить заголовок
// на upgrade-запросе), в query-параметре "token".
func SessionMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				logger.Warn("Missing session token", "path", r.URL.Path)
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			claims, err := handlers.ValidateSessionToken(jwtConfig, tokenString)
			if err != nil {
				logger.Warn("Invalid session token", "error", err)
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			// Добавляем идентичность сессии в контекст
			ctx := context.WithValue(r.Context(), handlers.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, handlers.SessionIDKey, claims.SessionID)

			logger.Debug("Session authenticated",
				"user_id", claims.UserID,
				"session_id", claims.SessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken достает токен из заголовка Authorization или query
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}

	return r.URL.Query().Get("token")
}

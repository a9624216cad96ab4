package handlers

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims представляет JWT claims сессионного токена.
// Пара (user_id, session_id) идентифицирует один browsing context.
// Токен используется для привязки канала доставки и для опционального
// self-echo suppression - никогда для authorization-решений.
type SessionClaims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// JWTConfig содержит конфигурацию для сессионных JWT
type JWTConfig struct {
	Secret     []byte
	SessionTTL time.Duration
}

// GenerateSessionToken создает JWT для пары (user, session)
func GenerateSessionToken(cfg JWTConfig, userID, sessionID string) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(cfg.SessionTTL)

	claims := SessionClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "boardsync",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, int64(cfg.SessionTTL.Seconds()), nil
}

// ValidateSessionToken валидирует и парсит сессионный JWT
func ValidateSessionToken(cfg JWTConfig, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

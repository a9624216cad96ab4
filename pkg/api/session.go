package api

// SessionRequest представляет запрос на выпуск сессионного токена.
// Идентификация пользователя приходит от внешнего auth-слоя,
// здесь только связывается пара (user, session).
type SessionRequest struct {
	UserID string `json:"user_id"` // UserID идентификатор пользователя
}

// SessionResponse представляет ответ с сессионным токеном
type SessionResponse struct {
	Token     string `json:"token"`      // Token JWT с user_id и session_id
	UserID    string `json:"user_id"`    // UserID идентификатор пользователя
	SessionID string `json:"session_id"` // SessionID идентификатор выданной сессии
	ExpiresIn int64  `json:"expires_in"` // ExpiresIn время жизни токена в секундах
}

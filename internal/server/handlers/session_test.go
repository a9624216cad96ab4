package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/boardsync/pkg/api"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:     []byte("test-secret"),
		SessionTTL: time.Hour,
	}
}

func TestSessionHandler_CreateSession(t *testing.T) {
	cfg := testJWTConfig()
	h := NewSessionHandler(testLogger(), cfg)

	body, err := json.Marshal(api.SessionRequest{UserID: "alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.HandleCreateSession(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.UserID)
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	// токен валиден и несет пару (user, session)
	claims, err := ValidateSessionToken(cfg, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)
	assert.Equal(t, resp.SessionID, claims.SessionID)
}

func TestSessionHandler_CreateSession_FreshSessionPerCall(t *testing.T) {
	h := NewSessionHandler(testLogger(), testJWTConfig())

	sessionIDs := make(map[string]bool)
	for i := 0; i < 3; i++ {
		body, err := json.Marshal(api.SessionRequest{UserID: "alice"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(body))
		w := httptest.NewRecorder()
		h.HandleCreateSession(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp api.SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		sessionIDs[resp.SessionID] = true
	}

	// каждый browsing context получает собственный session_id
	assert.Len(t, sessionIDs, 3)
}

func TestSessionHandler_CreateSession_MissingUserID(t *testing.T) {
	h := NewSessionHandler(testLogger(), testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	h.HandleCreateSession(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateSessionToken_WrongSecret(t *testing.T) {
	token, _, err := GenerateSessionToken(testJWTConfig(), "alice", "s1")
	require.NoError(t, err)

	_, err = ValidateSessionToken(JWTConfig{Secret: []byte("other-secret")}, token)
	assert.Error(t, err)
}

func TestValidateSessionToken_Expired(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("test-secret"), SessionTTL: -time.Minute}

	token, _, err := GenerateSessionToken(cfg, "alice", "s1")
	require.NoError(t, err)

	_, err = ValidateSessionToken(cfg, token)
	assert.Error(t, err)
}

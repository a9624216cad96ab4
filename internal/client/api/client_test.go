package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/boardsync/pkg/api"
)

func TestClient_Do_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tasks", r.URL.Path)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"task-1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")

	body, err := client.Do(context.Background(), api.MutationRequest{
		Method: http.MethodPost,
		Path:   "/api/v1/tasks",
		Body:   []byte(`{"title":"x"}`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"task-1"}`, string(body))
}

func TestClient_Do_ForwardsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.Header.Get("X-Suppress-Echo"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")

	_, err := client.Do(context.Background(), api.MutationRequest{
		Method:  http.MethodPost,
		Path:    "/",
		Headers: map[string]string{"X-Suppress-Echo": "1"},
	})
	require.NoError(t, err)
}

func TestClient_Do_ApplicationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "member already exists"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")

	_, err := client.Do(context.Background(), api.MutationRequest{
		Method: http.MethodPost,
		Path:   "/",
	})
	require.Error(t, err)

	assert.True(t, IsApplication(err))
	assert.False(t, IsTransient(err))

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusConflict, reqErr.Status)
	assert.Equal(t, "member already exists", reqErr.Message)
}

func TestClient_Do_TransientError(t *testing.T) {
	// сервер закрыт - чистая транспортная ошибка
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "test-token")

	_, err := client.Do(context.Background(), api.MutationRequest{
		Method: http.MethodPost,
		Path:   "/",
	})
	require.Error(t, err)

	assert.True(t, IsTransient(err))
	assert.False(t, IsApplication(err))
}

func TestNewSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/session", r.URL.Path)

		var req api.SessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.UserID)

		_ = json.NewEncoder(w).Encode(api.SessionResponse{
			Token:     "jwt-token",
			UserID:    req.UserID,
			SessionID: "s1",
			ExpiresIn: 3600,
		})
	}))
	defer server.Close()

	session, err := NewSession(context.Background(), server.URL, "alice")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", session.Token)
	assert.Equal(t, "s1", session.SessionID)
}

func TestNewSession_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewSession(context.Background(), server.URL, "alice")
	assert.Error(t, err)
}

func TestIsTransient_PlainError(t *testing.T) {
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsApplication(errors.New("plain")))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, setupTestLogger())
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	// другой ключ имеет собственный bucket
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimiter_RefillAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond, setupTestLogger())
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestRateLimitMiddleware(t *testing.T) {
	mw := RateLimitMiddleware(2, time.Minute, setupTestLogger())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "1.2.3.4:1000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "1.2.3.4:1000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:   "remote addr only",
			remote: "1.2.3.4:1000",
			want:   "1.2.3.4:1000",
		},
		{
			name:    "x-forwarded-for single",
			headers: map[string]string{"X-Forwarded-For": "9.9.9.9"},
			remote:  "1.2.3.4:1000",
			want:    "9.9.9.9",
		},
		{
			name:    "x-forwarded-for list takes first",
			headers: map[string]string{"X-Forwarded-For": "9.9.9.9, 8.8.8.8"},
			remote:  "1.2.3.4:1000",
			want:    "9.9.9.9",
		},
		{
			name:    "x-real-ip",
			headers: map[string]string{"X-Real-IP": "7.7.7.7"},
			remote:  "1.2.3.4:1000",
			want:    "7.7.7.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

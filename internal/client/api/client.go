package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iudanet/boardsync/pkg/api"
)

// Client представляет HTTP клиент для мутационных запросов к серверу.
// Все вызовы возвращают *RequestError с явной классификацией
// transient/application; очередь офлайн-мутаций строится поверх нее.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент.
// token - сессионный JWT, полученный через NewSession.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewSession запрашивает у сервера сессионный токен для user.
// Выполняется до создания Client: это единственный вызов без токена.
func NewSession(ctx context.Context, baseURL, userID string) (*api.SessionResponse, error) {
	body, err := json.Marshal(api.SessionRequest{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/session", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("session request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var sessionResp api.SessionResponse
	if err := json.Unmarshal(respBody, &sessionResp); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	return &sessionResp, nil
}

// Do выполняет один мутационный запрос.
//
// Классификация результата:
//   - nil error: сервер принял мутацию, возвращается тело ответа
//   - KindTransient: транспортная ошибка, запрос не дошел до сервера
//   - KindApplication: сервер ответил статусом >= 400
func (c *Client) Do(ctx context.Context, mutation api.MutationRequest) ([]byte, error) {
	var bodyReader io.Reader
	if mutation.Body != nil {
		bodyReader = bytes.NewReader(mutation.Body)
	}

	req, err := http.NewRequestWithContext(ctx, mutation.Method, c.baseURL+mutation.Path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if mutation.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range mutation.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Транспортный сбой: dial error, connection reset, timeout.
		// Запрос сервером не обработан, повтор безопасен.
		return nil, &RequestError{Kind: KindTransient, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Kind: KindTransient, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		message := string(respBody)
		var errResp api.ErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Error != "" {
			message = errResp.Error
		}
		return nil, &RequestError{
			Kind:    KindApplication,
			Status:  resp.StatusCode,
			Message: message,
		}
	}

	return respBody, nil
}

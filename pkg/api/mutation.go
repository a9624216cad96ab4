package api

// MutationRequest описывает один исходящий мутационный запрос.
// Это снимок запроса, достаточный для повторной отправки после
// восстановления соединения.
type MutationRequest struct {
	Headers map[string]string `json:"headers,omitempty"` // Headers дополнительные заголовки запроса
	Method  string            `json:"method"`            // Method HTTP метод
	Path    string            `json:"path"`              // Path путь запроса, например /api/v1/tasks
	Body    []byte            `json:"body,omitempty"`    // Body снимок тела запроса
}

// ErrorResponse представляет ответ сервера с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

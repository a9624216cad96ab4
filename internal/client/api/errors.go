package api

import (
	"errors"
	"fmt"
)

// ErrorKind классифицирует ошибку мутационного запроса.
//
// Классификация явная и основана на том, дошел ли запрос до сервера:
// смешение application-ошибки с transient - самый опасный дефект этого
// дизайна (очередь, которая никогда не дренируется), поэтому никакого
// catch-all здесь нет.
type ErrorKind int

const (
	// KindTransient сетевая ошибка: запрос не дошел до сервера,
	// повтор имеет смысл
	KindTransient ErrorKind = iota
	// KindApplication сервер ответил ошибочным статусом:
	// повтор детерминированно воспроизведет тот же отказ
	KindApplication
)

// RequestError представляет классифицированную ошибку запроса
type RequestError struct {
	Err     error     // Err исходная ошибка (для transient)
	Message string    // Message текст ошибки от сервера (для application)
	Kind    ErrorKind // Kind класс ошибки
	Status  int       // Status HTTP статус (0 для transient)
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Kind == KindApplication {
		return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

// Unwrap возвращает исходную ошибку
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransient сообщает, является ли ошибка transient (сетевой)
func IsTransient(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindTransient
}

// IsApplication сообщает, является ли ошибка application-отказом сервера
func IsApplication(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindApplication
}

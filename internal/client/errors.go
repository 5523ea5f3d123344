package client

import (
	"fmt"
	"net/http"
)

// TransportError единственный вид ошибки, которую возвращает Client.
// StatusCode равен 0, если ответ от сервера не был получен (сетевая ошибка, отмена ctx).
type TransportError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	// Message текст ошибки из тела ответа backend-а, если он его прислал
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s: status %d: %s", e.Op, e.Method, e.URL, e.StatusCode, msg)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFound сообщает, что backend ответил 404
func (e *TransportError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

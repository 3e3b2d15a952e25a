package service

import "fmt"

// Error is a domain failure carrying the HTTP status the request layer
// should answer with.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds a status-coded domain error.
func NewError(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

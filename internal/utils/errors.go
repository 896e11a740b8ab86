package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError is an error that carries the HTTP status it should be reported with.
type CustomError struct {
	Code    int
	Message string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

func New(code int, message string) error {
	return &CustomError{
		Code:    code,
		Message: message,
	}
}

// StatusOf returns the HTTP status for err: the code of a wrapped CustomError,
// otherwise 500.
func StatusOf(err error) (int, string) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code, ce.Message
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

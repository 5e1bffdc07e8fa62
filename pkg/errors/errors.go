package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so clones of a predefined error satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. Messages are user facing.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "Por favor, preencha todos os campos.")
	ErrAlreadyExists      = New("ALREADY_EXISTS", http.StatusConflict, "RA já cadastrado no sistema!")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "RA ou senha incorretos.")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "recurso não encontrado")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "Não autorizado")
	ErrSessionNotFound    = New("SESSION_NOT_FOUND", http.StatusUnauthorized, "sessão expirada, faça login novamente")
	ErrStorage            = New("STORAGE_ERROR", http.StatusInternalServerError, "Erro ao realizar cadastro. Tente novamente.")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

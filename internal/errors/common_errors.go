package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures below the HTTP layer. ErrorHandler maps each
// type onto a problem response.
type ErrorType string

const (
	ErrTypeParsing  ErrorType = "parsing"   // unreadable calibration data, 422
	ErrTypeStorage  ErrorType = "storage"   // store I/O, 500
	ErrTypeNotFound ErrorType = "not_found" // missing calibration point, 404
	ErrTypeConfig   ErrorType = "config"    // unusable store settings
)

// AppError is a typed failure from the store, exporter or service. Fields
// are reported as problem extensions for client errors only.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Fields  map[string]any
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Type) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// With records a field such as the offending row or file path
func (e *AppError) With(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	e.Fields[key] = value
	return e
}

// NewParsingError reports calibration data that could not be decoded
func NewParsingError(message string, cause error) *AppError {
	return &AppError{Type: ErrTypeParsing, Message: message, Cause: cause}
}

// NewStorageError reports a failed store read or write
func NewStorageError(message string, cause error) *AppError {
	return &AppError{Type: ErrTypeStorage, Message: message, Cause: cause}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Type: ErrTypeNotFound, Message: resource + " not found"}
}

func NewConfigError(message string, cause error) *AppError {
	return &AppError{Type: ErrTypeConfig, Message: message, Cause: cause}
}

// IsType reports whether err wraps an AppError of type t
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

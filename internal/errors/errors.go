package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ValidationFailed       ErrorCode = "validation_failed"
	InvalidInput           ErrorCode = "invalid_input"
	EmailExists            ErrorCode = "email_exists"
	DuplicateAccountNumber ErrorCode = "duplicate_account_number"
	AccountNotFound        ErrorCode = "account_not_found"
	EmailNotFound          ErrorCode = "email_not_found"
	InvalidCredentials     ErrorCode = "invalid_credentials"
	Unauthorized           ErrorCode = "unauthorized"
	InvalidToken           ErrorCode = "invalid_token"
	TokenExpired           ErrorCode = "token_expired"
	TokenNotYetValid       ErrorCode = "token_not_yet_valid"
	InsufficientFunds      ErrorCode = "insufficient_funds"
	InvalidAmount          ErrorCode = "invalid_amount"
	InternalError          ErrorCode = "internal_error"
)

// AppError is the error type every layer returns. The cause is kept for
// operators and is never written to a client.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches on code so wrapped copies of a sentinel still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithCause returns a copy of e carrying err as its cause.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.cause = err
	return &cp
}

// Internal wraps an unexpected failure. The message is fixed so nothing about
// the cause reaches the client.
func Internal(message string, err error) *AppError {
	return NewAppError(InternalError, message).WithCause(err)
}

func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ValidationFailed:
		return http.StatusPreconditionFailed
	case InvalidInput, InvalidCredentials:
		return http.StatusBadRequest
	case EmailExists, DuplicateAccountNumber:
		return http.StatusConflict
	case AccountNotFound, EmailNotFound:
		return http.StatusNotFound
	case Unauthorized, InvalidToken, TokenExpired, TokenNotYetValid:
		return http.StatusUnauthorized
	case InsufficientFunds, InvalidAmount:
		return http.StatusExpectationFailed
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound        = NewAppError(AccountNotFound, "No user exists")
	ErrEmailNotFound          = NewAppError(EmailNotFound, "Email does not exists")
	ErrEmailExists            = NewAppError(EmailExists, "Email already exists")
	ErrDuplicateAccountNumber = NewAppError(DuplicateAccountNumber, "account number already assigned")
	ErrInvalidCredentials     = NewAppError(InvalidCredentials, "Email / password are incorrect")
	ErrUnauthorized           = NewAppError(Unauthorized, "Unauthorized")
	ErrInvalidToken           = NewAppError(InvalidToken, "invalid token")
	ErrTokenExpired           = NewAppError(TokenExpired, "token has expired")
	ErrTokenNotYetValid       = NewAppError(TokenNotYetValid, "token is not valid yet")
	ErrInsufficientFunds      = NewAppError(InsufficientFunds, "No Sufficient funds available for processing request")
	ErrInvalidAmount          = NewAppError(InvalidAmount, "Amount should be greater than 0.0")
	ErrInvalidInput           = NewAppError(InvalidInput, "invalid request body")
)

package service

import (
	"errors"

	"notes-api/internal/repository"
)

// Kind clasifica los errores que la capa HTTP traduce a status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindNotFound
	KindInvalidOrExpired
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindInvalidOrExpired:
		return "invalid_or_expired"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error es un error de negocio con mensaje apto para el cliente.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrMissingFields      = newError(KindValidation, "Please provide all required fields")
	ErrMissingOTPFields   = newError(KindValidation, "Please provide email and name")
	ErrMissingCredentials = newError(KindValidation, "Please provide email and password")
	ErrMissingEmail       = newError(KindValidation, "Please provide email address")
	ErrMissingResetFields = newError(KindValidation, "Please provide token and new password")
	ErrMissingNoteFields  = newError(KindValidation, "Please provide title and content")
	ErrInvalidEmail       = newError(KindValidation, "Please provide a valid email")
	ErrInvalidDateOfBirth = newError(KindValidation, "Please provide a valid date of birth")
	ErrPasswordTooShort   = newError(KindValidation, "Password must be at least 6 characters long")
	ErrPasswordTooLong    = newError(KindValidation, "Password cannot exceed 72 bytes")
	ErrUserExists         = newError(KindConflict, "User already exists with this email")
	ErrInvalidCredentials = newError(KindUnauthorized, "Invalid credentials")
	ErrUnauthorized       = newError(KindUnauthorized, "Not authorized to access this route")
	ErrUserNotFound       = newError(KindNotFound, "User not found")
	ErrNoteNotFound       = newError(KindNotFound, "Note not found")
	ErrOTPInvalid         = newError(KindInvalidOrExpired, "Invalid or expired OTP. Please request a new one.")
	ErrResetTokenInvalid  = newError(KindInvalidOrExpired, "Invalid or expired reset token")
	ErrRateLimited        = newError(KindRateLimited, "Too many requests, please try again later.")
	ErrOTPSendFailure     = newError(KindInternal, "Failed to send OTP. Please try again.")
)

// KindOf devuelve la clase de err; los errores no tipados son internos.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	var verr *repository.ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	return KindInternal
}

// PublicMessage devuelve el mensaje seguro para exponer al cliente.
func PublicMessage(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	var verr *repository.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return "Internal server error"
}

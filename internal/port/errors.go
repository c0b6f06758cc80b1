package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrNotFound                 = errors.New("not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrConflict                 = errors.New("conflict")
	ErrUnauthorized             = errors.New("not authenticated")
	ErrIncorrectPassword        = errors.New("incorrect password")
	ErrPasswordLoginUnavailable = errors.New("this account uses OAuth login")
	ErrUpstreamAuth             = errors.New("oauth provider error")
	ErrProviderNotConfigured    = errors.New("oauth provider not configured")
	ErrUnknownProvider          = errors.New("unknown oauth provider")
	ErrInvalidState             = errors.New("invalid oauth state")
	ErrValidation               = errors.New("validation failed")
)

// ValidationError carries a message safe to show the client.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(msg string) error { return &ValidationError{Msg: msg} }

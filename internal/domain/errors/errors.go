package errors

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrEmptySecret       = errors.New("token signing secret is empty")

	ErrInvalidGzipRequest    = errors.New("invalid gzip request body")
	ErrGzipCompressionFailed = errors.New("gzip compression failed")

	ErrConfigFileReadFailed = errors.New("failed to read config file")
	ErrConfigParseFailed    = errors.New("failed to parse config file")
	ErrConfigInvalidFormat  = errors.New("invalid config value")
	ErrMissingJWTSecret     = errors.New("JWT secret is not configured")
	ErrUnknownStorage       = errors.New("unknown storage backend")
)

// Is and As forward to the standard library so callers importing this
// package under the name errors keep the usual helpers.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

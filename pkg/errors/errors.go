package errors

import "errors"

var (
	ErrInputFormat    = errors.New("invalid hand input")
	ErrEmptyInput     = errors.New("no hands in input")
	ErrTooManyHands   = errors.New("too many hands in input")
	ErrUnknownVariant = errors.New("unknown rule variant")

	ErrRunNotFound = errors.New("score run not found")

	ErrUnauthorized         = errors.New("unauthorized")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrAdminDisabled        = errors.New("admin disabled")
	ErrInvalidAdminPassword = errors.New("invalid admin credentials")
)

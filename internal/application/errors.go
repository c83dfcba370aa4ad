package application

import "errors"

// Business-rule errors. Handlers map these to 4xx responses; anything
// else coming out of the service is a store or signing failure and
// surfaces as a generic 500.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidCode   = errors.New("invalid otp")
	ErrCodeExpired   = errors.New("otp expired")
	ErrAlreadyExists = errors.New("mobile already registered")
	ErrNotFound      = errors.New("not found")
)

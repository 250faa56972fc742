package identity

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid registration data")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

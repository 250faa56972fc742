package analysis

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("analysis belongs to another customer")
)

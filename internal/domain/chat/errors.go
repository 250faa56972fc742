package chat

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNoAppointment = errors.New("no appointment between doctor and customer")
	ErrEmptyMessage  = errors.New("message text is empty")
)

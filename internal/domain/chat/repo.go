package chat

import (
	"context"

	"github.com/google/uuid"
)

type ChatRepository interface {
	Create(ctx context.Context, ch *Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (*Chat, error)
	GetByPair(ctx context.Context, doctorID, customerID uuid.UUID) (*Chat, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Chat, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Chat, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]*Message, error)
}

// AppointmentChecker gates chat creation: a chat may only exist between a
// doctor and customer who share an appointment. Implemented by the
// scheduling service.
type AppointmentChecker interface {
	HasAppointmentBetween(ctx context.Context, doctorID, customerID uuid.UUID) (bool, error)
}

// DoctorDirectory resolves a doctor to its clinic, returning ErrNotFound for
// unknown doctors. Implemented by the identity domain.
type DoctorDirectory interface {
	ClinicIDByDoctor(ctx context.Context, doctorID uuid.UUID) (uuid.UUID, error)
}

// CustomerDirectory reports whether a customer exists. Implemented by the
// identity domain.
type CustomerDirectory interface {
	CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error)
}
